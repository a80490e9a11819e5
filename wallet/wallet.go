package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"contract-kit/config"
	"contract-kit/contract"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// scrypt cost of the keystore encryption, lowered by tests
var (
	scryptN = keystore.StandardScryptN
	scryptP = keystore.StandardScryptP
)

var ErrAddressMismatch = errors.New("keystore does not hold the requested address")

// Account is an unlocked key.
type Account struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// PrivateKeyHex returns the 0x prefixed private key.
func (a *Account) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(a.key))
}

// Signer returns the contract account signing for chainID.
func (a *Account) Signer(chainID *big.Int) (contract.Account, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(a.key, chainID)
	if err != nil {
		return contract.Account{}, err
	}
	return contract.Account{Address: opts.From, Signer: opts.Signer}, nil
}

func encrypt(key *ecdsa.PrivateKey, password string) (common.Address, []byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return common.Address{}, nil, err
	}
	k := &keystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}
	keyjson, err := keystore.EncryptKey(k, password, scryptN, scryptP)
	if err != nil {
		return common.Address{}, nil, err
	}
	return k.Address, keyjson, nil
}

// Create 生成新账户，返回地址和 v3 keystore json
func Create(password string) (common.Address, []byte, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, nil, err
	}
	return encrypt(key, password)
}

// Add 用已有私钥（可带 0x）生成 keystore
func Add(privateKey string, password string) (common.Address, []byte, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("private key: %w", err)
	}
	return encrypt(key, password)
}

// Decrypt unlocks keyjson and checks it holds address. A zero address
// accepts whatever the keystore holds.
func Decrypt(address common.Address, keyjson []byte, password string) (*Account, error) {
	k, err := keystore.DecryptKey(keyjson, password)
	if err != nil {
		return nil, err
	}
	if address != (common.Address{}) && k.Address != address {
		return nil, fmt.Errorf("%w: %s", ErrAddressMismatch, address.Hex())
	}
	return &Account{Address: k.Address, key: k.PrivateKey}, nil
}

// Load decrypts the configured keystore file with the configured password.
func Load(conf config.WalletConfig) (*Account, error) {
	keyjson, err := os.ReadFile(conf.KeystorePath)
	if err != nil {
		return nil, err
	}
	var address common.Address
	if conf.Address != "" {
		if !common.IsHexAddress(conf.Address) {
			return nil, fmt.Errorf("wallet address %q is not hex", conf.Address)
		}
		address = common.HexToAddress(conf.Address)
	}
	return Decrypt(address, keyjson, conf.Password)
}

// Save writes keyjson to the configured keystore path.
func Save(conf config.WalletConfig, keyjson []byte) error {
	return os.WriteFile(conf.KeystorePath, keyjson, 0o600)
}
