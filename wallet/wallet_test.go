package wallet

import (
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"contract-kit/config"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
}

func TestCreate(t *testing.T) {
	address, keyjson, err := Create("secret")
	require.NoError(t, err)
	assert.Len(t, address.Hex(), 42)
	assert.Contains(t, string(keyjson), `"version":3`)

	acc, err := Decrypt(address, keyjson, "secret")
	require.NoError(t, err)
	assert.Equal(t, address, acc.Address)
	assert.True(t, strings.HasPrefix(acc.PrivateKeyHex(), "0x"))
	assert.Len(t, acc.PrivateKeyHex(), 66)
}

func TestAdd(t *testing.T) {
	address, keyjson, err := Add("0x89862aeeb28822e6c4926f0d36cc790601955cd3c8f6dbb9f652b8460f7d6b2f", "secret")
	require.NoError(t, err)
	assert.Equal(t, "0x4ff8d692631e5c710fe4a7713eea48e0198173d3", strings.ToLower(address.Hex()))
	assert.Contains(t, string(keyjson), `"version":3`)

	_, _, err = Add("0xnothex", "secret")
	assert.Error(t, err)
}

func TestDecrypt(t *testing.T) {
	address, keyjson, err := Create("secret")
	require.NoError(t, err)

	_, err = Decrypt(address, keyjson, "wrong")
	assert.ErrorIs(t, err, keystore.ErrDecrypt)

	_, err = Decrypt(common.HexToAddress("0x01"), keyjson, "secret")
	assert.ErrorIs(t, err, ErrAddressMismatch)

	acc, err := Decrypt(common.Address{}, keyjson, "secret")
	require.NoError(t, err)
	assert.Equal(t, address, acc.Address)
}

func TestSigner(t *testing.T) {
	address, keyjson, err := Create("secret")
	require.NoError(t, err)
	acc, err := Decrypt(address, keyjson, "secret")
	require.NoError(t, err)

	signer, err := acc.Signer(big.NewInt(1337))
	require.NoError(t, err)
	assert.Equal(t, address, signer.Address)
	assert.NotNil(t, signer.Signer)
}

func TestSaveAndLoad(t *testing.T) {
	address, keyjson, err := Create("secret")
	require.NoError(t, err)
	conf := config.WalletConfig{
		Password:     "secret",
		KeystorePath: filepath.Join(t.TempDir(), "keystore.json"),
		Address:      address.Hex(),
	}
	require.NoError(t, Save(conf, keyjson))

	acc, err := Load(conf)
	require.NoError(t, err)
	assert.Equal(t, address, acc.Address)

	conf.Address = "nope"
	_, err = Load(conf)
	assert.Error(t, err)
}
