package contract

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const exampleABI = `[
	{"type":"function","name":"sum","stateMutability":"nonpayable",
	 "inputs":[{"name":"_a","type":"uint256"},{"name":"_b","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Sum","anonymous":false,
	 "inputs":[{"name":"_a","type":"uint256","indexed":true},
	           {"name":"_b","type":"uint256","indexed":false},
	           {"name":"_result","type":"uint256","indexed":false}]}
]`

const interfaceABI = `[{"type":"function","name":"sum","stateMutability":"view",
	"inputs":[{"name":"_a","type":"uint256"},{"name":"_b","type":"uint256"}],
	"outputs":[{"name":"","type":"uint256"}]}]`

var exampleArtifact = Artifact{Interface: exampleABI, Bytecode: "0x6080604052348015600f57600080fd5b50"}

var chainID = big.NewInt(1337)

func testAccount(t *testing.T) Account {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	require.NoError(t, err)
	return Account{Address: opts.From, Signer: opts.Signer}
}

// fakeClient is an in-memory node: every sent transaction is mined at once.
type fakeClient struct {
	mu sync.Mutex

	gas         uint64
	nonce       uint64
	estimateErr error
	sendErr     error
	callOutput  []byte
	// logs attached to the receipt of a transaction
	logs func(tx *types.Transaction) []*types.Log

	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	calls    []ethereum.CallMsg
}

func newFakeClient() *fakeClient {
	return &fakeClient{gas: 90000, receipts: make(map[common.Hash]*types.Receipt)}
}

func (c *fakeClient) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (c *fakeClient) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.callOutput, nil
}

func (c *fakeClient) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.gas, c.estimateErr
}

func (c *fakeClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *fakeClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *fakeClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	signer := types.LatestSignerForChainID(chainID)
	from, err := types.Sender(signer, tx)
	if err != nil {
		return err
	}
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		GasUsed:     tx.Gas(),
		BlockNumber: big.NewInt(1),
	}
	if tx.To() == nil {
		receipt.ContractAddress = crypto.CreateAddress(from, tx.Nonce())
	}
	if c.logs != nil {
		receipt.Logs = c.logs(tx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, tx)
	c.receipts[tx.Hash()] = receipt
	return nil
}

func (c *fakeClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (c *fakeClient) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (c *fakeClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.nonce, nil
}

func (c *fakeClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (c *fakeClient) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("not supported")
}

func (c *fakeClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.receipts[txHash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (c *fakeClient) sentTxs() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.sent...)
}
