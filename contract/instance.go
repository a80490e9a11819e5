package contract

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client is what the deployer and bound methods need from a node.
// *ethclient.Client satisfies it.
type Client interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Instance is a local handle on a deployed contract.
type Instance struct {
	Address common.Address
	ABI     abi.ABI
	// TxHash of the deployment, zero for instances bound to an existing address.
	TxHash common.Hash

	client   Client
	contract *bind.BoundContract
}

func NewInstance(contractABI abi.ABI, address common.Address, client Client) *Instance {
	return &Instance{
		Address:  address,
		ABI:      contractABI,
		client:   client,
		contract: bind.NewBoundContract(address, contractABI, client, client, client),
	}
}

// Bind returns a constructor binding instances to client, for use with GetContract.
func Bind(client Client) func(abi.ABI, common.Address) *Instance {
	return func(contractABI abi.ABI, address common.Address) *Instance {
		return NewInstance(contractABI, address, client)
	}
}

// Method returns the handle of function name called with args.
func (i *Instance) Method(name string, args ...any) Method {
	return &boundMethod{instance: i, name: name, args: args}
}

// Events normalizes the events called name found in receipt.
func (i *Instance) Events(name string, receipt *types.Receipt) (Result, error) {
	src, err := FromReceipt(i.ABI, receipt)
	if err != nil {
		return Result{}, err
	}
	return Normalize(name, src), nil
}

type boundMethod struct {
	instance *Instance
	name     string
	args     []any
}

func (m *boundMethod) Call(ctx context.Context, p Params) ([]any, error) {
	var out []any
	err := m.instance.contract.Call(&bind.CallOpts{From: p.From, Context: ctx}, &out, m.name, m.args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *boundMethod) EstimateGas(ctx context.Context, p Params) (uint64, error) {
	data, err := m.instance.ABI.Pack(m.name, m.args...)
	if err != nil {
		return 0, err
	}
	to := m.instance.Address
	return m.instance.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  p.From,
		To:    &to,
		Value: p.Value,
		Data:  data,
	})
}

func (m *boundMethod) Send(ctx context.Context, p Params) (Submission, error) {
	tx, err := m.instance.contract.Transact(&bind.TransactOpts{
		From:     p.From,
		Signer:   p.Signer,
		Nonce:    p.Nonce,
		Value:    p.Value,
		GasLimit: p.Gas,
		GasPrice: p.GasPrice,
		Context:  ctx,
	}, m.name, m.args...)
	if err != nil {
		return nil, err
	}
	return &txSubmission{tx: tx, backend: m.instance.client}, nil
}

type txSubmission struct {
	tx      *types.Transaction
	backend bind.DeployBackend
}

func (s *txSubmission) Hash() common.Hash {
	return s.tx.Hash()
}

func (s *txSubmission) Receipt(ctx context.Context) (*types.Receipt, error) {
	return bind.WaitMined(ctx, s.backend, s.tx)
}
