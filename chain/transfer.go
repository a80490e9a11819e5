package chain

import (
	"context"
	"errors"
	"math/big"

	"contract-kit/contract"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxBackend is the part of a node a plain value transfer needs.
type TxBackend interface {
	bind.DeployBackend
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

var (
	errNotCallable = errors.New("value transfer cannot be called")
	ErrNoSigner    = errors.New("account has no signer")
)

// transfer sends value to an account, with no calldata. It plugs into the
// invoker like any contract method.
type transfer struct {
	client TxBackend
	to     common.Address
}

func (t *transfer) Call(ctx context.Context, p contract.Params) ([]any, error) {
	return nil, errNotCallable
}

func (t *transfer) EstimateGas(ctx context.Context, p contract.Params) (uint64, error) {
	to := t.to
	return t.client.EstimateGas(ctx, ethereum.CallMsg{From: p.From, To: &to, Value: p.Value})
}

func (t *transfer) Send(ctx context.Context, p contract.Params) (contract.Submission, error) {
	if p.Signer == nil {
		return nil, ErrNoSigner
	}
	var nonce uint64
	if p.Nonce != nil {
		nonce = p.Nonce.Uint64()
	} else {
		n, err := t.client.PendingNonceAt(ctx, p.From)
		if err != nil {
			return nil, err
		}
		nonce = n
	}
	value := p.Value
	if value == nil {
		value = new(big.Int)
	}
	tx, err := p.Signer(p.From, types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &t.to,
		Value:    value,
		Gas:      p.Gas,
		GasPrice: p.GasPrice,
	}))
	if err != nil {
		return nil, err
	}
	if err := t.client.SendTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return &sentTx{tx: tx, client: t.client}, nil
}

type sentTx struct {
	tx     *types.Transaction
	client bind.DeployBackend
}

func (s *sentTx) Hash() common.Hash {
	return s.tx.Hash()
}

func (s *sentTx) Receipt(ctx context.Context) (*types.Receipt, error) {
	return bind.WaitMined(ctx, s.client, s.tx)
}

// Transfer sends value wei from the account to to, priced with the
// invoker's gas price, and returns the mined receipt.
func Transfer(ctx context.Context, inv *contract.Invoker, client TxBackend, from contract.Account, to common.Address, value *big.Int) (*types.Receipt, error) {
	p := contract.ParamsFor(from)
	p.Value = value
	out, err := inv.Send(ctx, &transfer{client: client, to: to}, p, contract.AcknowledgeOnReceipt).Wait(ctx)
	if err != nil {
		return nil, err
	}
	return out.Receipt, nil
}
