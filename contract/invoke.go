package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"contract-kit/config"
	"contract-kit/log"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Account is a sender able to sign transactions.
type Account struct {
	Address common.Address
	Signer  bind.SignerFn
}

// Params of a call or transaction. Gas and GasPrice are filled in by Send.
type Params struct {
	From   common.Address
	Signer bind.SignerFn
	Value  *big.Int
	Nonce  *big.Int

	Gas      uint64
	GasPrice *big.Int
}

// ParamsFor returns Params sending from account.
func ParamsFor(account Account) Params {
	return Params{From: account.Address, Signer: account.Signer}
}

// Method is a contract function already loaded with its arguments.
type Method interface {
	Call(ctx context.Context, p Params) ([]any, error)
	EstimateGas(ctx context.Context, p Params) (uint64, error)
	Send(ctx context.Context, p Params) (Submission, error)
}

// Submission is a transaction accepted by the client.
type Submission interface {
	Hash() common.Hash
	// Receipt blocks until the transaction is mined.
	Receipt(ctx context.Context) (*types.Receipt, error)
}

// Ack selects the stage at which Send resolves.
type Ack int

const (
	AcknowledgeOnHash Ack = iota
	AcknowledgeOnReceipt
)

// Outcome of Send. Receipt is nil when acknowledged on hash.
type Outcome struct {
	Hash    common.Hash
	Receipt *types.Receipt
}

// Future is resolved exactly once by Send.
type Future struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(o Outcome, err error) {
	f.once.Do(func() {
		f.outcome, f.err = o, err
		close(f.done)
	})
}

// Done is closed once the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx is done.
func (f *Future) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-f.done:
		return f.outcome, f.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

var ErrInvalidGasPrice = errors.New("invalid gas price")

// GweiToWei converts a decimal gwei amount ("6.2") to wei. Fractions of a
// wei are truncated.
func GweiToWei(gwei string) (*big.Int, error) {
	d, err := decimal.NewFromString(gwei)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidGasPrice, gwei, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w %q: negative", ErrInvalidGasPrice, gwei)
	}
	return d.Shift(9).BigInt(), nil
}

// Invoker runs calls and transactions against contract methods.
type Invoker struct {
	conf config.ChainConfig
}

func NewInvoker(conf config.ChainConfig) *Invoker {
	return &Invoker{conf: conf}
}

// GasPrice is the configured gas price in wei.
func (inv *Invoker) GasPrice() (*big.Int, error) {
	return GweiToWei(inv.conf.GasPriceGwei)
}

// Call performs a read only invocation. Client errors (reverts included)
// are returned as is.
func (inv *Invoker) Call(ctx context.Context, m Method, p Params) ([]any, error) {
	return m.Call(ctx, p)
}

// Send estimates gas, prices it from the configuration and submits m as a
// transaction. The returned future resolves with the transaction hash
// (AcknowledgeOnHash) or with the mined receipt (AcknowledgeOnReceipt).
// Nonce management and retries are left to the caller.
func (inv *Invoker) Send(ctx context.Context, m Method, p Params, ack Ack) *Future {
	f := newFuture()
	go func() {
		gas, err := m.EstimateGas(ctx, p)
		if err != nil {
			f.resolve(Outcome{}, err)
			return
		}
		price, err := inv.GasPrice()
		if err != nil {
			f.resolve(Outcome{}, err)
			return
		}
		p.Gas, p.GasPrice = gas, price

		sub, err := m.Send(ctx, p)
		if err != nil {
			log.Logger.Error("send transaction failed", zap.String("from", p.From.Hex()), zap.Error(err))
			f.resolve(Outcome{}, err)
			return
		}
		hash := sub.Hash()
		if ack == AcknowledgeOnHash {
			f.resolve(Outcome{Hash: hash}, nil)
			return
		}
		receipt, err := sub.Receipt(ctx)
		f.resolve(Outcome{Hash: hash, Receipt: receipt}, err)
	}()
	return f
}
