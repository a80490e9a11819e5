package contract

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmission struct {
	hash     common.Hash
	receipt  *types.Receipt
	release  chan struct{}
	receipts atomic.Int32
}

func (s *fakeSubmission) Hash() common.Hash { return s.hash }

func (s *fakeSubmission) Receipt(ctx context.Context) (*types.Receipt, error) {
	s.receipts.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.receipt, nil
}

type fakeMethod struct {
	gas         uint64
	callResult  []any
	callErr     error
	estimateErr error
	sendErr     error
	sub         *fakeSubmission

	sentParams []Params
	callParams []Params
}

func (m *fakeMethod) Call(ctx context.Context, p Params) ([]any, error) {
	m.callParams = append(m.callParams, p)
	return m.callResult, m.callErr
}

func (m *fakeMethod) EstimateGas(ctx context.Context, p Params) (uint64, error) {
	return m.gas, m.estimateErr
}

func (m *fakeMethod) Send(ctx context.Context, p Params) (Submission, error) {
	m.sentParams = append(m.sentParams, p)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return m.sub, nil
}

func waitFor(t *testing.T, f *Future) (Outcome, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

func TestGweiToWei(t *testing.T) {
	tests := []struct {
		gwei string
		want string
	}{
		{"6.2", "6200000000"},
		{"123", "123000000000"},
		{"0", "0"},
		{"0.0000000011", "1"},
	}
	for _, tt := range tests {
		got, err := GweiToWei(tt.gwei)
		require.NoError(t, err, tt.gwei)
		assert.Equal(t, tt.want, got.String(), tt.gwei)
	}

	_, err := GweiToWei("cheap")
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
	_, err = GweiToWei("-1")
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
}

func TestCall(t *testing.T) {
	from := common.HexToAddress("0x01")
	m := &fakeMethod{callResult: []any{big.NewInt(3)}}

	got, err := NewInvoker(testChainConfig()).Call(context.Background(), m, Params{From: from})
	require.NoError(t, err)
	assert.Equal(t, []any{big.NewInt(3)}, got)
	require.Len(t, m.callParams, 1)
	assert.Equal(t, from, m.callParams[0].From)
}

func TestCallPropagatesRevert(t *testing.T) {
	revert := errors.New("execution reverted")
	m := &fakeMethod{callErr: revert}

	_, err := NewInvoker(testChainConfig()).Call(context.Background(), m, Params{})
	assert.ErrorIs(t, err, revert)
}

func TestSendGasFromConfigAndEstimate(t *testing.T) {
	m := &fakeMethod{gas: 21000, sub: &fakeSubmission{hash: common.HexToHash("0xaa")}}
	from := common.HexToAddress("0x02")

	_, err := waitFor(t, NewInvoker(testChainConfig()).Send(context.Background(), m, Params{From: from}, AcknowledgeOnHash))
	require.NoError(t, err)

	require.Len(t, m.sentParams, 1)
	p := m.sentParams[0]
	assert.Equal(t, from, p.From)
	assert.Equal(t, uint64(21000), p.Gas)
	assert.Equal(t, "123000000000", p.GasPrice.String())
}

func TestSendAcknowledgeOnHash(t *testing.T) {
	sub := &fakeSubmission{hash: common.HexToHash("0xaa"), release: make(chan struct{})}
	m := &fakeMethod{gas: 1, sub: sub}

	out, err := waitFor(t, NewInvoker(testChainConfig()).Send(context.Background(), m, Params{}, AcknowledgeOnHash))
	require.NoError(t, err)
	assert.Equal(t, sub.hash, out.Hash)
	assert.Nil(t, out.Receipt)
	assert.Zero(t, sub.receipts.Load())
}

func TestSendAcknowledgeOnReceipt(t *testing.T) {
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}
	sub := &fakeSubmission{hash: common.HexToHash("0xbb"), receipt: receipt, release: make(chan struct{})}
	m := &fakeMethod{gas: 1, sub: sub}

	f := NewInvoker(testChainConfig()).Send(context.Background(), m, Params{}, AcknowledgeOnReceipt)

	// the hash alone does not resolve it
	select {
	case <-f.Done():
		t.Fatal("resolved before the receipt")
	case <-time.After(50 * time.Millisecond):
	}

	close(sub.release)
	out, err := waitFor(t, f)
	require.NoError(t, err)
	assert.Same(t, receipt, out.Receipt)
	assert.Equal(t, sub.hash, out.Hash)
}

func TestSendSubmissionFailure(t *testing.T) {
	boom := errors.New("insufficient funds")
	m := &fakeMethod{gas: 1, sendErr: boom}

	_, err := waitFor(t, NewInvoker(testChainConfig()).Send(context.Background(), m, Params{}, AcknowledgeOnReceipt))
	assert.ErrorIs(t, err, boom)
}

func TestSendEstimateFailure(t *testing.T) {
	boom := errors.New("execution reverted")
	m := &fakeMethod{estimateErr: boom}

	_, err := waitFor(t, NewInvoker(testChainConfig()).Send(context.Background(), m, Params{}, AcknowledgeOnHash))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.sentParams)
}

func TestSendBadGasPrice(t *testing.T) {
	conf := testChainConfig()
	conf.GasPriceGwei = "lots"
	m := &fakeMethod{gas: 1, sub: &fakeSubmission{}}

	_, err := waitFor(t, NewInvoker(conf).Send(context.Background(), m, Params{}, AcknowledgeOnHash))
	assert.ErrorIs(t, err, ErrInvalidGasPrice)
	assert.Empty(t, m.sentParams)
}

func TestFutureResolvesOnce(t *testing.T) {
	f := newFuture()
	f.resolve(Outcome{Hash: common.HexToHash("0x01")}, nil)
	f.resolve(Outcome{Hash: common.HexToHash("0x02")}, errors.New("late"))

	out, err := waitFor(t, f)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0x01"), out.Hash)
}

func TestFutureWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newFuture().Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
