package chain

import (
	"context"
	"math/big"
	"time"

	"contract-kit/contract"
	"contract-kit/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// LogFilterer is the part of a node the event scanners need.
type LogFilterer interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// PastEvents 扫历史区块 [from, to]，to 为 0 表示到最新块；
// 结果按 RawList 形式交给 Normalize
func PastEvents(ctx context.Context, client LogFilterer, contractABI abi.ABI, address common.Address, from, to uint64) (contract.Source, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		Addresses: []common.Address{address},
	}
	if to != 0 {
		q.ToBlock = new(big.Int).SetUint64(to)
	}
	logs, err := client.FilterLogs(ctx, q)
	if err != nil {
		return contract.Source{}, err
	}
	return contract.FromLogs(contractABI, logs)
}

// Watch 实时订阅合约事件（自动重连），每个事件以 SingleEvent 形式交给 handler，
// 直到 ctx 结束
func Watch(ctx context.Context, client LogFilterer, contractABI abi.ABI, address common.Address, handler func(contract.Source)) error {
	q := ethereum.FilterQuery{Addresses: []common.Address{address}}
	for {
		ch := make(chan types.Log)
		sub, err := client.SubscribeFilterLogs(ctx, q, ch)
		if err != nil {
			log.Logger.Warn("subscribe logs", zap.String("address", address.Hex()), zap.Error(err))
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		if err := drain(ctx, sub, ch, contractABI, handler); err != nil {
			log.Logger.Warn("subscription dropped", zap.String("address", address.Hex()), zap.Error(err))
		}
		sub.Unsubscribe()
		if !sleep(ctx, time.Second) {
			return ctx.Err()
		}
	}
}

func drain(ctx context.Context, sub ethereum.Subscription, ch <-chan types.Log, contractABI abi.ABI, handler func(contract.Source)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case lg := <-ch:
			e, ok, err := contract.DecodeLog(contractABI, lg)
			if err != nil {
				log.Logger.Warn("decode log", zap.String("tx", lg.TxHash.Hex()), zap.Error(err))
				continue
			}
			if ok {
				handler(contract.SingleEventSource(e))
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
