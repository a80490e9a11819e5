package schedule

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"contract-kit/chain"
	"contract-kit/config"
	"contract-kit/log"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// BalanceMonitor 定时检查部署账户余额，低于阈值时告警
type BalanceMonitor struct {
	client    chain.BalanceReader
	address   common.Address
	threshold *big.Int // wei
	timeout   time.Duration
}

func NewBalanceMonitor(client chain.BalanceReader, address common.Address, conf config.ThresholdConfig) (*BalanceMonitor, error) {
	threshold, err := chain.EtherToWei(conf.BalanceEther)
	if err != nil {
		return nil, fmt.Errorf("balance threshold %q: %w", conf.BalanceEther, err)
	}
	return &BalanceMonitor{client: client, address: address, threshold: threshold, timeout: 30 * time.Second}, nil
}

// Check reads the balance and reports whether it is below the threshold.
func (m *BalanceMonitor) Check(ctx context.Context) (chain.Balance, bool, error) {
	wei, err := m.client.BalanceAt(ctx, m.address, nil)
	if err != nil {
		return nil, false, err
	}
	return chain.FormatBalance(wei), wei.Cmp(m.threshold) < 0, nil
}

// Monitor is the scheduled job.
func (m *BalanceMonitor) Monitor() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	balance, low, err := m.Check(ctx)
	if err != nil {
		log.Logger.Error("balance monitor", zap.String("address", m.address.Hex()), zap.Error(err))
		return
	}
	if low {
		log.Logger.Warn("balance below threshold",
			zap.String("address", m.address.Hex()),
			zap.String("balance", balance["balanceEther"]),
			zap.String("threshold", chain.FormatBalance(m.threshold)["balanceEther"]))
		return
	}
	log.Logger.Info("balance", zap.String("address", m.address.Hex()), zap.String("ether", balance["balanceEther"]))
}
