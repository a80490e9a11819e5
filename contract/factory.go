package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"contract-kit/log"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// SummaryEntry is the deployment summary of one contract.
type SummaryEntry struct {
	ABI       json.RawMessage   `json:"abi"`
	Addresses map[string]string `json:"addresses"`
}

// Summary maps contract name to its ABI and per network addresses.
type Summary map[string]SummaryEntry

func LoadSummary(file string) (Summary, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("summary %s: %w", file, err)
	}
	return s, nil
}

// GetContract builds the instance of name on network from summary with
// ctor. A missing ABI or address is a miss, not an error.
func GetContract[T any](network string, ctor func(abi.ABI, common.Address) T, name string, summary Summary) Option[T] {
	entry, ok := summary[name]
	if !ok {
		return None[T]()
	}
	raw := bytes.TrimSpace(entry.ABI)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return None[T]()
	}
	address, ok := entry.Addresses[network]
	if !ok || address == "" {
		return None[T]()
	}
	if !common.IsHexAddress(address) {
		log.Logger.Warn("summary address is not hex", zap.String("name", name), zap.String("network", network))
		return None[T]()
	}
	contractABI, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		log.Logger.Warn("summary abi", zap.String("name", name), zap.Error(err))
		return None[T]()
	}
	return Some(ctor(contractABI, common.HexToAddress(address)))
}
