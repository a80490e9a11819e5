package chain

import (
	"context"
	"math/big"

	"contract-kit/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// BalanceReader is the part of a node GetBalance needs.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// units and their decimal exponent relative to wei
var units = []struct {
	name string
	exp  int32
}{
	{"wei", 0},
	{"gwei", 9},
	{"ether", 18},
}

// Balance holds an account balance in every unit, keyed balanceWei,
// balanceGwei and balanceEther, each with four decimals.
type Balance map[string]string

// FormatBalance expresses wei in every unit.
func FormatBalance(wei *big.Int) Balance {
	b := make(Balance, len(units))
	for _, u := range units {
		b["balance"+utils.Capitalize(u.name)] = decimal.NewFromBigInt(wei, -u.exp).StringFixed(4)
	}
	return b
}

// GetBalance reads the latest balance of address.
func GetBalance(ctx context.Context, client BalanceReader, address common.Address) (Balance, error) {
	wei, err := client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, err
	}
	return FormatBalance(wei), nil
}

// EtherToWei converts a decimal ether amount to wei.
func EtherToWei(ether string) (*big.Int, error) {
	d, err := decimal.NewFromString(ether)
	if err != nil {
		return nil, err
	}
	return d.Shift(18).BigInt(), nil
}
