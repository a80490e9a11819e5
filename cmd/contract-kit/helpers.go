package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"contract-kit/cache"
	"contract-kit/chain"
	"contract-kit/config"
	"contract-kit/contract"
	"contract-kit/db"
	"contract-kit/log"
	"contract-kit/solc"
	"contract-kit/wallet"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// writeJSON prints v to file, or to stdout when file is empty.
func writeJSON(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if file == "" {
		_, err = fmt.Println(string(data))
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

func readJSON(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// compiler is solc, memoized in redis when useCache is set and redis is up.
func compiler(conf *config.Conf, useCache bool) contract.Compiler {
	var c contract.Compiler = solc.New(conf.Compiler)
	if !useCache {
		return c
	}
	pool, err := db.InitRedis(conf.Redis)
	if err != nil {
		log.Logger.Warn("artifact cache disabled", zap.Error(err))
		return c
	}
	return cache.NewCompiler(c, cache.NewRedisStore(pool), time.Duration(conf.Redis.ArtifactTTL)*time.Second)
}

// dial connects to the configured network and unlocks the configured wallet.
func dial(ctx context.Context, conf *config.Conf) (*ethclient.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return chain.Dial(dialCtx, conf.Chain)
}

func account(ctx context.Context, conf *config.Conf, client *ethclient.Client) (contract.Account, error) {
	acc, err := wallet.Load(conf.Wallet)
	if err != nil {
		return contract.Account{}, fmt.Errorf("wallet: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return contract.Account{}, err
	}
	return acc.Signer(chainID)
}

// receiptContext bounds waiting for receipts by the configured timeout.
func receiptContext(ctx context.Context, conf config.ChainConfig) (context.Context, context.CancelFunc) {
	if conf.ReceiptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(conf.ReceiptTimeout)*time.Second)
}
