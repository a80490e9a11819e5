package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Environment variables recognised on top of the toml file.
const (
	EnvGasPriceGwei       = "GAS_PRICE_GWEI"
	EnvContractsDirectory = "CONTRACTS_DIRECTORY"
	EnvNetwork            = "ETH_NETWORK"
	EnvGanacheUrl         = "GANACHE_URL"
	EnvInfuraApiKey       = "INFURA_API_KEY"
	EnvWalletPassword     = "WEB3_WALLET_PASSWORD"
)

const (
	DefaultGasPriceGwei       = "6.2"
	DefaultContractsDirectory = "contracts"
	DefaultNetwork            = "ganache"
	DefaultGanacheUrl         = "http://localhost:8545"
	DefaultSourceExtension    = ".sol"
)

// Default returns a configuration with every field that has a sane default filled in.
func Default() Conf {
	return Conf{
		Chain: ChainConfig{
			Network:        DefaultNetwork,
			GanacheUrl:     DefaultGanacheUrl,
			GasPriceGwei:   DefaultGasPriceGwei,
			ReceiptTimeout: 120,
			DialRetry:      3,
		},
		Compiler: CompilerConfig{
			ContractsDirectory: DefaultContractsDirectory,
			SolcPath:           "solc",
			Optimize:           true,
			SourceExtension:    DefaultSourceExtension,
		},
		Wallet: WalletConfig{
			KeystorePath: "keystore.json",
		},
		Redis: RedisConfig{
			Address:     "127.0.0.1",
			Port:        "6379",
			MaxIdle:     10,
			IdleTimeout: 180,
			ArtifactTTL: 3600,
		},
		Mysql: MysqlConfig{
			Address:      "127.0.0.1",
			Port:         "3306",
			DbName:       "contract_kit",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			MaxLifeTime:  300,
		},
		Threshold: ThresholdConfig{
			BalanceEther:   "0.1",
			MonitorMinutes: 30,
		},
		Env: EnvConfig{
			Port:    "8081",
			Version: "v1",
		},
		Log: LogConfig{
			Level:      "info",
			File:       "logs/contract-kit.log",
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
		},
	}
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() Conf {
	c := Default()
	c.applyEnv(os.LookupEnv)
	return c
}

// Init 读取 toml 配置文件，再用环境变量覆盖，结果保存到全局 Config
func Init(path string) (*Conf, error) {
	c := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	c.applyEnv(os.LookupEnv)
	Config = &c
	return Config, nil
}

func (c *Conf) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvGasPriceGwei, &c.Chain.GasPriceGwei)
	set(EnvContractsDirectory, &c.Compiler.ContractsDirectory)
	set(EnvNetwork, &c.Chain.Network)
	set(EnvGanacheUrl, &c.Chain.GanacheUrl)
	set(EnvInfuraApiKey, &c.Chain.InfuraApiKey)
	set(EnvWalletPassword, &c.Wallet.Password)
}
