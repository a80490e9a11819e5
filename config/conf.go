package config

var Config *Conf

// 项目全局配置文件
// Conf is populated once by Init; components receive the sub-struct they need.

type Conf struct {
	// 链相关：网络选择、节点地址、gas 价格（gwei）
	Chain ChainConfig
	// 编译相关：合约源码根目录、solc 可执行文件
	Compiler CompilerConfig
	// 钱包：keystore 加密口令
	Wallet WalletConfig
	Redis  RedisConfig
	Mysql  MysqlConfig
	// 余额告警阈值（ether）
	Threshold ThresholdConfig
	Env       EnvConfig
	Log       LogConfig
}

type ChainConfig struct {
	Network      string `toml:"network"`
	GanacheUrl   string `toml:"ganache_url"`
	InfuraApiKey string `toml:"infura_api_key"`
	GasPriceGwei string `toml:"gas_price_gwei"`
	// seconds to wait for a mined receipt, 0 means wait until the caller cancels
	ReceiptTimeout int64 `toml:"receipt_timeout"`
	DialRetry      int64 `toml:"dial_retry"` // seconds between dial attempts
}

type CompilerConfig struct {
	ContractsDirectory string `toml:"contracts_directory"`
	SolcPath           string `toml:"solc_path"`
	Optimize           bool   `toml:"optimize"`
	SourceExtension    string `toml:"source_extension"`
}

type WalletConfig struct {
	Password     string `toml:"password"`
	KeystorePath string `toml:"keystore_path"`
	Address      string `toml:"address"`
}

type RedisConfig struct {
	Address     string `toml:"address"`
	Port        string `toml:"port"`
	Db          int    `toml:"db"`
	Password    string `toml:"password"`
	MaxIdle     int    `toml:"max_idle"`
	MaxActive   int    `toml:"max_active"`
	IdleTimeout int    `toml:"idle_timeout"` // seconds
	// 编译产物缓存有效期（秒），0 表示不过期
	ArtifactTTL int `toml:"artifact_ttl"`
}

type MysqlConfig struct {
	Address      string `toml:"address"`
	Port         string `toml:"port"`
	DbName       string `toml:"db_name"`
	UserName     string `toml:"user_name"`
	Password     string `toml:"password"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifeTime  int    `toml:"max_life_time"`
}

type ThresholdConfig struct {
	BalanceEther   string `toml:"balance_ether"`
	MonitorMinutes uint64 `toml:"monitor_minutes"`
}

type EnvConfig struct {
	Port    string `toml:"port"`
	Version string `toml:"version"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
}
