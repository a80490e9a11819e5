package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contract-kit/config"
	"contract-kit/log"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

var ErrUnknownNetwork = errors.New("unknown network")

// ProviderURLs maps every supported network to its node URL.
func ProviderURLs(conf config.ChainConfig) map[string]string {
	ganache := conf.GanacheUrl
	if ganache == "" {
		ganache = config.DefaultGanacheUrl
	}
	urls := map[string]string{"ganache": ganache}
	for _, network := range []string{"rinkeby", "ropsten", "kovan", "mainnet"} {
		urls[network] = fmt.Sprintf("https://%s.infura.io/v3/%s", network, conf.InfuraApiKey)
	}
	return urls
}

// ProviderURL is the node URL of the configured network.
func ProviderURL(conf config.ChainConfig) (string, error) {
	network := conf.Network
	if network == "" {
		network = config.DefaultNetwork
	}
	url, ok := ProviderURLs(conf)[network]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownNetwork, network)
	}
	return url, nil
}

// Dial 连接配置的网络，失败后每 DialRetry 秒重试一次，直到 ctx 结束
func Dial(ctx context.Context, conf config.ChainConfig) (*ethclient.Client, error) {
	url, err := ProviderURL(conf)
	if err != nil {
		return nil, err
	}
	retry := time.Duration(conf.DialRetry) * time.Second
	if retry <= 0 {
		retry = 3 * time.Second
	}

	for {
		client, err := ethclient.DialContext(ctx, url)
		if err == nil {
			// http 连接是惰性的，查一次 chain id 确认节点可用
			if _, err = client.ChainID(ctx); err == nil {
				return client, nil
			}
			client.Close()
		}
		log.Logger.Warn("dial retry", zap.String("network", conf.Network), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry):
		}
	}
}
