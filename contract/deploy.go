package contract

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"contract-kit/config"
	"contract-kit/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Artifact is one compiled contract.
type Artifact struct {
	Interface string `json:"interface"` // ABI as JSON text
	Bytecode  string `json:"bytecode"`  // hex, with or without 0x
}

// deployable is an artifact ready to be submitted.
type deployable struct {
	abi  abi.ABI
	code []byte
}

// prepare parses the artifact. A nil result with a nil error means the
// artifact has no bytecode (interface, abstract contract) and is skipped.
func prepare(artifact Artifact) (*deployable, error) {
	contractABI, err := ParseABI(artifact.Interface)
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	hex := strings.TrimPrefix(strings.TrimSpace(artifact.Bytecode), "0x")
	if hex == "" {
		return nil, nil
	}
	code, err := hexutil.Decode("0x" + hex)
	if err != nil {
		return nil, fmt.Errorf("decode bytecode: %w", err)
	}
	return &deployable{abi: contractABI, code: code}, nil
}

// Deployer turns artifacts into live instances.
type Deployer struct {
	conf config.ChainConfig
}

func NewDeployer(conf config.ChainConfig) *Deployer {
	return &Deployer{conf: conf}
}

// Deploy submits artifact from account and waits until the contract is
// mined. Artifacts without bytecode are skipped with None.
func (d *Deployer) Deploy(ctx context.Context, account Account, artifact Artifact, client Client) (Option[*Instance], error) {
	dep, err := prepare(artifact)
	if err != nil {
		return None[*Instance](), err
	}
	if dep == nil {
		log.Logger.Info("skip artifact without bytecode")
		return None[*Instance](), nil
	}
	inst, err := d.deploy(ctx, account, dep, client, nil)
	if err != nil {
		return None[*Instance](), err
	}
	return Some(inst), nil
}

func (d *Deployer) deploy(ctx context.Context, account Account, dep *deployable, client Client, nonce *big.Int) (*Instance, error) {
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: account.Address, Data: dep.code})
	if err != nil {
		return nil, err
	}
	price, err := GweiToWei(d.conf.GasPriceGwei)
	if err != nil {
		return nil, err
	}

	opts := &bind.TransactOpts{
		From:     account.Address,
		Signer:   account.Signer,
		Nonce:    nonce,
		GasLimit: gas,
		GasPrice: price,
		Context:  ctx,
	}
	address, tx, _, err := bind.DeployContract(opts, dep.abi, dep.code, client)
	if err != nil {
		log.Logger.Error("deploy contract failed", zap.String("from", account.Address.Hex()), zap.Error(err))
		return nil, err
	}
	if _, err := bind.WaitDeployed(ctx, client, tx); err != nil {
		return nil, err
	}

	log.Logger.Info("contract deployed",
		zap.String("address", address.Hex()),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("gas", gas))

	inst := NewInstance(dep.abi, address, client)
	inst.TxHash = tx.Hash()
	return inst, nil
}

// DeployAll deploys every artifact concurrently and returns the instances
// under their artifact names. Skipped artifacts are absent from the result;
// any failed deployment fails the whole batch.
//
// Nonces are taken from the pending nonce of account and handed out in name
// order before the fan out, so the concurrent submissions do not collide.
func (d *Deployer) DeployAll(ctx context.Context, account Account, artifacts map[string]Artifact, client Client) (map[string]*Instance, error) {
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]*deployable, len(names))
	for i, name := range names {
		dep, err := prepare(artifacts[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if dep == nil {
			log.Logger.Info("skip artifact without bytecode", zap.String("name", name))
		}
		deps[i] = dep
	}

	next, err := client.PendingNonceAt(ctx, account.Address)
	if err != nil {
		return nil, err
	}

	instances := make([]*Instance, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, dep := range deps {
		if dep == nil {
			continue
		}
		nonce := new(big.Int).SetUint64(next)
		next++
		g.Go(func() error {
			inst, err := d.deploy(gctx, account, dep, client, nonce)
			if err != nil {
				return err
			}
			instances[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Instance, len(names))
	for i, name := range names {
		if instances[i] != nil {
			out[name] = instances[i]
		}
	}
	return out, nil
}
