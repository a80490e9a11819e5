package main

import (
	"errors"
	"fmt"
	"strings"

	"contract-kit/api"
	"contract-kit/chain"
	"contract-kit/config"
	"contract-kit/contract"
	"contract-kit/db"
	"contract-kit/registry"
	"contract-kit/schedule"
	"contract-kit/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "compile modules of the contracts directory",
	ArgsUsage: "<module> [module...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Usage: "artifacts file, stdout when empty"},
		&cli.BoolFlag{Name: "cache", Usage: "memoize compiler output in redis"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return errors.New("no module to compile")
		}
		conf := config.Config
		tree := contract.NewSourceTree(conf.Compiler)
		artifacts, err := tree.Compile(c.Context, compiler(conf, c.Bool("cache")), conf.Compiler.Optimize, c.Args().Slice())
		if err != nil {
			return err
		}
		return writeJSON(c.String("out"), artifacts)
	},
}

var deployCommand = &cli.Command{
	Name:      "deploy",
	Usage:     "deploy compiled artifacts, or compile modules and deploy them",
	ArgsUsage: "[module...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "artifacts", Usage: "artifacts file written by compile"},
		&cli.StringFlag{Name: "summary", Usage: "summary file, stdout when empty"},
		&cli.BoolFlag{Name: "record", Usage: "record deployments in mysql"},
		&cli.BoolFlag{Name: "cache", Usage: "memoize compiler output in redis"},
	},
	Action: func(c *cli.Context) error {
		conf := config.Config
		artifacts := map[string]contract.Artifact{}
		switch {
		case c.String("artifacts") != "":
			if err := readJSON(c.String("artifacts"), &artifacts); err != nil {
				return err
			}
		case c.NArg() > 0:
			var err error
			tree := contract.NewSourceTree(conf.Compiler)
			artifacts, err = tree.Compile(c.Context, compiler(conf, c.Bool("cache")), conf.Compiler.Optimize, c.Args().Slice())
			if err != nil {
				return err
			}
		default:
			return errors.New("nothing to deploy: pass modules or --artifacts")
		}

		client, err := dial(c.Context, conf)
		if err != nil {
			return err
		}
		defer client.Close()
		from, err := account(c.Context, conf, client)
		if err != nil {
			return err
		}

		ctx, cancel := receiptContext(c.Context, conf.Chain)
		defer cancel()
		instances, err := contract.NewDeployer(conf.Chain).DeployAll(ctx, from, artifacts, client)
		if err != nil {
			return err
		}

		deployments := registry.FromInstances(conf.Chain.Network, artifacts, instances)
		if c.Bool("record") {
			conn, err := db.InitMysql(conf.Mysql)
			if err != nil {
				return err
			}
			reg := registry.New(conn)
			if err := reg.InitTable(); err != nil {
				return err
			}
			if err := reg.Record(c.Context, deployments); err != nil {
				return err
			}
		}
		return writeJSON(c.String("summary"), registry.BuildSummary(deployments))
	},
}

var eventsCommand = &cli.Command{
	Name:  "events",
	Usage: "print the past events of a deployed contract",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "summary", Usage: "summary file", Required: true},
		&cli.StringFlag{Name: "name", Usage: "contract name", Required: true},
		&cli.StringFlag{Name: "event", Usage: "event name", Required: true},
		&cli.Uint64Flag{Name: "from", Usage: "first block"},
		&cli.Uint64Flag{Name: "to", Usage: "last block, latest when 0"},
	},
	Action: func(c *cli.Context) error {
		conf := config.Config
		summary, err := contract.LoadSummary(c.String("summary"))
		if err != nil {
			return err
		}
		client, err := dial(c.Context, conf)
		if err != nil {
			return err
		}
		defer client.Close()

		inst, ok := contract.GetContract(conf.Chain.Network, contract.Bind(client), c.String("name"), summary).Get()
		if !ok {
			return fmt.Errorf("%s is not deployed on %s", c.String("name"), conf.Chain.Network)
		}
		src, err := chain.PastEvents(c.Context, client, inst.ABI, inst.Address, c.Uint64("from"), c.Uint64("to"))
		if err != nil {
			return err
		}
		return writeJSON("", contract.Normalize(c.String("event"), src).Values)
	},
}

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "print the events of a deployed contract as they are emitted",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "summary", Usage: "summary file", Required: true},
		&cli.StringFlag{Name: "name", Usage: "contract name", Required: true},
		&cli.StringFlag{Name: "event", Usage: "event name", Required: true},
	},
	Action: func(c *cli.Context) error {
		conf := config.Config
		summary, err := contract.LoadSummary(c.String("summary"))
		if err != nil {
			return err
		}
		client, err := dial(c.Context, conf)
		if err != nil {
			return err
		}
		defer client.Close()

		inst, ok := contract.GetContract(conf.Chain.Network, contract.Bind(client), c.String("name"), summary).Get()
		if !ok {
			return fmt.Errorf("%s is not deployed on %s", c.String("name"), conf.Chain.Network)
		}
		err = chain.Watch(c.Context, client, inst.ABI, inst.Address, func(src contract.Source) {
			if v, ok := contract.Normalize(c.String("event"), src).Bare(); ok {
				_ = writeJSON("", v)
			}
		})
		if errors.Is(err, c.Context.Err()) {
			return nil
		}
		return err
	},
}

var balanceCommand = &cli.Command{
	Name:      "balance",
	Usage:     "print the balance of an address, the wallet address by default",
	ArgsUsage: "[address]",
	Action: func(c *cli.Context) error {
		conf := config.Config
		address := c.Args().First()
		if address == "" {
			address = conf.Wallet.Address
		}
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid address %q", address)
		}
		client, err := dial(c.Context, conf)
		if err != nil {
			return err
		}
		defer client.Close()
		balance, err := chain.GetBalance(c.Context, client, common.HexToAddress(address))
		if err != nil {
			return err
		}
		return writeJSON("", balance)
	},
}

var transferCommand = &cli.Command{
	Name:  "transfer",
	Usage: "send ether from the wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "to", Required: true},
		&cli.StringFlag{Name: "ether", Required: true},
	},
	Action: func(c *cli.Context) error {
		conf := config.Config
		if !common.IsHexAddress(c.String("to")) {
			return fmt.Errorf("invalid address %q", c.String("to"))
		}
		value, err := chain.EtherToWei(c.String("ether"))
		if err != nil {
			return err
		}
		client, err := dial(c.Context, conf)
		if err != nil {
			return err
		}
		defer client.Close()
		from, err := account(c.Context, conf, client)
		if err != nil {
			return err
		}

		ctx, cancel := receiptContext(c.Context, conf.Chain)
		defer cancel()
		receipt, err := chain.Transfer(ctx, contract.NewInvoker(conf.Chain), client, from, common.HexToAddress(c.String("to")), value)
		if err != nil {
			return err
		}
		return writeJSON("", receipt)
	},
}

var walletCommand = &cli.Command{
	Name:  "wallet",
	Usage: "manage the keystore of the deployer account",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "create a new account",
			Action: func(c *cli.Context) error {
				address, keyjson, err := wallet.Create(config.Config.Wallet.Password)
				if err != nil {
					return err
				}
				return saveKeystore(address, keyjson)
			},
		},
		{
			Name:      "add",
			Usage:     "import an account from its private key",
			ArgsUsage: "<private key>",
			Action: func(c *cli.Context) error {
				address, keyjson, err := wallet.Add(strings.TrimSpace(c.Args().First()), config.Config.Wallet.Password)
				if err != nil {
					return err
				}
				return saveKeystore(address, keyjson)
			},
		},
	},
}

func saveKeystore(address common.Address, keyjson []byte) error {
	if err := wallet.Save(config.Config.Wallet, keyjson); err != nil {
		return err
	}
	fmt.Println(address.Hex())
	return nil
}

var monitorCommand = &cli.Command{
	Name:  "monitor",
	Usage: "watch the wallet balance and warn when it runs low",
	Action: func(c *cli.Context) error {
		conf := config.Config
		if !common.IsHexAddress(conf.Wallet.Address) {
			return fmt.Errorf("invalid wallet address %q", conf.Wallet.Address)
		}
		client, err := dial(c.Context, conf)
		if err != nil {
			return err
		}
		defer client.Close()
		monitor, err := schedule.NewBalanceMonitor(client, common.HexToAddress(conf.Wallet.Address), conf.Threshold)
		if err != nil {
			return err
		}
		return schedule.Task(c.Context, monitor, conf.Threshold)
	},
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serve the deployment registry over http",
	Action: func(c *cli.Context) error {
		conf := config.Config
		conn, err := db.InitMysql(conf.Mysql)
		if err != nil {
			return err
		}
		reg := registry.New(conn)
		if err := reg.InitTable(); err != nil {
			return err
		}
		return api.Serve(c.Context, conf.Env, reg)
	},
}
