package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"contract-kit/config"
	"contract-kit/log"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "contract-kit",
		Usage: "compile, deploy and talk to solidity contracts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "toml configuration file",
				Value:   "configs/config.toml",
				EnvVars: []string{"CONTRACT_KIT_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			path := c.String("config")
			if _, err := os.Stat(path); err != nil {
				// 没有配置文件时只用默认值和环境变量
				path = ""
			}
			conf, err := config.Init(path)
			if err != nil {
				return err
			}
			log.Init(conf.Log)
			return nil
		},
		After: func(c *cli.Context) error {
			_ = log.Logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			compileCommand,
			deployCommand,
			eventsCommand,
			watchCommand,
			balanceCommand,
			transferCommand,
			walletCommand,
			monitorCommand,
			serveCommand,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Logger.Error("contract-kit", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
