package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/commands"
	"github.com/compose-network/passkey-deployer/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "passkey-deployer"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Deploys the passkey ZK account factory and predicts account addresses",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := commands.LoadConfig(viper.GetViper())
		if err != nil {
			const errMsg = "unable to load application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}
		configs.Values = cfg

		logger.Initialize(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)

		if err := commands.LoadEnvFile(cfg.Network.EnvFile); err != nil {
			return err
		}

		slog.With("network", cfg.Network.Name).With("variant", cfg.Network.Variant).Debug("configuration loaded")

		return nil
	},
}

func main() {
	if err := commands.Register(rootCmd, viper.GetViper()); err != nil {
		slog.With("err", err.Error()).Error("failed to declare flags")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		stop()
		os.Exit(1)
	}
}
