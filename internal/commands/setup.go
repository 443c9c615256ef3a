package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/chain"
	"github.com/compose-network/passkey-deployer/internal/deploy"
	"github.com/compose-network/passkey-deployer/internal/network"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Register declares the configuration flags on root and attaches every subcommand.
func Register(root *cobra.Command, v *viper.Viper) error {
	if err := DeclareFlags(root, v); err != nil {
		return err
	}

	root.AddCommand(networksCmd, deployCmd, predictCmd, statusCmd, compileCmd)

	return nil
}

// LoadConfig layers config.yaml (next to the executable, in . or ./configs)
// over the embedded defaults and decodes the result. Bound flags win over both.
func LoadConfig(v *viper.Viper) (configs.Config, error) {
	if err := configs.SetDefaults(v); err != nil {
		return configs.Config{}, err
	}

	v.SetConfigName("config")
	if execPath, err := os.Executable(); err == nil {
		v.AddConfigPath(filepath.Dir(execPath))
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return configs.Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Debug("no config file found, will rely on flags and defaults")
	} else {
		slog.With("config_file", v.ConfigFileUsed()).Debug("config file loaded")
	}

	var cfg configs.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return configs.Config{}, fmt.Errorf("unable to decode application config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile seeds the process environment from a dotenv file. Variables
// already set are kept; a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.With("path", path).Debug("no env file found")
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}

	slog.With("path", path).Debug("env file loaded")

	return nil
}

// validateConfig runs the configuration checks and parses the values that
// only the deployment packages understand.
func validateConfig(cfg configs.Config) error {
	var errs []error

	if _, err := network.ParseVariant(cfg.Network.Variant); err != nil {
		errs = append(errs, fmt.Errorf("network.variant: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := accountQuery(cfg.Deployment.Account); err != nil {
		errs = append(errs, fmt.Errorf("deployment.account: %w", err))
	}

	return errors.Join(errs...)
}

func accountQuery(a configs.Account) (deploy.Query, error) {
	return deploy.NewQuery(a.PasskeyID, a.PubKeyX, a.PubKeyY, a.Salt)
}

func resolveNetworks(cfg configs.Network) (network.Set, error) {
	variant, err := network.ParseVariant(cfg.Variant)
	if err != nil {
		return network.Set{}, fmt.Errorf("network.variant: %w", err)
	}

	resolver, err := network.NewResolver(variant)
	if err != nil {
		return network.Set{}, err
	}

	return resolver.ResolveSet(), nil
}

func connect(ctx context.Context, cfg configs.Network) (*chain.Connection, error) {
	set, err := resolveNetworks(cfg)
	if err != nil {
		return nil, err
	}

	profile, err := set.Lookup(cfg.Name)
	if err != nil {
		return nil, err
	}

	return chain.Connect(ctx, profile)
}
