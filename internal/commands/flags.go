package commands

import (
	"github.com/compose-network/passkey-deployer/configs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | bool
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

func stringFlags(d configs.Config) []flagDef[string] {
	return []flagDef[string]{
		// Logging
		{"log-level", "log.level", d.Log.Level, "Log level (debug, info, warn, error)"},
		{"log-format", "log.format", d.Log.Format, "Log format (json or text)"},

		// Network
		{"network", "network.name", d.Network.Name, "Target network name"},
		{"network-variant", "network.variant", d.Network.Variant, "Environment layout for secrets (paymaster or generic)"},
		{"env-file", "network.env-file", d.Network.EnvFile, "Dotenv file loaded before resolving networks"},

		// Deployment
		{"entry-point", "deployment.entry-point", d.Deployment.EntryPoint, "EntryPoint contract address"},
		{"verifier", "deployment.verifier", d.Deployment.Verifier, "SimpleZkSessionAccountVerifier contract address"},
		{"factory-address", "deployment.factory-address", d.Deployment.FactoryAddress, "Existing PasskeyZkAccountFactory address (skips deployment)"},
		{"gas-price", "deployment.gas-price", d.Deployment.GasPrice, "Gas price in wei for the factory deployment"},
		{"output-dir", "deployment.output-dir", d.Deployment.OutputDir, "Directory for deployment records"},

		// Account query
		{"passkey-id", "deployment.account.passkey-id", d.Deployment.Account.PasskeyID, "Passkey id (label up to 31 bytes or 0x-prefixed bytes32)"},
		{"pub-key-x", "deployment.account.pub-key-x", d.Deployment.Account.PubKeyX, "Passkey public key X coordinate"},
		{"pub-key-y", "deployment.account.pub-key-y", d.Deployment.Account.PubKeyY, "Passkey public key Y coordinate"},
		{"salt", "deployment.account.salt", d.Deployment.Account.Salt, "Account salt"},

		// Compiler
		{"solc-version", "compiler.version", d.Compiler.Version, "solc version"},
		{"sources-dir", "compiler.sources-dir", d.Compiler.SourcesDir, "Solidity project root"},
		{"artifacts-dir", "compiler.artifacts-dir", d.Compiler.ArtifactsDir, "Directory holding contracts.json"},
	}
}

func intFlags(d configs.Config) []flagDef[int] {
	return []flagDef[int]{
		{"gas-limit", "deployment.gas-limit", d.Deployment.GasLimit, "Gas limit for the factory deployment (0 estimates)"},
		{"optimizer-runs", "compiler.optimizer.runs", d.Compiler.Optimizer.Runs, "solc optimizer runs"},
	}
}

func boolFlags(d configs.Config) []flagDef[bool] {
	return []flagDef[bool]{
		{"optimizer", "compiler.optimizer.enabled", d.Compiler.Optimizer.Enabled, "Enable the solc optimizer"},
		{"via-ir", "compiler.via-ir", d.Compiler.ViaIR, "Compile through the IR pipeline"},
	}
}

// DeclareFlags declares every configuration flag on cmd's persistent flags
// and binds it to v. Flag defaults come from the embedded configuration.
func DeclareFlags(cmd *cobra.Command, v *viper.Viper) error {
	defaults, err := configs.DefaultConfig()
	if err != nil {
		return err
	}

	if err := declareFlags(cmd, v, stringFlags(defaults)); err != nil {
		return err
	}
	if err := declareFlags(cmd, v, intFlags(defaults)); err != nil {
		return err
	}
	return declareFlags(cmd, v, boolFlags(defaults))
}

// declareFlags declares multiple flags and binds them to viper configuration keys.
func declareFlags[T flagType](cmd *cobra.Command, v *viper.Viper, flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(cmd, v, flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a single flag and binds it to a viper configuration key.
// The type parameter T determines the flag type (string, int, or bool).
func declareFlag[T flagType](cmd *cobra.Command, v *viper.Viper, flagName, viperKey string, defaultValue T, description string) error {
	switch value := any(defaultValue).(type) {
	case string:
		cmd.PersistentFlags().String(flagName, value, description)
	case int:
		cmd.PersistentFlags().Int(flagName, value, description)
	case bool:
		cmd.PersistentFlags().Bool(flagName, value, description)
	}
	return v.BindPFlag(viperKey, cmd.PersistentFlags().Lookup(flagName))
}
