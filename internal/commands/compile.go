package commands

import (
	"fmt"
	"log/slog"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/docker"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the account contracts with the pinned solc image",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values.Compiler
		if err := cfg.Validate(); err != nil {
			return err
		}

		client, err := docker.New()
		if err != nil {
			return fmt.Errorf("failed to create docker client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				slog.With("err", err.Error()).Warn("failed to close docker client")
			}
		}()

		compiler := contracts.NewCompiler(client, cfg.SourcesDir, cfg.ArtifactsDir, compilerSettings(cfg))
		path, err := compiler.Compile(cmd.Context(), compilerSources(cfg))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "artifacts written to %s\n", path)

		return nil
	},
}

func compilerSettings(cfg configs.Compiler) contracts.Settings {
	return contracts.Settings{
		Version:          cfg.Version,
		OptimizerEnabled: cfg.Optimizer.Enabled,
		OptimizerRuns:    cfg.Optimizer.Runs,
		ViaIR:            cfg.ViaIR,
		IncludePaths:     cfg.IncludePaths,
	}
}

func compilerSources(cfg configs.Compiler) []contracts.Source {
	sources := make([]contracts.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, contracts.Source{Name: contracts.ContractName(src.Name), Path: src.Path})
	}
	return sources
}
