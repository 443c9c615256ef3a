package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/deploy"
	"github.com/compose-network/passkey-deployer/internal/output"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the passkey account factory and compute the account address",
	Long: `Binds the configured verifier, deploys PasskeyZkAccountFactory(entryPoint, verifier)
unless deployment.factory-address is set, and prints the counterfactual address of
the configured passkey account. The local network runs in-process and is discarded
when the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting deploy command. Validating config")

		if err := validateConfig(configs.Values); err != nil {
			return err
		}

		return runDeploy(cmd.Context(), cmd.OutOrStdout(), configs.Values)
	},
}

func runDeploy(ctx context.Context, w io.Writer, cfg configs.Config) error {
	d := cfg.Deployment

	query, err := accountQuery(d.Account)
	if err != nil {
		return err
	}
	gasPrice, err := d.GasPriceWei()
	if err != nil {
		return err
	}

	plan := deploy.Plan{
		EntryPoint: common.HexToAddress(d.EntryPoint),
		Verifier:   common.HexToAddress(d.Verifier),
		Query:      query,
	}

	var factory contracts.CompiledContract
	if d.FactoryAddress != "" {
		plan.Factory = common.HexToAddress(d.FactoryAddress)
	} else {
		factory, err = loadFactory(cfg.Compiler.ArtifactsDir)
		if err != nil {
			return err
		}
	}

	conn, err := connect(ctx, cfg.Network)
	if err != nil {
		return err
	}
	defer conn.Close()

	orchestrator := deploy.NewOrchestrator(conn, factory, deploy.Options{
		GasPrice: gasPrice,
		GasLimit: uint64(d.GasLimit),
	})

	result, err := orchestrator.Run(ctx, plan)
	if err != nil {
		return fmt.Errorf("deployment on '%s' failed: %w", conn.Network.Name, err)
	}

	printResult(w, result)

	factoryABI := factory.RawABI
	if factoryABI == "" {
		factoryABI = contracts.FactoryRawABI()
	}
	if _, err := output.NewGenerator(d.OutputDir).Generate(result, factoryABI); err != nil {
		return err
	}

	return nil
}

func loadFactory(artifactsDir string) (contracts.CompiledContract, error) {
	compiled, err := contracts.LoadCompiledContracts(contracts.ArtifactsPath(artifactsDir))
	if err != nil {
		return contracts.CompiledContract{}, fmt.Errorf("could not load compiled contracts, run the compile command first: %w", err)
	}

	return contracts.Require(compiled, contracts.ContractNameFactory)
}

func printResult(w io.Writer, result *deploy.Result) {
	fmt.Fprintf(w, "network: %s (chain id %s)\n", result.Network, result.ChainID)
	fmt.Fprintf(w, "deployer: %s\n", result.Deployer.Hex())
	fmt.Fprintf(w, "verifier contract address: %s\n", result.Verifier.Hex())
	if result.Deployed {
		fmt.Fprintf(w, "factory contract address: %s (tx %s)\n", result.Factory.Hex(), result.FactoryTx.Hex())
	} else {
		fmt.Fprintf(w, "factory contract address: %s (existing)\n", result.Factory.Hex())
	}
	fmt.Fprintf(w, "counterfactual account address: %s\n", result.Account.Hex())
}
