package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/deploy"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var errFactoryRequired = errors.New("deployment.factory-address is required")

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Query an existing factory for the counterfactual account address",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateConfig(configs.Values); err != nil {
			return err
		}

		return runPredict(cmd.Context(), cmd.OutOrStdout(), configs.Values)
	},
}

func runPredict(ctx context.Context, w io.Writer, cfg configs.Config) error {
	d := cfg.Deployment
	if d.FactoryAddress == "" {
		return errFactoryRequired
	}

	query, err := accountQuery(d.Account)
	if err != nil {
		return err
	}

	conn, err := connect(ctx, cfg.Network)
	if err != nil {
		return err
	}
	defer conn.Close()

	orchestrator := deploy.NewOrchestrator(conn, contracts.CompiledContract{}, deploy.Options{})
	if err := orchestrator.AttachFactory(common.HexToAddress(d.FactoryAddress)); err != nil {
		return err
	}

	account, err := orchestrator.PredictAddress(ctx, query)
	if err != nil {
		return fmt.Errorf("prediction on '%s' failed: %w", conn.Network.Name, err)
	}

	fmt.Fprintf(w, "counterfactual account address: %s\n", account.Hex())

	return nil
}
