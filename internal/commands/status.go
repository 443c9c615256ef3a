package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/output"
	"github.com/compose-network/passkey-deployer/internal/status"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deployer balance and which configured contracts have code",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateConfig(configs.Values); err != nil {
			return err
		}

		return runStatus(cmd.Context(), cmd.OutOrStdout(), configs.Values)
	},
}

func runStatus(ctx context.Context, w io.Writer, cfg configs.Config) error {
	conn, err := connect(ctx, cfg.Network)
	if err != nil {
		return err
	}
	defer conn.Close()

	targets := []status.Target{
		{Name: output.EntryPointName, Address: common.HexToAddress(cfg.Deployment.EntryPoint)},
		{Name: string(contracts.ContractNameVerifier), Address: common.HexToAddress(cfg.Deployment.Verifier)},
	}
	if cfg.Deployment.FactoryAddress != "" {
		targets = append(targets, status.Target{
			Name:    string(contracts.ContractNameFactory),
			Address: common.HexToAddress(cfg.Deployment.FactoryAddress),
		})
	}

	report, err := status.NewChecker(conn.Backend).Check(ctx, conn, targets)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, status.FormatETHBalance(report.Network, report.Deployer.Hex(), report.Balance, nil))
	for _, info := range report.Contracts {
		fmt.Fprintln(w, status.FormatCode(info))
	}

	return nil
}
