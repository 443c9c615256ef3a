package status

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/compose-network/passkey-deployer/internal/chain"
	"github.com/compose-network/passkey-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

type (
	// Checker inspects the chain state a deployment depends on
	Checker struct {
		backend chain.Backend
		logger  *slog.Logger
	}

	// CodeInfo reports whether contract code exists at an address.
	CodeInfo struct {
		Name     string
		Address  common.Address
		CodeSize int
		Err      error
	}

	// Report is the outcome of one status check.
	Report struct {
		Network   string
		ChainID   *big.Int
		Deployer  common.Address
		Balance   *big.Int
		Contracts []CodeInfo
	}

	// Target names an address whose code should be checked.
	Target struct {
		Name    string
		Address common.Address
	}
)

// NewChecker creates a new status checker
func NewChecker(backend chain.Backend) *Checker {
	return &Checker{
		backend: backend,
		logger:  logger.Named("status_checker"),
	}
}

// GetETHBalance gets ETH balance for an address
func (c *Checker) GetETHBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// GetCode reports the size of the code deployed at target.
func (c *Checker) GetCode(ctx context.Context, target Target) CodeInfo {
	info := CodeInfo{Name: target.Name, Address: target.Address}

	code, err := c.backend.CodeAt(ctx, target.Address, nil)
	if err != nil {
		info.Err = fmt.Errorf("failed to get code: %w", err)
		return info
	}
	info.CodeSize = len(code)

	return info
}

// Check collects the deployer balance and the code state of every target.
// Per-target failures are recorded in the report; only a failed balance query
// aborts the check.
func (c *Checker) Check(ctx context.Context, conn *chain.Connection, targets []Target) (*Report, error) {
	deployer := conn.Signer.Address()
	balance, err := c.GetETHBalance(ctx, deployer)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Network:  conn.Network.Name,
		ChainID:  conn.ChainID,
		Deployer: deployer,
		Balance:  balance,
	}
	for _, target := range targets {
		info := c.GetCode(ctx, target)
		if info.Err == nil && info.CodeSize == 0 {
			c.logger.
				With("name", target.Name).
				With("address", target.Address.Hex()).
				Warn("no contract code at address")
		}
		report.Contracts = append(report.Contracts, info)
	}

	return report, nil
}

// Missing returns the targets that have no code.
func (r *Report) Missing() []CodeInfo {
	var missing []CodeInfo
	for _, info := range r.Contracts {
		if info.Err == nil && info.CodeSize == 0 {
			missing = append(missing, info)
		}
	}

	return missing
}

// FormatETHBalance formats ETH balance for display
func FormatETHBalance(name string, address string, balance *big.Int, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: balance query failed (%v)", name, err)
	}

	eth := new(big.Float).Quo(
		new(big.Float).SetInt(balance),
		new(big.Float).SetInt(big.NewInt(1e18)),
	)

	return fmt.Sprintf("%s: %s balance %.4f ETH (%s wei)", name, address, eth, balance.String())
}

// FormatCode formats a code check for display
func FormatCode(info CodeInfo) string {
	switch {
	case info.Err != nil:
		return fmt.Sprintf("%s: code query failed for %s (%v)", info.Name, info.Address.Hex(), info.Err)
	case info.CodeSize == 0:
		return fmt.Sprintf("%s: no code at %s", info.Name, info.Address.Hex())
	default:
		return fmt.Sprintf("%s: %d bytes of code at %s", info.Name, info.CodeSize, info.Address.Hex())
	}
}
