package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/compose-network/passkey-deployer/internal/logger"
	"github.com/compose-network/passkey-deployer/internal/network"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
)

var (
	ErrMissingEndpoint = errors.New("network has no RPC endpoint")
	ErrChainIDMismatch = errors.New("endpoint chain id does not match network profile")
)

type (
	// Backend is everything the deployer needs from a chain client.
	Backend interface {
		bind.ContractBackend
		bind.DeployBackend
		ChainID(ctx context.Context) (*big.Int, error)
		BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	}

	// Connection is a live client bound to one network and its signer.
	Connection struct {
		Network network.Profile
		Backend Backend
		ChainID *big.Int
		Signer  *Signer
		close   func()
	}

	// automineClient commits a block after every accepted transaction so that
	// receipts become available immediately on the local network.
	automineClient struct {
		simulated.Client
		backend *simulated.Backend
	}
)

// localFunding is the genesis balance of the local development signer.
var localFunding = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18))

// Connect dials the profile's endpoint, or starts the in-process chain for the
// local network, and parses the first signer account.
func Connect(ctx context.Context, profile network.Profile) (*Connection, error) {
	log := logger.Named("chain").With("network", profile.Name)

	if len(profile.Accounts) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNoSigner, profile.Name)
	}

	signer, err := NewSigner(profile.Accounts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid signer for network '%s': %w", profile.Name, err)
	}

	if profile.IsLocal() {
		log.Debug("starting in-process local chain")
		return NewLocalConnection(signer, types.GenesisAlloc{
			signer.Address(): {Balance: localFunding},
		}), nil
	}

	return dial(ctx, log, profile, signer)
}

// NewLocalConnection starts an in-process chain with the given genesis
// allocation. Its chain id is always network.LocalChainID.
func NewLocalConnection(signer *Signer, alloc types.GenesisAlloc) *Connection {
	backend := simulated.NewBackend(alloc)

	return &Connection{
		Network: network.LocalProfile(),
		Backend: &automineClient{Client: backend.Client(), backend: backend},
		ChainID: big.NewInt(network.LocalChainID),
		Signer:  signer,
		close: func() {
			_ = backend.Close()
		},
	}
}

func dial(ctx context.Context, log *slog.Logger, profile network.Profile, signer *Signer) (*Connection, error) {
	if profile.URL == "" {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingEndpoint, profile.Name)
	}

	log.Info("dialing the network RPC")
	client, err := ethclient.DialContext(ctx, profile.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to network '%s': %w", profile.Name, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if profile.ChainID != 0 && chainID.Cmp(big.NewInt(profile.ChainID)) != 0 {
		client.Close()
		return nil, fmt.Errorf("%w: network '%s' expects %d, endpoint reports %s", ErrChainIDMismatch, profile.Name, profile.ChainID, chainID)
	}

	log.With("chain_id", chainID).Info("chain ID was fetched")

	return &Connection{
		Network: profile,
		Backend: client,
		ChainID: chainID,
		Signer:  signer,
		close:   client.Close,
	}, nil
}

// TransactOpts returns signing options for this connection's chain.
func (c *Connection) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return c.Signer.TransactOpts(ctx, c.ChainID)
}

// Close releases the underlying client.
func (c *Connection) Close() {
	if c.close != nil {
		c.close()
		c.close = nil
	}
}

func (c *automineClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.backend.Commit()

	return nil
}
