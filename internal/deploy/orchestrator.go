package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/compose-network/passkey-deployer/internal/chain"
	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultGasPrice is the legacy gas price used for the factory deployment (100 gwei).
var DefaultGasPrice = big.NewInt(10e10)

var (
	ErrInvalidState     = errors.New("deployment step out of order")
	ErrDeploymentFailed = errors.New("factory deployment transaction failed")
)

type (
	// State tracks how far a deployment has progressed. Transitions are
	// strictly forward: Unbound → VerifierBound → FactoryDeployed → AddressComputed.
	State int

	Options struct {
		// GasPrice overrides the legacy gas price of the factory deployment.
		GasPrice *big.Int
		// GasLimit, when non-zero, skips gas estimation.
		GasLimit uint64
	}

	// Plan lists the inputs of one full run. A non-zero Factory attaches to
	// an existing factory instead of deploying a new one.
	Plan struct {
		EntryPoint common.Address
		Verifier   common.Address
		Factory    common.Address
		Query      Query
	}

	Result struct {
		Network    string
		ChainID    *big.Int
		Deployer   common.Address
		EntryPoint common.Address
		Verifier   common.Address
		Factory    common.Address
		FactoryTx  common.Hash
		Deployed   bool
		Query      Query
		Account    common.Address
	}

	// Orchestrator runs the deployment sequence on one connection. It is not
	// safe for concurrent use.
	Orchestrator struct {
		conn        *chain.Connection
		factory     contracts.CompiledContract
		opts        Options
		state       State
		entryPoint  common.Address
		verifier    common.Address
		factoryAddr common.Address
		factoryTx   *types.Transaction
		bound       *bind.BoundContract
		logger      *slog.Logger
	}
)

const (
	StateUnbound State = iota
	StateVerifierBound
	StateFactoryDeployed
	StateAddressComputed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateVerifierBound:
		return "verifier-bound"
	case StateFactoryDeployed:
		return "factory-deployed"
	case StateAddressComputed:
		return "address-computed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// NewOrchestrator creates an orchestrator. factory carries the ABI and
// bytecode used by DeployFactory; an empty ABI falls back to the static
// factory interface, which is enough for AttachFactory.
func NewOrchestrator(conn *chain.Connection, factory contracts.CompiledContract, opts Options) *Orchestrator {
	if opts.GasPrice == nil {
		opts.GasPrice = DefaultGasPrice
	}
	if len(factory.ABI.Methods) == 0 {
		factory.ABI = contracts.FactoryABI()
	}

	return &Orchestrator{
		conn:    conn,
		factory: factory,
		opts:    opts,
		state:   StateUnbound,
		logger:  logger.Named("deploy_orchestrator").With("network", conn.Network.Name),
	}
}

// State returns the current deployment state.
func (o *Orchestrator) State() State {
	return o.state
}

// FactoryTransaction returns the deployment transaction, nil when the factory was attached.
func (o *Orchestrator) FactoryTransaction() *types.Transaction {
	return o.factoryTx
}

// BindVerifier references the verifier at addr. No transaction is sent and
// the address is not checked: a missing contract only surfaces once something
// calls into it.
func (o *Orchestrator) BindVerifier(addr common.Address) error {
	if err := o.expect(StateUnbound); err != nil {
		return err
	}

	o.verifier = addr
	o.state = StateVerifierBound
	o.logger.With("address", addr.Hex()).Info("verifier contract bound")

	return nil
}

// DeployFactory deploys the factory with (entryPoint, verifier) constructor
// arguments and blocks until the deployment is included.
func (o *Orchestrator) DeployFactory(ctx context.Context, entryPoint common.Address) (common.Address, error) {
	if err := o.expect(StateVerifierBound); err != nil {
		return common.Address{}, err
	}
	if len(o.factory.Bytecode) == 0 {
		return common.Address{}, fmt.Errorf("no bytecode for %s", contracts.ContractNameFactory)
	}

	auth, err := o.conn.TransactOpts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	auth.GasPrice = o.opts.GasPrice
	auth.GasLimit = o.opts.GasLimit

	o.logger.
		With("deployer", auth.From.Hex()).
		With("entry_point", entryPoint.Hex()).
		With("gas_price", o.opts.GasPrice).
		Info("deploying factory contract")

	address, tx, bound, err := bind.DeployContract(auth, o.factory.ABI, o.factory.Bytecode, o.conn.Backend, entryPoint, o.verifier)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy contract: %w", err)
	}

	o.logger.
		With("address", address.Hex()).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	receipt, err := bind.WaitMined(ctx, o.conn.Backend, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to wait for transaction: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("%w: status %d, tx %s", ErrDeploymentFailed, receipt.Status, tx.Hash().Hex())
	}

	o.entryPoint = entryPoint
	o.factoryAddr = address
	o.factoryTx = tx
	o.bound = bound
	o.state = StateFactoryDeployed
	o.logger.
		With("address", address.Hex()).
		With("block", receipt.BlockNumber).
		Info("factory contract deployed")

	return address, nil
}

// AttachFactory uses an already deployed factory instead of deploying one.
func (o *Orchestrator) AttachFactory(addr common.Address) error {
	if err := o.expect(StateUnbound, StateVerifierBound); err != nil {
		return err
	}

	o.factoryAddr = addr
	o.bound = bind.NewBoundContract(addr, o.factory.ABI, o.conn.Backend, o.conn.Backend, o.conn.Backend)
	o.state = StateFactoryDeployed
	o.logger.With("address", addr.Hex()).Info("factory contract attached")

	return nil
}

// PredictAddress asks the factory for the address the account described by
// q will occupy. The call does not change state; it may be repeated and
// always yields the same address for the same factory and query.
func (o *Orchestrator) PredictAddress(ctx context.Context, q Query) (common.Address, error) {
	if err := o.expect(StateFactoryDeployed, StateAddressComputed); err != nil {
		return common.Address{}, err
	}

	var predicted common.Address
	callOpts := &bind.CallOpts{Context: ctx}
	err := o.bound.Call(callOpts, &[]interface{}{&predicted}, contracts.MethodCounterfactualAddress,
		q.PasskeyID, q.PubKeyX, q.PubKeyY, q.Salt)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to call %s: %w", contracts.MethodCounterfactualAddress, err)
	}

	o.state = StateAddressComputed
	o.logger.
		With("address", predicted.Hex()).
		With("salt", q.Salt).
		Info("counterfactual account address computed")

	return predicted, nil
}

// Run executes the whole sequence. The first failure aborts the run; nothing
// already deployed is rolled back.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) (*Result, error) {
	o.logger.With("deployer", o.conn.Signer.Address().Hex()).Info("starting passkey account deployment")

	if err := o.BindVerifier(plan.Verifier); err != nil {
		return nil, err
	}

	deployed := plan.Factory == (common.Address{})
	if deployed {
		if _, err := o.DeployFactory(ctx, plan.EntryPoint); err != nil {
			return nil, err
		}
	} else {
		if err := o.AttachFactory(plan.Factory); err != nil {
			return nil, err
		}
		o.entryPoint = plan.EntryPoint
	}

	account, err := o.PredictAddress(ctx, plan.Query)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Network:    o.conn.Network.Name,
		ChainID:    o.conn.ChainID,
		Deployer:   o.conn.Signer.Address(),
		EntryPoint: o.entryPoint,
		Verifier:   o.verifier,
		Factory:    o.factoryAddr,
		Deployed:   deployed,
		Query:      plan.Query,
		Account:    account,
	}
	if o.factoryTx != nil {
		result.FactoryTx = o.factoryTx.Hash()
	}

	return result, nil
}

func (o *Orchestrator) expect(allowed ...State) error {
	for _, s := range allowed {
		if o.state == s {
			return nil
		}
	}

	return fmt.Errorf("%w: in state %s, expected one of %v", ErrInvalidState, o.state, allowed)
}
