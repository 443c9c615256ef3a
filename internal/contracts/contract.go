package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

type (
	ContractName string

	CompiledContract struct {
		ABI      abi.ABI
		RawABI   string
		Bytecode []byte
	}
)

const (
	ContractNameVerifier ContractName = "SimpleZkSessionAccountVerifier"
	ContractNameFactory  ContractName = "PasskeyZkAccountFactory"

	// MethodCounterfactualAddress predicts the address of a not yet created account.
	MethodCounterfactualAddress = "getCounterfactualAddress"

	contractsFileName = "contracts.json"
)

var Contracts = map[ContractName]struct{}{
	ContractNameVerifier: {},
	ContractNameFactory:  {},
}

const factoryABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_entryPoint","type":"address"},{"name":"_verifier","type":"address"}]},
	{"type":"function","name":"getCounterfactualAddress","stateMutability":"view","inputs":[{"name":"passkeyId","type":"bytes32"},{"name":"pubKeyX","type":"uint256"},{"name":"pubKeyY","type":"uint256"},{"name":"salt","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

// FactoryABI is the part of the factory interface the deployer relies on. It
// is enough to attach to a factory when no compiled artifacts are at hand.
func FactoryABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		panic("invalid embedded factory ABI: " + err.Error())
	}
	return parsed
}

// FactoryRawABI returns the JSON form of FactoryABI.
func FactoryRawABI() string {
	return factoryABI
}
