package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ArtifactsPath returns the contracts.json location inside dir.
func ArtifactsPath(dir string) string {
	return filepath.Join(dir, contractsFileName)
}

// LoadCompiledContracts loads compiled contracts from a contracts.json file.
func LoadCompiledContracts(path string) (map[ContractName]CompiledContract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compiled contracts: %w", err)
	}

	return parseContracts(data)
}

// parseContracts parses contract JSON data into CompiledContract map
func parseContracts(data []byte) (map[ContractName]CompiledContract, error) {
	var result map[string]struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode string          `json:"bytecode"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse compiled contracts: %w", err)
	}

	loadedContracts := make(map[ContractName]CompiledContract)

	for name, contract := range result {
		if _, ok := Contracts[ContractName(name)]; !ok {
			continue
		}

		parsedABI, err := abi.JSON(strings.NewReader(string(contract.ABI)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
		}

		bytecode, err := hexutil.Decode("0x" + strings.TrimPrefix(strings.TrimSpace(contract.Bytecode), "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode bytecode for %s: %w", name, err)
		}

		loadedContracts[ContractName(name)] = CompiledContract{
			ABI:      parsedABI,
			RawABI:   string(contract.ABI),
			Bytecode: bytecode,
		}
	}

	return loadedContracts, nil
}

// Require returns the named contract, failing when it is missing or has no bytecode.
func Require(compiled map[ContractName]CompiledContract, name ContractName) (CompiledContract, error) {
	contract, ok := compiled[name]
	if !ok {
		return CompiledContract{}, fmt.Errorf("contract %s not found in compiled artifacts", name)
	}
	if len(contract.Bytecode) == 0 {
		return CompiledContract{}, fmt.Errorf("contract %s has no bytecode", name)
	}

	return contract, nil
}
