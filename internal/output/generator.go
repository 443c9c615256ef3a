package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"

	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/deploy"
	"github.com/compose-network/passkey-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"
)

const (
	fileName          = "output.yaml"
	contractsFileName = "contracts.json"

	// EntryPointName keys the entry point in contracts.json.
	EntryPointName = "EntryPoint"
)

type (
	Generator struct {
		dir    string
		logger *slog.Logger
	}

	// Paths lists the files written for one deployment.
	Paths struct {
		Output    string
		Contracts string
	}
)

func NewGenerator(dir string) *Generator {
	return &Generator{
		dir:    dir,
		logger: logger.Named("output_generator"),
	}
}

// Generate writes <dir>/<network>/output.yaml and merges the deployed
// addresses into <dir>/<network>/contracts.json. factoryABI may be empty
// when the factory was attached without artifacts.
func (g *Generator) Generate(result *deploy.Result, factoryABI string) (Paths, error) {
	if result == nil {
		return Paths{}, errors.New("no deployment result to record")
	}

	networkDir := filepath.Join(g.dir, result.Network)
	paths := Paths{
		Output:    filepath.Join(networkDir, fileName),
		Contracts: filepath.Join(networkDir, contractsFileName),
	}

	data, err := yaml.Marshal(NewModel(result, factoryABI))
	if err != nil {
		return Paths{}, fmt.Errorf("could not marshal output model. Err: '%w'", err)
	}
	if err := WriteBytes(paths.Output, data); err != nil {
		return Paths{}, fmt.Errorf("could not write output file. Err: '%w'", err)
	}

	record, err := g.mergeChainRecord(paths.Contracts, result)
	if err != nil {
		return Paths{}, err
	}
	if err := WriteJSON(paths.Contracts, record); err != nil {
		return Paths{}, fmt.Errorf("could not write %s. Err: '%w'", contractsFileName, err)
	}

	g.logger.
		With("output", paths.Output).
		With("contracts", paths.Contracts).
		Info("deployment records written")

	return paths, nil
}

// NewModel builds the output.yaml document for a deployment result.
func NewModel(result *deploy.Result, factoryABI string) *Model {
	factory := ContractConfig{Address: result.Factory}
	if result.FactoryTx != (common.Hash{}) {
		factory.TxHash = result.FactoryTx.Hex()
	}
	if factoryABI != "" {
		factory.ABI = SingleQuotedString(compactJSON(factoryABI))
	}

	return &Model{
		Network: NetworkConfig{
			Name:    result.Network,
			ChainID: result.ChainID.Int64(),
		},
		Deployer:   result.Deployer,
		EntryPoint: result.EntryPoint,
		Contracts: map[string]ContractConfig{
			string(contracts.ContractNameVerifier): {Address: result.Verifier},
			string(contracts.ContractNameFactory):  factory,
		},
		Account: AccountConfig{
			Address:   result.Account,
			PasskeyID: hexutil.Encode(result.Query.PasskeyID[:]),
			PubKeyX:   result.Query.PubKeyX.String(),
			PubKeyY:   result.Query.PubKeyY.String(),
			Salt:      result.Query.Salt.String(),
		},
	}
}

// mergeChainRecord keeps addresses recorded by earlier runs on the same chain.
// A record for a different chain id is replaced.
func (g *Generator) mergeChainRecord(path string, result *deploy.Result) (*ChainRecord, error) {
	chainID := result.ChainID.Int64()
	record := &ChainRecord{
		ChainInfo: ChainInfo{ChainID: chainID},
		Addresses: map[string]common.Address{},
	}

	var existing ChainRecord
	switch err := ReadJSON(path, &existing); {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("could not read existing %s. Err: '%w'", contractsFileName, err)
	case existing.ChainInfo.ChainID != chainID:
		g.logger.
			With("path", path).
			With("recorded_chain_id", existing.ChainInfo.ChainID).
			Warn("replacing contracts record of another chain")
	default:
		maps.Copy(record.Addresses, existing.Addresses)
	}

	record.Addresses[EntryPointName] = result.EntryPoint
	record.Addresses[string(contracts.ContractNameVerifier)] = result.Verifier
	record.Addresses[string(contracts.ContractNameFactory)] = result.Factory

	return record, nil
}

func compactJSON(jsonStr string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(jsonStr)); err != nil {
		return jsonStr
	}
	return buf.String()
}
