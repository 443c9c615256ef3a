package contracts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/compose-network/passkey-deployer/internal/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryABI(t *testing.T) {
	parsed := FactoryABI()

	method, ok := parsed.Methods[MethodCounterfactualAddress]
	require.True(t, ok)
	assert.True(t, method.IsConstant())
	require.Len(t, method.Inputs, 4)
	assert.Equal(t, "bytes32", method.Inputs[0].Type.String())
	assert.Equal(t, "uint256", method.Inputs[3].Type.String())
	require.Len(t, method.Outputs, 1)
	assert.Equal(t, "address", method.Outputs[0].Type.String())

	require.Len(t, parsed.Constructor.Inputs, 2)
}

func TestLoadCompiledContracts(t *testing.T) {
	dir := t.TempDir()
	path := ArtifactsPath(dir)

	data := `{
		"PasskeyZkAccountFactory": {"abi": ` + FactoryRawABI() + `, "bytecode": "0x6080"},
		"SimpleZkSessionAccountVerifier": {"abi": [], "bytecode": "6001"},
		"SomethingElse": {"abi": "not even an abi", "bytecode": "zz"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	compiled, err := LoadCompiledContracts(path)
	require.NoError(t, err)
	require.Len(t, compiled, 2)

	factory, err := Require(compiled, ContractNameFactory)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, factory.Bytecode)
	assert.Contains(t, factory.ABI.Methods, MethodCounterfactualAddress)

	verifier, err := Require(compiled, ContractNameVerifier)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01}, verifier.Bytecode)
}

func TestLoadCompiledContractsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCompiledContracts(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"PasskeyZkAccountFactory": {"abi": [], "bytecode": "0xabc"}}`), 0644))
	_, err = LoadCompiledContracts(bad)
	require.Error(t, err)
}

func TestRequire(t *testing.T) {
	compiled := map[ContractName]CompiledContract{
		ContractNameVerifier: {},
	}

	_, err := Require(compiled, ContractNameFactory)
	require.Error(t, err)

	_, err = Require(compiled, ContractNameVerifier)
	require.Error(t, err)
}

func TestSettingsArgs(t *testing.T) {
	settings := Settings{
		Version:          "0.8.21",
		OptimizerEnabled: true,
		OptimizerRuns:    1000000,
		ViaIR:            true,
		IncludePaths:     []string{"node_modules"},
	}

	assert.Equal(t, "ethereum/solc:0.8.21", settings.Image())
	assert.Equal(t, []string{
		"--combined-json", "abi,bin",
		"--base-path", "/sources",
		"--include-path", "/sources/node_modules",
		"--optimize", "--optimize-runs", "1000000",
		"--via-ir",
		"/sources/contracts/PasskeyZkAccountFactory.sol",
	}, settings.Args([]Source{{Name: ContractNameFactory, Path: "contracts/PasskeyZkAccountFactory.sol"}}))

	plain := Settings{Version: "0.8.21"}
	assert.Equal(t, []string{"--combined-json", "abi,bin", "--base-path", "/sources", "/sources/a.sol"},
		plain.Args([]Source{{Name: ContractNameVerifier, Path: "a.sol"}}))
}

type fakeRunner struct {
	pulled []string
	opts   docker.RunOptions
	output string
}

func (f *fakeRunner) EnsureImage(_ context.Context, imageName string) error {
	f.pulled = append(f.pulled, imageName)
	return nil
}

func (f *fakeRunner) Run(_ context.Context, opts docker.RunOptions) (string, error) {
	f.opts = opts
	return f.output, nil
}

func TestCompilerCompile(t *testing.T) {
	sourcesDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "compiled")

	abiString, err := json.Marshal("[]")
	require.NoError(t, err)

	runner := &fakeRunner{output: `{
		"contracts": {
			"contracts/PasskeyZkAccountFactory.sol:PasskeyZkAccountFactory": {"abi": ` + FactoryRawABI() + `, "bin": "6080"},
			"contracts/SimpleZkSessionAccountVerifier.sol:SimpleZkSessionAccountVerifier": {"abi": ` + string(abiString) + `, "bin": "6001"},
			"contracts/Lib.sol:Lib": {"abi": [], "bin": ""}
		},
		"version": "0.8.21+commit.d9974bed.Linux.g++"
	}`}

	compiler := NewCompiler(runner, sourcesDir, outputDir, Settings{Version: "0.8.21", OptimizerEnabled: true, OptimizerRuns: 200})
	path, err := compiler.Compile(t.Context(), []Source{
		{Name: ContractNameFactory, Path: "contracts/PasskeyZkAccountFactory.sol"},
		{Name: ContractNameVerifier, Path: "contracts/SimpleZkSessionAccountVerifier.sol"},
	})
	require.NoError(t, err)
	assert.Equal(t, ArtifactsPath(outputDir), path)

	assert.Equal(t, []string{"ethereum/solc:0.8.21"}, runner.pulled)
	assert.Equal(t, "ethereum/solc:0.8.21", runner.opts.Image)
	assert.Equal(t, "/sources", runner.opts.Volumes[sourcesDir])

	compiled, err := LoadCompiledContracts(path)
	require.NoError(t, err)
	require.Len(t, compiled, 2)
	assert.Equal(t, []byte{0x60, 0x80}, compiled[ContractNameFactory].Bytecode)
	assert.Equal(t, []byte{0x60, 0x01}, compiled[ContractNameVerifier].Bytecode)
}

func TestCompilerCompileMissingContract(t *testing.T) {
	runner := &fakeRunner{output: `{"contracts": {}}`}
	compiler := NewCompiler(runner, t.TempDir(), t.TempDir(), Settings{Version: "0.8.21"})

	_, err := compiler.Compile(t.Context(), []Source{{Name: ContractNameFactory, Path: "f.sol"}})
	require.ErrorContains(t, err, "missing from solc output")
}

func TestCompilerCompileRequiresSources(t *testing.T) {
	compiler := NewCompiler(&fakeRunner{}, filepath.Join(t.TempDir(), "nope"), t.TempDir(), Settings{Version: "0.8.21"})

	_, err := compiler.Compile(t.Context(), nil)
	require.Error(t, err)

	_, err = compiler.Compile(t.Context(), []Source{{Name: ContractNameFactory, Path: "f.sol"}})
	require.ErrorContains(t, err, "sources directory not found")
}
