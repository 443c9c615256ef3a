package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/contracts"
	"github.com/compose-network/passkey-deployer/internal/network"
	"github.com/compose-network/passkey-deployer/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFactoryCode answers every call with the low 20 bytes of keccak256(calldata).
const stubFactoryCode = "0x6028600c60003960286000f3" +
	"3660006000373660002073" +
	"ffffffffffffffffffffffffffffffffffffffff" +
	"1660005260206000f3"

func localConfig(t *testing.T) configs.Config {
	t.Helper()

	cfg := configs.MustDefaultConfig()
	cfg.Network.Name = network.LocalName
	cfg.Compiler.ArtifactsDir = t.TempDir()
	cfg.Deployment.OutputDir = t.TempDir()

	return cfg
}

func writeStubArtifacts(t *testing.T, dir string) {
	t.Helper()

	data := `{"PasskeyZkAccountFactory": {"abi": ` + contracts.FactoryRawABI() + `, "bytecode": "` + stubFactoryCode + `"}}`
	require.NoError(t, os.WriteFile(contracts.ArtifactsPath(dir), []byte(data), 0644))
}

func TestRenderNetworks(t *testing.T) {
	set := network.NewSet(map[string]network.Profile{
		"polygon":  {Name: "polygon", URL: "https://polygon-mumbai.g.alchemy.com/v2/secret-key", ChainID: 80001, Accounts: []string{"0x01"}},
		"gnosis":   {Name: "gnosis", URL: "https://rpc.gnosischain.com", Accounts: []string{"0x01"}},
		"optimism": {Name: "optimism", Accounts: []string{"0x01"}},
	})

	var buf bytes.Buffer
	require.NoError(t, renderNetworks(&buf, set))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Equal(t, []string{"local", "1337", "in-process"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"gnosis", "from", "endpoint", "rpc.gnosischain.com"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"optimism", "from", "endpoint", "unset"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"polygon", "80001", "polygon-mumbai.g.alchemy.com"}, strings.Fields(lines[4]))
	assert.NotContains(t, buf.String(), "secret-key")
}

func TestRunDeployLocal(t *testing.T) {
	cfg := localConfig(t)
	writeStubArtifacts(t, cfg.Compiler.ArtifactsDir)

	var buf bytes.Buffer
	require.NoError(t, runDeploy(t.Context(), &buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "network: local (chain id 1337)")
	assert.Contains(t, out, "deployer: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Contains(t, out, "verifier contract address: 0xCb4AcACe7De55D13e5979C4Ad4205f1fc818af1f")
	assert.Contains(t, out, "factory contract address: 0x")
	assert.Contains(t, out, "counterfactual account address: 0x")

	var record output.ChainRecord
	require.NoError(t, output.ReadJSON(filepath.Join(cfg.Deployment.OutputDir, "local", "contracts.json"), &record))
	assert.Equal(t, int64(1337), record.ChainInfo.ChainID)
	assert.Contains(t, record.Addresses, string(contracts.ContractNameFactory))

	_, err := os.Stat(filepath.Join(cfg.Deployment.OutputDir, "local", "output.yaml"))
	require.NoError(t, err)
}

func TestRunDeployWithoutArtifacts(t *testing.T) {
	cfg := localConfig(t)

	err := runDeploy(t.Context(), &bytes.Buffer{}, cfg)
	require.ErrorContains(t, err, "run the compile command first")
}

func TestRunPredict(t *testing.T) {
	cfg := localConfig(t)

	require.ErrorIs(t, runPredict(t.Context(), &bytes.Buffer{}, cfg), errFactoryRequired)

	cfg.Deployment.FactoryAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	err := runPredict(t.Context(), &bytes.Buffer{}, cfg)
	require.ErrorContains(t, err, "prediction on 'local' failed")
}

func TestRunStatusLocal(t *testing.T) {
	cfg := localConfig(t)

	var buf bytes.Buffer
	require.NoError(t, runStatus(t.Context(), &buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "local: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266 balance 10000.0000 ETH")
	assert.Contains(t, out, "EntryPoint: no code at 0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	assert.Contains(t, out, "SimpleZkSessionAccountVerifier: no code at 0xCb4AcACe7De55D13e5979C4Ad4205f1fc818af1f")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("network:\n  name: base\n  variant: generic\n"), 0644))
	t.Chdir(dir)

	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, DeclareFlags(cmd, v))
	require.NoError(t, cmd.PersistentFlags().Set("salt", "42"))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Network.Name)
	assert.Equal(t, "generic", cfg.Network.Variant)
	assert.Equal(t, "42", cfg.Deployment.Account.Salt)
	assert.Equal(t, "passkey1", cfg.Deployment.Account.PasskeyID)
	assert.Equal(t, 1000000, cfg.Compiler.Optimizer.Runs)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PASSKEY_TEST_FROM_FILE=file\nPASSKEY_TEST_PRESET=file\n"), 0644))

	t.Setenv("PASSKEY_TEST_PRESET", "process")
	t.Setenv("PASSKEY_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("PASSKEY_TEST_FROM_FILE"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "file", os.Getenv("PASSKEY_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("PASSKEY_TEST_PRESET"))

	require.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
	require.NoError(t, LoadEnvFile(""))
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(configs.MustDefaultConfig()))

	cfg := configs.MustDefaultConfig()
	cfg.Network.Variant = "staging"
	cfg.Deployment.Account.PasskeyID = strings.Repeat("p", 40)
	cfg.Deployment.Account.Salt = "1_000"

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "network.variant")
	assert.ErrorContains(t, err, "deployment.account: passkey id")
	assert.ErrorContains(t, err, "salt: '1_000' is not a base-10 integer")

	cfg = configs.MustDefaultConfig()
	cfg.Deployment.Verifier = ""
	require.ErrorContains(t, validateConfig(cfg), "deployment.verifier is required")
}

func TestResolveNetworksRejectsUnknownVariant(t *testing.T) {
	_, err := resolveNetworks(configs.Network{Variant: "staging"})
	require.ErrorContains(t, err, "network.variant")
}

func TestCompilerSettingsFromConfig(t *testing.T) {
	cfg := configs.MustDefaultConfig().Compiler

	settings := compilerSettings(cfg)
	assert.Equal(t, "ethereum/solc:0.8.21", settings.Image())
	assert.True(t, settings.ViaIR)
	assert.Equal(t, 1000000, settings.OptimizerRuns)

	sources := compilerSources(cfg)
	require.Len(t, sources, 2)
	assert.Equal(t, contracts.ContractNameVerifier, sources[0].Name)
	assert.Equal(t, contracts.ContractNameFactory, sources[1].Name)
}
