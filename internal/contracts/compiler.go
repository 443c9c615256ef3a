package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/compose-network/passkey-deployer/internal/docker"
	"github.com/compose-network/passkey-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	solcImageRepository = "ethereum/solc"
	containerSourcesDir = "/sources"
)

type (
	// ContainerRunner runs one-shot containers. *docker.Client implements it.
	ContainerRunner interface {
		EnsureImage(ctx context.Context, imageName string) error
		Run(ctx context.Context, opts docker.RunOptions) (string, error)
	}

	// Settings mirrors the solc settings the contracts are built with.
	Settings struct {
		Version          string
		OptimizerEnabled bool
		OptimizerRuns    int
		ViaIR            bool
		IncludePaths     []string
	}

	// Source points a contract name at its file relative to the sources dir.
	Source struct {
		Name ContractName
		Path string
	}

	// Compiler compiles Solidity contracts with a pinned solc container
	Compiler struct {
		runner     ContainerRunner
		sourcesDir string
		outputDir  string
		settings   Settings
		logger     *slog.Logger
	}
)

// NewCompiler creates a new contract compiler
func NewCompiler(runner ContainerRunner, sourcesDir, outputDir string, settings Settings) *Compiler {
	return &Compiler{
		runner:     runner,
		sourcesDir: sourcesDir,
		outputDir:  outputDir,
		settings:   settings,
		logger:     logger.Named("contracts_compiler"),
	}
}

// Image returns the solc image matching the pinned compiler version.
func (s Settings) Image() string {
	return solcImageRepository + ":" + s.Version
}

// Args builds the solc command line for the given source files.
func (s Settings) Args(sources []Source) []string {
	args := []string{"--combined-json", "abi,bin", "--base-path", containerSourcesDir}
	for _, include := range s.IncludePaths {
		args = append(args, "--include-path", path.Join(containerSourcesDir, filepath.ToSlash(include)))
	}
	if s.OptimizerEnabled {
		args = append(args, "--optimize", "--optimize-runs", strconv.Itoa(s.OptimizerRuns))
	}
	if s.ViaIR {
		args = append(args, "--via-ir")
	}
	for _, src := range sources {
		args = append(args, path.Join(containerSourcesDir, filepath.ToSlash(src.Path)))
	}

	return args
}

// Compile compiles the sources and writes contracts.json into the output dir.
func (c *Compiler) Compile(ctx context.Context, sources []Source) (string, error) {
	if len(sources) == 0 {
		return "", fmt.Errorf("no contract sources configured")
	}

	sourcesDir, err := filepath.Abs(c.sourcesDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sources dir: %w", err)
	}
	if _, err := os.Stat(sourcesDir); err != nil {
		return "", fmt.Errorf("sources directory not found. Directory: '%s'", sourcesDir)
	}

	image := c.settings.Image()
	c.logger.
		With("sources_dir", sourcesDir).
		With("image", image).
		Info("starting contract compilation")

	if err := c.runner.EnsureImage(ctx, image); err != nil {
		return "", fmt.Errorf("failed to prepare solc image: %w", err)
	}

	output, err := c.runner.Run(ctx, docker.RunOptions{
		Image:   image,
		Cmd:     c.settings.Args(sources),
		Volumes: map[string]string{sourcesDir: containerSourcesDir},
		WorkDir: containerSourcesDir,
	})
	if err != nil {
		return "", fmt.Errorf("solc failed: %w", err)
	}

	jsonContracts, err := parseCombinedJSON([]byte(output), sources)
	if err != nil {
		return "", err
	}

	outputPath, err := c.writeContractsJSON(jsonContracts)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", contractsFileName, err)
	}

	c.logger.With("path", outputPath).Info("contracts compiled successfully")

	return outputPath, nil
}

// parseCombinedJSON extracts ABI and bytecode of the requested contracts from
// solc --combined-json output. Keys have the form "<file>:<contract>".
func parseCombinedJSON(data []byte, sources []Source) (map[string]map[string]any, error) {
	var combined struct {
		Contracts map[string]struct {
			ABI json.RawMessage `json:"abi"`
			Bin string          `json:"bin"`
		} `json:"contracts"`
	}
	if err := json.Unmarshal(data, &combined); err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}

	result := make(map[string]map[string]any, len(sources))
	for _, src := range sources {
		suffix := ":" + string(src.Name)
		found := false
		for key, out := range combined.Contracts {
			if !strings.HasSuffix(key, suffix) {
				continue
			}

			rawABI := out.ABI
			// older solc releases emit the ABI as a JSON encoded string
			if len(rawABI) > 0 && rawABI[0] == '"' {
				var s string
				if err := json.Unmarshal(rawABI, &s); err != nil {
					return nil, fmt.Errorf("failed to decode ABI string for %s: %w", src.Name, err)
				}
				rawABI = json.RawMessage(s)
			}

			if _, err := abi.JSON(strings.NewReader(string(rawABI))); err != nil {
				return nil, fmt.Errorf("failed to parse ABI for %s: %w", src.Name, err)
			}

			result[string(src.Name)] = map[string]any{
				"abi":      rawABI,
				"bytecode": "0x" + strings.TrimPrefix(out.Bin, "0x"),
			}
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("contract %s missing from solc output", src.Name)
		}
	}

	return result, nil
}

func (c *Compiler) writeContractsJSON(contracts map[string]map[string]any) (string, error) {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := ArtifactsPath(c.outputDir)

	data, err := json.MarshalIndent(contracts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal contracts: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", err
	}

	return outputPath, nil
}
