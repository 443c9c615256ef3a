package configs

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var Values Config

type (
	Config struct {
		Log        Log        `mapstructure:"log"`
		Network    Network    `mapstructure:"network"`
		Compiler   Compiler   `mapstructure:"compiler"`
		Deployment Deployment `mapstructure:"deployment"`
	}

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	Network struct {
		Name    string `mapstructure:"name"`
		Variant string `mapstructure:"variant"`
		EnvFile string `mapstructure:"env-file"`
	}

	Compiler struct {
		Version      string    `mapstructure:"version"`
		Optimizer    Optimizer `mapstructure:"optimizer"`
		ViaIR        bool      `mapstructure:"via-ir"`
		SourcesDir   string    `mapstructure:"sources-dir"`
		IncludePaths []string  `mapstructure:"include-paths"`
		Sources      []Source  `mapstructure:"sources"`
		ArtifactsDir string    `mapstructure:"artifacts-dir"`
	}

	Optimizer struct {
		Enabled bool `mapstructure:"enabled"`
		Runs    int  `mapstructure:"runs"`
	}

	Source struct {
		Name string `mapstructure:"name"`
		Path string `mapstructure:"path"`
	}

	Deployment struct {
		EntryPoint     string  `mapstructure:"entry-point"`
		Verifier       string  `mapstructure:"verifier"`
		FactoryAddress string  `mapstructure:"factory-address"`
		GasPrice       string  `mapstructure:"gas-price"`
		GasLimit       int     `mapstructure:"gas-limit"`
		OutputDir      string  `mapstructure:"output-dir"`
		Account        Account `mapstructure:"account"`
	}

	// Account holds the counterfactual account query in its textual form.
	Account struct {
		PasskeyID string `mapstructure:"passkey-id"`
		PubKeyX   string `mapstructure:"pub-key-x"`
		PubKeyY   string `mapstructure:"pub-key-y"`
		Salt      string `mapstructure:"salt"`
	}
)

func (c *Compiler) Validate() error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, errors.New("compiler.version is required"))
	}
	if c.Optimizer.Enabled && c.Optimizer.Runs <= 0 {
		errs = append(errs, errors.New("compiler.optimizer.runs must be positive when the optimizer is enabled"))
	}
	if c.SourcesDir == "" {
		errs = append(errs, errors.New("compiler.sources-dir is required"))
	}
	if c.ArtifactsDir == "" {
		errs = append(errs, errors.New("compiler.artifacts-dir is required"))
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("compiler.sources must list at least one contract"))
	}
	for i, src := range c.Sources {
		if src.Name == "" || src.Path == "" {
			errs = append(errs, fmt.Errorf("compiler.sources[%d] requires name and path", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("compiler configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// Validate checks that everything a deployment run needs is present and well
// formed. The factory address is optional here; commands that only attach
// check it themselves. Account values are parsed by the commands.
func (c *Deployment) Validate() error {
	var errs []error

	if err := validateAddress("deployment.entry-point", c.EntryPoint); err != nil {
		errs = append(errs, err)
	}
	if err := validateAddress("deployment.verifier", c.Verifier); err != nil {
		errs = append(errs, err)
	}
	if c.FactoryAddress != "" {
		if err := validateAddress("deployment.factory-address", c.FactoryAddress); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := c.GasPriceWei(); err != nil {
		errs = append(errs, err)
	}
	if c.GasLimit < 0 {
		errs = append(errs, errors.New("deployment.gas-limit must not be negative"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("deployment.output-dir is required"))
	}

	for _, field := range []struct{ key, value string }{
		{"passkey-id", c.Account.PasskeyID},
		{"pub-key-x", c.Account.PubKeyX},
		{"pub-key-y", c.Account.PubKeyY},
		{"salt", c.Account.Salt},
	} {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("deployment.account.%s is required", field.key))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("deployment configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// GasPriceWei parses the configured gas price.
func (c *Deployment) GasPriceWei() (*big.Int, error) {
	price, ok := new(big.Int).SetString(c.GasPrice, 10)
	if !ok || price.Sign() <= 0 {
		return nil, fmt.Errorf("deployment.gas-price must be a positive integer in wei, got '%s'", c.GasPrice)
	}

	return price, nil
}

func validateAddress(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", key)
	}
	if !common.IsHexAddress(value) {
		return fmt.Errorf("%s is not a valid address: '%s'", key, value)
	}
	if common.HexToAddress(value) == (common.Address{}) {
		return fmt.Errorf("%s must not be the zero address", key)
	}

	return nil
}
