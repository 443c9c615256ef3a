package network

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/compose-network/passkey-deployer/internal/logger"
)

// Variant selects which environment variable names carry the signer key and
// the goerli endpoint. Both layouts exist across deployment targets.
type Variant string

const (
	VariantPaymaster Variant = "paymaster"
	VariantGeneric   Variant = "generic"

	EnvAlchemyAPIKey       = "ALCHEMY_API_KEY"
	EnvPaymasterSignerKey  = "PAYMASTERSIGNER_PRIVATE_KEY"
	EnvPrivateKey          = "PRIVATE_KEY"
	EnvEthereumURL         = "ETHEREUM_URL"
	EnvGoerliURL           = "GOERLI_URL"
	EnvOptimismGoerliRPC   = "OPTIMISM_GOERLI_RPC"
	envOptimismGoerliRPCv0 = "OPRIMISM_GOERLI_RPC"
)

type variantEnv struct {
	privateKey string
	goerliURL  string
}

var variants = map[Variant]variantEnv{
	VariantPaymaster: {privateKey: EnvPaymasterSignerKey, goerliURL: EnvEthereumURL},
	VariantGeneric:   {privateKey: EnvPrivateKey, goerliURL: EnvGoerliURL},
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Resolver turns environment state into remote network profiles.
type Resolver struct {
	variant Variant
	lookup  LookupFunc
	logger  *slog.Logger
}

// NewResolver creates a resolver reading the process environment.
func NewResolver(variant Variant) (*Resolver, error) {
	return NewResolverWithLookup(variant, os.LookupEnv)
}

// ParseVariant maps a configured variant name to a Variant. Empty means paymaster.
func ParseVariant(name string) (Variant, error) {
	variant := Variant(strings.ToLower(strings.TrimSpace(name)))
	if variant == "" {
		return VariantPaymaster, nil
	}
	if _, ok := variants[variant]; !ok {
		return "", fmt.Errorf("unsupported network variant '%s' (expected: %s|%s)", name, VariantPaymaster, VariantGeneric)
	}

	return variant, nil
}

// NewResolverWithLookup creates a resolver over an arbitrary lookup function.
func NewResolverWithLookup(variant Variant, lookup LookupFunc) (*Resolver, error) {
	variant, err := ParseVariant(string(variant))
	if err != nil {
		return nil, err
	}

	return &Resolver{
		variant: variant,
		lookup:  lookup,
		logger:  logger.Named("network_resolver"),
	}, nil
}

// Resolve returns the remote profiles. When the API key or the signer key is
// missing it returns an empty map: only the local network remains usable.
func (r *Resolver) Resolve() map[string]Profile {
	env := variants[r.variant]

	apiKey := r.get(EnvAlchemyAPIKey)
	privateKey := r.get(env.privateKey)
	if apiKey == "" || privateKey == "" {
		r.logger.
			With("variant", r.variant).
			With("key_env", env.privateKey).
			Debug("signer secrets not set, only the local network is available")
		return map[string]Profile{}
	}

	accounts := []string{"0x" + strings.TrimPrefix(strings.TrimPrefix(privateKey, "0x"), "0X")}

	optimismURL := r.get(EnvOptimismGoerliRPC)
	if optimismURL == "" {
		optimismURL = r.get(envOptimismGoerliRPCv0)
	}

	profiles := []Profile{
		{Name: "goerli", URL: r.get(env.goerliURL), ChainID: 5},
		{Name: "arbitrum", URL: "https://arb1.arbitrum.io/rpc", ChainID: 42161},
		{Name: "polygon", URL: "https://polygon-mumbai.g.alchemy.com/v2/" + apiKey, ChainID: 80001},
		{Name: "gnosis", URL: "https://rpc.gnosischain.com"},
		{Name: "linea", URL: "https://rpc.goerli.linea.build"},
		{Name: "base", URL: "https://goerli.base.org"},
		{Name: "optimism", URL: optimismURL},
	}

	resolved := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		p.Accounts = slices.Clone(accounts)
		resolved[p.Name] = p
	}

	r.logger.With("variant", r.variant).With("count", len(resolved)).Debug("remote networks resolved")

	return resolved
}

// ResolveSet resolves remote profiles and adds the local network.
func (r *Resolver) ResolveSet() Set {
	return NewSet(r.Resolve())
}

// get returns the trimmed value of key. Whitespace-only values count as unset.
func (r *Resolver) get(key string) string {
	value, ok := r.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
