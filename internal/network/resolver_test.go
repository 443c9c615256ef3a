package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func newTestResolver(t *testing.T, variant Variant, env map[string]string) *Resolver {
	t.Helper()
	r, err := NewResolverWithLookup(variant, envLookup(env))
	require.NoError(t, err)
	return r
}

func TestResolveWithoutSecrets(t *testing.T) {
	cases := map[string]map[string]string{
		"nothing set":         {},
		"only api key":        {EnvAlchemyAPIKey: "alchemy"},
		"only signer key":     {EnvPaymasterSignerKey: "abcd"},
		"blank signer key":    {EnvAlchemyAPIKey: "alchemy", EnvPaymasterSignerKey: "  "},
		"blank api key":       {EnvAlchemyAPIKey: "\t ", EnvPaymasterSignerKey: "abcd"},
		"other variant's key": {EnvAlchemyAPIKey: "alchemy", EnvPrivateKey: "abcd"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			r := newTestResolver(t, VariantPaymaster, env)

			resolved := r.Resolve()
			assert.Empty(t, resolved)

			set := r.ResolveSet()
			assert.Equal(t, []string{LocalName}, set.Names())

			local, err := set.Lookup("")
			require.NoError(t, err)
			assert.Equal(t, LocalChainID, local.ChainID)
			assert.True(t, local.IsLocal())
			assert.NotEmpty(t, local.Accounts)

			_, err = set.Lookup("goerli")
			assert.ErrorIs(t, err, ErrUnknownNetwork)
		})
	}
}

func TestResolveWithSecrets(t *testing.T) {
	r := newTestResolver(t, VariantPaymaster, map[string]string{
		EnvAlchemyAPIKey:      "alchemy-key",
		EnvPaymasterSignerKey: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		EnvEthereumURL:        "https://goerli.example.org",
		EnvOptimismGoerliRPC:  "https://optimism.example.org",
	})

	resolved := r.Resolve()
	require.Len(t, resolved, 7)

	for name, profile := range resolved {
		assert.Equal(t, name, profile.Name)
		require.Len(t, profile.Accounts, 1, "network %s", name)
		assert.Equal(t, "0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", profile.Accounts[0])
		assert.False(t, profile.IsLocal())
	}

	assert.Equal(t, int64(5), resolved["goerli"].ChainID)
	assert.Equal(t, "https://goerli.example.org", resolved["goerli"].URL)
	assert.Equal(t, int64(42161), resolved["arbitrum"].ChainID)
	assert.Equal(t, int64(80001), resolved["polygon"].ChainID)
	assert.Equal(t, "https://polygon-mumbai.g.alchemy.com/v2/alchemy-key", resolved["polygon"].URL)
	assert.Equal(t, "https://optimism.example.org", resolved["optimism"].URL)

	for _, name := range []string{"gnosis", "linea", "base", "optimism"} {
		assert.Zero(t, resolved[name].ChainID, "network %s should use the endpoint chain id", name)
	}

	set := r.ResolveSet()
	assert.Equal(t, []string{LocalName, "arbitrum", "base", "gnosis", "goerli", "linea", "optimism", "polygon"}, set.Names())
}

func TestResolveKeepsSinglePrefix(t *testing.T) {
	r := newTestResolver(t, VariantPaymaster, map[string]string{
		EnvAlchemyAPIKey:      "k",
		EnvPaymasterSignerKey: "0xabcdef",
	})

	assert.Equal(t, []string{"0xabcdef"}, r.Resolve()["arbitrum"].Accounts)
}

func TestResolveProfilesDoNotShareAccounts(t *testing.T) {
	r := newTestResolver(t, VariantPaymaster, map[string]string{
		EnvAlchemyAPIKey:      "k",
		EnvPaymasterSignerKey: "abcdef",
	})

	resolved := r.Resolve()
	resolved["base"].Accounts[0] = "mutated"

	assert.Equal(t, "0xabcdef", resolved["gnosis"].Accounts[0])
}

func TestResolveGenericVariant(t *testing.T) {
	r := newTestResolver(t, VariantGeneric, map[string]string{
		EnvAlchemyAPIKey: "k",
		EnvPrivateKey:    "beef",
		EnvGoerliURL:     "https://goerli.generic.org",
		EnvEthereumURL:   "https://ignored.example.org",
	})

	resolved := r.Resolve()
	require.NotEmpty(t, resolved)
	assert.Equal(t, "https://goerli.generic.org", resolved["goerli"].URL)
	assert.Equal(t, []string{"0xbeef"}, resolved["goerli"].Accounts)
}

func TestResolveLegacyOptimismVariable(t *testing.T) {
	r := newTestResolver(t, VariantPaymaster, map[string]string{
		EnvAlchemyAPIKey:       "k",
		EnvPaymasterSignerKey:  "beef",
		envOptimismGoerliRPCv0: "https://legacy-optimism.example.org",
	})

	assert.Equal(t, "https://legacy-optimism.example.org", r.Resolve()["optimism"].URL)
}

func TestNewResolverRejectsUnknownVariant(t *testing.T) {
	_, err := NewResolverWithLookup("staging", envLookup(nil))
	require.Error(t, err)

	r, err := NewResolverWithLookup("", envLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, VariantPaymaster, r.variant)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" Generic ")
	require.NoError(t, err)
	assert.Equal(t, VariantGeneric, v)

	v, err = ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantPaymaster, v)

	_, err = ParseVariant("staging")
	require.ErrorContains(t, err, "unsupported network variant 'staging'")
}
