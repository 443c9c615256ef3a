package network

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

const (
	// LocalName is the built-in in-process development network.
	LocalName = "local"

	// LocalChainID is the fixed chain id of the local network.
	LocalChainID int64 = 1337

	// localDevKey is the first well-known development account key used by
	// local EVM tooling. It carries no value on any public chain.
	localDevKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

var ErrUnknownNetwork = errors.New("unknown network")

type (
	// Profile describes how to reach one network and sign for it.
	// ChainID zero means the endpoint's own chain id is used.
	Profile struct {
		Name     string
		URL      string
		ChainID  int64
		Accounts []string
	}

	// Set is the resolved network configuration: the local network is always
	// available, remote profiles only when their secrets were present.
	Set struct {
		Local  Profile
		Remote map[string]Profile
	}
)

// IsLocal reports whether the profile refers to the in-process network.
func (p Profile) IsLocal() bool {
	return p.Name == LocalName && p.URL == ""
}

// LocalProfile returns the built-in development network profile.
func LocalProfile() Profile {
	return Profile{
		Name:     LocalName,
		ChainID:  LocalChainID,
		Accounts: []string{localDevKey},
	}
}

// NewSet builds a network set from resolved remote profiles.
func NewSet(remote map[string]Profile) Set {
	if remote == nil {
		remote = map[string]Profile{}
	}

	return Set{
		Local:  LocalProfile(),
		Remote: remote,
	}
}

// Lookup returns the named profile.
func (s Set) Lookup(name string) (Profile, error) {
	if name == "" || name == LocalName {
		return s.Local, nil
	}

	profile, ok := s.Remote[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: '%s' (available: %v)", ErrUnknownNetwork, name, s.Names())
	}

	return profile, nil
}

// Names lists every available network, local first, remote sorted.
func (s Set) Names() []string {
	return append([]string{LocalName}, slices.Sorted(maps.Keys(s.Remote))...)
}
