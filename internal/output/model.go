package output

import (
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type (
	Model struct {
		Network    NetworkConfig             `yaml:"network"`
		Deployer   common.Address            `yaml:"deployer"`
		EntryPoint common.Address            `yaml:"entry-point"`
		Contracts  map[string]ContractConfig `yaml:"contracts"`
		Account    AccountConfig             `yaml:"account"`
	}

	NetworkConfig struct {
		Name    string `yaml:"name"`
		ChainID int64  `yaml:"chain-id"`
	}

	ContractConfig struct {
		Address common.Address     `yaml:"address"`
		TxHash  string             `yaml:"tx-hash,omitempty"`
		ABI     SingleQuotedString `yaml:"abi,omitempty"`
	}

	AccountConfig struct {
		Address   common.Address `yaml:"address"`
		PasskeyID string         `yaml:"passkey-id"`
		PubKeyX   string         `yaml:"pub-key-x"`
		PubKeyY   string         `yaml:"pub-key-y"`
		Salt      string         `yaml:"salt"`
	}

	// ChainRecord is the per-network contracts.json layout.
	ChainRecord struct {
		ChainInfo ChainInfo                 `json:"chainInfo"`
		Addresses map[string]common.Address `json:"addresses"`
	}

	ChainInfo struct {
		ChainID int64 `json:"chainId"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}
