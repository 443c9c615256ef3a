package deploy

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Query identifies the account whose future address the factory predicts.
type Query struct {
	PasskeyID [32]byte
	PubKeyX   *big.Int
	PubKeyY   *big.Int
	Salt      *big.Int
}

// NewQuery parses the textual form used in configuration: the passkey id is
// either a short UTF-8 label or a 0x-prefixed 32-byte value, the numbers are
// base-10 (or 0x-prefixed hex) uint256 values. Leading zeros stay decimal.
func NewQuery(passkeyID, pubKeyX, pubKeyY, salt string) (Query, error) {
	var errs []error

	id, err := ParsePasskeyID(passkeyID)
	if err != nil {
		errs = append(errs, fmt.Errorf("passkey id: %w", err))
	}
	x, err := ParseUint256(pubKeyX)
	if err != nil {
		errs = append(errs, fmt.Errorf("public key x: %w", err))
	}
	y, err := ParseUint256(pubKeyY)
	if err != nil {
		errs = append(errs, fmt.Errorf("public key y: %w", err))
	}
	s, err := ParseUint256(salt)
	if err != nil {
		errs = append(errs, fmt.Errorf("salt: %w", err))
	}

	if len(errs) > 0 {
		return Query{}, errors.Join(errs...)
	}

	return Query{PasskeyID: id, PubKeyX: x, PubKeyY: y, Salt: s}, nil
}

// WithSalt returns a copy of the query using another salt.
func (q Query) WithSalt(salt *big.Int) Query {
	q.Salt = new(big.Int).Set(salt)
	return q
}

// EncodeBytes32String stores a UTF-8 string in a bytes32, right padded with
// zeros. One byte is kept for the terminating zero, so at most 31 bytes fit.
func EncodeBytes32String(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) > 31 {
		return out, fmt.Errorf("bytes32 string must be less than 32 bytes, got %d", len(s))
	}
	copy(out[:], s)

	return out, nil
}

// ParsePasskeyID accepts a 0x-prefixed 32-byte hex value or a short label.
func ParsePasskeyID(s string) ([32]byte, error) {
	if strings.HasPrefix(s, "0x") && len(s) == 2+2*common.HashLength {
		raw, err := hexutil.Decode(s)
		if err != nil {
			return [32]byte{}, err
		}
		return common.BytesToHash(raw), nil
	}

	if s == "" {
		return [32]byte{}, errors.New("must not be empty")
	}

	return EncodeBytes32String(s)
}

// ParseUint256 parses a non-negative base-10 integer, or a 0x-prefixed hex
// quantity, that fits in 256 bits.
func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("must not be empty")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		value, err := hexutil.DecodeBig("0x" + s[2:])
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a hex quantity: %w", s, err)
		}
		return value, nil
	}

	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a base-10 integer", s)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("'%s' is negative", s)
	}
	if value.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("'%s' overflows uint256", s)
	}

	return value, nil
}
