// Package program defines the Synchronizer program identity, the 32-byte
// public key type shared by every layer, and the structured error taxonomy.
package program

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Protocol limits and scale.
const (
	// MaxOracles is the number of oracle slots in the persisted record.
	MaxOracles = 10
	// MaxSigners bounds the quorum threshold.
	MaxSigners = 11
	// DefaultDecimals is the fixed fractional-digit scale shared by every
	// token participating in the protocol. Mints with any other scale are
	// rejected with BadDecimals.
	DefaultDecimals = 9
)

// PublicKeyLen is the raw byte length of a public key.
const PublicKeyLen = 32

// PublicKey is an opaque 32-byte identity (account, mint, oracle, program).
// The zero value is the "absent" key used to fill unused oracle slots.
type PublicKey [PublicKeyLen]byte

// ID is the deployment-fixed program identity. Every invocation must present
// it; anything else fails with IncorrectProgramID before decoding.
var ID = MustParsePublicKey("urNhxed8ocNiFApoooLSAJ1xnWSMUiC9S6fKcRon1rk")

// ParsePublicKey decodes a base58 public key string.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("program: invalid public key %q: %w", s, err)
	}
	if len(raw) != PublicKeyLen {
		return pk, fmt.Errorf("program: public key %q is %d bytes, want %d", s, len(raw), PublicKeyLen)
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for compile-time constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PublicKeyFromBytes copies a 32-byte slice into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeyLen {
		return pk, fmt.Errorf("program: public key is %d bytes, want %d", len(b), PublicKeyLen)
	}
	copy(pk[:], b)
	return pk, nil
}

func (pk PublicKey) String() string { return base58.Encode(pk[:]) }

// IsZero reports whether pk is the absent key.
func (pk PublicKey) IsZero() bool { return pk == PublicKey{} }

func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeyLen)
	copy(out, pk[:])
	return out
}
