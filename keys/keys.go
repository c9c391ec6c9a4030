// Package keys provides local-first key management for oracle and authority
// identities.
//
// Keys are Ed25519 seeds stored as hex in 0600 files under a per-name
// directory. Role subkeys (for example an oracle's "price" signing key) are
// derived deterministically from the root seed, so a backed-up root seed
// recovers every role key.
package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"xdao.co/synchronizer/program"
)

// IdentityFromSeed returns the 32-byte public identity for an Ed25519 seed.
func IdentityFromSeed(seed []byte) (program.PublicKey, error) {
	if len(seed) != ed25519.SeedSize {
		return program.PublicKey{}, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return program.PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
}

// SignerFromSeed returns the Ed25519 private key for a seed.
func SignerFromSeed(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed from
// a root seed.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("synchronizer-keys-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}
