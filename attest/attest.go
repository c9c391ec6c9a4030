// Package attest implements offline-verifiable oracle price attestations.
//
// An attestation binds an oracle identity to a price for a collateral token
// at a point in time. The payload is a fixed-width binary blob; signatures
// cover a digest of the payload. Two signature algorithms are supported,
// ed25519 and dilithium3 (post-quantum), with sha256, sha512 and sha3-256
// digests.
package attest

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"xdao.co/synchronizer/program"
)

// Supported signature algorithms.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Supported digest algorithms.
const (
	HashSHA256  = "sha256"
	HashSHA512  = "sha512"
	HashSHA3256 = "sha3-256"
)

var (
	ErrSignatureInvalid = errors.New("attest: signature invalid")
	ErrIdentityMismatch = errors.New("attest: oracle identity does not match public key")
)

// payload layout: magic, version, oracle, collateral token, price, unix time.
var magic = [4]byte{'S', 'A', 'T', 'T'}

const (
	payloadVersion = 1
	// PayloadLen is the exact encoded attestation size.
	PayloadLen = 4 + 1 + program.PublicKeyLen + program.PublicKeyLen + 8 + 8
)

// Attestation is one oracle's price statement.
type Attestation struct {
	// Oracle is the 32-byte oracle identity as known to the synchronizer
	// record. See Identity for how it derives from a public key.
	Oracle program.PublicKey
	// CollateralToken scopes the price to one collateral mint.
	CollateralToken program.PublicKey
	// Price is fixed-point with the protocol scale.
	Price uint64
	// UnixTime is the attestation time in seconds.
	UnixTime int64
}

// Encode serializes the attestation payload.
func (a Attestation) Encode() []byte {
	out := make([]byte, 0, PayloadLen)
	out = append(out, magic[:]...)
	out = append(out, payloadVersion)
	out = append(out, a.Oracle[:]...)
	out = append(out, a.CollateralToken[:]...)
	out = binary.LittleEndian.AppendUint64(out, a.Price)
	out = binary.LittleEndian.AppendUint64(out, uint64(a.UnixTime))
	return out
}

// Decode parses an attestation payload.
func Decode(b []byte) (Attestation, error) {
	var a Attestation
	if len(b) != PayloadLen {
		return a, fmt.Errorf("attest: payload is %d bytes, want %d", len(b), PayloadLen)
	}
	if [4]byte(b[:4]) != magic {
		return a, errors.New("attest: bad magic")
	}
	if b[4] != payloadVersion {
		return a, fmt.Errorf("attest: unsupported payload version %d", b[4])
	}
	off := 5
	copy(a.Oracle[:], b[off:off+program.PublicKeyLen])
	off += program.PublicKeyLen
	copy(a.CollateralToken[:], b[off:off+program.PublicKeyLen])
	off += program.PublicKeyLen
	a.Price = binary.LittleEndian.Uint64(b[off:])
	off += 8
	a.UnixTime = int64(binary.LittleEndian.Uint64(b[off:]))
	return a, nil
}

// Identity derives the 32-byte oracle identity from a public key. For
// ed25519 the key is the identity; for dilithium3 (whose keys are larger
// than 32 bytes) the identity is sha256 of the encoded key.
func Identity(sigAlg string, publicKey []byte) (program.PublicKey, error) {
	switch sigAlg {
	case AlgEd25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return program.PublicKey{}, fmt.Errorf("attest: invalid ed25519 public key length %d", len(publicKey))
		}
		return program.PublicKeyFromBytes(publicKey)
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(publicKey); err != nil {
			return program.PublicKey{}, fmt.Errorf("attest: invalid dilithium3 public key: %w", err)
		}
		return sha256.Sum256(publicKey), nil
	default:
		return program.PublicKey{}, fmt.Errorf("attest: unsupported signature algorithm %q", sigAlg)
	}
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case HashSHA256:
		s := sha256.Sum256(message)
		return s[:], nil
	case HashSHA512:
		s := sha512.Sum512(message)
		return s[:], nil
	case HashSHA3256:
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("attest: unsupported hash algorithm %q", hashAlg)
	}
}

// Signed is an attestation together with everything needed to verify it
// offline.
type Signed struct {
	Attestation Attestation
	SigAlg      string
	HashAlg     string
	PublicKey   []byte
	Signature   []byte
}

// SignEd25519 signs an attestation. The attestation's Oracle field must be
// the signer's public key.
func SignEd25519(a Attestation, hashAlg string, priv ed25519.PrivateKey) (Signed, error) {
	pub := priv.Public().(ed25519.PublicKey)
	digest, err := digestFor(hashAlg, a.Encode())
	if err != nil {
		return Signed{}, err
	}
	s := Signed{
		Attestation: a,
		SigAlg:      AlgEd25519,
		HashAlg:     hashAlg,
		PublicKey:   append([]byte(nil), pub...),
		Signature:   ed25519.Sign(priv, digest),
	}
	return s, s.checkIdentity()
}

// SignDilithium3 signs an attestation with a post-quantum key. The
// attestation's Oracle field must be the key's derived identity.
func SignDilithium3(a Attestation, hashAlg string, priv *mode3.PrivateKey) (Signed, error) {
	if priv == nil {
		return Signed{}, errors.New("attest: missing private key")
	}
	pub, err := priv.Public().(*mode3.PublicKey).MarshalBinary()
	if err != nil {
		return Signed{}, err
	}
	digest, err := digestFor(hashAlg, a.Encode())
	if err != nil {
		return Signed{}, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(priv, digest, sig)
	s := Signed{
		Attestation: a,
		SigAlg:      AlgDilithium3,
		HashAlg:     hashAlg,
		PublicKey:   pub,
		Signature:   sig,
	}
	return s, s.checkIdentity()
}

func (s Signed) checkIdentity() error {
	id, err := Identity(s.SigAlg, s.PublicKey)
	if err != nil {
		return err
	}
	if id != s.Attestation.Oracle {
		return ErrIdentityMismatch
	}
	return nil
}

// Verify checks the identity binding and the signature.
func (s Signed) Verify() error {
	if err := s.checkIdentity(); err != nil {
		return err
	}
	digest, err := digestFor(s.HashAlg, s.Attestation.Encode())
	if err != nil {
		return err
	}
	switch s.SigAlg {
	case AlgEd25519:
		if !ed25519.Verify(ed25519.PublicKey(s.PublicKey), digest, s.Signature) {
			return ErrSignatureInvalid
		}
		return nil
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(s.PublicKey); err != nil {
			return fmt.Errorf("attest: invalid dilithium3 public key: %w", err)
		}
		if !mode3.Verify(&pk, digest, s.Signature) {
			return ErrSignatureInvalid
		}
		return nil
	default:
		return fmt.Errorf("attest: unsupported signature algorithm %q", s.SigAlg)
	}
}
