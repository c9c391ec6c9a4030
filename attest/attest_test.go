package attest

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/synchronizer/program"
)

func ed25519Signer(t *testing.T) (ed25519.PrivateKey, program.PublicKey) {
	t.Helper()
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	id, err := Identity(AlgEd25519, priv.Public().(ed25519.PublicKey))
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	return priv, id
}

func dilithiumSigner(t *testing.T) (*mode3.PrivateKey, program.PublicKey) {
	t.Helper()
	var seed [mode3.SeedSize]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	pub, priv := mode3.NewKeyFromSeed(&seed)
	raw, err := pub.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	id, err := Identity(AlgDilithium3, raw)
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	return priv, id
}

func sample(oracle program.PublicKey) Attestation {
	var mint program.PublicKey
	for i := range mint {
		mint[i] = 0xC0
	}
	return Attestation{
		Oracle:          oracle,
		CollateralToken: mint,
		Price:           400_000_000,
		UnixTime:        1_700_000_000,
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	_, oracle := ed25519Signer(t)
	a := sample(oracle)

	b := a.Encode()
	if len(b) != PayloadLen {
		t.Fatalf("encoded length = %d, want %d", len(b), PayloadLen)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != a {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, a)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, oracle := ed25519Signer(t)
	good := sample(oracle).Encode()

	short := good[:PayloadLen-1]
	if _, err := Decode(short); err == nil {
		t.Fatalf("truncated payload accepted")
	}

	badMagic := append([]byte(nil), good...)
	badMagic[0] = 'X'
	if _, err := Decode(badMagic); err == nil {
		t.Fatalf("bad magic accepted")
	}

	badVersion := append([]byte(nil), good...)
	badVersion[4] = 9
	if _, err := Decode(badVersion); err == nil {
		t.Fatalf("unknown version accepted")
	}
}

func TestSignVerify_Ed25519(t *testing.T) {
	priv, oracle := ed25519Signer(t)
	for _, hashAlg := range []string{HashSHA256, HashSHA512, HashSHA3256} {
		s, err := SignEd25519(sample(oracle), hashAlg, priv)
		if err != nil {
			t.Fatalf("%s: sign: %v", hashAlg, err)
		}
		if err := s.Verify(); err != nil {
			t.Fatalf("%s: verify: %v", hashAlg, err)
		}

		s.Attestation.Price++
		if err := s.Verify(); !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("%s: tampered price verified: %v", hashAlg, err)
		}
	}
}

func TestSignVerify_Dilithium3(t *testing.T) {
	priv, oracle := dilithiumSigner(t)
	s, err := SignDilithium3(sample(oracle), HashSHA256, priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := s.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}

	s.Signature[0] ^= 1
	if err := s.Verify(); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("tampered signature verified: %v", err)
	}
}

func TestIdentityBinding(t *testing.T) {
	priv, _ := ed25519Signer(t)

	// Signing with an Oracle field that is not the signer's identity must
	// be rejected on both sides.
	var wrong program.PublicKey
	wrong[0] = 1
	if _, err := SignEd25519(sample(wrong), HashSHA256, priv); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("sign with foreign identity: %v", err)
	}

	_, oracle := ed25519Signer(t)
	s, err := SignEd25519(sample(oracle), HashSHA256, priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	s.Attestation.Oracle = wrong
	if err := s.Verify(); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("verify with swapped identity: %v", err)
	}
}

func TestDilithiumIdentityIsDigest(t *testing.T) {
	// Dilithium3 keys exceed 32 bytes, so the identity must be a digest,
	// never a truncation.
	_, id := dilithiumSigner(t)
	if id.IsZero() {
		t.Fatalf("empty identity")
	}
	var seed [mode3.SeedSize]byte
	seed[0] = 0xFF
	pub, _ := mode3.NewKeyFromSeed(&seed)
	raw, _ := pub.MarshalBinary()
	other, err := Identity(AlgDilithium3, raw)
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if other == id {
		t.Fatalf("distinct keys produced the same identity")
	}
}
