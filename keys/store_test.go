package keys

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"testing"
)

func testSeed(b byte) []byte {
	return bytes.Repeat([]byte{b}, ed25519.SeedSize)
}

func TestInitializeRootKey(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}

	identity, path, err := ks.InitializeRootKey("oracle-a", testSeed(1), false)
	if err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	want, err := IdentityFromSeed(testSeed(1))
	if err != nil {
		t.Fatalf("IdentityFromSeed: %v", err)
	}
	if identity != want {
		t.Fatalf("identity mismatch: %s vs %s", identity, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("key file mode = %o, want 600", perm)
	}

	// A second init without overwrite must not clobber the seed.
	if _, _, err := ks.InitializeRootKey("oracle-a", testSeed(2), false); err == nil {
		t.Fatalf("expected error on duplicate init")
	}
	seed, err := ks.LoadSeed("", "oracle-a", "", "")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if !bytes.Equal(seed, testSeed(1)) {
		t.Fatalf("seed clobbered")
	}
}

func TestCheckKeyName(t *testing.T) {
	for _, name := range []string{"oracle-a", "Authority_1", "x"} {
		if err := CheckKeyName(name); err != nil {
			t.Fatalf("CheckKeyName(%q): %v", name, err)
		}
	}
	for _, name := range []string{"", "a b", "a/b", "a.b", "../escape"} {
		if err := CheckKeyName(name); err == nil {
			t.Fatalf("CheckKeyName(%q) accepted", name)
		}
	}
}

func TestDeriveKeyFromRole(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	if _, _, err := ks.InitializeRootKey("oracle-a", testSeed(1), false); err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}

	id1, _, err := ks.DeriveKeyFromRole("oracle-a", "price", true)
	if err != nil {
		t.Fatalf("DeriveKeyFromRole: %v", err)
	}
	id2, _, err := ks.DeriveKeyFromRole("oracle-a", "price", true)
	if err != nil {
		t.Fatalf("DeriveKeyFromRole: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("role derivation not deterministic")
	}

	other, _, err := ks.DeriveKeyFromRole("oracle-a", "ops", true)
	if err != nil {
		t.Fatalf("DeriveKeyFromRole: %v", err)
	}
	if other == id1 {
		t.Fatalf("distinct roles produced the same identity")
	}
}

func TestListKeys(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}

	got, err := ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys on empty store: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no keys, got %d", len(got))
	}

	if _, _, err := ks.InitializeRootKey("beta", testSeed(2), false); err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	if _, _, err := ks.InitializeRootKey("alpha", testSeed(1), false); err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	if _, _, err := ks.DeriveKeyFromRole("alpha", "price", false); err != nil {
		t.Fatalf("DeriveKeyFromRole: %v", err)
	}

	got, err = ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "beta" {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if len(got[0].Roles) != 1 || got[0].Roles[0] != "price" {
		t.Fatalf("unexpected roles for alpha: %v", got[0].Roles)
	}
}

func TestParseSeedHex(t *testing.T) {
	seed := testSeed(3)
	parsed, err := ParseSeedHex("0x" + "03030303030303030303030303030303" + "03030303030303030303030303030303")
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if !bytes.Equal(parsed, seed) {
		t.Fatalf("parsed seed mismatch")
	}
	if _, err := ParseSeedHex("abcd"); err == nil {
		t.Fatalf("short seed accepted")
	}
}
