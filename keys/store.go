package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xdao.co/synchronizer/program"
)

// KeyStore is a simple filesystem-backed key store.
//
// Features:
// - Supports Ed25519 keys only
// - Stores seeds on the local filesystem, hex-encoded, mode 0600
// - Generates deterministic subkeys based on roles
// - No external dependencies
type KeyStore struct {
	Directory string
}

type KeyEntry struct {
	Name     string
	Identity program.PublicKey
	Roles    []string
}

func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".synchronizer", "keys"), nil
}

func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootKeyFilePath(name string) string {
	return filepath.Join(ks.Directory, name, "root.key")
}

func (ks *KeyStore) roleKeyFilePath(name, role string) string {
	return filepath.Join(ks.Directory, name, "roles", role+".key")
}

func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("key name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in key name", char)
	}
	return nil
}

func CheckRole(role string) error {
	if role == "" {
		return errors.New("role cannot be empty")
	}
	for _, char := range role {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in role", char)
	}
	return nil
}

func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (ks *KeyStore) saveSeedToFile(filePath string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadSeedFromFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitializeRootKey stores a root seed under name and returns its identity.
func (ks *KeyStore) InitializeRootKey(name string, seed []byte, overwrite bool) (identity program.PublicKey, filePath string, err error) {
	if err := CheckKeyName(name); err != nil {
		return program.PublicKey{}, "", err
	}
	filePath = ks.rootKeyFilePath(name)
	if err := ks.saveSeedToFile(filePath, seed, overwrite); err != nil {
		return program.PublicKey{}, "", err
	}
	identity, err = IdentityFromSeed(seed)
	return identity, filePath, err
}

// DeriveKeyFromRole derives and stores a role subkey of an existing root key.
func (ks *KeyStore) DeriveKeyFromRole(from, role string, overwrite bool) (identity program.PublicKey, filePath string, err error) {
	if err := CheckKeyName(from); err != nil {
		return program.PublicKey{}, "", err
	}
	if err := CheckRole(role); err != nil {
		return program.PublicKey{}, "", err
	}
	rootSeed, err := ks.loadSeedFromFile(ks.rootKeyFilePath(from))
	if err != nil {
		return program.PublicKey{}, "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return program.PublicKey{}, "", err
	}
	filePath = ks.roleKeyFilePath(from, role)
	if err := ks.saveSeedToFile(filePath, roleSeed, overwrite); err != nil {
		return program.PublicKey{}, "", err
	}
	identity, err = IdentityFromSeed(roleSeed)
	return identity, filePath, err
}

// LoadSeed resolves a seed from the first provided source: literal hex, a key
// file path, or a stored name (optionally with a role).
func (ks *KeyStore) LoadSeed(seedHex, name, role, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return ks.loadSeedFromFile(keyFile)
	}
	if name != "" {
		if err := CheckKeyName(name); err != nil {
			return nil, err
		}
		if role == "" {
			return ks.loadSeedFromFile(ks.rootKeyFilePath(name))
		}
		if err := CheckRole(role); err != nil {
			return nil, err
		}
		return ks.loadSeedFromFile(ks.roleKeyFilePath(name, role))
	}
	return nil, errors.New("no signer provided")
}

// ListKeys returns the stored keys sorted by name, with role subkeys sorted.
func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []KeyEntry
	for _, name := range names {
		seed, err := ks.loadSeedFromFile(ks.rootKeyFilePath(name))
		if err != nil {
			continue
		}
		identity, err := IdentityFromSeed(seed)
		if err != nil {
			continue
		}

		rolesDir := filepath.Join(ks.Directory, name, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, KeyEntry{Name: name, Identity: identity, Roles: roles})
	}
	return result, nil
}
