package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"xdao.co/synchronizer/program"
	"xdao.co/synchronizer/token"
)

// Genesis describes the initial bank state: mints, funded token accounts and
// empty record accounts. Keys are base58.
//
// Example:
//
//	{
//	  "mints": [
//	    {"key":"...", "decimals":9, "authority":"..."}
//	  ],
//	  "token_accounts": [
//	    {"key":"...", "mint":"...", "owner":"...", "balance":500000000000}
//	  ],
//	  "records": [
//	    {"key":"..."}
//	  ]
//	}
type Genesis struct {
	Mints         []GenesisMint         `json:"mints"`
	TokenAccounts []GenesisTokenAccount `json:"token_accounts"`
	Records       []GenesisRecord       `json:"records"`
}

type GenesisMint struct {
	Key      string `json:"key"`
	Decimals uint8  `json:"decimals"`
	// Authority may be empty for a fixed-supply mint.
	Authority string `json:"authority,omitempty"`
}

type GenesisTokenAccount struct {
	Key     string `json:"key"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance,omitempty"`
}

type GenesisRecord struct {
	Key string `json:"key"`
}

// LoadGenesisFile reads and validates a genesis config.
func LoadGenesisFile(path string) (Genesis, error) {
	var g Genesis
	if path == "" {
		return g, errors.New("bank: empty genesis path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return g, err
	}
	if err := json.Unmarshal(b, &g); err != nil {
		return g, err
	}
	return g, g.Validate()
}

func (g Genesis) Validate() error {
	mints := make(map[string]struct{}, len(g.Mints))
	for _, m := range g.Mints {
		if _, err := program.ParsePublicKey(m.Key); err != nil {
			return fmt.Errorf("bank: mint key: %w", err)
		}
		if m.Authority != "" {
			if _, err := program.ParsePublicKey(m.Authority); err != nil {
				return fmt.Errorf("bank: mint authority: %w", err)
			}
		}
		if _, dup := mints[m.Key]; dup {
			return fmt.Errorf("bank: duplicate mint %q", m.Key)
		}
		mints[m.Key] = struct{}{}
	}

	accounts := make(map[string]struct{}, len(g.TokenAccounts))
	for _, a := range g.TokenAccounts {
		if _, err := program.ParsePublicKey(a.Key); err != nil {
			return fmt.Errorf("bank: token account key: %w", err)
		}
		if _, err := program.ParsePublicKey(a.Owner); err != nil {
			return fmt.Errorf("bank: token account owner: %w", err)
		}
		if _, ok := mints[a.Mint]; !ok {
			return fmt.Errorf("bank: token account %q references unknown mint %q", a.Key, a.Mint)
		}
		if _, dup := accounts[a.Key]; dup {
			return fmt.Errorf("bank: duplicate token account %q", a.Key)
		}
		accounts[a.Key] = struct{}{}
	}

	records := make(map[string]struct{}, len(g.Records))
	for _, r := range g.Records {
		if _, err := program.ParsePublicKey(r.Key); err != nil {
			return fmt.Errorf("bank: record key: %w", err)
		}
		if _, dup := records[r.Key]; dup {
			return fmt.Errorf("bank: duplicate record %q", r.Key)
		}
		records[r.Key] = struct{}{}
	}
	return nil
}

// Apply provisions a bank from the genesis description.
func (g Genesis) Apply(b *Bank) error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, m := range g.Mints {
		key := program.MustParsePublicKey(m.Key)
		mint := token.Mint{Decimals: m.Decimals}
		if m.Authority != "" {
			mint.Authority = program.MustParsePublicKey(m.Authority)
			mint.HasAuthority = true
		}
		if err := b.Ledger().CreateMint(key, mint); err != nil {
			return fmt.Errorf("bank: mint %q: %w", m.Key, err)
		}
	}
	for _, a := range g.TokenAccounts {
		key := program.MustParsePublicKey(a.Key)
		mint := program.MustParsePublicKey(a.Mint)
		owner := program.MustParsePublicKey(a.Owner)
		if err := b.Ledger().CreateAccount(key, mint, owner); err != nil {
			return fmt.Errorf("bank: token account %q: %w", a.Key, err)
		}
		if a.Balance > 0 {
			m, err := b.Ledger().Mint(mint)
			if err != nil {
				return err
			}
			if !m.HasAuthority {
				return fmt.Errorf("bank: token account %q: funding a fixed-supply mint", a.Key)
			}
			if err := b.Ledger().MintTo(mint, key, m.Authority, a.Balance); err != nil {
				return fmt.Errorf("bank: token account %q: %w", a.Key, err)
			}
		}
	}
	for _, r := range g.Records {
		if err := b.CreateRecordAccount(program.MustParsePublicKey(r.Key)); err != nil {
			return fmt.Errorf("bank: record %q: %w", r.Key, err)
		}
	}
	return nil
}
