package bank

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/fixedpoint"
	"xdao.co/synchronizer/instruction"
	"xdao.co/synchronizer/program"
)

// testGenesis provisions the same exchange layout the transition-engine
// tests use: a collateral mint, a fiat mint, funded user accounts and an
// empty record account keyed by the exchange authority.
func testGenesis() Genesis {
	return Genesis{
		Mints: []GenesisMint{
			{Key: key(0xC0).String(), Decimals: 9, Authority: key(0x51).String()},
			{Key: key(0xF0).String(), Decimals: 9, Authority: key(0x51).String()},
		},
		TokenAccounts: []GenesisTokenAccount{
			{Key: key(0x61).String(), Mint: key(0xC0).String(), Owner: key(0x51).String(), Balance: 500 * fixedpoint.Scale},
			{Key: key(0x62).String(), Mint: key(0xC0).String(), Owner: key(0x52).String(), Balance: 500 * fixedpoint.Scale},
			{Key: key(0x63).String(), Mint: key(0xF0).String(), Owner: key(0x52).String()},
		},
		Records: []GenesisRecord{
			{Key: key(0x51).String()},
		},
	}
}

func newTestBank(t *testing.T, arch archive.Archive) *Bank {
	t.Helper()
	b := New(arch)
	if err := testGenesis().Apply(b); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return b
}

func initializeEnvelope() Envelope {
	return Envelope{
		Accounts: []AccountMeta{{Key: key(0x51), IsSigner: true}},
		Instruction: instruction.Encode(instruction.Initialize{
			CollateralToken:           key(0xC0),
			RemainingDollarCap:        1000 * fixedpoint.Scale,
			MinimumRequiredSignatures: 2,
			Oracles:                   []program.PublicKey{key(1), key(2), key(3)},
		}),
	}
}

func tradeEnvelope(inst instruction.Instruction, oracles ...program.PublicKey) Envelope {
	env := Envelope{
		Accounts: []AccountMeta{
			{Key: key(0xF0)},
			{Key: key(0x62)},
			{Key: key(0x63)},
			{Key: key(0x61)},
			{Key: key(0x52), IsSigner: true},
			{Key: key(0x51), IsSigner: true},
		},
		Instruction: instruction.Encode(inst),
	}
	for _, o := range oracles {
		env.Accounts = append(env.Accounts, AccountMeta{Key: o, IsSigner: true})
	}
	return env
}

func mustBalance(t *testing.T, b *Bank, acc program.PublicKey) uint64 {
	t.Helper()
	n, err := b.Balance(acc)
	if err != nil {
		t.Fatalf("Balance(%s): %v", acc, err)
	}
	return n
}

func TestGenesisValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Genesis)
	}{
		{"bad mint key", func(g *Genesis) { g.Mints[0].Key = "not-base58-0" }},
		{"bad authority", func(g *Genesis) { g.Mints[0].Authority = "xyz" }},
		{"duplicate mint", func(g *Genesis) { g.Mints[1].Key = g.Mints[0].Key }},
		{"unknown mint reference", func(g *Genesis) { g.TokenAccounts[0].Mint = key(0xEE).String() }},
		{"duplicate token account", func(g *Genesis) { g.TokenAccounts[1].Key = g.TokenAccounts[0].Key }},
		{"duplicate record", func(g *Genesis) {
			g.Records = append(g.Records, GenesisRecord{Key: g.Records[0].Key})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := testGenesis()
			tc.mutate(&g)
			if err := g.Validate(); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}

	if err := testGenesis().Validate(); err != nil {
		t.Fatalf("valid genesis rejected: %v", err)
	}
}

func TestLoadGenesisFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	raw, err := json.Marshal(testGenesis())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	g, err := LoadGenesisFile(path)
	if err != nil {
		t.Fatalf("LoadGenesisFile: %v", err)
	}
	b := New(nil)
	if err := g.Apply(b); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := mustBalance(t, b, key(0x62)); got != 500*fixedpoint.Scale {
		t.Fatalf("user collateral = %d, want %d", got, 500*fixedpoint.Scale)
	}

	if _, err := LoadGenesisFile(""); err == nil {
		t.Fatalf("empty path accepted")
	}
	if _, err := LoadGenesisFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestCreateRecordAccount(t *testing.T) {
	b := newTestBank(t, nil)
	if err := b.CreateRecordAccount(key(0x51)); !program.IsCode(err, program.CodeAlreadyInitialized) {
		t.Fatalf("duplicate record: got %v", err)
	}
	if _, err := b.RecordBytes(key(0x52)); !program.IsCode(err, program.CodeInvalidAccountData) {
		t.Fatalf("non-record key: got %v", err)
	}
}

func TestExecute_EndToEnd(t *testing.T) {
	arch := archive.NewMemory()
	b := newTestBank(t, arch)

	snap, err := b.Execute(initializeEnvelope())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !snap.Defined() {
		t.Fatalf("initialize produced no snapshot")
	}

	rec, err := b.Record(key(0x51))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.CollateralToken != key(0xC0) || rec.RemainingDollarCap != 1000*fixedpoint.Scale || rec.MinimumRequiredSignatures != 2 {
		t.Fatalf("unexpected record after init: %+v", rec)
	}

	// Buy one fiat unit at the worse of the two quoted prices (3.0).
	snap, err = b.Execute(tradeEnvelope(instruction.BuyFor{
		Multiplier: 1,
		Amount:     fixedpoint.Scale,
		Prices:     []uint64{2 * fixedpoint.Scale, 3 * fixedpoint.Scale},
	}, key(1), key(2)))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if got := mustBalance(t, b, key(0x62)); got != 497*fixedpoint.Scale {
		t.Fatalf("user collateral = %d, want %d", got, 497*fixedpoint.Scale)
	}
	if got := mustBalance(t, b, key(0x61)); got != 503*fixedpoint.Scale {
		t.Fatalf("pool collateral = %d, want %d", got, 503*fixedpoint.Scale)
	}
	if got := mustBalance(t, b, key(0x63)); got != fixedpoint.Scale {
		t.Fatalf("user fiat = %d, want %d", got, fixedpoint.Scale)
	}

	rec, err = b.Record(key(0x51))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.RemainingDollarCap != 997*fixedpoint.Scale {
		t.Fatalf("cap = %d, want %d", rec.RemainingDollarCap, 997*fixedpoint.Scale)
	}

	// The snapshot must hold exactly the record bytes now in the bank.
	want, err := b.RecordBytes(key(0x51))
	if err != nil {
		t.Fatalf("RecordBytes: %v", err)
	}
	got, err := arch.Get(snap)
	if err != nil {
		t.Fatalf("archive.Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("snapshot bytes diverge from the live record")
	}
}

func TestExecute_FailedTransitionLeavesState(t *testing.T) {
	b := newTestBank(t, archive.NewMemory())
	if _, err := b.Execute(initializeEnvelope()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	before, err := b.RecordBytes(key(0x51))
	if err != nil {
		t.Fatalf("RecordBytes: %v", err)
	}

	// More collateral than the user holds.
	_, err = b.Execute(tradeEnvelope(instruction.BuyFor{
		Multiplier: 1,
		Amount:     400 * fixedpoint.Scale,
		Prices:     []uint64{2 * fixedpoint.Scale, 3 * fixedpoint.Scale},
	}, key(1), key(2)))
	if !program.IsCode(err, program.CodeInsufficientFunds) {
		t.Fatalf("got %v, want insufficient funds", err)
	}

	after, err := b.RecordBytes(key(0x51))
	if err != nil {
		t.Fatalf("RecordBytes: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("failed transition mutated the record")
	}
	if got := mustBalance(t, b, key(0x62)); got != 500*fixedpoint.Scale {
		t.Fatalf("user collateral = %d, want untouched %d", got, 500*fixedpoint.Scale)
	}
}

func TestExecute_NoArchive(t *testing.T) {
	b := newTestBank(t, nil)
	snap, err := b.Execute(initializeEnvelope())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if snap.Defined() {
		t.Fatalf("snapshot produced without an archive")
	}
}
