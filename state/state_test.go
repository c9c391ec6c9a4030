package state

import (
	"testing"

	"xdao.co/synchronizer/program"
)

func key(b byte) program.PublicKey {
	var pk program.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func sample() Record {
	rec := Record{
		IsInitialized:             true,
		CollateralToken:           key(7),
		RemainingDollarCap:        500_000_000_000,
		WithdrawableFeeAmount:     40_000_000,
		MinimumRequiredSignatures: 2,
	}
	rec.SetOracleSet([]program.PublicKey{key(1), key(2)})
	return rec
}

func TestRecordLen(t *testing.T) {
	if RecordLen != 370 {
		t.Fatalf("RecordLen = %d, want 370", RecordLen)
	}
	if len(sample().Bytes()) != 370 {
		t.Fatalf("Bytes length mismatch")
	}
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	want := sample()
	got, err := Unpack(want.Bytes())
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestUnpack_RequiresInitialized(t *testing.T) {
	rec := sample()
	rec.IsInitialized = false

	if _, err := Unpack(rec.Bytes()); !program.IsCode(err, program.CodeNotInitialized) {
		t.Fatalf("expected NotInitialized, got %v", err)
	}
	got, err := UnpackUnchecked(rec.Bytes())
	if err != nil {
		t.Fatalf("UnpackUnchecked: %v", err)
	}
	if got.IsInitialized {
		t.Fatalf("expected uninitialized record")
	}
}

func TestUnpack_BadInitByte(t *testing.T) {
	b := sample().Bytes()
	b[0] = 2
	if _, err := UnpackUnchecked(b); !program.IsCode(err, program.CodeInvalidAccountData) {
		t.Fatalf("expected InvalidAccountData, got %v", err)
	}
}

func TestUnpack_WrongLength(t *testing.T) {
	for _, n := range []int{0, 1, RecordLen - 1, RecordLen + 1} {
		if _, err := UnpackUnchecked(make([]byte, n)); !program.IsCode(err, program.CodeInvalidAccountData) {
			t.Fatalf("len %d: expected InvalidAccountData, got %v", n, err)
		}
	}
}

func TestPack_WrongLength(t *testing.T) {
	if err := sample().Pack(make([]byte, RecordLen-1)); !program.IsCode(err, program.CodeInvalidAccountData) {
		t.Fatalf("expected InvalidAccountData, got %v", err)
	}
}

func TestHasOracle(t *testing.T) {
	rec := sample()
	if !rec.HasOracle(key(1)) || !rec.HasOracle(key(2)) {
		t.Fatalf("expected membership for configured oracles")
	}
	if rec.HasOracle(key(3)) {
		t.Fatalf("unexpected membership")
	}
	// Zero-filled slots must not be claimable.
	if rec.HasOracle(program.PublicKey{}) {
		t.Fatalf("zero key must never be a member")
	}
}

func TestSetOracleSet_ZeroFillsStaleSlots(t *testing.T) {
	rec := sample()
	full := make([]program.PublicKey, program.MaxOracles)
	for i := range full {
		full[i] = key(byte(10 + i))
	}
	rec.SetOracleSet(full)
	for i := range full {
		if rec.Oracles[i] != full[i] {
			t.Fatalf("slot %d not overwritten", i)
		}
	}

	rec.SetOracleSet([]program.PublicKey{key(99)})
	if rec.Oracles[0] != key(99) {
		t.Fatalf("slot 0 not set")
	}
	for i := 1; i < program.MaxOracles; i++ {
		if !rec.Oracles[i].IsZero() {
			t.Fatalf("stale slot %d not zero-filled", i)
		}
	}
}
