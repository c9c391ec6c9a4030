package instruction

import (
	"bytes"
	"reflect"
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

func TestEncode_BuyForWireVector(t *testing.T) {
	inst := BuyFor{
		Multiplier: 5,
		Amount:     215,
		Fee:        100,
		Prices:     []uint64{211, 123, 300},
	}
	var want []byte
	want = append(want, 0)
	want = append(want, 5, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 215, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 100, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 3)
	want = append(want, 211, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 123, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 44, 1, 0, 0, 0, 0, 0, 0)

	got := Encode(inst)
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode mismatch:\n got %v\nwant %v", got, want)
	}

	back, err := Decode(want)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(back, inst) {
		t.Fatalf("Decode mismatch: %#v", back)
	}
}

func TestRoundTrip_AllVariants(t *testing.T) {
	cases := []Instruction{
		BuyFor{Multiplier: 2, Amount: 50_000_000_000, Fee: 1_000_000, Prices: []uint64{500_000_000, 400_000_000}},
		SellFor{Multiplier: 2, Amount: 100_000_000_000, Fee: 1_000_000, Prices: []uint64{500_000_000, 400_000_000}},
		Initialize{
			CollateralToken:           key(7),
			RemainingDollarCap:        500_000_000_000,
			WithdrawableFeeAmount:     250_000_000_000,
			MinimumRequiredSignatures: 2,
			Oracles:                   []program.PublicKey{key(1), key(2)},
		},
		SetMinimumRequiredSignatures{MinimumRequiredSignatures: 3},
		SetCollateralToken{CollateralToken: key(9)},
		SetRemainingDollarCap{RemainingDollarCap: 123456},
		WithdrawFee{Amount: 42},
		WithdrawCollateral{Amount: 43},
		SetOracles{Oracles: []program.PublicKey{key(1), key(2), key(3)}},
	}
	for _, want := range cases {
		got, err := Decode(Encode(want))
		if err != nil {
			t.Fatalf("Decode(%T): %v", want, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch for %T:\n got %#v\nwant %#v", want, got, want)
		}
	}
}

func TestRoundTrip_EmptyLists(t *testing.T) {
	got, err := Decode(Encode(SetOracles{}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	so, ok := got.(SetOracles)
	if !ok {
		t.Fatalf("expected SetOracles, got %T", got)
	}
	if len(so.Oracles) != 0 {
		t.Fatalf("expected empty oracle list, got %d entries", len(so.Oracles))
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{9}},
		{"buy truncated multiplier", []byte{0, 1, 2, 3}},
		{"buy missing count", Encode(BuyFor{Multiplier: 1, Amount: 2, Fee: 3})[:25]},
		{"buy count overruns buffer", overrunCount(Encode(BuyFor{Multiplier: 1, Amount: 2, Fee: 3}))},
		{"initialize truncated key", []byte{2, 1, 2, 3}},
		{"set cap truncated", []byte{5, 1, 2}},
		{"set oracles short element", append([]byte{8, 2}, make([]byte, 40)...)},
	}
	for _, c := range cases {
		if _, err := Decode(c.data); !program.IsCode(err, program.CodeInvalidInstruction) {
			t.Fatalf("%s: expected InvalidInstruction, got %v", c.name, err)
		}
	}
}

// overrunCount bumps the trailing count byte so the declared list length
// exceeds the remaining bytes.
func overrunCount(data []byte) []byte {
	out := append([]byte(nil), data...)
	out[len(out)-1]++
	return out
}

func TestDecode_CountMismatch(t *testing.T) {
	// Declared price count says 3 but only 2 entries follow.
	data := Encode(BuyFor{Multiplier: 1, Amount: 2, Fee: 3, Prices: []uint64{10, 20}})
	data[25] = 3
	if _, err := Decode(data); !program.IsCode(err, program.CodeInvalidInstruction) {
		t.Fatalf("expected InvalidInstruction, got %v", err)
	}
}
