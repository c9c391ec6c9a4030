// Package instruction implements the Synchronizer command wire format.
//
// A serialized instruction is a single tag byte followed by the variant's
// fields: little-endian fixed-width integers first, then length-prefixed
// collections (a one-byte element count, then that many fixed-size
// elements). Encode and Decode are exact inverses for every variant.
package instruction

import (
	"encoding/binary"

	"xdao.co/synchronizer/program"
)

// Instruction tags. Values are fixed by the wire format.
const (
	TagBuyFor byte = iota
	TagSellFor
	TagInitialize
	TagSetMinimumRequiredSignatures
	TagSetCollateralToken
	TagSetRemainingDollarCap
	TagWithdrawFee
	TagWithdrawCollateral
	TagSetOracles
)

// Instruction is the decoded form of one Synchronizer command. It is built
// by Decode, consumed by the dispatcher, and never persisted.
type Instruction interface {
	// Tag returns the wire tag identifying the variant.
	Tag() byte
}

// BuyFor mints fiat tokens to a user against collateral at an
// oracle-attested price.
type BuyFor struct {
	Multiplier uint64
	Amount     uint64
	Fee        uint64
	Prices     []uint64
}

// SellFor burns a user's fiat tokens and pays out collateral at an
// oracle-attested price.
type SellFor struct {
	Multiplier uint64
	Amount     uint64
	Fee        uint64
	Prices     []uint64
}

// Initialize sets up a synchronizer record exactly once.
type Initialize struct {
	CollateralToken           program.PublicKey
	RemainingDollarCap        uint64
	WithdrawableFeeAmount     uint64
	MinimumRequiredSignatures uint8
	Oracles                   []program.PublicKey
}

// SetMinimumRequiredSignatures changes the oracle quorum threshold.
type SetMinimumRequiredSignatures struct {
	MinimumRequiredSignatures uint8
}

// SetCollateralToken changes the accepted collateral mint.
type SetCollateralToken struct {
	CollateralToken program.PublicKey
}

// SetRemainingDollarCap overwrites the remaining issuance headroom.
type SetRemainingDollarCap struct {
	RemainingDollarCap uint64
}

// WithdrawFee pays accrued protocol fees out to a recipient.
type WithdrawFee struct {
	Amount uint64
}

// WithdrawCollateral pays collateral out to a recipient without touching
// fee or cap bookkeeping.
type WithdrawCollateral struct {
	Amount uint64
}

// SetOracles overwrites the record's oracle set; stale slots are zero-filled.
type SetOracles struct {
	Oracles []program.PublicKey
}

func (BuyFor) Tag() byte                       { return TagBuyFor }
func (SellFor) Tag() byte                      { return TagSellFor }
func (Initialize) Tag() byte                   { return TagInitialize }
func (SetMinimumRequiredSignatures) Tag() byte { return TagSetMinimumRequiredSignatures }
func (SetCollateralToken) Tag() byte           { return TagSetCollateralToken }
func (SetRemainingDollarCap) Tag() byte        { return TagSetRemainingDollarCap }
func (WithdrawFee) Tag() byte                  { return TagWithdrawFee }
func (WithdrawCollateral) Tag() byte           { return TagWithdrawCollateral }
func (SetOracles) Tag() byte                   { return TagSetOracles }

// Decode parses a serialized instruction. Any malformed input (empty buffer,
// truncated field, list count overrunning the buffer, unknown tag) fails
// with InvalidInstruction.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, program.NewError(program.CodeInvalidInstruction)
	}
	r := reader{buf: data[1:]}

	var inst Instruction
	switch data[0] {
	case TagBuyFor, TagSellFor:
		multiplier := r.u64()
		amount := r.u64()
		fee := r.u64()
		prices := r.u64List()
		if data[0] == TagBuyFor {
			inst = BuyFor{Multiplier: multiplier, Amount: amount, Fee: fee, Prices: prices}
		} else {
			inst = SellFor{Multiplier: multiplier, Amount: amount, Fee: fee, Prices: prices}
		}

	case TagInitialize:
		inst = Initialize{
			CollateralToken:           r.pubkey(),
			RemainingDollarCap:        r.u64(),
			WithdrawableFeeAmount:     r.u64(),
			MinimumRequiredSignatures: r.u8(),
			Oracles:                   r.pubkeyList(),
		}

	case TagSetMinimumRequiredSignatures:
		inst = SetMinimumRequiredSignatures{MinimumRequiredSignatures: r.u8()}

	case TagSetCollateralToken:
		inst = SetCollateralToken{CollateralToken: r.pubkey()}

	case TagSetRemainingDollarCap:
		inst = SetRemainingDollarCap{RemainingDollarCap: r.u64()}

	case TagWithdrawFee:
		inst = WithdrawFee{Amount: r.u64()}

	case TagWithdrawCollateral:
		inst = WithdrawCollateral{Amount: r.u64()}

	case TagSetOracles:
		inst = SetOracles{Oracles: r.pubkeyList()}

	default:
		return nil, program.NewError(program.CodeInvalidInstruction)
	}

	if r.failed {
		return nil, program.NewError(program.CodeInvalidInstruction)
	}
	return inst, nil
}

// Encode serializes an instruction. It is the exact inverse of Decode and
// never fails for an in-memory instruction.
func Encode(inst Instruction) []byte {
	w := writer{buf: []byte{inst.Tag()}}
	switch v := inst.(type) {
	case BuyFor:
		w.u64(v.Multiplier)
		w.u64(v.Amount)
		w.u64(v.Fee)
		w.u64List(v.Prices)
	case SellFor:
		w.u64(v.Multiplier)
		w.u64(v.Amount)
		w.u64(v.Fee)
		w.u64List(v.Prices)
	case Initialize:
		w.pubkey(v.CollateralToken)
		w.u64(v.RemainingDollarCap)
		w.u64(v.WithdrawableFeeAmount)
		w.u8(v.MinimumRequiredSignatures)
		w.pubkeyList(v.Oracles)
	case SetMinimumRequiredSignatures:
		w.u8(v.MinimumRequiredSignatures)
	case SetCollateralToken:
		w.pubkey(v.CollateralToken)
	case SetRemainingDollarCap:
		w.u64(v.RemainingDollarCap)
	case WithdrawFee:
		w.u64(v.Amount)
	case WithdrawCollateral:
		w.u64(v.Amount)
	case SetOracles:
		w.pubkeyList(v.Oracles)
	}
	return w.buf
}

// reader is a cursor over the field bytes. The first failed read poisons the
// cursor; Decode checks the flag once at the end instead of threading an
// error through every field.
type reader struct {
	buf    []byte
	failed bool
}

func (r *reader) take(n int) []byte {
	if r.failed || len(r.buf) < n {
		r.failed = true
		return nil
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) pubkey() program.PublicKey {
	var pk program.PublicKey
	b := r.take(program.PublicKeyLen)
	if b == nil {
		return pk
	}
	copy(pk[:], b)
	return pk
}

func (r *reader) u64List() []uint64 {
	n := int(r.u8())
	if r.failed {
		return nil
	}
	out := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.u64())
	}
	if r.failed {
		return nil
	}
	return out
}

func (r *reader) pubkeyList() []program.PublicKey {
	n := int(r.u8())
	if r.failed {
		return nil
	}
	out := make([]program.PublicKey, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.pubkey())
	}
	if r.failed {
		return nil
	}
	return out
}

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) pubkey(pk program.PublicKey) {
	w.buf = append(w.buf, pk[:]...)
}

func (w *writer) u64List(vs []uint64) {
	w.u8(uint8(len(vs)))
	for _, v := range vs {
		w.u64(v)
	}
}

func (w *writer) pubkeyList(pks []program.PublicKey) {
	w.u8(uint8(len(pks)))
	for _, pk := range pks {
		w.pubkey(pk)
	}
}
