// Package state implements the persisted synchronizer record and its
// fixed-width binary layout.
package state

import (
	"encoding/binary"

	"xdao.co/synchronizer/program"
)

// RecordLen is the exact serialized size of a Record:
// 1 + 32 + 8 + 8 + 1 + 32*MaxOracles.
const RecordLen = 1 + program.PublicKeyLen + 8 + 8 + 1 + program.PublicKeyLen*program.MaxOracles

// Record is the synchronizer's persisted state. There is one record per
// deployed exchange instance; it is owned exclusively by the program and
// mutated only by transition handlers.
type Record struct {
	// IsInitialized guards against double-init and against operating on an
	// uninitialized record.
	IsInitialized bool
	// CollateralToken is the mint of the ledger asset accepted as collateral.
	CollateralToken program.PublicKey
	// RemainingDollarCap is the remaining issuance headroom, in collateral
	// fixed-point units. Decreases on buy, increases on sell.
	RemainingDollarCap uint64
	// WithdrawableFeeAmount is the accrued protocol fee balance.
	WithdrawableFeeAmount uint64
	// MinimumRequiredSignatures is the oracle quorum threshold.
	MinimumRequiredSignatures uint8
	// Oracles holds the known oracle identities; unused slots are zero.
	Oracles [program.MaxOracles]program.PublicKey
}

// UnpackUnchecked parses a record without requiring it to be initialized.
// Handlers use it so that Initialize can inspect a fresh record.
func UnpackUnchecked(src []byte) (Record, error) {
	var rec Record
	if len(src) != RecordLen {
		return rec, program.NewError(program.CodeInvalidAccountData)
	}
	switch src[0] {
	case 0:
		rec.IsInitialized = false
	case 1:
		rec.IsInitialized = true
	default:
		return rec, program.NewError(program.CodeInvalidAccountData)
	}
	off := 1
	copy(rec.CollateralToken[:], src[off:off+program.PublicKeyLen])
	off += program.PublicKeyLen
	rec.RemainingDollarCap = binary.LittleEndian.Uint64(src[off:])
	off += 8
	rec.WithdrawableFeeAmount = binary.LittleEndian.Uint64(src[off:])
	off += 8
	rec.MinimumRequiredSignatures = src[off]
	off++
	for i := 0; i < program.MaxOracles; i++ {
		copy(rec.Oracles[i][:], src[off:off+program.PublicKeyLen])
		off += program.PublicKeyLen
	}
	return rec, nil
}

// Unpack parses a record and requires it to be initialized. Read-only
// queries use this form.
func Unpack(src []byte) (Record, error) {
	rec, err := UnpackUnchecked(src)
	if err != nil {
		return rec, err
	}
	if !rec.IsInitialized {
		return Record{}, program.NewError(program.CodeNotInitialized)
	}
	return rec, nil
}

// Pack serializes the record into dst, which must be exactly RecordLen bytes.
func (r Record) Pack(dst []byte) error {
	if len(dst) != RecordLen {
		return program.NewError(program.CodeInvalidAccountData)
	}
	if r.IsInitialized {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	off := 1
	copy(dst[off:], r.CollateralToken[:])
	off += program.PublicKeyLen
	binary.LittleEndian.PutUint64(dst[off:], r.RemainingDollarCap)
	off += 8
	binary.LittleEndian.PutUint64(dst[off:], r.WithdrawableFeeAmount)
	off += 8
	dst[off] = r.MinimumRequiredSignatures
	off++
	for i := 0; i < program.MaxOracles; i++ {
		copy(dst[off:], r.Oracles[i][:])
		off += program.PublicKeyLen
	}
	return nil
}

// Bytes returns a freshly allocated serialization of the record.
func (r Record) Bytes() []byte {
	out := make([]byte, RecordLen)
	// Pack cannot fail on a RecordLen buffer.
	_ = r.Pack(out)
	return out
}

// HasOracle reports whether key is a member of the oracle set. The zero key
// never matches, so zero-filled slots cannot be claimed as oracles.
func (r Record) HasOracle(key program.PublicKey) bool {
	if key.IsZero() {
		return false
	}
	for _, oracle := range r.Oracles {
		if oracle == key {
			return true
		}
	}
	return false
}

// SetOracleSet zero-fills every slot, then copies the given oracles in.
// The caller is responsible for bounds-checking len(oracles).
func (r *Record) SetOracleSet(oracles []program.PublicKey) {
	r.Oracles = [program.MaxOracles]program.PublicKey{}
	for i, oracle := range oracles {
		r.Oracles[i] = oracle
	}
}
