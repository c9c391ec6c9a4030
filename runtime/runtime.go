// Package runtime models the host account environment the program executes
// in: account handles with owner/signer metadata and the rent-exemption
// predicate. The host serializes conflicting invocations, so nothing here
// performs locking of its own.
package runtime

import "xdao.co/synchronizer/program"

// Account is one host-supplied account handle for a single invocation.
// Data aliases the host's buffer; a handler that packs new record bytes
// into it has persisted them.
type Account struct {
	Key      program.PublicKey
	Owner    program.PublicKey
	IsSigner bool
	Lamports uint64
	Data     []byte
}

// Rent is the host's storage-pricing schedule used for the rent-exemption
// check on Initialize.
type Rent struct {
	// LamportsPerByteYear is the annual rent per stored byte.
	LamportsPerByteYear uint64
	// ExemptionThreshold is the number of years of rent a balance must
	// cover to be exempt.
	ExemptionThreshold uint64
}

// accountStorageOverhead is the host's fixed per-account byte overhead.
const accountStorageOverhead = 128

// DefaultRent returns the standard schedule.
func DefaultRent() Rent {
	return Rent{LamportsPerByteYear: 3480, ExemptionThreshold: 2}
}

// MinimumBalance returns the smallest lamport balance exempt from rent for
// an account with dataLen bytes of data.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(accountStorageOverhead + dataLen)
	return bytes * r.LamportsPerByteYear * r.ExemptionThreshold
}

// IsExempt reports whether the balance covers the exemption threshold.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
