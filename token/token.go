// Package token defines the external fungible-token ledger the program
// moves balances through. The core only ever talks to the Ledger interface;
// InMemory is a reference implementation for daemons and tests.
package token

import (
	"errors"

	"xdao.co/synchronizer/program"
)

var (
	ErrAccountNotFound   = errors.New("token: account not found")
	ErrMintNotFound      = errors.New("token: mint not found")
	ErrAccountExists     = errors.New("token: account already exists")
	ErrMintExists        = errors.New("token: mint already exists")
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrOwnerMismatch     = errors.New("token: owner mismatch")
	ErrAuthorityMismatch = errors.New("token: authority mismatch")
	ErrMintMismatch      = errors.New("token: account mint mismatch")
	ErrAmountOverflow    = errors.New("token: amount overflow")
)

// Account is a token holding: balance of one mint owned by one identity.
type Account struct {
	Mint   program.PublicKey
	Owner  program.PublicKey
	Amount uint64
}

// Mint describes one token type.
type Mint struct {
	Decimals uint8
	// Authority may mint new supply. HasAuthority is false for fixed-supply
	// mints.
	Authority    program.PublicKey
	HasAuthority bool
}

// Ledger is the narrow interface the transition engine consumes.
//
// Contract:
//   - Account/Mint return the sentinel not-found errors above for unknown keys.
//   - Transfer requires authority to be the source owner and sufficient funds.
//   - MintTo requires authority to be the mint authority and the destination
//     to hold the same mint.
//   - Burn requires authority to be the source owner and the source to hold
//     the given mint.
//   - Balance mutations never wrap on overflow or underflow.
type Ledger interface {
	Account(key program.PublicKey) (Account, error)
	Mint(key program.PublicKey) (Mint, error)
	Transfer(from, to, authority program.PublicKey, amount uint64) error
	MintTo(mint, dest, authority program.PublicKey, amount uint64) error
	Burn(source, mint, authority program.PublicKey, amount uint64) error
}
