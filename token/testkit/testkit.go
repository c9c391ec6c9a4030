// Package testkit holds a reusable conformance suite for token.Ledger
// implementations. A backend passes its constructor to Run and inherits the
// full behavioral contract checks.
package testkit

import (
	"errors"
	"testing"

	"xdao.co/synchronizer/program"
	"xdao.co/synchronizer/token"
)

// Mutable is the widened interface the suite needs: a Ledger whose contents
// the tests can seed.
type Mutable interface {
	token.Ledger
	CreateMint(key program.PublicKey, m token.Mint) error
	CreateAccount(key, mint, owner program.PublicKey) error
}

// Factory builds a fresh, empty ledger for one subtest.
type Factory func(t *testing.T) Mutable

// Run executes the conformance suite against the backend built by f.
func Run(t *testing.T, f Factory) {
	t.Helper()

	t.Run("AccountNotFound", func(t *testing.T) { testAccountNotFound(t, f(t)) })
	t.Run("MintNotFound", func(t *testing.T) { testMintNotFound(t, f(t)) })
	t.Run("CreateDuplicates", func(t *testing.T) { testCreateDuplicates(t, f(t)) })
	t.Run("Transfer", func(t *testing.T) { testTransfer(t, f(t)) })
	t.Run("TransferSelf", func(t *testing.T) { testTransferSelf(t, f(t)) })
	t.Run("TransferChecks", func(t *testing.T) { testTransferChecks(t, f(t)) })
	t.Run("MintTo", func(t *testing.T) { testMintTo(t, f(t)) })
	t.Run("MintToChecks", func(t *testing.T) { testMintToChecks(t, f(t)) })
	t.Run("Burn", func(t *testing.T) { testBurn(t, f(t)) })
	t.Run("BurnChecks", func(t *testing.T) { testBurnChecks(t, f(t)) })
	t.Run("Overflow", func(t *testing.T) { testOverflow(t, f(t)) })
}

func key(b byte) program.PublicKey {
	var pk program.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

var (
	mintA     = key(0xA0)
	mintB     = key(0xB0)
	authority = key(0xAA)
	alice     = key(1)
	bob       = key(2)
	accAlice  = key(0x1A)
	accBob    = key(0x2B)
)

// seed creates mintA with an authority, mintB without one, and accounts for
// alice and bob holding mintA. alice starts with 1000 units.
func seed(t *testing.T, l Mutable) {
	t.Helper()
	if err := l.CreateMint(mintA, token.Mint{Decimals: 9, Authority: authority, HasAuthority: true}); err != nil {
		t.Fatalf("CreateMint A: %v", err)
	}
	if err := l.CreateMint(mintB, token.Mint{Decimals: 9}); err != nil {
		t.Fatalf("CreateMint B: %v", err)
	}
	if err := l.CreateAccount(accAlice, mintA, alice); err != nil {
		t.Fatalf("CreateAccount alice: %v", err)
	}
	if err := l.CreateAccount(accBob, mintA, bob); err != nil {
		t.Fatalf("CreateAccount bob: %v", err)
	}
	if err := l.MintTo(mintA, accAlice, authority, 1000); err != nil {
		t.Fatalf("seed MintTo: %v", err)
	}
}

func balance(t *testing.T, l token.Ledger, acc program.PublicKey) uint64 {
	t.Helper()
	a, err := l.Account(acc)
	if err != nil {
		t.Fatalf("Account(%s): %v", acc, err)
	}
	return a.Amount
}

func testAccountNotFound(t *testing.T, l Mutable) {
	if _, err := l.Account(key(0xFF)); !errors.Is(err, token.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func testMintNotFound(t *testing.T, l Mutable) {
	if _, err := l.Mint(key(0xFF)); !errors.Is(err, token.ErrMintNotFound) {
		t.Fatalf("expected ErrMintNotFound, got %v", err)
	}
	if err := l.CreateAccount(key(3), key(0xFF), alice); !errors.Is(err, token.ErrMintNotFound) {
		t.Fatalf("account for unknown mint: expected ErrMintNotFound, got %v", err)
	}
}

func testCreateDuplicates(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.CreateMint(mintA, token.Mint{}); !errors.Is(err, token.ErrMintExists) {
		t.Fatalf("expected ErrMintExists, got %v", err)
	}
	if err := l.CreateAccount(accAlice, mintA, alice); !errors.Is(err, token.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func testTransfer(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.Transfer(accAlice, accBob, alice, 400); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := balance(t, l, accAlice); got != 600 {
		t.Fatalf("source balance = %d, want 600", got)
	}
	if got := balance(t, l, accBob); got != 400 {
		t.Fatalf("dest balance = %d, want 400", got)
	}
}

// A transfer from an account to itself must conserve the balance: the
// checks still apply, but no funds move.
func testTransferSelf(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.Transfer(accAlice, accAlice, alice, 40); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if got := balance(t, l, accAlice); got != 1000 {
		t.Fatalf("self transfer changed balance: %d, want 1000", got)
	}
	if err := l.Transfer(accAlice, accAlice, bob, 1); !errors.Is(err, token.ErrOwnerMismatch) {
		t.Fatalf("self transfer with wrong authority: expected ErrOwnerMismatch, got %v", err)
	}
	if err := l.Transfer(accAlice, accAlice, alice, 1001); !errors.Is(err, token.ErrInsufficientFunds) {
		t.Fatalf("self transfer beyond balance: expected ErrInsufficientFunds, got %v", err)
	}
	if got := balance(t, l, accAlice); got != 1000 {
		t.Fatalf("failed self transfer changed balance: %d, want 1000", got)
	}
}

func testTransferChecks(t *testing.T, l Mutable) {
	seed(t, l)
	accOther := key(0x3C)
	if err := l.CreateAccount(accOther, mintB, bob); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if err := l.Transfer(accAlice, accBob, bob, 1); !errors.Is(err, token.ErrOwnerMismatch) {
		t.Fatalf("wrong authority: expected ErrOwnerMismatch, got %v", err)
	}
	if err := l.Transfer(accAlice, accOther, alice, 1); !errors.Is(err, token.ErrMintMismatch) {
		t.Fatalf("cross-mint: expected ErrMintMismatch, got %v", err)
	}
	if err := l.Transfer(accAlice, accBob, alice, 1001); !errors.Is(err, token.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := l.Transfer(key(0xFF), accBob, alice, 1); !errors.Is(err, token.ErrAccountNotFound) {
		t.Fatalf("unknown source: expected ErrAccountNotFound, got %v", err)
	}

	// No failed call may have moved funds.
	if got := balance(t, l, accAlice); got != 1000 {
		t.Fatalf("source balance changed on failure: %d", got)
	}
	if got := balance(t, l, accBob); got != 0 {
		t.Fatalf("dest balance changed on failure: %d", got)
	}
}

func testMintTo(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.MintTo(mintA, accBob, authority, 250); err != nil {
		t.Fatalf("MintTo: %v", err)
	}
	if got := balance(t, l, accBob); got != 250 {
		t.Fatalf("balance = %d, want 250", got)
	}
}

func testMintToChecks(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.MintTo(mintA, accBob, bob, 1); !errors.Is(err, token.ErrAuthorityMismatch) {
		t.Fatalf("wrong authority: expected ErrAuthorityMismatch, got %v", err)
	}
	if err := l.MintTo(mintB, accBob, authority, 1); !errors.Is(err, token.ErrAuthorityMismatch) {
		t.Fatalf("fixed-supply mint: expected ErrAuthorityMismatch, got %v", err)
	}
	accB := key(0x4D)
	if err := l.CreateAccount(accB, mintB, bob); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := l.MintTo(mintA, accB, authority, 1); !errors.Is(err, token.ErrMintMismatch) {
		t.Fatalf("wrong dest mint: expected ErrMintMismatch, got %v", err)
	}
}

func testBurn(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.Burn(accAlice, mintA, alice, 300); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if got := balance(t, l, accAlice); got != 700 {
		t.Fatalf("balance = %d, want 700", got)
	}
}

func testBurnChecks(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.Burn(accAlice, mintA, bob, 1); !errors.Is(err, token.ErrOwnerMismatch) {
		t.Fatalf("wrong authority: expected ErrOwnerMismatch, got %v", err)
	}
	if err := l.Burn(accAlice, mintB, alice, 1); !errors.Is(err, token.ErrMintMismatch) {
		t.Fatalf("wrong mint: expected ErrMintMismatch, got %v", err)
	}
	if err := l.Burn(accAlice, mintA, alice, 1001); !errors.Is(err, token.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := balance(t, l, accAlice); got != 1000 {
		t.Fatalf("balance changed on failure: %d", got)
	}
}

func testOverflow(t *testing.T, l Mutable) {
	seed(t, l)
	if err := l.MintTo(mintA, accBob, authority, ^uint64(0)); err != nil {
		t.Fatalf("MintTo max: %v", err)
	}
	if err := l.MintTo(mintA, accBob, authority, 1); !errors.Is(err, token.ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
	if err := l.Transfer(accAlice, accBob, alice, 1); !errors.Is(err, token.ErrAmountOverflow) {
		t.Fatalf("transfer into full account: expected ErrAmountOverflow, got %v", err)
	}
	if got := balance(t, l, accAlice); got != 1000 {
		t.Fatalf("source debited on overflow: %d", got)
	}
}
