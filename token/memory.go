package token

import (
	"math/bits"
	"sync"

	"xdao.co/synchronizer/program"
)

// InMemory is a map-backed Ledger. It is safe for concurrent use; each
// method is one atomic ledger operation.
type InMemory struct {
	mu       sync.Mutex
	accounts map[program.PublicKey]Account
	mints    map[program.PublicKey]Mint
}

// NewInMemory returns an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[program.PublicKey]Account),
		mints:    make(map[program.PublicKey]Mint),
	}
}

// CreateMint registers a new mint.
func (l *InMemory) CreateMint(key program.PublicKey, m Mint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.mints[key]; exists {
		return ErrMintExists
	}
	l.mints[key] = m
	return nil
}

// CreateAccount registers a new, empty token account for an existing mint.
func (l *InMemory) CreateAccount(key, mint, owner program.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.accounts[key]; exists {
		return ErrAccountExists
	}
	if _, exists := l.mints[mint]; !exists {
		return ErrMintNotFound
	}
	l.accounts[key] = Account{Mint: mint, Owner: owner}
	return nil
}

func (l *InMemory) Account(key program.PublicKey) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[key]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acc, nil
}

func (l *InMemory) Mint(key program.PublicKey) (Mint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[key]
	if !ok {
		return Mint{}, ErrMintNotFound
	}
	return m, nil
}

func (l *InMemory) Transfer(from, to, authority program.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accounts[from]
	if !ok {
		return ErrAccountNotFound
	}
	dst, ok := l.accounts[to]
	if !ok {
		return ErrAccountNotFound
	}
	if src.Owner != authority {
		return ErrOwnerMismatch
	}
	if src.Mint != dst.Mint {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	// A self-transfer passes every check and moves nothing.
	if from == to {
		return nil
	}
	sum, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return ErrAmountOverflow
	}
	src.Amount -= amount
	dst.Amount = sum
	l.accounts[from] = src
	l.accounts[to] = dst
	return nil
}

func (l *InMemory) MintTo(mint, dest, authority program.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[mint]
	if !ok {
		return ErrMintNotFound
	}
	if !m.HasAuthority || m.Authority != authority {
		return ErrAuthorityMismatch
	}
	dst, ok := l.accounts[dest]
	if !ok {
		return ErrAccountNotFound
	}
	if dst.Mint != mint {
		return ErrMintMismatch
	}
	sum, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return ErrAmountOverflow
	}
	dst.Amount = sum
	l.accounts[dest] = dst
	return nil
}

func (l *InMemory) Burn(source, mint, authority program.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accounts[source]
	if !ok {
		return ErrAccountNotFound
	}
	if _, ok := l.mints[mint]; !ok {
		return ErrMintNotFound
	}
	if src.Mint != mint {
		return ErrMintMismatch
	}
	if src.Owner != authority {
		return ErrOwnerMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	src.Amount -= amount
	l.accounts[source] = src
	return nil
}
