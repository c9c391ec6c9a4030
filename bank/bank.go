// Package bank hosts the synchronizer program in-process. A Bank owns the
// host account table, the token ledger and the transition engine, and
// executes transaction envelopes against them, optionally archiving a
// snapshot of the record after every successful mutation.
//
// The bank trusts its caller to have authenticated envelope signer flags;
// it is the execution substrate for the daemon and for integration tests,
// not a consensus node.
package bank

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/processor"
	"xdao.co/synchronizer/program"
	"xdao.co/synchronizer/runtime"
	"xdao.co/synchronizer/state"
	"xdao.co/synchronizer/token"
)

// Bank is safe for concurrent use; envelopes execute one at a time, which
// gives each invocation the exclusive account access the engine assumes.
type Bank struct {
	mu       sync.Mutex
	rent     runtime.Rent
	accounts map[program.PublicKey]*runtime.Account
	ledger   *token.InMemory
	proc     *processor.Processor
	archive  archive.Archive
}

// New returns an empty bank. arch may be nil to disable snapshotting.
func New(arch archive.Archive) *Bank {
	ledger := token.NewInMemory()
	rent := runtime.DefaultRent()
	return &Bank{
		rent:     rent,
		accounts: make(map[program.PublicKey]*runtime.Account),
		ledger:   ledger,
		proc:     processor.New(ledger, rent),
		archive:  arch,
	}
}

// Ledger exposes the bank's token ledger for provisioning.
func (b *Bank) Ledger() *token.InMemory { return b.ledger }

// CreateRecordAccount allocates a rent-exempt, program-owned record account.
func (b *Bank) CreateRecordAccount(key program.PublicKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[key]; exists {
		return program.NewError(program.CodeAlreadyInitialized)
	}
	b.accounts[key] = &runtime.Account{
		Key:      key,
		Owner:    program.ID,
		Lamports: b.rent.MinimumBalance(state.RecordLen),
		Data:     make([]byte, state.RecordLen),
	}
	return nil
}

// Execute runs one envelope. On success it returns the CID of the archived
// record snapshot, or cid.Undef when the bank has no archive or the
// transition did not touch a record account.
func (b *Bank) Execute(env Envelope) (cid.Cid, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	views := make([]*runtime.Account, 0, len(env.Accounts))
	for _, meta := range env.Accounts {
		acc, ok := b.accounts[meta.Key]
		if !ok {
			// Authority and oracle keys have no backing storage; they
			// exist only as signer identities for this invocation.
			acc = &runtime.Account{Key: meta.Key}
		}
		view := *acc
		view.IsSigner = meta.IsSigner
		views = append(views, &view)
	}

	if err := b.proc.Process(program.ID, views, env.Instruction); err != nil {
		return cid.Undef, err
	}

	if b.archive == nil {
		return cid.Undef, nil
	}
	for _, view := range views {
		if view.Owner == program.ID && len(view.Data) == state.RecordLen {
			return b.archive.Put(view.Data)
		}
	}
	return cid.Undef, nil
}

// RecordBytes returns a copy of a record account's raw bytes.
func (b *Bank) RecordBytes(key program.PublicKey) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[key]
	if !ok || acc.Owner != program.ID {
		return nil, program.NewError(program.CodeInvalidAccountData)
	}
	return append([]byte(nil), acc.Data...), nil
}

// Record returns a record account's parsed, initialized state.
func (b *Bank) Record(key program.PublicKey) (state.Record, error) {
	raw, err := b.RecordBytes(key)
	if err != nil {
		return state.Record{}, err
	}
	return state.Unpack(raw)
}

// Balance returns a token account's balance.
func (b *Bank) Balance(key program.PublicKey) (uint64, error) {
	acc, err := b.ledger.Account(key)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}
