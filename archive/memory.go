package archive

import (
	"sync"

	"github.com/ipfs/go-cid"
)

// Memory is a map-backed Archive for daemons without durable storage and for
// tests. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[cid.Cid][]byte
}

// NewMemory returns an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{snapshots: map[cid.Cid][]byte{}}
}

func (m *Memory) Put(bytes []byte) (cid.Cid, error) {
	if len(bytes) == 0 {
		return cid.Undef, ErrEmptySnapshot
	}
	id, err := SnapshotCID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.snapshots[id]; !exists {
		m.snapshots[id] = append([]byte(nil), bytes...)
	}
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.snapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[id]
	return ok
}
