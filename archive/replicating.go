package archive

import (
	"fmt"

	"github.com/ipfs/go-cid"
)

// Named associates an archive with a stable backend name.
//
// Used for multi-backend replication where callers need per-backend metadata
// (e.g., for reporting which mirror holds a snapshot).
type Named struct {
	Name    string
	Archive Archive
}

// Replicating writes every snapshot to all configured backends.
//
// Reads fall back in backend order. Writes go to all backends and require all
// returned CIDs to match (otherwise ErrCIDMismatch is returned).
//
// Use PutAll when you need the per-backend CID mapping.
type Replicating struct {
	Backends []Named
}

var _ Archive = (*Replicating)(nil)

// PutAll writes the same snapshot to all backends.
//
// It returns:
// - the canonical CID (computed from bytes)
// - a map of backend name -> returned CID
//
// If any backend returns a different CID, ErrCIDMismatch is returned.
func (r Replicating) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := SnapshotCID(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("archive: Replicating has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.Archive == nil {
			return cid.Undef, nil, fmt.Errorf("archive: nil archive for backend %q", b.Name)
		}
		got, err := b.Archive.Put(bytes)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Archive == nil {
			continue
		}
		out, err := b.Archive.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r Replicating) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.Archive != nil && b.Archive.Has(id) {
			return true
		}
	}
	return false
}
