package archive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"
)

// mismatchArchive returns a CID that cannot match the canonical one.
type mismatchArchive struct{ inner *Memory }

func (m mismatchArchive) Put(b []byte) (cid.Cid, error) {
	if _, err := m.inner.Put(b); err != nil {
		return cid.Undef, err
	}
	id, err := SnapshotCID(append([]byte("x"), b...))
	return id, err
}
func (m mismatchArchive) Get(id cid.Cid) ([]byte, error) { return m.inner.Get(id) }
func (m mismatchArchive) Has(id cid.Cid) bool            { return m.inner.Has(id) }

func TestReplicating_PutAll(t *testing.T) {
	primary := NewMemory()
	mirror := NewMemory()
	r := Replicating{Backends: []Named{
		{Name: "primary", Archive: primary},
		{Name: "mirror", Archive: mirror},
	}}

	payload := []byte("record snapshot")
	id, perBackend, err := r.PutAll(payload)
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if len(perBackend) != 2 || perBackend["primary"] != id || perBackend["mirror"] != id {
		t.Fatalf("per-backend CIDs diverge: %v", perBackend)
	}
	if !primary.Has(id) || !mirror.Has(id) {
		t.Fatalf("snapshot missing from a backend")
	}
}

func TestReplicating_GetFallsBack(t *testing.T) {
	primary := NewMemory()
	mirror := NewMemory()
	r := Replicating{Backends: []Named{
		{Name: "primary", Archive: primary},
		{Name: "mirror", Archive: mirror},
	}}

	payload := []byte("only on the mirror")
	id, err := mirror.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
	if !r.Has(id) {
		t.Fatalf("Has: expected true")
	}

	missing, err := SnapshotCID([]byte("absent"))
	if err != nil {
		t.Fatalf("SnapshotCID: %v", err)
	}
	if _, err := r.Get(missing); !IsNotFound(err) {
		t.Fatalf("Get(missing): got %v, want not found", err)
	}
}

func TestReplicating_CIDMismatch(t *testing.T) {
	r := Replicating{Backends: []Named{
		{Name: "good", Archive: NewMemory()},
		{Name: "bad", Archive: mismatchArchive{inner: NewMemory()}},
	}}
	if _, err := r.Put([]byte("snapshot")); !errors.Is(err, ErrCIDMismatch) {
		t.Fatalf("got %v, want cid mismatch", err)
	}

	empty := Replicating{}
	if _, err := empty.Put([]byte("snapshot")); err == nil {
		t.Fatalf("empty replicating accepted a put")
	}
}
