// Package testkit holds a reusable conformance suite for archive.Archive
// implementations.
package testkit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/synchronizer/archive"
)

// NewArchive constructs a fresh, empty archive instance for a test.
// The returned archive MUST be isolated from other tests.
type NewArchive func(t *testing.T) archive.Archive

func RunConformance(t *testing.T, newArchive NewArchive) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		a := newArchive(t)
		want := []byte("synchronizer record snapshot")

		id, err := a.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := archive.SnapshotCID(want)
		if err != nil {
			t.Fatalf("SnapshotCID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := a.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}

		gotID, err := archive.SnapshotCID(got)
		if err != nil {
			t.Fatalf("SnapshotCID(got) failed: %v", err)
		}
		if gotID != id {
			t.Fatalf("Get returned bytes not matching requested CID")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		a := newArchive(t)
		b := []byte("same snapshot")

		id1, err := a.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := a.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		a := newArchive(t)
		b := []byte("missing snapshot")
		id, err := archive.SnapshotCID(b)
		if err != nil {
			t.Fatalf("SnapshotCID failed: %v", err)
		}

		if a.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		_, err = a.Get(id)
		if !archive.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := a.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !a.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectEmptySnapshot", func(t *testing.T) {
		a := newArchive(t)
		if _, err := a.Put(nil); !errors.Is(err, archive.ErrEmptySnapshot) {
			t.Fatalf("Put(empty): got err=%v want ErrEmptySnapshot", err)
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		a := newArchive(t)
		var undef cid.Cid
		if a.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := a.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}
