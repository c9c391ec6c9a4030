package localfs

import (
	"os"
	"path/filepath"
	"testing"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/archive/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunConformance(t, func(t *testing.T) archive.Archive {
		t.Helper()
		a, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return a
	})
}

func TestLocalFS_SnapshotFileLayout(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	id, err := a.Put([]byte("record snapshot bytes"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	path := a.pathFor(id)
	if filepath.Ext(path) != ".snap" {
		t.Fatalf("snapshot file %q missing .snap suffix", path)
	}
	if got, want := filepath.Base(filepath.Dir(path)), id.String()[:2]; got != want {
		t.Fatalf("shard dir = %q, want %q", got, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o444 {
		t.Fatalf("snapshot file mode = %o, want 444", perm)
	}

	// The shard directory holds only the published file, no temp leftovers.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("shard dir has %d entries, want 1", len(entries))
	}
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original snapshot")
	id, err := a.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored snapshot out-of-band.
	path := a.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Get must detect hash mismatch.
	if _, err := a.Get(id); err != archive.ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, archive.ErrCIDMismatch)
	}

	// Put must not "repair" or overwrite the corrupted snapshot.
	if _, err := a.Put(orig); err != archive.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, archive.ErrImmutable)
	}

	// Sanity: the CID is still the CID of the original bytes.
	wantID, err := archive.SnapshotCID(orig)
	if err != nil {
		t.Fatalf("SnapshotCID failed: %v", err)
	}
	if id != wantID {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}
