// Package localfs persists record snapshots as read-only files on a local
// filesystem. It is the durable backend for single-host deployments.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/synchronizer/archive"
)

// Archive lays snapshots out as root/<shard>/<cid>.snap, where shard is the
// first two characters of the CID string. A snapshot file is written once,
// published atomically by rename and left read-only; its bytes are served
// back only while they still hash to the requested CID.
type Archive struct {
	root string
}

// New opens an archive rooted at dir, creating the directory if needed.
func New(dir string) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Archive{root: dir}, nil
}

// Put stores one snapshot. Storing the same snapshot again is a no-op;
// finding different bytes already filed under its CID is an immutability
// violation, never repaired in place.
func (a *Archive) Put(snapshot []byte) (cid.Cid, error) {
	if len(snapshot) == 0 {
		return cid.Undef, archive.ErrEmptySnapshot
	}
	id, err := archive.SnapshotCID(snapshot)
	if err != nil {
		return cid.Undef, err
	}

	path := a.pathFor(id)
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !bytes.Equal(existing, snapshot) {
			return cid.Undef, archive.ErrImmutable
		}
		return id, nil
	case !os.IsNotExist(err):
		// Present but unreadable counts as an immutability violation.
		return cid.Undef, archive.ErrImmutable
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+id.String()+".*")
	if err != nil {
		return cid.Undef, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(snapshot); err != nil {
		tmp.Close()
		return cid.Undef, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return cid.Undef, err
	}
	if err := tmp.Chmod(0o444); err != nil {
		tmp.Close()
		return cid.Undef, err
	}
	if err := tmp.Close(); err != nil {
		return cid.Undef, err
	}
	// Rename publishes the snapshot atomically, so a reader never observes
	// a partial file. A concurrent Put of the same CID wrote the same bytes.
	if err := os.Rename(tmp.Name(), path); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Get re-derives the CID from the bytes on disk before returning them, so
// silent corruption surfaces as ErrCIDMismatch instead of bad data.
func (a *Archive) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, archive.ErrInvalidCID
	}
	b, err := os.ReadFile(a.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, archive.ErrNotFound
		}
		return nil, err
	}
	got, err := archive.SnapshotCID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, archive.ErrCIDMismatch
	}
	return b, nil
}

func (a *Archive) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(a.pathFor(id))
	return err == nil
}

func (a *Archive) pathFor(id cid.Cid) string {
	s := id.String()
	shard := s
	if len(s) >= 2 {
		shard = s[:2]
	}
	return filepath.Join(a.root, shard, s+".snap")
}
