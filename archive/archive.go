// Package archive defines content-addressed storage for synchronizer record
// snapshots. Every successful record-mutating transition can be archived;
// the snapshot's CID is the stable audit handle for that state.
package archive

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Archive is a minimal content-addressable snapshot store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored snapshots MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type Archive interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// SnapshotCID returns the CIDv1 (raw multicodec, sha2-256 multihash)
// addressing a snapshot's bytes.
func SnapshotCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
