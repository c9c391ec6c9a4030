package archive_test

import (
	"testing"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/archive/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunConformance(t, func(t *testing.T) archive.Archive {
		return archive.NewMemory()
	})
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	a := archive.NewMemory()
	id, err := a.Put([]byte("snapshot"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	b, err := a.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	b[0] ^= 0xFF

	again, err := a.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(again) != "snapshot" {
		t.Fatalf("stored snapshot mutated through Get result")
	}
}
