// Package memregistry registers the in-memory archive backend. Import it for
// side effects in binaries that should accept --backend=memory.
package memregistry

import (
	"flag"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/archive/registry"
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "memory",
		Description: "In-memory snapshot archive (volatile)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (archive.Archive, func() error, error) {
			return archive.NewMemory(), nil, nil
		},
	})
}
