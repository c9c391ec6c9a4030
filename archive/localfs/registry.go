package localfs

import (
	"flag"
	"fmt"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/archive/registry"
)

var (
	flagLocalDir string
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "localfs",
		Description: "Local filesystem snapshot archive (directory)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "LocalFS archive directory (for --backend=localfs)")
		},
		Open: func() (archive.Archive, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			a, err := New(flagLocalDir)
			return a, nil, err
		},
	})
}
