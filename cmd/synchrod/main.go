package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"xdao.co/synchronizer/archive"
	"xdao.co/synchronizer/archive/registry"
	"xdao.co/synchronizer/bank"
	"xdao.co/synchronizer/rpc"

	_ "xdao.co/synchronizer/archive/localfs"
	_ "xdao.co/synchronizer/archive/memregistry"
)

func main() {
	fs := flag.NewFlagSet("synchrod", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7707", "listen address")
	genesisPath := fs.String("genesis", "", "genesis config file (JSON)")
	backend := fs.String("backend", "memory", "archive backend name")
	mirror := fs.String("mirror", "", "optional second backend; snapshots replicate to both")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	registry.RegisterFlags(fs, registry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		registry.Describe(os.Stdout, registry.UsageDaemon)
		return
	}

	arch, closeFn, err := registry.Open(*backend, registry.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}
	if *mirror != "" {
		if *mirror == *backend {
			fmt.Fprintln(os.Stderr, "mirror backend must differ from the primary backend")
			os.Exit(2)
		}
		m, mClose, err := registry.Open(*mirror, registry.UsageDaemon)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if mClose != nil {
			defer mClose()
		}
		arch = archive.Replicating{Backends: []archive.Named{
			{Name: *backend, Archive: arch},
			{Name: *mirror, Archive: m},
		}}
	}

	b := bank.New(arch)
	if *genesisPath != "" {
		g, err := bank.LoadGenesisFile(*genesisPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := g.Apply(b); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	rpc.RegisterSynchronizerServer(s, &rpc.Server{Bank: b})

	fmt.Fprintf(os.Stderr, "synchrod listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
