package registry

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"xdao.co/synchronizer/archive"
)

func testBackend(name string, usage Usage) Backend {
	return Backend{
		Name:          name,
		Description:   "desc " + name,
		Usage:         usage,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (archive.Archive, func() error, error) {
			return archive.NewMemory(), nil, nil
		},
	}
}

func TestRegisterValidation(t *testing.T) {
	if err := Register(Backend{}); err == nil {
		t.Fatal("backend without a name accepted")
	}
	b := testBackend("dup", UsageCLI)
	if err := Register(b); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(b); err == nil {
		t.Fatal("duplicate name accepted")
	}
}

func TestOpenUsageGate(t *testing.T) {
	MustRegister(testBackend("daemon-only", UsageDaemon))

	if _, _, err := Open("daemon-only", UsageCLI); err == nil {
		t.Fatal("CLI opened a daemon-only backend")
	}
	a, closeFn, err := Open("daemon-only", UsageDaemon)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	if a == nil {
		t.Fatal("Open returned a nil archive")
	}

	if _, _, err := Open("no-such-backend", UsageDaemon); err == nil {
		t.Fatal("unknown backend opened")
	}
}

func TestDescribe(t *testing.T) {
	MustRegister(testBackend("describe-me", UsageCLI))
	var buf bytes.Buffer
	Describe(&buf, UsageCLI)
	if !strings.Contains(buf.String(), "describe-me\tdesc describe-me") {
		t.Fatalf("Describe output missing backend: %q", buf.String())
	}
	buf.Reset()
	Describe(&buf, UsageDaemon)
	if strings.Contains(buf.String(), "describe-me") {
		t.Fatalf("Describe leaked a CLI-only backend to daemon usage: %q", buf.String())
	}
}
