package finalize

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/godebootstrap/godebootstrap/internal/mirror"
	"github.com/godebootstrap/godebootstrap/internal/target"
)

func newTestTree(t *testing.T) *target.Tree {
	t.Helper()
	dir := t.TempDir()
	tree, err := target.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestWriteSourcesList_HTTP(t *testing.T) {
	tree := newTestTree(t)
	f := &Finalizer{
		Tree:   tree,
		Mirror: mirror.Mirror{Scheme: mirror.SchemeHTTP, Host: "deb.debian.org", Path: "/debian"},
		Suite:  "bookworm",
	}
	if err := f.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(tree.Path("etc/apt/sources.list"))
	if err != nil {
		t.Fatalf("read sources.list: %v", err)
	}
	want := "deb http://deb.debian.org/debian bookworm main\n"
	if string(data) != want {
		t.Errorf("sources.list = %q, want %q", data, want)
	}
}

func TestWriteSourcesList_FileSchemeSkipsWrite(t *testing.T) {
	tree := newTestTree(t)
	f := &Finalizer{
		Tree:   tree,
		Mirror: mirror.Mirror{Scheme: mirror.SchemeFile, Path: "/srv/mirror"},
		Suite:  "bookworm",
	}
	if err := f.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(tree.Path("etc/apt/sources.list")); !os.IsNotExist(err) {
		t.Errorf("expected no sources.list for file scheme, stat err = %v", err)
	}
}

func TestWriteHosts_Overwrites(t *testing.T) {
	tree := newTestTree(t)
	if err := tree.CreateDir("etc"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tree.Path("etc/hosts"), []byte("stale content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &Finalizer{
		Tree:   tree,
		Mirror: mirror.Mirror{Scheme: mirror.SchemeFile, Path: "/srv/mirror"},
		Suite:  "bookworm",
	}
	if err := f.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(tree.Path("etc/hosts"))
	if err != nil {
		t.Fatalf("read hosts: %v", err)
	}
	if string(data) != "127.0.0.1 localhost\n" {
		t.Errorf("hosts = %q", data)
	}
}

func TestCopyResolvConf_MissingHostFileIsNotAnError(t *testing.T) {
	tree := newTestTree(t)
	f := &Finalizer{
		Tree:   tree,
		Mirror: mirror.Mirror{Scheme: mirror.SchemeFile, Path: "/srv/mirror"},
		Suite:  "bookworm",
	}

	orig := resolvConfPath
	resolvConfPath = filepath.Join(tree.Root(), "no-such-resolv.conf")
	defer func() { resolvConfPath = orig }()

	if err := f.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(tree.Path("etc/resolv.conf")); !os.IsNotExist(err) {
		t.Errorf("expected no resolv.conf written, stat err = %v", err)
	}
}

func TestCopyResolvConf_CopiesHostFile(t *testing.T) {
	tree := newTestTree(t)

	hostResolv := filepath.Join(t.TempDir(), "resolv.conf")
	if err := os.WriteFile(hostResolv, []byte("nameserver 9.9.9.9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := resolvConfPath
	resolvConfPath = hostResolv
	defer func() { resolvConfPath = orig }()

	f := &Finalizer{
		Tree:   tree,
		Mirror: mirror.Mirror{Scheme: mirror.SchemeFile, Path: "/srv/mirror"},
		Suite:  "bookworm",
	}
	if err := f.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(tree.Path("etc/resolv.conf"))
	if err != nil {
		t.Fatalf("read resolv.conf: %v", err)
	}
	if string(data) != "nameserver 9.9.9.9\n" {
		t.Errorf("resolv.conf = %q", data)
	}
}

func TestForeignFinish_DefersSourcesListAndInitSwap(t *testing.T) {
	tree := newTestTree(t)
	var script bytes.Buffer

	orig := resolvConfPath
	resolvConfPath = filepath.Join(tree.Root(), "no-such-resolv.conf")
	defer func() { resolvConfPath = orig }()

	f := &Finalizer{
		Tree:   tree,
		Mirror: mirror.Mirror{Scheme: mirror.SchemeHTTP, Host: "deb.debian.org", Path: "/debian"},
		Suite:  "bookworm",
		Script: &script,
	}
	if err := f.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(tree.Path("etc/apt/sources.list")); !os.IsNotExist(err) {
		t.Errorf("sources.list must not be written directly in foreign mode, stat err = %v", err)
	}

	got := script.String()
	want := "echo 'deb http://deb.debian.org/debian bookworm main' > /etc/apt/sources.list\n" +
		"mv /sbin/init /sbin/init.foreign\n" +
		"ln -sf /sbin/cdebootstrap-foreign /sbin/init\n" +
		"rm -rf /sbin/cdebootstrap-foreign.d\n"
	if got != want {
		t.Errorf("script =\n%q\nwant\n%q", got, want)
	}
}

func TestEscapeSingleQuotes(t *testing.T) {
	got := escapeSingleQuotes("deb http://x/y o'brien main")
	want := "deb http://x/y o'\\''brien main"
	if got != want {
		t.Errorf("escapeSingleQuotes = %q, want %q", got, want)
	}
}
