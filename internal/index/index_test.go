package index

import (
	"bytes"
	"compress/gzip"
	"context"
	"testing"

	"github.com/godebootstrap/godebootstrap/internal/fetch"
	"github.com/godebootstrap/godebootstrap/internal/log"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/mirror"
	"github.com/godebootstrap/godebootstrap/internal/pgp"
)

const testRelease = `Codename: bookworm
Suite: stable
Components: main
Architectures: amd64
SHA256:
`

const testPackages = `Package: base
Version: 1.0
Architecture: amd64
Priority: required
`

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// routedFetcher dispatches StubFetcher responses by relative path
// suffix, simulating separate Release/Packages.gz retrievals.
type routedFetcher struct {
	byPath map[string][]byte
}

func (r *routedFetcher) Fetch(ctx context.Context, m mirror.Mirror, relPath, destPath string) error {
	for suffix, data := range r.byPath {
		if len(relPath) >= len(suffix) && relPath[len(relPath)-len(suffix):] == suffix {
			return (&fetch.StubFetcher{Data: data}).Fetch(ctx, m, relPath, destPath)
		}
	}
	return (&fetch.StubFetcher{Err: errNotFound}).Fetch(ctx, m, relPath, destPath)
}

var errNotFound = &notFoundError{}

type notFoundError struct{}

func (e *notFoundError) Error() string { return "not found" }

func newFetcher(t *testing.T, transport fetch.Fetcher, authentication bool) *Fetcher {
	t.Helper()
	m, err := mirror.Parse("http://ftp.debian.org/debian")
	if err != nil {
		t.Fatal(err)
	}
	return &Fetcher{
		Mirror:         m,
		Suite:          "bookworm",
		Arch:           "amd64",
		Mode:           ModeReleaseGPG,
		Authentication: authentication,
		CacheDir:       t.TempDir(),
		Verifier:       pgp.StubVerifier{},
		Transport:      transport,
		Sink:           logmsg.NewSink(log.NewNoop(), authentication),
	}
}

func TestDownloadIndices_Unauthenticated(t *testing.T) {
	transport := &routedFetcher{byPath: map[string][]byte{
		"Release":        []byte(testRelease),
		"Packages.gz":    gzipBytes(t, []byte(testPackages)),
	}}
	f := newFetcher(t, transport, false)

	result, err := f.DownloadIndices(context.Background())
	if err != nil {
		t.Fatalf("DownloadIndices: %v", err)
	}
	if result.Release.Codename != "bookworm" {
		t.Errorf("Codename = %q, want bookworm", result.Release.Codename)
	}
	if result.Packages.Get("base") == nil {
		t.Error("expected base package to be present")
	}
}

func TestDownloadIndices_AuthenticatedFailsOnBadSignature(t *testing.T) {
	transport := &routedFetcher{byPath: map[string][]byte{
		"Release":        []byte(testRelease),
		"Release.gpg":    []byte("not a signature"),
		"Packages.gz":    gzipBytes(t, []byte(testPackages)),
	}}
	f := newFetcher(t, transport, true)
	f.Verifier = pgp.StubVerifier{Err: errSignature}

	if _, err := f.DownloadIndices(context.Background()); err == nil {
		t.Fatal("expected fatal error for bad signature under authentication")
	}
}

func TestDownloadIndices_UnauthenticatedDowngradesSignatureFailure(t *testing.T) {
	transport := &routedFetcher{byPath: map[string][]byte{
		"Release":        []byte(testRelease),
		"Release.gpg":    []byte("not a signature"),
		"Packages.gz":    gzipBytes(t, []byte(testPackages)),
	}}
	f := newFetcher(t, transport, false)
	f.Verifier = pgp.StubVerifier{Err: errSignature}

	if _, err := f.DownloadIndices(context.Background()); err != nil {
		t.Fatalf("expected signature failure to downgrade to a warning, got fatal error: %v", err)
	}
}

var errSignature = &notFoundError{}

func TestCacheFileName(t *testing.T) {
	got := cacheFileName("dists/bookworm/main/binary-amd64/Packages.gz")
	want := "_dists_bookworm_main_binary-amd64_Packages.gz"
	if got != want {
		t.Errorf("cacheFileName() = %q, want %q", got, want)
	}
}
