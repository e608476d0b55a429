package bootstrap

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/godebootstrap/godebootstrap/internal/log"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/mirror"
	"github.com/godebootstrap/godebootstrap/internal/testutil"
)

// routedFetcher dispatches by relative-path suffix, the same pattern
// internal/index's tests use to fake separate Release/Packages.gz/.deb
// retrievals behind one Fetcher.
type routedFetcher struct {
	byPath map[string][]byte
}

func (r *routedFetcher) Fetch(ctx context.Context, m mirror.Mirror, relPath, destPath string) error {
	for suffix, data := range r.byPath {
		if strings.HasSuffix(relPath, suffix) {
			return os.WriteFile(destPath, data, 0o644)
		}
	}
	return os.ErrNotExist
}

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

const testRelease = `Codename: testsuite
Suite: testsuite
Components: main
Architectures: amd64
`

const suiteAction = "Action: dpkg-install\nWhat: required\n\n" +
	"Action: dpkg-configure\n"

const suiteSections = "Section: base\nFlavour: standard\n"

const suitePackages = "Section: base\nPackages: priority-required\n"

func writeSuiteConfig(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "action"), []byte(suiteAction), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sections"), []byte(suiteSections), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "packages"), []byte(suitePackages), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestDriver(t *testing.T, foreign bool) *Driver {
	t.Helper()

	cfg, cleanup := testutil.NewTestConfig(t)
	t.Cleanup(cleanup)
	writeSuiteConfig(t, filepath.Join(cfg.ConfigDir, "testsuite"))

	baseData := []byte("fake base deb contents")
	libc6Data := []byte("fake libc6 deb contents")

	packagesStanza := "Package: base\n" +
		"Version: 1.0\n" +
		"Architecture: amd64\n" +
		"Priority: required\n" +
		"Essential: yes\n" +
		"Filename: pool/main/base_1.0_amd64.deb\n" +
		"Size: " + itoa(len(baseData)) + "\n\n" +
		"Package: libc6\n" +
		"Version: 1.0\n" +
		"Architecture: amd64\n" +
		"Priority: required\n" +
		"Filename: pool/main/libc6_1.0_amd64.deb\n" +
		"Size: " + itoa(len(libc6Data)) + "\n"

	transport := &routedFetcher{byPath: map[string][]byte{
		"/Release":      []byte(testRelease),
		"/Packages.gz":  gzipBytes(t, []byte(packagesStanza)),
		"base_1.0_amd64.deb":  baseData,
		"libc6_1.0_amd64.deb": libc6Data,
	}}

	m, err := mirror.Parse("http://example.test/debian")
	if err != nil {
		t.Fatal(err)
	}

	targetRoot, cleanupTarget := testutil.NewTestTargetRoot(t)
	t.Cleanup(cleanupTarget)

	return &Driver{
		Ctx: Context{
			Suite:      "testsuite",
			TargetRoot: targetRoot,
			MirrorURL:  m.String(),
			Arch:       "amd64",
			Flavour:    "standard",
			Foreign:    foreign,
		},
		Config:    cfg,
		Sink:      logmsg.NewSink(log.NewNoop(), false),
		Transport: transport,
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestRun_ForeignModeDefersEverythingToScript(t *testing.T) {
	d := newTestDriver(t, true)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	script, err := os.ReadFile(filepath.Join(d.Ctx.TargetRoot, "sbin", "cdebootstrap-foreign"))
	if err != nil {
		t.Fatalf("read foreign script: %v", err)
	}
	out := string(script)

	if !strings.HasPrefix(out, "#!/bin/sh\nset -e\n") {
		t.Errorf("script missing shebang: %q", out)
	}
	if !strings.Contains(out, "run dpkg --install --status-fd 3 /var/cache/bootstrap/base_1.0_amd64.deb /var/cache/bootstrap/libc6_1.0_amd64.deb") {
		t.Errorf("script missing dpkg-install line: %q", out)
	}
	if !strings.Contains(out, "run dpkg --configure -a --status-fd 3") {
		t.Errorf("script missing dpkg-configure line: %q", out)
	}
	if !strings.Contains(out, "echo 'deb http://example.test/debian testsuite main' > /etc/apt/sources.list") {
		t.Errorf("script missing deferred sources.list write: %q", out)
	}
	if !strings.Contains(out, "mv /sbin/init /sbin/init.foreign") {
		t.Errorf("script missing init retarget: %q", out)
	}

	testutil.AssertFileNotExists(t, filepath.Join(d.Ctx.TargetRoot, "etc", "apt", "sources.list"))

	hosts, err := os.ReadFile(filepath.Join(d.Ctx.TargetRoot, "etc", "hosts"))
	if err != nil {
		t.Fatalf("read hosts: %v", err)
	}
	if string(hosts) != "127.0.0.1 localhost\n" {
		t.Errorf("hosts = %q", hosts)
	}

	for _, name := range []string{"status", "available", "diversions"} {
		testutil.AssertFileExists(t, filepath.Join(d.Ctx.TargetRoot, "var", "lib", "dpkg", name))
	}

	for _, deb := range []string{"base_1.0_amd64.deb", "libc6_1.0_amd64.deb"} {
		testutil.AssertFileExists(t, filepath.Join(d.Ctx.TargetRoot, "var", "cache", "bootstrap", deb))
	}
}

func TestRun_DownloadOnlyStopsBeforeInstallInit(t *testing.T) {
	d := newTestDriver(t, true)
	d.Ctx.DownloadOnly = true

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	testutil.AssertFileNotExists(t, filepath.Join(d.Ctx.TargetRoot, "var", "lib", "dpkg"))
	for _, deb := range []string{"base_1.0_amd64.deb", "libc6_1.0_amd64.deb"} {
		testutil.AssertFileExists(t, filepath.Join(d.Ctx.TargetRoot, "var", "cache", "bootstrap", deb))
	}
}

func TestVariantFlavour(t *testing.T) {
	tests := []struct{ variant, want string }{
		{"buildd", "build"},
		{"fakechroot", "standard"},
		{"minimal", "minimal"},
	}
	for _, tt := range tests {
		if got := VariantFlavour(tt.variant); got != tt.want {
			t.Errorf("VariantFlavour(%q) = %q, want %q", tt.variant, got, tt.want)
		}
	}
}
