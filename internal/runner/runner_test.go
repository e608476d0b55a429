package runner

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/godebootstrap/godebootstrap/internal/log"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/target"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

func newTestSink() *logmsg.Sink {
	return logmsg.NewSink(log.NewNoop(), true)
}

func TestTargetEnvironment(t *testing.T) {
	env := TargetEnvironment()
	want := map[string]bool{
		"DEBIAN_FRONTEND=noninteractive": false,
		"LANG=C":                         false,
		"LC_ALL=C":                       false,
	}
	for _, kv := range env {
		if _, ok := want[kv]; ok {
			want[kv] = true
		}
	}
	for kv, found := range want {
		if !found {
			t.Errorf("TargetEnvironment() missing %q", kv)
		}
	}
}

func TestNativeRunner_Run_Success(t *testing.T) {
	r := NativeRunner{Env: TargetEnvironment(), Sink: newTestSink()}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Run(ctx, []string{"true"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNativeRunner_Run_NonZeroExit(t *testing.T) {
	r := NativeRunner{Env: TargetEnvironment(), Sink: newTestSink()}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Run(ctx, []string{"false"}); err == nil {
		t.Fatal("expected non-zero exit to produce an error")
	}
}

const testPackages = `Package: app
Version: 1.0
Architecture: amd64
Priority: optional
`

func TestNativeRunner_RunWithStatus_UpdatesPackageState(t *testing.T) {
	pkgs, err := universe.ParsePackages([]byte(testPackages))
	if err != nil {
		t.Fatal(err)
	}

	r := NativeRunner{Env: TargetEnvironment(), Sink: newTestSink()}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	script := "echo 'status: app: unpacked' >&3; echo 'status: app: installed' >&3"
	if err := r.RunWithStatus(ctx, []string{"sh", "-c", script}, pkgs); err != nil {
		t.Fatalf("RunWithStatus: %v", err)
	}

	if pkgs.Get("app").State != universe.StatusInstalled {
		t.Errorf("app.State = %v, want StatusInstalled", pkgs.Get("app").State)
	}
}

func TestForeignRunner_AppendsScriptLine(t *testing.T) {
	var buf bytes.Buffer
	r := ForeignRunner{Script: &buf}

	if err := r.Run(context.Background(), []string{"dpkg", "--install", "--status-fd", "3"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "run dpkg --install --status-fd 3\n"
	if buf.String() != want {
		t.Errorf("script = %q, want %q", buf.String(), want)
	}
}

func TestForeignRunner_RunWithStatus_NeverUpdatesPackages(t *testing.T) {
	pkgs, err := universe.ParsePackages([]byte(testPackages))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r := ForeignRunner{Script: &buf}

	if err := r.RunWithStatus(context.Background(), []string{"dpkg", "--configure", "-a"}, pkgs); err != nil {
		t.Fatal(err)
	}
	if pkgs.Get("app").State != universe.StatusNotInstalled {
		t.Error("foreign mode must never update package status")
	}
}

func TestTargetRunner_ChrootArgv(t *testing.T) {
	tree, err := target.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := TargetRunner{Tree: tree}

	argv := r.chrootArgv([]string{"dpkg", "--configure", "-a"})
	if len(argv) != 5 || argv[0] != "chroot" || argv[1] != tree.Root() || argv[2] != "dpkg" {
		t.Errorf("chrootArgv() = %v", argv)
	}
}
