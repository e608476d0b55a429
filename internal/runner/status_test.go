package runner

import (
	"testing"

	"github.com/godebootstrap/godebootstrap/internal/universe"
)

func TestParseStatusLine(t *testing.T) {
	tests := []struct {
		line       string
		wantName   string
		wantStatus universe.Status
		wantOK     bool
	}{
		{"status: base-files: unpacked", "base-files", universe.StatusUnpacked, true},
		{"status: libc6: installed", "libc6", universe.StatusInstalled, true},
		{"not a status line", "", 0, false},
		{"status: Bad-Name: unpacked", "", 0, false},
	}
	for _, tt := range tests {
		name, status, ok := ParseStatusLine(tt.line)
		if ok != tt.wantOK || name != tt.wantName || status != tt.wantStatus {
			t.Errorf("ParseStatusLine(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.line, name, status, ok, tt.wantName, tt.wantStatus, tt.wantOK)
		}
	}
}

func TestApplyStatus_MonotonicAndFiltered(t *testing.T) {
	pkgs, err := universe.ParsePackages([]byte("Package: app\nVersion: 1.0\nArchitecture: amd64\n"))
	if err != nil {
		t.Fatal(err)
	}

	applyStatus(pkgs, nil, "app", universe.StatusInstalled)
	if pkgs.Get("app").State != universe.StatusInstalled {
		t.Fatal("expected installed status applied")
	}

	applyStatus(pkgs, nil, "app", universe.StatusUnpacked)
	if pkgs.Get("app").State != universe.StatusInstalled {
		t.Error("status must never regress")
	}

	applyStatus(pkgs, nil, "unknown-pkg", universe.StatusInstalled)
}

func TestApplyStatus_NotInstalledNeverApplied(t *testing.T) {
	pkgs, err := universe.ParsePackages([]byte("Package: app\nVersion: 1.0\nArchitecture: amd64\n"))
	if err != nil {
		t.Fatal(err)
	}
	pkgs.Get("app").State = universe.StatusUnpacked

	applyStatus(pkgs, nil, "app", universe.StatusNotInstalled)
	if pkgs.Get("app").State != universe.StatusUnpacked {
		t.Error("StatusNotInstalled transitions must be ignored entirely, per the original's status filter")
	}
}
