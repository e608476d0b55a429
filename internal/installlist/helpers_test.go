package installlist

import (
	"testing"

	"github.com/godebootstrap/godebootstrap/internal/universe"
)

func TestInstallList_FiltersByPriorityAndStatus(t *testing.T) {
	pkgs := newTestPackages(t)
	all := newList(pkgs.All())

	pkgs.Get("base").State = universe.StatusInstalled

	result := InstallList(pkgs, all, universe.PriorityImportant, universe.StatusInstalled)
	if result.Has("base") {
		t.Error("base is already installed, should be filtered out by status")
	}
	if !result.Has("bash") {
		t.Error("expected bash (priority important, not installed)")
	}
	if result.Has("extra-tool") {
		t.Error("extra-tool priority too low to be seeded")
	}
	if !result.Has("libc6") {
		t.Error("expected libc6 pulled in via bash's dependency closure")
	}
}

func TestInstallListPackage(t *testing.T) {
	pkgs := newTestPackages(t)

	result := InstallListPackage(pkgs, "bash", universe.StatusInstalled)
	if !result.Has("bash") || !result.Has("libc6") {
		t.Errorf("expected bash+libc6 closure, got %v", result.Packages())
	}
}

func TestInstallListPackage_AlreadyPastStatus(t *testing.T) {
	pkgs := newTestPackages(t)
	pkgs.Get("bash").State = universe.StatusInstalled

	result := InstallListPackage(pkgs, "bash", universe.StatusInstalled)
	if result.Len() != 0 {
		t.Errorf("expected empty list, got %v", result.Packages())
	}
}

func TestInstallListPackage_Unknown(t *testing.T) {
	pkgs := newTestPackages(t)

	result := InstallListPackage(pkgs, "nope", universe.StatusInstalled)
	if result.Len() != 0 {
		t.Errorf("expected empty list, got %v", result.Packages())
	}
}

func TestInstallListPackageOnly_NoClosure(t *testing.T) {
	pkgs := newTestPackages(t)

	result := InstallListPackageOnly(pkgs, "bash", universe.StatusInstalled)
	if !result.Has("bash") {
		t.Error("expected bash present")
	}
	if result.Has("libc6") {
		t.Error("expected no dependency closure for PackageOnly")
	}
}
