package action

import (
	"context"
	"os"
	"path/filepath"

	"github.com/godebootstrap/godebootstrap/internal/debarchive"
	"github.com/godebootstrap/godebootstrap/internal/debcache"
	"github.com/godebootstrap/godebootstrap/internal/installlist"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

// aptInstall reproduces install_apt_install's fixed option set: the
// three -o overrides hand the child apt-get a status-fd it wasn't
// given on its own command line (DPkg::options forwards them to the
// dpkg it invokes), APT::Keep-Fds keeps fd 3 open across apt-get's own
// fork/exec, and the last two tolerate an unauthenticated bootstrap
// mirror and skip Recommends the same way debootstrap always has.
func (e *Engine) aptInstall(ctx context.Context, list *installlist.List) error {
	argv := []string{
		"apt-get", "install", "--yes",
		"-o", "DPkg::options::=--status-fd", "-o", "DPkg::options::=3", "-o", "APT::Keep-Fds::=3",
		"-o", "APT::Get::AllowUnauthenticated=true", "-o", "APT::Install-Recommends=false",
	}
	argv = append(argv, packageNames(list)...)
	return e.Runner.RunWithStatus(ctx, argv, e.Packages)
}

func (e *Engine) dpkgConfigure(ctx context.Context, force bool) error {
	argv := []string{"dpkg", "--configure", "-a", "--status-fd", "3"}
	if force {
		argv = append(argv, "--force-all")
	}
	return e.Runner.RunWithStatus(ctx, argv, e.Packages)
}

func (e *Engine) dpkgInstall(ctx context.Context, list *installlist.List, force bool) error {
	argv := []string{"dpkg", "--install", "--status-fd", "3"}
	if force {
		argv = append(argv, "--force-all")
	}
	argv = append(argv, e.debPaths(list)...)
	return e.Runner.RunWithStatus(ctx, argv, e.Packages)
}

// dpkgUnpack always forces, unlike dpkg-install: install_dpkg_unpack's
// command line has no conditional --force-all, it is there
// unconditionally.
func (e *Engine) dpkgUnpack(ctx context.Context, list *installlist.List) error {
	argv := []string{"dpkg", "--unpack", "--status-fd", "3", "--force-all"}
	argv = append(argv, e.debPaths(list)...)
	return e.Runner.RunWithStatus(ctx, argv, e.Packages)
}

// extract unpacks each package's data.tar directly into the target
// root without running dpkg at all, skipping a package that fails to
// extract rather than aborting the whole action — install_extract
// logs and moves on to the next node, it never returns non-zero.
func (e *Engine) extract(list *installlist.List) error {
	if list == nil {
		return nil
	}
	for _, p := range list.Packages() {
		_ = e.Sink.Report(logmsg.InstallPackageExtract, p.Key(), nil)
		if err := e.extractOne(p); err != nil {
			e.Sink.Warning("failed to extract package", "package", p.Key(), "error", err)
		}
	}
	return nil
}

func (e *Engine) extractOne(p *universe.Package) error {
	path := e.Tree.Path(debcache.Path(p))

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := debarchive.DataMember(f)
	if err != nil {
		return err
	}
	defer data.Close()

	return e.Tree.ExtractTar(data)
}

// packageNames returns the package names an apt-get install argv
// names directly, rather than their cached .deb paths.
func packageNames(list *installlist.List) []string {
	if list == nil {
		return nil
	}
	names := make([]string, 0, list.Len())
	for _, p := range list.Packages() {
		names = append(names, p.Key())
	}
	return names
}

// debPaths returns each package's cached .deb, as a path relative to
// the target root (the form dpkg expects when run chrooted) —
// build_target_deb_root's Go equivalent.
func (e *Engine) debPaths(list *installlist.List) []string {
	if list == nil {
		return nil
	}
	paths := make([]string, 0, list.Len())
	for _, p := range list.Packages() {
		paths = append(paths, "/"+filepath.ToSlash(debcache.Path(p)))
	}
	return paths
}
