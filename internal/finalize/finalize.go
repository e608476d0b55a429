// Package finalize implements the Finalizer (spec.md §4.I): the four
// file writes that happen once action dispatch has finished — the apt
// sources list, /etc/hosts, a copy of the host's resolv.conf, and, in
// foreign mode, retargeting /sbin/init at the second-stage helper.
package finalize

import (
	"fmt"
	"io"
	"os"

	"github.com/godebootstrap/godebootstrap/internal/mirror"
	"github.com/godebootstrap/godebootstrap/internal/target"
)

// Finalizer runs the closing steps of a bootstrap. Script is non-nil
// only in foreign mode, matching runner.ForeignRunner's own
// nil-means-not-foreign convention; when set, the sources.list write
// and the init retarget are deferred into it as shell lines instead of
// being done directly against Tree.
type Finalizer struct {
	Tree   *target.Tree
	Mirror mirror.Mirror
	Suite  string
	Script io.Writer
}

// resolvConfPath is the host resolv.conf copyResolvConf reads from.
// Variable rather than a literal so tests can point it at a fixture
// instead of the real host's /etc/resolv.conf.
var resolvConfPath = "/etc/resolv.conf"

// Run executes every step of spec.md §4.I in order. A failure in any
// one step aborts the rest; nothing here is optional the way the
// install actions' log-and-continue cases are.
func (f *Finalizer) Run() error {
	if err := f.writeSourcesList(); err != nil {
		return err
	}
	if err := f.writeHosts(); err != nil {
		return err
	}
	if err := f.copyResolvConf(); err != nil {
		return err
	}
	if f.Script != nil {
		if err := f.foreignFinish(); err != nil {
			return err
		}
	}
	return nil
}

// writeSourcesList writes /etc/apt/sources.list for http/ftp/ssh
// mirrors; the file scheme gets no sources.list at all (apt has
// nothing useful to fetch from a local path it was already given).
// In foreign mode the write is deferred into the script as an echo
// line, run once the second stage actually has a filesystem to write
// into.
func (f *Finalizer) writeSourcesList() error {
	if f.Mirror.Scheme == mirror.SchemeFile {
		return nil
	}

	line := fmt.Sprintf("deb %s://%s%s %s main", f.Mirror.Scheme, f.Mirror.Host, f.Mirror.Path, f.Suite)

	if f.Script != nil {
		_, err := fmt.Fprintf(f.Script, "echo '%s' > /etc/apt/sources.list\n", escapeSingleQuotes(line))
		return err
	}

	if err := f.Tree.CreateDir("etc/apt"); err != nil {
		return fmt.Errorf("finalize: create etc/apt: %w", err)
	}
	if err := os.WriteFile(f.Tree.Path("etc/apt/sources.list"), []byte(line+"\n"), 0o644); err != nil {
		return fmt.Errorf("finalize: write sources.list: %w", err)
	}
	return nil
}

// writeHosts overwrites /etc/hosts with the one line every bootstrap
// target needs to resolve its own hostname before anything else is
// configured.
func (f *Finalizer) writeHosts() error {
	if err := f.Tree.CreateDir("etc"); err != nil {
		return fmt.Errorf("finalize: create etc: %w", err)
	}
	if err := os.WriteFile(f.Tree.Path("etc/hosts"), []byte("127.0.0.1 localhost\n"), 0o644); err != nil {
		return fmt.Errorf("finalize: write hosts: %w", err)
	}
	return nil
}

// copyResolvConf copies the host's /etc/resolv.conf into the target
// byte for byte, so the target can still resolve names for any
// further apt-get runs. A host with no resolv.conf (containers
// without networking configured, minimal test environments) is not an
// error; the target simply goes without one.
func (f *Finalizer) copyResolvConf() error {
	data, err := os.ReadFile(resolvConfPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("finalize: read host resolv.conf: %w", err)
	}

	if err := f.Tree.CreateDir("etc"); err != nil {
		return fmt.Errorf("finalize: create etc: %w", err)
	}
	if err := os.WriteFile(f.Tree.Path("etc/resolv.conf"), data, 0o644); err != nil {
		return fmt.Errorf("finalize: write resolv.conf: %w", err)
	}
	return nil
}

// foreignFinish moves the target's real init out of the way and
// symlinks cdebootstrap-foreign in its place, then appends the
// cleanup sequence that removes the foreign-stage helper tree once
// the second stage has run. It only ever executes as script lines: by
// the time a foreign-mode script runs, the target the lines reference
// is an arm64/armhf/whatever-foreign root the host can't chroot into
// directly, so there's no direct-filesystem equivalent the way there
// is for sources.list/hosts/resolv.conf.
func (f *Finalizer) foreignFinish() error {
	lines := []string{
		"mv /sbin/init /sbin/init.foreign",
		"ln -sf /sbin/cdebootstrap-foreign /sbin/init",
		"rm -rf " + foreignHelperDir,
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.Script, line); err != nil {
			return err
		}
	}
	return nil
}

// foreignHelperDir is the second-stage helper tree the foreign script
// itself runs from; once init has been retargeted there's nothing
// left to run it again for.
const foreignHelperDir = "/sbin/cdebootstrap-foreign.d"

func escapeSingleQuotes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\\', '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
