package runner

import (
	"regexp"

	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

// statusLine is the exact anchored pattern spec.md §9 mandates being
// kept strict: di_packages_get_package's "status: %128[a-z0-9-]: %32[a-z-]"
// scanf pattern, translated to Go regexp.
var statusLine = regexp.MustCompile(`^status: ([a-z0-9-]+): ([a-z-]+)$`)

// ParseStatusLine matches one fd-3 status line, returning the package
// name and parsed status, or ok=false if the line doesn't match.
func ParseStatusLine(line string) (name string, status universe.Status, ok bool) {
	m := statusLine.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	return m[1], universe.ParseStatus(m[2]), true
}

// applyStatus updates pkgs' record for name to status, mirroring
// install_execute_progress_io_handler: only a strictly greater status
// is applied, and only the unpacked/installed transitions are applied
// at all — any other parsed status is ignored entirely.
func applyStatus(pkgs *universe.Packages, sink *logmsg.Sink, name string, status universe.Status) {
	if status != universe.StatusUnpacked && status != universe.StatusInstalled {
		return
	}

	p := pkgs.Get(name)
	if p == nil || p.State >= status {
		return
	}
	p.State = status

	if sink == nil {
		return
	}
	switch status {
	case universe.StatusUnpacked:
		_ = sink.Report(logmsg.InstallPackageUnpack, name, nil)
	case universe.StatusInstalled:
		_ = sink.Report(logmsg.InstallPackageConfigure, name, nil)
	}
}
