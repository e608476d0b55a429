package suiteconfig

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/godebootstrap/godebootstrap/internal/buildinfo"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
)

// currentVersion returns the running binary's version. Variable rather
// than a direct buildinfo.Version() call so tests can substitute a
// fixed semver string instead of depending on how the test binary
// itself was built.
var currentVersion = buildinfo.Version

// checkCompat enforces a catalogue entry's optional Requires field: a
// semver constraint (">= 1.2.0", "~1.3", ...) the running binary must
// satisfy before its suite/keyring config is trusted. A dev build's
// version string ("dev-<hash>", "dev", "unknown") isn't valid semver,
// so it can't be checked at all and is let through with a warning
// rather than blocked outright; the same goes for a malformed
// constraint in the catalogue itself.
func checkCompat(entry *CatalogueEntry, sink *logmsg.Sink) error {
	if entry == nil || entry.Requires == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(entry.Requires)
	if err != nil {
		sink.Warning("malformed Requires constraint, skipping compatibility check",
			"suite", entry.Suite, "requires", entry.Requires, "error", err)
		return nil
	}

	running := currentVersion()
	current, err := semver.NewVersion(running)
	if err != nil {
		sink.Warning("build version is not semver, skipping compatibility check",
			"suite", entry.Suite, "version", running)
		return nil
	}

	if !constraint.Check(current) {
		return sink.Report(logmsg.Internal, entry.Suite,
			fmt.Errorf("suite config requires godebootstrap %s, running %s", entry.Requires, current))
	}
	return nil
}
