// Package mountns performs the one-time mount-namespace isolation
// spec.md §4.H requires before any chrooted command runs: unshare the
// mount namespace and remount "/" private-recursive so mounts made
// inside the target never leak back to the host.
package mountns

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/godebootstrap/godebootstrap/internal/logmsg"
)

// Init unshares the calling process's mount namespace and remounts "/"
// MS_PRIVATE|MS_REC. It must be called exactly once, before the first
// TargetRunner use, and is skipped entirely in foreign mode (spec.md
// §4.H/§9). The returned bool reports whether the namespace is now
// isolated: false (with a nil error) on a platform where unshare isn't
// available, in which case the caller is expected to fall back to
// NativeRunner rather than treat this as fatal (spec.md §9's "degrade
// gracefully" note). A non-nil error means unshare itself succeeded but
// the private remount that must follow it did not, which is always a
// real failure.
func Init(sink *logmsg.Sink) (bool, error) {
	if err := unix.Unshare(unix.CLONE_NEWNS); err != nil {
		sink.Warning("mount namespace unsupported on this platform, falling back to native execution", "error", err)
		return false, nil
	}

	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return false, fmt.Errorf("mountns: remount / private: %w", err)
	}

	return true, nil
}
