// Package runner implements the Executor (spec.md §4.H): three ways to
// run an action's child process — directly, inside the target root via
// chroot, or deferred into a foreign-mode shell script — behind one
// Runner interface selected once at construction.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/target"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

// TargetEnvironment is the curated child environment spec.md §6 names
// for every process the Executor spawns.
func TargetEnvironment() []string {
	return []string{
		"PATH=/usr/sbin:/usr/bin:/sbin:/bin",
		"DEBIAN_FRONTEND=noninteractive",
		"LANG=C",
		"LC_ALL=C",
	}
}

// Runner runs one action's child process. Run is for commands with no
// dpkg status-fd traffic (helper-install, helper-remove, foreign-mode
// mount); RunWithStatus
// is for the dpkg/apt-get family, which report progress on fd 3.
type Runner interface {
	Run(ctx context.Context, argv []string) error
	RunWithStatus(ctx context.Context, argv []string, pkgs *universe.Packages) error
}

// NativeRunner executes argv directly on the host.
type NativeRunner struct {
	Env  []string
	Sink *logmsg.Sink
}

func (r NativeRunner) Run(ctx context.Context, argv []string) error {
	return run(ctx, argv, r.Env, nil, r.Sink)
}

func (r NativeRunner) RunWithStatus(ctx context.Context, argv []string, pkgs *universe.Packages) error {
	return run(ctx, argv, r.Env, pkgs, r.Sink)
}

// TargetRunner executes argv chrooted into the target tree. The caller
// must have run internal/mountns.Init once before the first TargetRunner
// use (spec.md §4.H: "the parent must have unshared its mount
// namespace ... before running").
type TargetRunner struct {
	Tree *target.Tree
	Env  []string
	Sink *logmsg.Sink
}

func (r TargetRunner) Run(ctx context.Context, argv []string) error {
	return run(ctx, r.chrootArgv(argv), r.Env, nil, r.Sink)
}

func (r TargetRunner) RunWithStatus(ctx context.Context, argv []string, pkgs *universe.Packages) error {
	return run(ctx, r.chrootArgv(argv), r.Env, pkgs, r.Sink)
}

func (r TargetRunner) chrootArgv(argv []string) []string {
	full := make([]string, 0, len(argv)+2)
	full = append(full, "chroot", r.Tree.Root())
	full = append(full, argv...)
	return full
}

// ForeignRunner defers execution: instead of running argv, it appends a
// "run <argv>" line to the foreign script (spec.md §4.H mode 3). Status
// updates never occur in this mode.
type ForeignRunner struct {
	Script io.Writer
}

func (r ForeignRunner) Run(ctx context.Context, argv []string) error {
	_, err := fmt.Fprintf(r.Script, "run %s\n", joinArgv(argv))
	return err
}

func (r ForeignRunner) RunWithStatus(ctx context.Context, argv []string, pkgs *universe.Packages) error {
	return r.Run(ctx, argv)
}

func joinArgv(argv []string) string {
	joined := ""
	for i, a := range argv {
		if i > 0 {
			joined += " "
		}
		joined += a
	}
	return joined
}

// run spawns argv with env, optionally wiring fd 3 to a status-line
// scanner that updates pkgs. Stdout/stderr are logged at debug level;
// a non-zero exit is the only failure condition (spec.md §4.H: "Child
// processes are considered successful iff they exit with code 0").
func run(ctx context.Context, argv []string, env []string, pkgs *universe.Packages, sink *logmsg.Sink) error {
	if len(argv) == 0 {
		return fmt.Errorf("runner: empty argv")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdout = &debugWriter{sink: sink}
	cmd.Stderr = &debugWriter{sink: sink}

	var statusDone chan struct{}
	if pkgs != nil {
		r, w, err := os.Pipe()
		if err != nil {
			return fmt.Errorf("runner: open status pipe: %w", err)
		}
		cmd.ExtraFiles = []*os.File{w}

		statusDone = make(chan struct{})
		go func() {
			defer close(statusDone)
			defer r.Close()
			scanStatus(r, pkgs, sink)
		}()
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("runner: start %s: %w", argv[0], err)
	}
	// The parent's copy of the pipe's write end must be closed once the
	// child has inherited its own, or the reader never sees EOF.
	if pkgs != nil {
		cmd.ExtraFiles[0].Close()
	}

	err := cmd.Wait()
	if statusDone != nil {
		<-statusDone
	}
	return err
}

// debugWriter forwards each write to the logger at debug level,
// matching internal/log's documented policy that raw child stdout/
// stderr is troubleshooting detail, not user-facing output.
type debugWriter struct {
	sink *logmsg.Sink
}

func (w *debugWriter) Write(p []byte) (int, error) {
	if w.sink != nil {
		w.sink.Logger.Debug(string(p))
	}
	return len(p), nil
}

// scanStatus reads "status: <pkg>: <state>" lines from r and applies
// them to pkgs, mirroring install_execute_progress_io_handler.
func scanStatus(r io.Reader, pkgs *universe.Packages, sink *logmsg.Sink) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if sink != nil {
			sink.Logger.Debug("status-fd", "line", line)
		}
		name, status, ok := ParseStatusLine(line)
		if !ok {
			continue
		}
		applyStatus(pkgs, sink, name, status)
	}
}
