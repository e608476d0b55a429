package action

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/godebootstrap/godebootstrap/internal/runner"
)

// mount implements install_mount: the only supported target is
// "proc" (the original's enum has exactly one case), an unknown
// target is a non-fatal warning. In every runner mode except foreign
// it's a direct syscall against the target root rather than a
// shelled-out command — there's no argv a child process needs here.
// In foreign mode nothing may touch the target filesystem directly
// (spec.md §5/§8 property 7), so the mount is instead recorded as a
// "run mount -t proc proc /proc" line (the target-relative path, not
// the host path under the target root), the same shape every other
// foreign-deferred action takes.
func (e *Engine) mount(ctx context.Context, what string) error {
	if what != "proc" {
		e.Sink.Warning("unknown target for mount action, skipping", "what", what)
		return nil
	}

	dest := e.Tree.Path(what)

	if _, foreign := e.Runner.(runner.ForeignRunner); foreign {
		return e.Runner.Run(ctx, []string{"mount", "-t", "proc", "proc", "/" + what})
	}

	if err := e.Tree.CreateDir(what); err != nil {
		return fmt.Errorf("mount action: create %s: %w", what, err)
	}

	if err := unix.Mount("proc", dest, "proc", 0, ""); err != nil {
		return fmt.Errorf("mount action: mount proc at %s: %w", dest, err)
	}
	return nil
}
