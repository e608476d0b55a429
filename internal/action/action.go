// Package action implements the Action Engine (spec.md §4.G): running
// a suite's ordered action list against the install list the earlier
// stages built, dispatching each action to the runner selected for the
// bootstrap mode (native, target-chrooted, or foreign two-stage).
package action

import (
	"context"
	"fmt"

	"github.com/godebootstrap/godebootstrap/internal/installlist"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/runner"
	"github.com/godebootstrap/godebootstrap/internal/suiteconfig"
	"github.com/godebootstrap/godebootstrap/internal/target"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

// Engine holds everything a dispatch needs: the universe and install
// list to select packages from, the runner to execute commands with,
// and the target tree actions read and write through.
type Engine struct {
	Suite     *suiteconfig.Suite
	Packages  *universe.Packages
	Install   *installlist.List
	Runner    runner.Runner
	Tree      *target.Tree
	HelperDir string
	Sink      *logmsg.Sink

	memo priorityMemo
}

// priorityMemo reproduces suite_action.c's cur_list/cur_list_priority
// statics: consecutive actions asking for the same priority reuse one
// computed list instead of re-walking the dependency closure each
// time. Recomputed unconditionally on the first action regardless of
// what priority it asks for, matching action_check_priority_list's
// unconditional first call.
type priorityMemo struct {
	list     *installlist.List
	priority universe.Priority
	has      bool
}

func (e *Engine) ensurePriorityList(priority universe.Priority) {
	if e.memo.has && e.memo.priority == priority {
		return
	}
	e.memo.list = installlist.InstallList(e.Packages, e.Install, priority, universe.StatusInstalled)
	e.memo.priority = priority
	e.memo.has = true
}

// Run executes every activated action in the suite's configured
// order, stopping on the first error any action returns: a fatal
// logmsg kind, or a failed copy, mount or child process (helper
// actions included). A missing helper package and an unknown action
// kind are reported without aborting the run.
func (e *Engine) Run(ctx context.Context) error {
	for _, act := range e.Suite.Actions {
		if !act.Activate {
			continue
		}

		e.Sink.Message("running action", "action", act.Kind.String(), "what", act.What)

		if err := e.dispatch(ctx, act); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, act suiteconfig.Action) error {
	switch act.Kind {
	case suiteconfig.ActionAptInstall,
		suiteconfig.ActionDpkgConfigure,
		suiteconfig.ActionDpkgInstall,
		suiteconfig.ActionDpkgUnpack,
		suiteconfig.ActionExtract:
		return e.installAction(ctx, act)
	case suiteconfig.ActionHelperInstall:
		return e.helperInstall(ctx, act.What)
	case suiteconfig.ActionHelperRemove:
		return e.helperRemove(ctx, act.What)
	case suiteconfig.ActionMount:
		return e.mount(ctx, act.What)
	default:
		e.Sink.Warning("unknown action, skipping", "action", act.What)
		return nil
	}
}

// installAction reproduces action_install's priority/list selection:
// an explicit What names a priority threshold (or, for extract with
// no What, an implicit "required"; every other install action with
// no What defaults to "extra"). A non-zero priority always uses the
// memoized install list; a zero priority with an explicit What falls
// back to single-package selection, and with dpkg-configure falls
// back to no package list at all (dpkg decides what needs configuring
// on its own).
func (e *Engine) installAction(ctx context.Context, act suiteconfig.Action) error {
	var priority universe.Priority
	switch {
	case act.What != "":
		priority = universe.ParsePriority(act.What)
	case act.Kind == suiteconfig.ActionExtract:
		priority = universe.PriorityRequired
	default:
		priority = universe.PriorityExtra
	}
	e.ensurePriorityList(priority)

	var list *installlist.List
	switch {
	case priority != universe.PriorityUnknown:
		list = e.memo.list
	case act.What != "":
		if act.HasFlag(suiteconfig.FlagOnly) {
			list = installlist.InstallListPackageOnly(e.Packages, act.What, universe.StatusInstalled)
		} else {
			list = installlist.InstallListPackage(e.Packages, act.What, universe.StatusInstalled)
		}
	case act.Kind == suiteconfig.ActionDpkgConfigure:
		list = nil
	default:
		return nil
	}

	force := act.HasFlag(suiteconfig.FlagForce)

	switch act.Kind {
	case suiteconfig.ActionAptInstall:
		return e.aptInstall(ctx, list)
	case suiteconfig.ActionDpkgConfigure:
		return e.dpkgConfigure(ctx, force)
	case suiteconfig.ActionDpkgInstall:
		return e.dpkgInstall(ctx, list, force)
	case suiteconfig.ActionDpkgUnpack:
		return e.dpkgUnpack(ctx, list)
	case suiteconfig.ActionExtract:
		return e.extract(list)
	}
	return fmt.Errorf("action: unreachable install action kind %s", act.Kind)
}
