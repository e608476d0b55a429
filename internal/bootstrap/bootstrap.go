// Package bootstrap implements the Driver (spec.md §4.J / §2): wires
// every other component in the order spec.md §2 specifies — validate
// target, init suite/gpg/download, download indices, build the install
// list, download debs, init install, run actions, finalize.
//
// [ADDED] Context carries the global run parameters spec.md §9 calls
// out as ambient state (target_root, suite, arch, flavour,
// authentication, foreign_script) in one value built once by the CLI
// and passed by pointer into every stage, rather than each component
// reaching into a package-level global.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godebootstrap/godebootstrap/internal/action"
	"github.com/godebootstrap/godebootstrap/internal/config"
	"github.com/godebootstrap/godebootstrap/internal/debcache"
	"github.com/godebootstrap/godebootstrap/internal/fetch"
	"github.com/godebootstrap/godebootstrap/internal/finalize"
	"github.com/godebootstrap/godebootstrap/internal/index"
	"github.com/godebootstrap/godebootstrap/internal/installlist"
	"github.com/godebootstrap/godebootstrap/internal/log"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/mirror"
	"github.com/godebootstrap/godebootstrap/internal/mountns"
	"github.com/godebootstrap/godebootstrap/internal/pgp"
	"github.com/godebootstrap/godebootstrap/internal/progress"
	"github.com/godebootstrap/godebootstrap/internal/runner"
	"github.com/godebootstrap/godebootstrap/internal/suiteconfig"
	"github.com/godebootstrap/godebootstrap/internal/target"
)

// dpkgAdminFiles are the empty files install-init pre-creates under
// /var/lib/dpkg, so dpkg has somewhere to read/write its own state the
// first time any --install/--unpack/--configure action runs.
var dpkgAdminFiles = []string{"status", "available", "diversions"}

// Context is the set of parameters a bootstrap run is configured
// with — the Go equivalent of the global state spec.md §9 asks to be
// threaded explicitly rather than read off package-level globals.
type Context struct {
	Suite      string
	TargetRoot string
	MirrorURL  string

	Arch      string
	Flavour   string
	ConfigDir string
	HelperDir string
	Keyring   string

	SuiteConfigOverride string

	Includes []string
	Excludes []string

	Authentication bool
	DownloadOnly   bool
	Foreign        bool

	NativeHTTP bool
}

// Driver runs one bootstrap end to end. Transport is the fetch backend
// every download goes through; left nil it defaults to
// fetch.ChildProcessFetcher, the same override point index.Fetcher and
// debcache.Cache already expose, so tests can substitute a
// fetch.StubFetcher without shelling out to wget.
type Driver struct {
	Ctx       Context
	Config    *config.Config
	Sink      *logmsg.Sink
	Transport fetch.Fetcher
}

// New builds a Driver against the process's default Config and the
// given Logger.
func New(ctx Context, logger log.Logger) (*Driver, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: resolve config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if ctx.ConfigDir != "" {
		cfg.ConfigDir = ctx.ConfigDir
	}

	return &Driver{
		Ctx:    ctx,
		Config: cfg,
		Sink:   logmsg.NewSink(logger, ctx.Authentication),
	}, nil
}

// Run executes spec.md §2's Driver ordering: validate target → init
// suite/gpg/download → download indices → build install list →
// download debs → init install → run actions → finalize. Any stage
// returning a *logmsg.FatalError aborts the run immediately — that
// typed error is this package's Abort sentinel (spec.md §7's "no
// unwinding" propagation policy expressed as "return the fatal error
// to the one top-level caller", the idiomatic Go shape for it).
func (d *Driver) Run(ctx context.Context) error {
	tree, err := target.New(d.Ctx.TargetRoot)
	if err != nil {
		return fmt.Errorf("bootstrap: validate target: %w", err)
	}

	m, err := mirror.Parse(d.Ctx.MirrorURL)
	if err != nil {
		return fmt.Errorf("bootstrap: parse mirror: %w", err)
	}

	suite, err := d.loadSuite(d.Ctx.Suite, d.Ctx.Arch)
	if err != nil {
		return err
	}

	verifier := d.loadVerifier(suite.Name)
	transport := d.Transport
	if transport == nil {
		transport = fetch.ChildProcessFetcher{NativeHTTP: d.Ctx.NativeHTTP}
	}

	idx := &index.Fetcher{
		Mirror:         m,
		Suite:          suite.Name,
		Arch:           d.Ctx.Arch,
		Mode:           index.ModeReleaseGPG,
		Authentication: suite.Authentication,
		CacheDir:       d.Config.IndexCache,
		Verifier:       verifier,
		Transport:      transport,
		Sink:           d.Sink,
	}
	result, err := idx.DownloadIndices(ctx)
	if err != nil {
		return err
	}

	if result.Release != nil && result.Release.Codename != "" && result.Release.Codename != suite.Name {
		suite, err = suiteconfig.LoadSecondary(suite, d.Config.ConfigDir, result.Release.Codename, d.Sink)
		if err != nil {
			return fmt.Errorf("bootstrap: reload suite config for codename %s: %w", result.Release.Codename, err)
		}
		suite.Authentication = d.Ctx.Authentication
	}

	if err := suite.Filter(d.Ctx.Flavour); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	install := installlist.Build(suite, result.Packages, d.Ctx.Includes, d.Ctx.Excludes, d.Sink)

	reporter := progress.NewReporter(os.Stderr)
	cache := &debcache.Cache{
		Tree:      tree,
		Mirror:    m,
		Transport: transport,
		Sink:      d.Sink,
		Reporter:  reporter,
	}
	if err := cache.Ensure(ctx, install.Packages()); err != nil {
		return err
	}
	reporter.Finish()

	if d.Ctx.DownloadOnly {
		return nil
	}

	r, err := d.initInstall(tree)
	if err != nil {
		return fmt.Errorf("bootstrap: init install: %w", err)
	}

	engine := &action.Engine{
		Suite:     suite,
		Packages:  result.Packages,
		Install:   install,
		Runner:    r.runner,
		Tree:      tree,
		HelperDir: d.Ctx.HelperDir,
		Sink:      d.Sink,
	}
	if err := engine.Run(ctx); err != nil {
		return err
	}

	f := &finalize.Finalizer{
		Tree:   tree,
		Mirror: m,
		Suite:  suite.Name,
		Script: r.script,
	}
	if err := f.Run(); err != nil {
		return fmt.Errorf("bootstrap: finalize: %w", err)
	}
	if r.scriptFile != nil {
		if err := r.scriptFile.Close(); err != nil {
			return fmt.Errorf("bootstrap: close foreign script: %w", err)
		}
	}

	return nil
}

// loadSuite implements spec.md §4.D's primary init phase, honoring
// --suite-config when given.
func (d *Driver) loadSuite(name, arch string) (*suiteconfig.Suite, error) {
	var suite *suiteconfig.Suite
	var err error

	if d.Ctx.SuiteConfigOverride != "" {
		dir := filepath.Join(d.Config.ConfigDir, d.Ctx.SuiteConfigOverride)
		suite, err = suiteconfig.LoadFrom(dir, name, arch, d.Sink)
	} else {
		suite, err = suiteconfig.LoadPrimary(d.Config.ConfigDir, name, arch, d.Sink)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load suite config: %w", err)
	}
	suite.Authentication = d.Ctx.Authentication
	return suite, nil
}

// loadVerifier resolves a pgp.Verifier: an explicit --keyring path
// wins, otherwise the config-derived per-suite keyring path is tried.
// A keyring that fails to load does not abort here: it yields a
// pgp.StubVerifier that rejects every signature with the load error,
// so the failure surfaces as DownloadValidate when the Release
// signature is checked. A warning is logged only when Authentication
// is true.
func (d *Driver) loadVerifier(suiteName string) pgp.Verifier {
	path := d.Ctx.Keyring
	if path == "" {
		path = d.Config.KeyringPath(suiteName)
	}

	v, err := pgp.LoadKeyring(path)
	if err != nil {
		if d.Ctx.Authentication {
			d.Sink.Warning("keyring not available, signature checks will fail", "path", path, "error", err)
		}
		return pgp.StubVerifier{Err: err}
	}
	return v
}

// installRunner bundles the chosen Runner with the foreign script
// file it writes to, if any, so Run can close that file once the
// Finalizer is done appending to it. script is left as a nil
// io.Writer (not a typed nil *os.File) outside foreign mode, since
// finalize.Finalizer's own foreign-mode check is "Script != nil" — a
// typed nil would break that check.
type installRunner struct {
	runner     runner.Runner
	script     io.Writer
	scriptFile *os.File
}

// initInstall implements install-init: pre-create the dpkg admin
// skeleton, then pick the Runner the rest of the pipeline dispatches
// through. Foreign mode never unshares a mount namespace or touches
// the target directly — everything is deferred into
// /sbin/cdebootstrap-foreign. Otherwise mountns.Init is attempted
// once; a platform that can't support it degrades to NativeRunner
// rather than failing the whole run (spec.md §9's graceful-degradation
// note).
func (d *Driver) initInstall(tree *target.Tree) (*installRunner, error) {
	if err := tree.CreateDir("var/lib/dpkg"); err != nil {
		return nil, err
	}
	for _, name := range dpkgAdminFiles {
		if err := tree.CreateEmptyFile("var/lib/dpkg/" + name); err != nil {
			return nil, err
		}
	}

	if d.Ctx.Foreign {
		if err := tree.CreateDir("sbin"); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(tree.Path("sbin/cdebootstrap-foreign"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
		if err != nil {
			return nil, fmt.Errorf("create foreign script: %w", err)
		}
		if _, err := f.WriteString("#!/bin/sh\nset -e\n"); err != nil {
			return nil, err
		}
		return &installRunner{runner: runner.ForeignRunner{Script: f}, script: f, scriptFile: f}, nil
	}

	isolated, err := mountns.Init(d.Sink)
	if err != nil {
		return nil, err
	}
	if !isolated {
		return &installRunner{runner: runner.NativeRunner{Env: runner.TargetEnvironment(), Sink: d.Sink}}, nil
	}
	return &installRunner{runner: runner.TargetRunner{Tree: tree, Env: runner.TargetEnvironment(), Sink: d.Sink}}, nil
}

// VariantFlavour implements spec.md §6's legacy --variant aliases:
// buildd maps to the build flavour, fakechroot to standard. An
// unrecognized variant is returned unchanged, letting suite.Filter
// report the unknown-flavour error itself rather than duplicating
// that validation here.
func VariantFlavour(variant string) string {
	switch variant {
	case "buildd":
		return "build"
	case "fakechroot":
		return "standard"
	default:
		return variant
	}
}
