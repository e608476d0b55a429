// Command godebootstrap bootstraps a Debian-style OS root filesystem.
// It is a thin cobra shell around internal/bootstrap.Driver: flag
// parsing and signal handling live here, every actual bootstrap step
// lives in the internal packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/godebootstrap/godebootstrap/internal/bootstrap"
	"github.com/godebootstrap/godebootstrap/internal/buildinfo"
	"github.com/godebootstrap/godebootstrap/internal/config"
	"github.com/godebootstrap/godebootstrap/internal/errmsg"
	"github.com/godebootstrap/godebootstrap/internal/log"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool

	archFlag                 string
	configDirFlag            string
	downloadOnlyFlag         bool
	flavourFlag              string
	helperDirFlag            string
	keyringFlag              string
	allowUnauthenticatedFlag bool
	excludeFlag              []string
	includeFlag              []string
	foreignFlag              bool
	suiteConfigFlag          string
	variantFlag              string
)

// globalCtx is canceled on SIGINT/SIGTERM; Run uses it so the in-flight
// child command (wget, dpkg, ...) is killed the same way a signal would
// have killed it directly.
var globalCtx context.Context
var globalCancel context.CancelFunc

var rootCmd = &cobra.Command{
	Use:   "godebootstrap SUITE TARGET [MIRROR]",
	Short: "Bootstrap a Debian-style OS root filesystem",
	Long: `godebootstrap builds a minimal, bootable Debian-derivative root
filesystem at TARGET by downloading and unpacking SUITE's packages
from MIRROR (default http://ftp.debian.org/debian).`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output (fd-3 status lines, source locations)")

	rootCmd.Flags().StringVarP(&archFlag, "arch", "a", "", "target architecture")
	rootCmd.Flags().StringVarP(&configDirFlag, "configdir", "c", "", "config directory")
	rootCmd.Flags().BoolVarP(&downloadOnlyFlag, "download-only", "d", false, "stop after populating the deb cache")
	rootCmd.Flags().StringVarP(&flavourFlag, "flavour", "f", "standard", "flavour")
	rootCmd.Flags().StringVarP(&helperDirFlag, "helperdir", "H", "", "helper package directory")
	rootCmd.Flags().StringVarP(&keyringFlag, "keyring", "k", "", "explicit trust anchor")
	rootCmd.Flags().BoolVar(&allowUnauthenticatedFlag, "allow-unauthenticated", false, "downgrade signature/hash errors to warnings")
	rootCmd.Flags().StringSliceVar(&excludeFlag, "exclude", nil, "comma separated package names to drop from the install list")
	rootCmd.Flags().StringSliceVar(&includeFlag, "include", nil, "comma separated package names to add to the install list")
	rootCmd.Flags().BoolVar(&foreignFlag, "foreign", false, "simulation mode: defer installation into a target script")
	rootCmd.Flags().StringVar(&suiteConfigFlag, "suite-config", "", "override which suite config to load")
	rootCmd.Flags().StringVar(&variantFlag, "variant", "", "legacy alias: buildd|fakechroot")

	rootCmd.PersistentPreRun = initLogger
	rootCmd.Version = buildinfo.Version()
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived %s, canceling operation...\n", sig)
		globalCancel()

		<-sigChan
		fmt.Fprintln(os.Stderr, "Forced exit")
		exitWithCode(ExitCancelled)
	}()

	if err := rootCmd.Execute(); err != nil {
		if globalCtx.Err() == context.Canceled {
			exitWithCode(ExitCancelled)
		}
		printError(err)
		exitWithCode(exitCodeFor(err))
	}
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	suite := args[0]
	target := args[1]
	lastSuiteArg = suite
	mirrorURL := "http://ftp.debian.org/debian"
	if len(args) == 3 {
		mirrorURL = args[2]
	}

	flavour := flavourFlag
	if variantFlag != "" {
		flavour = bootstrap.VariantFlavour(variantFlag)
	}

	ctx := bootstrap.Context{
		Suite:               suite,
		TargetRoot:          target,
		MirrorURL:           mirrorURL,
		Arch:                archFlag,
		Flavour:             flavour,
		ConfigDir:           configDirFlag,
		HelperDir:           helperDirFlag,
		Keyring:             keyringFlag,
		SuiteConfigOverride: suiteConfigFlag,
		Includes:            includeFlag,
		Excludes:            excludeFlag,
		Authentication:      !allowUnauthenticatedFlag,
		DownloadOnly:        downloadOnlyFlag,
		Foreign:             foreignFlag,
		NativeHTTP:          config.GetNativeHTTP(),
	}

	driver, err := bootstrap.New(ctx, log.Default())
	if err != nil {
		return err
	}
	return driver.Run(globalCtx)
}

// initLogger initializes the global logger based on flags and
// environment variables, mirroring determineLogLevel's priority:
// flags take precedence over environment, which takes precedence over
// the WARN default.
func initLogger(cmd *cobra.Command, args []string) {
	level := determineLogLevel()
	logger := log.New(log.NewCLIHandler(level))
	log.SetDefault(logger)

	if level == slog.LevelDebug {
		fmt.Fprintln(os.Stderr, "[DEBUG MODE] Output may contain file paths and URLs. Do not share publicly.")
	}
}

func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if quietFlag {
		return slog.LevelError
	}

	if isTruthy(os.Getenv("GODEBOOTSTRAP_DEBUG")) {
		return slog.LevelDebug
	}
	if isTruthy(os.Getenv("GODEBOOTSTRAP_VERBOSE")) {
		return slog.LevelInfo
	}
	if isTruthy(os.Getenv("GODEBOOTSTRAP_QUIET")) {
		return slog.LevelError
	}

	return slog.LevelWarn
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// printError prints err with errmsg's actionable suggestions appended.
func printError(err error) {
	ctx := &errmsg.ErrorContext{Suite: lastSuiteArg}
	fmt.Fprintln(os.Stderr, errmsg.Format(err, ctx))
}

// lastSuiteArg is set from cobra's parsed args so printError can give
// errmsg.Format the suite name for its DownloadParse suggestion, even
// though the error itself carries no suite field.
var lastSuiteArg string

// exitCodeFor maps a fatal error to the finest-grained exit code spec.md
// §7 supports: a *logmsg.FatalError's Kind decides between a download and
// an install failure; anything else falls back to ExitGeneral.
func exitCodeFor(err error) int {
	var fatal *logmsg.FatalError
	if errors.As(err, &fatal) {
		switch fatal.Kind {
		case logmsg.DownloadRetrieve, logmsg.DownloadParse, logmsg.DownloadValidate, logmsg.Decompress:
			return ExitDownload
		case logmsg.InstallPackageUnpack, logmsg.InstallPackageConfigure, logmsg.InstallPackageExtract,
			logmsg.InstallHelperInstall, logmsg.InstallHelperRemove:
			return ExitInstall
		}
	}
	return ExitGeneral
}
