// Package logmsg implements the error-handling taxonomy: a closed set of
// message kinds, each carrying a policy for whether a failure is fatal or
// merely a warning, and a sink that turns a kind into a log line and,
// when fatal, a typed error the driver unwinds on.
package logmsg

import (
	"fmt"

	"github.com/godebootstrap/godebootstrap/internal/log"
)

// Kind identifies a class of event in the error-handling taxonomy.
type Kind int

const (
	// DownloadRetrieve is a transport failure (the file could not be fetched).
	DownloadRetrieve Kind = iota
	// DownloadParse is a malformed index file (Release or Packages).
	DownloadParse
	// DownloadValidate is a checksum or signature mismatch.
	DownloadValidate
	// Decompress is a decompressor error before EOF.
	Decompress
	// InstallPackageUnpack reports a package transitioning to "unpacked".
	InstallPackageUnpack
	// InstallPackageConfigure reports a package transitioning to "installed".
	InstallPackageConfigure
	// InstallPackageExtract reports a package being extracted directly.
	InstallPackageExtract
	// InstallHelperInstall reports a helper package being installed.
	InstallHelperInstall
	// InstallHelperRemove reports a helper package being purged.
	InstallHelperRemove
	// Internal marks a precondition violation in the driver itself.
	Internal
)

// fatalByDefault reports whether a Kind is fatal when Authentication is
// irrelevant or true. DownloadValidate is the only kind whose fatality
// depends on the authentication flag (see Sink.Report).
var fatalByDefault = map[Kind]bool{
	DownloadRetrieve:        true,
	DownloadParse:           true,
	DownloadValidate:        true,
	Decompress:              true,
	InstallPackageUnpack:    false,
	InstallPackageConfigure: false,
	InstallPackageExtract:   false,
	InstallHelperInstall:    false,
	InstallHelperRemove:     false,
	Internal:                true,
}

func (k Kind) String() string {
	switch k {
	case DownloadRetrieve:
		return "download-retrieve"
	case DownloadParse:
		return "download-parse"
	case DownloadValidate:
		return "download-validate"
	case Decompress:
		return "decompress"
	case InstallPackageUnpack:
		return "install-package-unpack"
	case InstallPackageConfigure:
		return "install-package-configure"
	case InstallPackageExtract:
		return "install-package-extract"
	case InstallHelperInstall:
		return "install-helper-install"
	case InstallHelperRemove:
		return "install-helper-remove"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FatalError is returned by Sink.Report when a message kind is fatal. The
// driver's top-level caller is the only place that turns this into a
// process exit; no component anywhere else inspects or recovers from it.
type FatalError struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Sink reports taxonomy events against a Logger, downgrading
// DownloadValidate to a warning when authentication is disabled, per the
// propagation policy: "authentication=false converts DOWNLOAD_VALIDATE for
// Release/Packages from fatal to warning; it never affects .deb
// validation (those remain fatal)". Callers verifying a .deb should call
// ReportAlways instead of relying on the sink's authentication
// downgrade.
type Sink struct {
	Logger         log.Logger
	Authentication bool
}

// NewSink constructs a Sink bound to the given logger and authentication
// setting.
func NewSink(logger log.Logger, authentication bool) *Sink {
	return &Sink{Logger: logger, Authentication: authentication}
}

// Report logs the event and returns a *FatalError if this occurrence is
// fatal, nil otherwise. Callers must check the returned error and abort
// (by returning it up the stack) when non-nil.
func (s *Sink) Report(kind Kind, subject string, err error) error {
	return s.report(kind, subject, err, kind == DownloadValidate && !s.Authentication)
}

// ReportAlways logs the event as always-fatal regardless of the
// authentication downgrade rule. Used for .deb validation failures, which
// spec §7 states "never" downgrade.
func (s *Sink) ReportAlways(kind Kind, subject string, err error) error {
	return s.report(kind, subject, err, false)
}

func (s *Sink) report(kind Kind, subject string, err error, forceWarning bool) error {
	fatal := fatalByDefault[kind] && !forceWarning

	args := []any{"subject", subject}
	if err != nil {
		args = append(args, "error", err)
	}

	switch {
	case fatal:
		s.Logger.Error(kind.String(), args...)
		return &FatalError{Kind: kind, Subject: subject, Err: err}
	case fatalByDefault[kind] && forceWarning:
		s.Logger.Warn(kind.String(), args...)
		return nil
	case kind == InstallPackageUnpack || kind == InstallPackageConfigure ||
		kind == InstallPackageExtract || kind == InstallHelperInstall ||
		kind == InstallHelperRemove:
		s.Logger.Info(kind.String(), args...)
		return nil
	default:
		s.Logger.Warn(kind.String(), args...)
		return nil
	}
}

// Message logs a non-taxonomy, non-fatal informational note — the "MESSAGE"
// level scenario.md S2 refers to (e.g. an --exclude name absent from the
// universe). It never returns an error.
func (s *Sink) Message(text string, args ...any) {
	s.Logger.Info(text, args...)
}

// Warning logs a non-fatal warning outside the taxonomy (e.g. an unknown
// action kind, or an --include name absent from the universe).
func (s *Sink) Warning(text string, args ...any) {
	s.Logger.Warn(text, args...)
}
