package main

import "os"

// Exit codes. Per spec.md §7: zero on success, non-zero on any fatal log
// message. The finer-grained codes let scripts distinguish a download
// failure from an install failure without scraping stderr.
const (
	// ExitSuccess indicates the target was bootstrapped successfully.
	ExitSuccess = 0

	// ExitGeneral indicates a fatal error with no more specific code below.
	ExitGeneral = 1

	// ExitUsage is defined for invalid arguments or flag combinations, but
	// exitCodeFor never returns it: usage errors exit with ExitGeneral.
	ExitUsage = 2

	// ExitDownload indicates a DownloadRetrieve/DownloadParse/DownloadValidate/
	// Decompress fatal (mirror unreachable, malformed index, checksum/signature
	// mismatch, undecompressable index).
	ExitDownload = 3

	// ExitInstall indicates an InstallPackage* fatal during action dispatch.
	ExitInstall = 4

	// ExitCancelled indicates the run was interrupted by a signal.
	ExitCancelled = 5
)

func exitWithCode(code int) {
	os.Exit(code)
}
