// Package errmsg provides enhanced error message formatting with actionable
// suggestions, printed at the CLI boundary just before a fatal exit.
package errmsg

import (
	"errors"
	"net"
	"strings"

	"github.com/godebootstrap/godebootstrap/internal/logmsg"
)

// ErrorContext provides additional context for error formatting.
type ErrorContext struct {
	// Suite is the suite name being bootstrapped, used in suggestions.
	Suite string
}

// Format returns a formatted error message with possible causes and
// suggestions. The context parameter is optional - pass nil for generic
// formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	errMsg := err.Error()

	var fatalErr *logmsg.FatalError
	if errors.As(err, &fatalErr) {
		return formatFatalError(fatalErr, ctx)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr, ctx)
	}

	if isNetworkError(errMsg) {
		return formatGenericNetworkError(errMsg, ctx)
	}

	if isPermissionError(errMsg) {
		return formatPermissionError(errMsg, ctx)
	}

	return errMsg
}

func formatFatalError(err *logmsg.FatalError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	switch err.Kind {
	case logmsg.DownloadRetrieve:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The mirror is unreachable or the path is wrong\n")
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Verify the mirror URL resolves in a browser\n")
		sb.WriteString("  - Try a different mirror\n")

	case logmsg.DownloadValidate:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The mirror served a corrupted or tampered file\n")
		sb.WriteString("  - The configured keyring does not match the mirror's signing key\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Re-run with --allow-unauthenticated to continue despite the mismatch\n")
		sb.WriteString("  - Double check the -k/--keyring path\n")

	case logmsg.DownloadParse:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The suite does not exist on this mirror\n")
		sb.WriteString("  - The mirror returned an HTML error page instead of the index\n")
		sb.WriteString("\nSuggestions:\n")
		if ctx != nil && ctx.Suite != "" {
			sb.WriteString("  - Confirm suite \"" + ctx.Suite + "\" exists on the chosen mirror\n")
		} else {
			sb.WriteString("  - Confirm the suite name exists on the chosen mirror\n")
		}

	case logmsg.Decompress:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The downloaded Packages.gz is truncated\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Delete the cached copy under var/cache/bootstrap and retry\n")

	default:
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Re-run with --debug for more detail\n")
	}

	return sb.String()
}

func formatNetworkError(err net.Error, _ *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatGenericNetworkError(errMsg string, _ *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatPermissionError(errMsg string, _ *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Insufficient permissions on the target directory\n")
	sb.WriteString("  - The target filesystem is mounted read-only, noexec, or nodev\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Run as a user with write access to the target\n")
	sb.WriteString("  - Remount the target filesystem without noexec/nodev\n")

	return sb.String()
}

func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "i/o timeout")
}

func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted")
}
