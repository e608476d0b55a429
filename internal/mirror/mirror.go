// Package mirror parses and renders the archive mirror URL every
// download in the system is built against.
package mirror

import (
	"fmt"
	"strings"
)

// Scheme is one of the transports spec.md §4.B/§6 recognizes.
type Scheme string

const (
	SchemeHTTP Scheme = "http"
	SchemeFTP  Scheme = "ftp"
	SchemeFile Scheme = "file"
	SchemeSSH  Scheme = "ssh"
)

// Mirror is a parsed "scheme://[host]path" archive location.
type Mirror struct {
	Scheme Scheme
	Host   string
	Path   string
}

// Parse implements the grammar of spec.md §4.B: "scheme://[host]path",
// with scheme one of http/ftp/file/ssh. The file scheme forbids a host
// (the path starts immediately after "://" and must be absolute);
// every other scheme requires a non-empty host. Trailing slashes on
// the path are stripped.
func Parse(raw string) (Mirror, error) {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return Mirror{}, fmt.Errorf("mirror %q: missing \"://\"", raw)
	}

	schemeText := raw[:idx]
	rest := raw[idx+3:]

	scheme, err := parseScheme(schemeText)
	if err != nil {
		return Mirror{}, fmt.Errorf("mirror %q: %w", raw, err)
	}

	var host, path string
	if scheme == SchemeFile {
		if !strings.HasPrefix(rest, "/") {
			return Mirror{}, fmt.Errorf("mirror %q: file scheme must not have a host", raw)
		}
		path = rest
	} else {
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return Mirror{}, fmt.Errorf("mirror %q: missing path after host", raw)
		}
		host = rest[:slash]
		path = rest[slash:]
		if host == "" {
			return Mirror{}, fmt.Errorf("mirror %q: %s scheme requires a host", raw, scheme)
		}
	}

	path = strings.TrimRight(path, "/")
	if path == "" {
		path = "/"
	}

	return Mirror{Scheme: scheme, Host: host, Path: path}, nil
}

func parseScheme(text string) (Scheme, error) {
	switch Scheme(text) {
	case SchemeHTTP, SchemeFTP, SchemeFile, SchemeSSH:
		return Scheme(text), nil
	default:
		return "", fmt.Errorf("unrecognized scheme %q", text)
	}
}

// String renders the mirror back to "scheme://[host]path" form.
func (m Mirror) String() string {
	return fmt.Sprintf("%s://%s%s", m.Scheme, m.Host, m.Path)
}

// SourceURL joins a pool-relative path under the mirror root, the form
// every fetch call site builds its source location from instead of
// hand-assembling "scheme://host/path/relpath" strings.
func (m Mirror) SourceURL(relPath string) string {
	rel := strings.TrimPrefix(relPath, "/")
	if m.Path == "/" {
		return fmt.Sprintf("%s://%s/%s", m.Scheme, m.Host, rel)
	}
	return fmt.Sprintf("%s://%s%s/%s", m.Scheme, m.Host, m.Path, rel)
}
