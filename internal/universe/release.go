package universe

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dpeckett/deb822"
)

// IndexEntry is one line of a Release file's SHA256 field: the expected
// size and checksum of a relative index path (e.g. "main/binary-amd64/Packages.gz").
type IndexEntry struct {
	Path   string
	Size   int64
	SHA256 string
}

// Release is the decoded Release file, the Go equivalent of the fields
// install_download_release reads off di_package_release_*.
type Release struct {
	Codename     string
	Suite        string
	Components   []string
	Architectures []string

	// Index holds the SHA256 field, keyed by relative path, for the
	// per-file size/hash validation spec.md §4.C performs against it.
	Index map[string]IndexEntry
}

// releaseStanza is the raw deb822 shape of a Release file. The SHA256
// field is a multi-line block ("<hash> <size> <path>" per line) that
// deb822's generic stanza decoding hands back as a single raw string;
// parseIndexField below splits it by hand.
type releaseStanza struct {
	Codename      string
	Suite         string
	Components    string
	Architectures string
	SHA256        string
}

// ParseRelease decodes a Release file into a Release, the Go equivalent
// of the codename/hash-map extraction download_release performs.
func ParseRelease(data []byte) (*Release, error) {
	dec := deb822.NewDecoder(bytes.NewReader(data))

	var raw releaseStanza
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode Release stanza: %w", err)
	}

	r := &Release{
		Codename:      strings.TrimSpace(raw.Codename),
		Suite:         strings.TrimSpace(raw.Suite),
		Components:    splitFields(raw.Components),
		Architectures: splitFields(raw.Architectures),
		Index:         parseIndexField(raw.SHA256),
	}
	return r, nil
}

func splitFields(s string) []string {
	return strings.Fields(s)
}

// parseIndexField parses a Release file's SHA256 block into a path-keyed
// map. Malformed lines (wrong column count, unparsable size) are skipped;
// an incomplete Release is a warning for the caller to raise, not a parse
// error here.
func parseIndexField(field string) map[string]IndexEntry {
	index := make(map[string]IndexEntry)

	scanner := bufio.NewScanner(strings.NewReader(field))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) != 3 {
			continue
		}
		size, err := strconv.ParseInt(cols[1], 10, 64)
		if err != nil {
			continue
		}
		index[cols[2]] = IndexEntry{
			Path:   cols[2],
			Size:   size,
			SHA256: cols[0],
		}
	}
	return index
}
