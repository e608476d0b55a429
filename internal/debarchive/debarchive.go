// Package debarchive reads the ar(1) container a .deb file is, far
// enough to hand back the decompressed data.tar member. It exists for
// the "extract" action (spec.md §4.G), which unpacks a package's
// filesystem content directly into the target root without invoking
// dpkg at all — the one install action that needs to look inside a
// .deb itself rather than just shelling out to a tool that does.
package debarchive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	globalMagic = "!<arch>\n"
	headerSize  = 60
)

// member is one parsed ar header: a name and the byte range of its
// content within the archive.
type member struct {
	name string
	size int64
}

// DataMember opens the data.tar(.gz|.xz|.zst|"") member of the .deb read
// from r and returns a reader over its decompressed tar stream. The
// caller must Close the result.
func DataMember(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(globalMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("read ar magic: %w", err)
	}
	if string(magic) != globalMagic {
		return nil, fmt.Errorf("not an ar archive")
	}

	for {
		m, err := readHeader(br)
		if err == io.EOF {
			return nil, fmt.Errorf("no data.tar member found")
		}
		if err != nil {
			return nil, err
		}

		if !strings.HasPrefix(m.name, "data.tar") {
			if err := discard(br, m.size); err != nil {
				return nil, err
			}
			continue
		}

		content := io.LimitReader(br, m.size)
		return decompressor(m.name, content)
	}
}

// readHeader parses one 60-byte ar member header. ar pads member
// content to an even number of bytes; that trailing byte, if any, is
// the caller's responsibility to skip after consuming size bytes.
func readHeader(r *bufio.Reader) (member, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return member{}, io.EOF
		}
		return member{}, err
	}

	if string(buf[58:60]) != "`\n" {
		return member{}, fmt.Errorf("malformed ar header terminator")
	}

	name := strings.TrimRight(string(buf[0:16]), " ")
	name = strings.TrimSuffix(name, "/")

	sizeText := strings.TrimSpace(string(buf[48:58]))
	size, err := strconv.ParseInt(sizeText, 10, 64)
	if err != nil {
		return member{}, fmt.Errorf("parse ar member size %q: %w", sizeText, err)
	}

	return member{name: name, size: size}, nil
}

// discard consumes size bytes plus the trailing alignment pad.
func discard(r *bufio.Reader, size int64) error {
	if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
		return fmt.Errorf("skip ar member: %w", err)
	}
	return nil
}

// decompressor wraps content according to the member name's
// compression suffix. Debian has shipped .deb payloads as
// data.tar.gz, then .xz, then (since dpkg 1.21) .zst; all three are
// covered.
func decompressor(name string, content io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(content)
		if err != nil {
			return nil, fmt.Errorf("open data.tar.gz: %w", err)
		}
		return gz, nil
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(content)
		if err != nil {
			return nil, fmt.Errorf("open data.tar.zst: %w", err)
		}
		return dec.IOReadCloser(), nil
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(content)
		if err != nil {
			return nil, fmt.Errorf("open data.tar.xz: %w", err)
		}
		return io.NopCloser(xr), nil
	case name == "data.tar":
		return io.NopCloser(content), nil
	default:
		return nil, fmt.Errorf("unrecognized data.tar member %q", name)
	}
}
