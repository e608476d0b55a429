// Package decompress implements the index-stream decompression spec.md
// §1 carves out as an external collaborator ("the decompression of
// index streams (gzip/bzip2) ... each exposed as a simple operation").
// Debian's archive only ships gzip-compressed indices, so that's the
// one format wired in — see DESIGN.md for why bzip2/xz are not.
package decompress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip decompresses a complete gzip stream, surfacing any error
// before EOF as a logmsg.Decompress-kind failure at the call site
// (this package itself stays error-taxonomy agnostic — it only wraps
// the underlying error with context).
func Gzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress gzip stream: %w", err)
	}
	return out, nil
}
