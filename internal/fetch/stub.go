package fetch

import (
	"context"
	"os"

	"github.com/godebootstrap/godebootstrap/internal/mirror"
)

// StubFetcher is a deterministic Fetcher for tests: it writes Data to
// destPath instead of touching the network or shelling out, and
// records every call it received.
type StubFetcher struct {
	Data  []byte
	Err   error
	Calls []StubCall
}

// StubCall records one Fetch invocation.
type StubCall struct {
	Mirror   mirror.Mirror
	RelPath  string
	DestPath string
}

func (s *StubFetcher) Fetch(ctx context.Context, m mirror.Mirror, relPath, destPath string) error {
	s.Calls = append(s.Calls, StubCall{Mirror: m, RelPath: relPath, DestPath: destPath})
	if s.Err != nil {
		return s.Err
	}
	return os.WriteFile(destPath, s.Data, 0o644)
}
