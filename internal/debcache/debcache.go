// Package debcache implements the Deb Cache (spec.md §4.F): ensuring
// every package in the install list has a validated .deb sitting in
// the target's package cache directory, downloading whatever is
// missing or corrupt.
package debcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godebootstrap/godebootstrap/internal/fetch"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/mirror"
	"github.com/godebootstrap/godebootstrap/internal/progress"
	"github.com/godebootstrap/godebootstrap/internal/target"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

// cacheDir is the target-relative directory .deb files are cached in.
const cacheDir = CacheDir

// CacheDir is cacheDir's exported form, for components that need to
// locate an already-cached .deb (internal/action's dpkg-install,
// dpkg-unpack and extract dispatch) without duplicating the path.
const CacheDir = "var/cache/bootstrap"

// Path returns the target-relative cache path for a package's .deb.
func Path(p *universe.Package) string {
	return filepath.Join(CacheDir, filepath.Base(p.Filename))
}

// Cache downloads and validates the .deb files an install list needs,
// into ${target_root}/var/cache/bootstrap.
type Cache struct {
	Tree      *target.Tree
	Mirror    mirror.Mirror
	Transport fetch.Fetcher
	Sink      *logmsg.Sink

	// Reporter, if set, receives progress updates on the 50-400 slice
	// of the driver's overall 0-1000 scale (spec.md §4.F step 4).
	Reporter *progress.Reporter
}

// Ensure implements spec.md §4.F's four steps for every package in
// pkgs: reuse a cached .deb that already validates, otherwise download
// and re-validate, reporting progress as it goes.
func (c *Cache) Ensure(ctx context.Context, pkgs []*universe.Package) error {
	if err := c.Tree.CreateDir(cacheDir); err != nil {
		return fmt.Errorf("create deb cache dir: %w", err)
	}

	var bytesTotal, bytesDone int64
	for _, p := range pkgs {
		bytesTotal += int64(p.Size)
	}

	for _, p := range pkgs {
		path := c.Tree.Path(Path(p))

		if !checkDeb(path, p) {
			if err := c.Transport.Fetch(ctx, c.Mirror, p.Filename, path); err != nil {
				return c.Sink.Report(logmsg.DownloadRetrieve, p.Filename, err)
			}
			if !checkDeb(path, p) {
				err := fmt.Errorf("cached .deb for %s failed validation after download", p.Key())
				if ferr := c.Sink.ReportAlways(logmsg.DownloadValidate, p.Filename, err); ferr != nil {
					return ferr
				}
			}
		}

		bytesDone += int64(p.Size)
		c.reportProgress(bytesDone, bytesTotal)
	}

	return nil
}

func (c *Cache) reportProgress(done, total int64) {
	if c.Reporter == nil {
		return
	}
	c.Reporter.Set(progress.ScaleProgress(int(done), int(total), 50, 350), "downloading packages")
}

// checkDeb reports whether the file at path matches p's recorded size
// and SHA256 — the Go equivalent of check_deb.
func checkDeb(path string, p *universe.Package) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.Size() != int64(p.Size) {
		return false
	}
	if p.SHA256 == "" {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}
	return hex.EncodeToString(h.Sum(nil)) == p.SHA256
}
