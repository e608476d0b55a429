package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godebootstrap/godebootstrap/internal/debcache"
	"github.com/godebootstrap/godebootstrap/internal/logmsg"
)

// helperInstall copies a helper .deb from the helper directory into
// the target's package cache and installs it there, install_helper_
// install's Go equivalent. Unlike apt-install/dpkg-install it runs
// plain (no status-fd): helper packages are small, known-good
// one-offs and the original never wires their progress into the
// install list.
func (e *Engine) helperInstall(ctx context.Context, name string) error {
	source := filepath.Join(e.HelperDir, name+".deb")
	destRel := filepath.Join(debcache.CacheDir, name+".deb")
	dest := e.Tree.Path(destRel)

	if _, err := os.Stat(source); err != nil {
		_ = e.Sink.Report(logmsg.InstallHelperInstall, name, fmt.Errorf("helper package not found: %w", err))
		return nil
	}

	if err := e.Tree.CreateDir(debcache.CacheDir); err != nil {
		return fmt.Errorf("create deb cache dir: %w", err)
	}

	if err := copyFile(source, dest); err != nil {
		return fmt.Errorf("copy helper package %s: %w", name, err)
	}

	_ = e.Sink.Report(logmsg.InstallHelperInstall, name, nil)

	argv := []string{"dpkg", "--install", "/" + filepath.ToSlash(destRel)}
	return e.Runner.Run(ctx, argv)
}

// helperRemove purges a helper package by name, install_helper_
// remove's Go equivalent.
func (e *Engine) helperRemove(ctx context.Context, name string) error {
	_ = e.Sink.Report(logmsg.InstallHelperRemove, name, nil)
	return e.Runner.Run(ctx, []string{"dpkg", "--purge", name})
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
