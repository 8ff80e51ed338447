// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package acquirer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/datawire/dlib/dlog"
)

// ErrAcquirerExhausted is returned when every provider in the chain fails
// to produce a usable binary.
var ErrAcquirerExhausted = fmt.Errorf("acquirer: no provider produced a usable uv binary")

// Options configures a single Resolve call.
type Options struct {
	// OverridePath is the explicit --uv-path value, if any.
	OverridePath string
	// Version is the release identifier to request when downloading.
	Version string
	// OfflineMode disables the network-download provider entirely.
	OfflineMode bool
	// ForceDownload skips straight to the download provider, bypassing
	// PATH/sibling/cache lookups (but still revalidates the cache
	// afterward, per the data model's "then revalidate via step 4").
	ForceDownload bool
}

// CacheDir returns ~/.pycrucible/cache/uv, the per-user cache directory.
func CacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("acquirer: locating home directory: %w", err)
	}
	return filepath.Join(home, ".pycrucible", "cache", "uv"), nil
}

// cacheCandidates is the fixed lookup order within the per-user cache.
func cacheCandidates(cacheDir string) []string {
	return []string{
		filepath.Join(cacheDir, "uv"),
		filepath.Join(cacheDir, "uv.exe"),
		filepath.Join(cacheDir, "bin", "uv"),
		filepath.Join(cacheDir, "bin", "uv.exe"),
	}
}

func existingFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolve runs the five-provider chain in order and returns the path to a
// usable uv binary, ensuring it is executable (0o755) on systems with an
// execute bit, skipping the chmod if it's already set.
func Resolve(ctx context.Context, opts Options) (string, error) {
	if !opts.ForceDownload {
		if opts.OverridePath != "" && existingFile(opts.OverridePath) {
			dlog.Debugf(ctx, "[acquirer] using override path %s", opts.OverridePath)
			return ensureExecutable(ctx, opts.OverridePath)
		}

		if p, err := exec.LookPath(ExeName()); err == nil {
			dlog.Debugf(ctx, "[acquirer] found %s on PATH at %s", ExeName(), p)
			return ensureExecutable(ctx, p)
		}

		if exe, err := os.Executable(); err == nil {
			sibling := filepath.Join(filepath.Dir(exe), ExeName())
			if existingFile(sibling) {
				dlog.Debugf(ctx, "[acquirer] using sibling binary %s", sibling)
				return ensureExecutable(ctx, sibling)
			}
		}

		cacheDir, err := CacheDir()
		if err == nil {
			for _, candidate := range cacheCandidates(cacheDir) {
				if existingFile(candidate) {
					dlog.Debugf(ctx, "[acquirer] using cached binary %s", candidate)
					return ensureExecutable(ctx, candidate)
				}
			}
		}
	}

	if opts.OfflineMode {
		return "", fmt.Errorf("acquirer: offline mode enabled and no local uv binary found: %w", ErrAcquirerExhausted)
	}

	dlog.Debugf(ctx, "[acquirer] downloading uv %s for %s/%s", opts.Version, runtime.GOOS, runtime.GOARCH)
	if err := downloadIntoCache(ctx, opts.Version); err != nil {
		return "", fmt.Errorf("acquirer: download failed: %w: %w", err, ErrAcquirerExhausted)
	}

	cacheDir, err := CacheDir()
	if err != nil {
		return "", fmt.Errorf("acquirer: %w: %w", err, ErrAcquirerExhausted)
	}
	for _, candidate := range cacheCandidates(cacheDir) {
		if existingFile(candidate) {
			return ensureExecutable(ctx, candidate)
		}
	}
	return "", ErrAcquirerExhausted
}

// ensureExecutable chmods path to 0o755 if it isn't already, on systems
// with an execute bit, skipping the syscall when the mode already matches.
func ensureExecutable(ctx context.Context, path string) (string, error) {
	if runtime.GOOS == "windows" {
		return path, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("acquirer: stat %s: %w", path, err)
	}
	if info.Mode().Perm() == 0o755 {
		return path, nil
	}
	dlog.Debugf(ctx, "[acquirer] chmod 0755 %s", path)
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("acquirer: chmod %s: %w", path, err)
	}
	return path, nil
}
