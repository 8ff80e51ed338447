// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package acquirer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/klauspost/compress/gzip"
)

// releaseBaseURL is the canonical upstream location release artifacts are
// published under.
const releaseBaseURL = "https://github.com/astral-sh/uv/releases/download"

// latestReleaseURL is where the newest release's artifacts are served;
// there is no release tag literally named "latest".
const latestReleaseURL = "https://github.com/astral-sh/uv/releases/latest/download"

// buildReleaseURL constructs the download URL for a given release version
// (or "latest") and the current platform's artifact suffix.
func buildReleaseURL(version, suffix string) string {
	// uv's own release artifacts are named "uv<suffix>", e.g.
	// "uv-x86_64-unknown-linux-gnu.tar.gz".
	if version == "latest" {
		return fmt.Sprintf("%s/uv%s", latestReleaseURL, suffix)
	}
	return fmt.Sprintf("%s/%s/uv%s", releaseBaseURL, version, suffix)
}

// downloadIntoCache fetches the release artifact for the running platform
// and version, extracts only the uv/uv.exe member, and writes it into the
// per-user cache via write-then-rename so partial downloads never
// masquerade as installed binaries.
func downloadIntoCache(ctx context.Context, version string) error {
	if runtime.GOOS == "windows" {
		if ok, err := tryWindowsInstallerScript(ctx, version); err == nil && ok {
			return nil
		}
	}
	return downloadArtifactDirect(ctx, version)
}

// downloadArtifactDirect performs the plain HTTP-GET-then-extract path
// used on every platform, and as the Windows fallback when the installer
// script is unavailable or fails.
func downloadArtifactDirect(ctx context.Context, version string) error {
	suffix, err := PlatformTriple()
	if err != nil {
		return err
	}
	url := buildReleaseURL(version, suffix)

	body, err := httpGet(ctx, url)
	if err != nil {
		return fmt.Errorf("acquirer: fetching %s: %w", url, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("acquirer: reading response body from %s: %w", url, err)
	}

	cacheDir, err := CacheDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("acquirer: creating cache dir %s: %w", cacheDir, err)
	}

	if isArchiveZip(runtime.GOOS) {
		return extractUVFromZip(data, cacheDir)
	}
	return extractUVFromTarGz(data, cacheDir)
}

func httpGet(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// extractUVFromTarGz streams the tar.gz body, stopping as soon as the
// "uv" member is found (skipping the rest of the archive for speed and
// disk use), and writes it into cacheDir atomically.
func extractUVFromTarGz(data []byte, cacheDir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("acquirer: opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("acquirer: uv binary not found in archive")
		}
		if err != nil {
			return fmt.Errorf("acquirer: reading tar entry: %w", err)
		}
		if filepath.Base(hdr.Name) != "uv" {
			continue
		}
		return writeCacheFileAtomic(filepath.Join(cacheDir, "uv"), tr, 0o755)
	}
}

// extractUVFromZip loads the zip centrally (zip requires random access)
// and extracts only the uv.exe member.
func extractUVFromZip(data []byte, cacheDir string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("acquirer: opening zip: %w", err)
	}
	for _, f := range zr.File {
		if filepath.Base(f.Name) != "uv.exe" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("acquirer: opening %s: %w", f.Name, err)
		}
		defer rc.Close()
		return writeCacheFileAtomic(filepath.Join(cacheDir, "uv.exe"), rc, 0o644)
	}
	return fmt.Errorf("acquirer: uv.exe not found in archive")
}

// writeCacheFileAtomic writes r's contents to a temp file in dest's
// directory, then renames into place, so a partial download can never be
// mistaken for an installed binary.
func writeCacheFileAtomic(dest string, r io.Reader, mode os.FileMode) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".uv-download-*")
	if err != nil {
		return fmt.Errorf("acquirer: creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("acquirer: writing %s: %w", tmpPath, err)
	}
	if runtime.GOOS != "windows" {
		if err := tmp.Chmod(mode); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("acquirer: chmod %s: %w", tmpPath, err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("acquirer: closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("acquirer: renaming %s to %s: %w", tmpPath, dest, err)
	}
	return nil
}

