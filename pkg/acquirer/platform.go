// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package acquirer resolves a usable uv package-manager binary through the
// five-provider chain described in the component design: explicit
// override, PATH, sibling of the current executable, per-user cache, and
// network download.
package acquirer

import (
	"fmt"
	"runtime"
)

// ErrUnsupportedPlatform is returned by PlatformTriple for any OS/arch
// tuple outside the closed set the upstream project publishes releases
// for.
var ErrUnsupportedPlatform = fmt.Errorf("acquirer: unsupported platform")

// ExeName is "uv" or "uv.exe" depending on the current OS.
func ExeName() string {
	if runtime.GOOS == "windows" {
		return "uv.exe"
	}
	return "uv"
}

// artifactSuffix returns the release-artifact filename suffix for the
// given GOOS/GOARCH pair, per the closed platform-triple table.
func artifactSuffix(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "-x86_64-unknown-linux-gnu.tar.gz", nil
	case goos == "linux" && goarch == "arm64":
		return "-aarch64-unknown-linux-gnu.tar.gz", nil
	case goos == "darwin" && goarch == "amd64":
		return "-x86_64-apple-darwin.tar.gz", nil
	case goos == "darwin" && goarch == "arm64":
		return "-aarch64-apple-darwin.tar.gz", nil
	case goos == "windows" && goarch == "amd64":
		return "-x86_64-pc-windows-msvc.zip", nil
	default:
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
}

// PlatformTriple returns the release-artifact suffix for the running
// platform.
func PlatformTriple() (string, error) {
	return artifactSuffix(runtime.GOOS, runtime.GOARCH)
}

// isArchiveZip reports whether the artifact for goos is a .zip (true only
// for Windows); every other supported platform ships a .tar.gz.
func isArchiveZip(goos string) bool {
	return goos == "windows"
}
