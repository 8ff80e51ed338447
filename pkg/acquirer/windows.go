// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package acquirer

import (
	"context"
	"os"
	"os/exec"

	"github.com/datawire/dlib/dlog"
)

// isCI reports whether either well-known CI environment variable is set,
// treating presence (any value, including empty) as true.
func isCI() bool {
	_, ciSet := os.LookupEnv("CI")
	_, ghSet := os.LookupEnv("GITHUB_ACTIONS")
	return ciSet || ghSet
}

// tryWindowsInstallerScript attempts the PowerShell installer-script path
// when not running in CI, per the resolved Open Question: "script first,
// then direct download on script failure or missing binary". It reports
// (true, nil) only when the script ran successfully AND left a uv.exe
// binary behind in the cache.
func tryWindowsInstallerScript(ctx context.Context, version string) (bool, error) {
	if isCI() {
		dlog.Debugf(ctx, "[acquirer] CI detected, skipping installer script")
		return false, nil
	}

	cacheDir, err := CacheDir()
	if err != nil {
		return false, err
	}

	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
		"irm https://astral.sh/uv/install.ps1 | iex")
	cmd.Env = append(os.Environ(), "UV_INSTALL_DIR="+cacheDir)

	if err := cmd.Run(); err != nil {
		dlog.Debugf(ctx, "[acquirer] installer script failed: %v", err)
		return false, nil
	}

	for _, candidate := range cacheCandidates(cacheDir) {
		if existingFile(candidate) {
			return true, nil
		}
	}
	dlog.Debugf(ctx, "[acquirer] installer script ran but left no uv.exe behind")
	return false, nil
}
