// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rundriver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/datawire/dlib/dlog"
)

// runUV invokes the resolved uv binary with the given arguments (plus any
// configured extra uv_args) in dir, with stdio inherited from the current
// process, failing fast on any non-zero exit.
func runUV(ctx context.Context, uvPath, dir string, extraArgs []string, args ...string) error {
	full := append(append([]string{}, args...), extraArgs...)
	dlog.Debugf(ctx, "[rundriver] running %s %v", uvPath, full)

	cmd := exec.CommandContext(ctx, uvPath, full...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rundriver: %s %v: %w", uvPath, full, err)
	}
	return nil
}

// runHookLine splits a hook string on whitespace into a single "uv run"
// invocation; quotes and escapes are not interpreted. Hook strings that are empty after trimming are skipped, not
// executed as no-ops.
func runHookLine(ctx context.Context, uvPath, dir, line string, extraArgs []string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	words := strings.Fields(line)
	args := append([]string{"run"}, words...)
	return runUV(ctx, uvPath, dir, extraArgs, args...)
}
