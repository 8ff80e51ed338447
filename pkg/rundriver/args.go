// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rundriver

import (
	"os"
	"path/filepath"
)

// NormalizeArgs returns args with every entry that names an existing
// filesystem path rewritten to its absolute form, so the child sees them
// unambiguously regardless of its own working directory. Entries that
// don't resolve to an existing path are passed through unchanged.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if _, err := os.Stat(a); err == nil {
			if abs, err := filepath.Abs(a); err == nil {
				out[i] = abs
				continue
			}
		}
		out[i] = a
	}
	return out
}
