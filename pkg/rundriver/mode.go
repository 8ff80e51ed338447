// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package rundriver implements the runner's straight-line startup
// sequence: trailer validation, extraction, configuration load, optional
// repository sync, environment application, manager acquisition, hook and
// entry-point execution, and cleanup.
package rundriver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode is the run-mode determined from what's present in the working
// directory, per runtime driver step 7.
type Mode int

const (
	ModeSource Mode = iota
	ModeWheel
)

// ErrAmbiguousDistribution is returned when more than one distribution
// file is present in the working directory at run time.
var ErrAmbiguousDistribution = fmt.Errorf("rundriver: multiple distribution files found in working directory")

// DetermineMode inspects workDir's top-level entries for a .whl file. If
// exactly one is found, it's wheel mode; more than one is
// ErrAmbiguousDistribution; none is source mode.
func DetermineMode(workDir string) (Mode, string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return ModeSource, "", fmt.Errorf("rundriver: reading %s: %w", workDir, err)
	}

	var wheels []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".whl") {
			wheels = append(wheels, e.Name())
		}
	}

	switch len(wheels) {
	case 0:
		return ModeSource, "", nil
	case 1:
		return ModeWheel, wheels[0], nil
	default:
		return ModeSource, "", ErrAmbiguousDistribution
	}
}
