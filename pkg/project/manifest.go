// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// ManifestNames is the fixed priority list manifest selection tries, in
// order.
var ManifestNames = []string{
	"pyproject.toml",
	"requirements.txt",
	"pylock.toml",
	"setup.py",
	"setup.cfg",
}

// ErrNoManifest is returned by FindManifest when none of the five known
// filenames are present.
var ErrNoManifest = fmt.Errorf("project: no manifest found (tried %v)", ManifestNames)

// FindManifest tries the five known filenames under dir in priority order
// and returns the first hit's path and name. Absence of all five is
// fatal in files mode, per the data model.
func FindManifest(dir string) (path string, name string, err error) {
	for _, candidate := range ManifestNames {
		p := filepath.Join(dir, candidate)
		if _, statErr := os.Stat(p); statErr == nil {
			return p, candidate, nil
		}
	}
	return "", "", ErrNoManifest
}
