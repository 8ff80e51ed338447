// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package reposync

import (
	"fmt"
	"os"
	"path/filepath"
)

// uvNames are the package-manager binary names that might already exist
// in the working directory from a prior extraction.
var uvNames = []string{"uv", "uv.exe"}

// preserveUVBinaries moves any uv/uv.exe file out of dir into a sibling
// temp location outside dir itself (cloneIntoWorkDir clears every entry
// of dir before cloning, so a stash location inside dir would be wiped
// right along with everything else) and returns a map from original
// relative name to its stashed path, so cloneIntoWorkDir can restore them
// after the clone.
func preserveUVBinaries(dir string) (map[string]string, error) {
	preserved := make(map[string]string)
	for _, name := range uvNames {
		src := filepath.Join(dir, name)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}
		stashDir, err := os.MkdirTemp(filepath.Dir(dir), ".pycrucible-uv-preserve-*")
		if err != nil {
			return nil, fmt.Errorf("creating stash dir for %s: %w", src, err)
		}
		dst := filepath.Join(stashDir, name)
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("moving %s aside: %w", src, err)
		}
		preserved[name] = dst
	}
	return preserved, nil
}

// restoreUVBinaries moves files preserved by preserveUVBinaries back into
// dir under their original names and removes the now-empty stash
// directories.
func restoreUVBinaries(dir string, preserved map[string]string) error {
	for name, stashed := range preserved {
		dst := filepath.Join(dir, name)
		if err := os.Rename(stashed, dst); err != nil {
			return fmt.Errorf("restoring %s: %w", dst, err)
		}
		os.Remove(filepath.Dir(stashed))
	}
	return nil
}
