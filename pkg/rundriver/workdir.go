// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rundriver

import (
	"fmt"
	"os"
	"path/filepath"
)

// payloadDirName is the fixed persistent working-directory name created
// next to the executable when extraction is not to a temp location.
const payloadDirName = "pycrucible_payload"

// chooseWorkDir implements runtime driver step 2: a newly-created unique
// path under the system temp directory when extractToTemp is set,
// otherwise <exe_dir>/pycrucible_payload/, created if absent.
func chooseWorkDir(extractToTemp bool) (dir string, cleanup bool, err error) {
	if extractToTemp {
		dir, err = os.MkdirTemp("", "pycrucible_payload_*")
		if err != nil {
			return "", false, fmt.Errorf("rundriver: creating temp working directory: %w", err)
		}
		return dir, true, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", false, fmt.Errorf("rundriver: locating own executable: %w", err)
	}
	dir = filepath.Join(filepath.Dir(exe), payloadDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("rundriver: creating %s: %w", dir, err)
	}
	return dir, false, nil
}
