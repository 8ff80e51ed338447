// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// execBits is the permission mode applied to the output binary on systems
// with an execute bit.
const execBits = 0o755

// BuildBundle writes runnerBytes, then archiveBytes, then a trailer
// describing where the archive begins, to a new file at outputPath. It
// writes to a temporary file in the same directory and renames it into
// place so a failed build never leaves a partial file at outputPath.
//
// BuildBundle never touches bytes before the recorded offset: the runner
// section is written once, verbatim, and is never rewritten.
func BuildBundle(outputPath string, runnerBytes []byte, archive io.Reader, extractToTemp bool) (err error) {
	if len(runnerBytes) == 0 {
		return fmt.Errorf("payload: refusing to build bundle: runner bytes are empty")
	}

	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".pycrucible-bundle-*")
	if err != nil {
		return fmt.Errorf("payload: creating temp output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(runnerBytes); err != nil {
		return fmt.Errorf("payload: writing runner bytes: %w", err)
	}

	offset := int64(len(runnerBytes))

	archiveLen, err := io.Copy(tmp, archive)
	if err != nil {
		return fmt.Errorf("payload: appending archive: %w", err)
	}

	trailer := Trailer{Offset: uint64(offset), ExtractToTemp: extractToTemp}
	encoded := trailer.Encode()
	if _, err = tmp.Write(encoded[:]); err != nil {
		return fmt.Errorf("payload: writing trailer: %w", err)
	}
	_ = archiveLen

	if runtime.GOOS != "windows" {
		if err = tmp.Chmod(execBits); err != nil {
			return fmt.Errorf("payload: chmod output: %w", err)
		}
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("payload: closing output: %w", err)
	}

	if err = os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("payload: renaming output into place: %w", err)
	}
	return nil
}
