// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"io"
	"path/filepath"
)

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// wheelArchiveName returns the base name under which the distribution
// file is stored in the archive.
func wheelArchiveName(wheelPath string) string {
	return filepath.Base(wheelPath)
}
