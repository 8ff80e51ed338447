// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package archive_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/quick"

	"github.com/razorblade23/pycrucible/pkg/archive"
	"github.com/razorblade23/pycrucible/pkg/testutil"
)

// TestWriteExtractRoundTripProperty checks the quantified invariant that
// for any file contents written into the archive, extracting it back
// yields byte-identical contents.
func TestWriteExtractRoundTripProperty(t *testing.T) {
	t.Parallel()
	roundTrip := func(contents []byte) bool {
		w := archive.NewWriter()
		if err := w.AddFile("entry.bin", contents, 0o644); err != nil {
			return false
		}
		data, err := w.Bytes()
		if err != nil {
			return false
		}
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return false
		}
		dir := t.TempDir()
		if err := archive.Extract(zr, dir); err != nil {
			return false
		}
		got, err := os.ReadFile(filepath.Join(dir, "entry.bin"))
		if err != nil {
			return false
		}
		return bytes.Equal(got, contents)
	}

	testutil.QuickCheck(t, roundTrip, quick.Config{MaxCount: 200},
		[]interface{}{[]byte{}},
		[]interface{}{[]byte("hello world")},
	)
}
