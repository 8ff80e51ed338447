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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorblade23/pycrucible/pkg/archive"
)

func TestWriterAndExtractRoundTrip(t *testing.T) {
	t.Parallel()
	w := archive.NewWriter()
	require.NoError(t, w.AddFile("src/main.py", []byte("print('hi')"), 0o644))
	require.NoError(t, w.AddFile("requirements.txt", []byte("requests"), 0o644))
	require.NoError(t, w.AddUV("uv", []byte("fake-uv-binary")))

	data, err := w.Bytes()
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	destDir := t.TempDir()
	require.NoError(t, archive.Extract(zr, destDir))

	got, err := os.ReadFile(filepath.Join(destDir, "src", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(got))

	got, err = os.ReadFile(filepath.Join(destDir, "uv"))
	require.NoError(t, err)
	assert.Equal(t, "fake-uv-binary", string(got))
}

func TestExtractSecondTimeIsIdempotent(t *testing.T) {
	t.Parallel()
	w := archive.NewWriter()
	require.NoError(t, w.AddFile("a.txt", []byte("hello"), 0o644))
	data, err := w.Bytes()
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	destDir := t.TempDir()
	require.NoError(t, archive.Extract(zr, destDir))
	first, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	require.NoError(t, err)

	require.NoError(t, archive.Extract(zr, destDir))
	second, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
