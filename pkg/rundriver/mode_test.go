// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rundriver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorblade23/pycrucible/pkg/rundriver"
)

func TestDetermineModeSource(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("pass"), 0o644))

	mode, _, err := rundriver.DetermineMode(dir)
	require.NoError(t, err)
	assert.Equal(t, rundriver.ModeSource, mode)
}

func TestDetermineModeWheel(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg.whl"), []byte("zip"), 0o644))

	mode, name, err := rundriver.DetermineMode(dir)
	require.NoError(t, err)
	assert.Equal(t, rundriver.ModeWheel, mode)
	assert.Equal(t, "pkg.whl", name)
}

func TestDetermineModeAmbiguous(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.whl"), []byte("zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.whl"), []byte("zip"), 0o644))

	_, _, err := rundriver.DetermineMode(dir)
	assert.ErrorIs(t, err, rundriver.ErrAmbiguousDistribution)
}

func TestNormalizeArgsAbsolutizesExistingPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	got := rundriver.NormalizeArgs([]string{"data.txt", "--flag", "not-a-path"})
	abs, err := filepath.Abs("data.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{abs, "--flag", "not-a-path"}, got)
}
