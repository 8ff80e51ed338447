// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package project_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorblade23/pycrucible/pkg/project"
	"github.com/razorblade23/pycrucible/pkg/pyconfig"
)

func buildWheel(t *testing.T, path string, distInfoDirs []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, dir := range distInfoDirs {
		entry, err := w.Create(dir + "/METADATA")
		require.NoError(t, err)
		_, err = entry.Write([]byte("Metadata-Version: 2.1\nName: my_pkg\nVersion: 1.0\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestWheelPackageName(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	wheelPath := filepath.Join(dir, "pkg.whl")
	buildWheel(t, wheelPath, []string{"my_pkg-1.0.dist-info"})

	name, err := project.WheelPackageName(wheelPath)
	require.NoError(t, err)
	assert.Equal(t, "my_pkg", name)
}

func TestWheelPackageNameAmbiguous(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	wheelPath := filepath.Join(dir, "pkg.whl")
	buildWheel(t, wheelPath, []string{"my_pkg-1.0.dist-info", "other_pkg-2.0.dist-info"})

	_, err := project.WheelPackageName(wheelPath)
	assert.Error(t, err)
}

func TestCollectWheelMode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	wheelPath := filepath.Join(dir, "pkg.whl")
	buildWheel(t, wheelPath, []string{"my_pkg-1.0.dist-info"})

	got, err := project.Collect(wheelPath, pyconfig.DefaultPatterns())
	require.NoError(t, err)
	assert.Equal(t, project.ModeWheel, got.Mode)
	assert.Equal(t, "my_pkg", got.WheelEntrypoint)
}
