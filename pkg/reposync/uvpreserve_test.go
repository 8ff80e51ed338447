// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package reposync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreserveAndRestoreUVBinaries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	uvPath := filepath.Join(dir, "uv")
	require.NoError(t, os.WriteFile(uvPath, []byte("binary"), 0o755))

	preserved, err := preserveUVBinaries(dir)
	require.NoError(t, err)
	require.Len(t, preserved, 1)

	_, statErr := os.Stat(uvPath)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, restoreUVBinaries(dir, preserved))

	data, err := os.ReadFile(uvPath)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))
}

func TestPreserveUVBinariesNoneExist(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	preserved, err := preserveUVBinaries(dir)
	require.NoError(t, err)
	assert.Empty(t, preserved)
}
