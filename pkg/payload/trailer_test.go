// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package payload_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razorblade23/pycrucible/pkg/payload"
)

func TestTrailerRoundTrip(t *testing.T) {
	t.Parallel()
	for _, flag := range []bool{true, false} {
		trailer := payload.Trailer{Offset: 123456, ExtractToTemp: flag}
		encoded := trailer.Encode()
		got, err := payload.DecodeTrailer(encoded[:])
		require.NoError(t, err)
		assert.Equal(t, trailer, got)
	}
}

func TestDecodeTrailerTooSmall(t *testing.T) {
	t.Parallel()
	_, err := payload.DecodeTrailer([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, payload.ErrTrailerTooSmall))
}

func TestDecodeTrailerBadMagic(t *testing.T) {
	t.Parallel()
	trailer := payload.Trailer{Offset: 10}
	encoded := trailer.Encode()
	encoded[9] ^= 0xFF // flip one byte of the magic
	_, err := payload.DecodeTrailer(encoded[:])
	assert.True(t, errors.Is(err, payload.ErrBadMagic))
}

func TestTrailerValidateOffsetOutOfRange(t *testing.T) {
	t.Parallel()
	trailer := payload.Trailer{Offset: 1000}
	err := trailer.Validate(100)
	assert.True(t, errors.Is(err, payload.ErrOffsetOutOfRange))
}

func TestBuildAndOpenArchive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "launcher")

	runnerBytes := []byte("#!/bin/fake-runner\n")
	archiveBytes := []byte("zip-archive-placeholder-bytes")

	require.NoError(t, payload.BuildBundle(out, runnerBytes, bytes.NewReader(archiveBytes), true))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(runnerBytes)+len(archiveBytes)+payload.Size), info.Size())

	archive, err := payload.OpenArchive(out)
	require.NoError(t, err)
	defer archive.Close()

	assert.True(t, archive.Trailer.ExtractToTemp)
	assert.Equal(t, uint64(len(runnerBytes)), archive.Trailer.Offset)

	got, err := io.ReadAll(io.NewSectionReader(archive.SectionReader, 0, archive.Size()))
	require.NoError(t, err)
	assert.Equal(t, archiveBytes, got)
}

func TestOpenArchiveRejectsFlippedMagic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "launcher")
	require.NoError(t, payload.BuildBundle(out, []byte("runner"), bytes.NewReader([]byte("archive")), false))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(out, data, 0o755))

	_, err = payload.OpenArchive(out)
	assert.True(t, errors.Is(err, payload.ErrBadMagic))
}

func TestBuildBundleRefusesEmptyRunner(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "launcher")
	err := payload.BuildBundle(out, nil, bytes.NewReader([]byte("archive")), false)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
