// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"io"
	"os"
)

// Archive is a lazily-read view onto the archive bytes embedded inside a
// bundle file. The underlying file descriptor stays open for the lifetime
// of Archive and must be released with Close.
type Archive struct {
	*io.SectionReader
	f       *os.File
	Trailer Trailer
}

// Close releases the underlying file descriptor.
func (a *Archive) Close() error {
	return a.f.Close()
}

// OpenSelfArchive resolves the currently running executable, reads and
// validates its trailer, and returns an Archive over the archive bytes.
// Errors are, per the data model, fatal: the caller should report "no
// embedded project" and exit non-zero.
func OpenSelfArchive() (*Archive, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("payload: locating own executable: %w", err)
	}
	return OpenArchive(exe)
}

// OpenArchive is the path-parameterized core of OpenSelfArchive, split out
// so tests can exercise it against a synthetic bundle file.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("payload: opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("payload: stat %s: %w", path, err)
	}
	fileLen := info.Size()
	if fileLen < Size {
		f.Close()
		return nil, ErrTrailerTooSmall
	}

	trailerBuf := make([]byte, Size)
	if _, err := f.ReadAt(trailerBuf, fileLen-Size); err != nil {
		f.Close()
		return nil, fmt.Errorf("payload: reading trailer of %s: %w", path, err)
	}

	trailer, err := DecodeTrailer(trailerBuf)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := trailer.Validate(fileLen); err != nil {
		f.Close()
		return nil, err
	}

	archiveLen := (fileLen - Size) - int64(trailer.Offset)
	section := io.NewSectionReader(f, int64(trailer.Offset), archiveLen)
	return &Archive{SectionReader: section, f: f, Trailer: trailer}, nil
}
