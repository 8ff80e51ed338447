// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package archive builds and extracts the zip archive appended to a
// pycrucible bundle.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

// uvExecBits is the permission mode recorded for the embedded
// package-manager binary, applied before it is placed into the archive so
// the recorded mode is correct.
const uvExecBits = 0o755

// Writer accumulates archive entries in memory, in the fixed order the
// data model requires, and produces the final zip bytes with Bytes.
type Writer struct {
	buf *bytes.Buffer
	zw  *zip.Writer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	buf := &bytes.Buffer{}
	return &Writer{buf: buf, zw: zip.NewWriter(buf)}
}

// AddFile writes a single entry at archivePath (always forward-slash) with
// the given contents and file mode.
func (w *Writer) AddFile(archivePath string, contents []byte, mode os.FileMode) error {
	hdr := &zip.FileHeader{
		Name:     toSlash(archivePath),
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	hdr.SetMode(mode)
	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("archive: creating entry %s: %w", archivePath, err)
	}
	if _, err := fw.Write(contents); err != nil {
		return fmt.Errorf("archive: writing entry %s: %w", archivePath, err)
	}
	return nil
}

// AddFileFromDisk streams the file at diskPath into the archive at
// archivePath, preserving its current mode bits (on systems with an
// execute bit).
func (w *Writer) AddFileFromDisk(archivePath, diskPath string) error {
	f, err := os.Open(diskPath)
	if err != nil {
		return fmt.Errorf("archive: opening %s: %w", diskPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("archive: stat %s: %w", diskPath, err)
	}

	hdr := &zip.FileHeader{
		Name:     toSlash(archivePath),
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	hdr.SetMode(info.Mode())
	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("archive: creating entry %s: %w", archivePath, err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return fmt.Errorf("archive: copying %s: %w", diskPath, err)
	}
	return nil
}

// AddUV adds the package-manager binary under name ("uv" or "uv.exe"),
// recording mode 0o755 for it on systems with an execute bit (0o644 on
// Windows) so the extracted binary is executable.
func (w *Writer) AddUV(name string, contents []byte) error {
	mode := os.FileMode(0o644)
	if runtime.GOOS != "windows" {
		mode = uvExecBits
	}
	return w.AddFile(name, contents, mode)
}

// Bytes finalizes the archive and returns its bytes. The Writer must not
// be used after calling Bytes.
func (w *Writer) Bytes() ([]byte, error) {
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: finalizing: %w", err)
	}
	return w.buf.Bytes(), nil
}

func toSlash(p string) string {
	out := make([]byte, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = p[i]
		}
	}
	return string(out)
}
