// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package payload implements the pycrucible bundle format: a runner
// executable with a zip archive and a fixed trailer appended to it.
package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the byte length of a Trailer once encoded.
const Size = 16

// MagicLen is the length of the Magic constant.
const MagicLen = 7

// Magic is the canonical 7-byte constant identifying a pycrucible bundle.
var Magic = [MagicLen]byte{'P', 'Y', 'C', 'R', 'U', 'C', 'I'}

// Sentinel errors returned by DecodeTrailer, Validate and OpenArchive. Use
// errors.Is to test for them.
var (
	ErrTrailerTooSmall = errors.New("payload: file is shorter than the trailer size")
	ErrBadMagic        = errors.New("payload: trailer magic does not match")
	ErrOffsetOutOfRange = errors.New("payload: trailer offset is out of range")
)

// Trailer is the fixed 16-byte footer that locates the archive inside a
// bundle.
//
//	bytes 0..8  little-endian uint64 Offset
//	byte  8     ExtractToTemp flag (0 or 1)
//	bytes 9..16 Magic
type Trailer struct {
	// Offset is the byte position in the file where the archive begins.
	Offset uint64
	// ExtractToTemp is true when the runner should extract to an
	// ephemeral temporary location rather than next to the executable.
	ExtractToTemp bool
}

// Encode renders t as the 16-byte on-disk representation.
func (t Trailer) Encode() [Size]byte {
	var buf [Size]byte
	binary.LittleEndian.PutUint64(buf[0:8], t.Offset)
	if t.ExtractToTemp {
		buf[8] = 1
	}
	copy(buf[9:16], Magic[:])
	return buf
}

// DecodeTrailer parses a 16-byte trailer previously produced by Encode. It
// does not validate the offset against any file length; callers that have
// one should call Validate.
func DecodeTrailer(buf []byte) (Trailer, error) {
	if len(buf) < Size {
		return Trailer{}, fmt.Errorf("payload: trailer buffer too short: %w", ErrTrailerTooSmall)
	}
	var magic [MagicLen]byte
	copy(magic[:], buf[9:16])
	if magic != Magic {
		return Trailer{}, fmt.Errorf("payload: got magic %q: %w", magic, ErrBadMagic)
	}
	return Trailer{
		Offset:        binary.LittleEndian.Uint64(buf[0:8]),
		ExtractToTemp: buf[8] != 0,
	}, nil
}

// Validate checks that t's offset is sane for a file of the given total
// length (the invariant from the data model: 0 <= offset <= fileLen-16).
func (t Trailer) Validate(fileLen int64) error {
	if fileLen < Size {
		return ErrTrailerTooSmall
	}
	trailerStart := fileLen - Size
	if t.Offset > uint64(trailerStart) {
		return fmt.Errorf("payload: offset %d exceeds trailer start %d: %w", t.Offset, trailerStart, ErrOffsetOutOfRange)
	}
	return nil
}
