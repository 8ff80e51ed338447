// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package payload_test

import (
	"testing"
	"testing/quick"

	"github.com/razorblade23/pycrucible/pkg/payload"
	"github.com/razorblade23/pycrucible/pkg/testutil"
)

// TestTrailerRoundTripProperty checks the quantified invariant from the
// testable-properties section: writing a trailer with (offset, flag) then
// reading it back yields the same (offset, flag), for any offset/flag
// pair testing/quick cares to generate.
func TestTrailerRoundTripProperty(t *testing.T) {
	t.Parallel()
	roundTrip := func(offset uint64, flag bool) bool {
		trailer := payload.Trailer{Offset: offset, ExtractToTemp: flag}
		encoded := trailer.Encode()
		got, err := payload.DecodeTrailer(encoded[:])
		if err != nil {
			return false
		}
		return got == trailer
	}

	testutil.QuickCheck(t, roundTrip, quick.Config{MaxCount: 500},
		[]interface{}{uint64(0), false},
		[]interface{}{uint64(0), true},
		[]interface{}{^uint64(0), true},
	)
}
