// Copyright (C) 2024  Nexedi SA and Contributors.
//                     Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// You can also Link and Combine this program with other software covered by
// the terms of any of the Free Software licenses or any of the Open Source
// Initiative approved licenses and Convey the resulting work. Corresponding
// source of such a combination shall include the source code for all other
// software used.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.
// See https://www.nexedi.com/licensing for rationale and options.

package dspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKStr(t *testing.T) {
	assert.Equal(t, "-∞", KStr(KeyMin))
	assert.Equal(t, "∞", KStr(KeyMax))
	assert.Equal(t, "7", KStr(7))
	assert.Equal(t, "-7", KStr(-7))
}

func TestKeyRangeSize(t *testing.T) {
	testv := []struct {
		r    KeyRange
		size int64
		ok   bool
	}{
		{NewRange[Key](1, 1), 1, true},
		{NewRange[Key](1, 10), 10, true},
		{NewRange[Key](-5, 5), 11, true},
		{NewEmpty[Key](), 0, true},
		{NewRange[Key](KeyMin, KeyMax), 0, false},  // 2^64 keys do not fit
		{NewRange[Key](KeyMin, -2), KeyMax, true},  // 2^63-1 keys just fit
		{NewRange[Key](KeyMin, -1), 0, false},      // 2^63 keys do not
	}

	for _, tt := range testv {
		size, ok := KeyRangeSize(tt.r)
		if !(size == tt.size && ok == tt.ok) {
			t.Errorf("size %s: have (%d, %t);  want (%d, %t)", tt.r, size, ok, tt.size, tt.ok)
		}
	}
}

func TestParseKeyRange(t *testing.T) {
	testv := []struct {
		in  string
		r   KeyRange
		err bool
	}{
		{"[1,10]", NewRange[Key](1, 10), false},
		{"[ 1 , 10 ]", NewRange[Key](1, 10), false},
		{"1-10", NewRange[Key](1, 10), false},
		{"7", NewRange[Key](7, 7), false},
		{"-7", NewRange[Key](-7, -7), false},
		{"-10--1", NewRange[Key](-10, -1), false},
		{"[10,1]", NewRange[Key](10, 1), false}, // empty range is accepted
		{"", KeyRange{}, true},
		{"[1,10", KeyRange{}, true},
		{"[110]", KeyRange{}, true},
		{"[a,b]", KeyRange{}, true},
		{"1-b", KeyRange{}, true},
	}

	for _, tt := range testv {
		r, err := ParseKeyRange(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("parse %q: expected error; got %s", tt.in, r)
			}
			continue
		}
		require.NoError(t, err, "parse %q", tt.in)
		assert.Equal(t, tt.r, r, "parse %q", tt.in)
	}
}

func TestKeySpace(t *testing.T) {
	// the generic space over the concrete Key metric
	s := &Space[Key, string]{}
	s.Mark(NewRange[Key](-100, 100), "a")
	s.Mark(NewRange[Key](KeyMax-10, KeyMax), "b")
	s.verify()
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, "a", s.Get(0))
	assert.Equal(t, "b", s.Get(KeyMax))

	// full-domain mark must not overflow at either end
	s.Mark(NewRange[Key](KeyMin, KeyMax), "c")
	s.verify()
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, "c", s.Get(KeyMin))
	assert.Equal(t, "c", s.Get(KeyMax))
}
