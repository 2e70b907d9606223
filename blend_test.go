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

// concat appends the color to the existing value.
func concat(existing *string, color string) bool {
	*existing += color
	return true
}

// dropX keeps values as they are, but drops regions whose value is "x";
// it also rejects the plain probe, so unmapped metrics stay unmapped.
func dropX(existing *string, _ string) bool {
	return *existing != "x" && *existing != ""
}

func TestBlendEmptySpace(t *testing.T) {
	// plain probe decides what happens to unmapped metrics
	s := &S8{}
	s.Blend(R(10, 20), "z", concat)
	checkSpace(t, s, E(10, 20, "z"))

	// a blender rejecting the plain color leaves gaps unmapped
	s = &S8{}
	s.Blend(R(10, 20), "z", func(existing *string, color string) bool {
		if *existing == "" {
			return false
		}
		*existing += color
		return true
	})
	checkSpace(t, s)
}

func TestBlendOverlap(t *testing.T) {
	// blend across one span: left part intact, overlap blended, gap filled
	s := &S8{}
	s.Mark(R(10, 20), "a")
	Blend[uint8, string, string](s, R(15, 25), "z", concat)
	checkSpace(t, s, E(10, 14, "a"), E(15, 20, "az"), E(21, 25, "z"))

	// blending again with an idempotent blender must not change anything
	set := func(existing *string, color string) bool {
		*existing = color
		return true
	}
	s = &S8{}
	s.Mark(R(10, 20), "a")
	s.Blend(R(15, 25), "z", set)
	want := []E8{E(10, 14, "a"), E(15, 25, "z")}
	checkSpace(t, s, want...)
	s.Blend(R(15, 25), "z", set)
	checkSpace(t, s, want...)
}

func TestBlendDrop(t *testing.T) {
	// dropping blender erases the affected region; parts outside the blend
	// range survive with the original value
	s := &S8{}
	s.Mark(R(0, 100), "x")
	s.Mark(R(101, 200), "y")
	s.Blend(R(50, 150), "ignored", dropX)
	checkSpace(t, s, E(0, 49, "x"), E(101, 200, "y"))

	_, _, ok := s.Get_(50)
	assert.False(t, ok)
	_, _, ok = s.Get_(100)
	assert.False(t, ok)
	assert.Equal(t, "y", s.Get(150))
	assert.Equal(t, "x", s.Get(49))
}

func TestBlendDropWhole(t *testing.T) {
	// dropping everything in range, nothing else mapped
	s := &S8{}
	s.Mark(R(10, 20), "x")
	s.Blend(R(0, 255), "ignored", dropX)
	checkSpace(t, s)
}

func TestBlendGapFill(t *testing.T) {
	// gaps inside the blend range receive the plain color and coalesce
	// with neighbours of that color
	s := &S8{}
	s.Mark(R(10, 20), "z")
	s.Mark(R(30, 40), "a")
	s.Blend(R(0, 50), "z", func(existing *string, color string) bool {
		if *existing == "" {
			*existing = color
		}
		return true
	})
	// plain = "z": [0,9] and [21,29] fill with z and coalesce with [10,20]z
	checkSpace(t, s, E(0, 29, "z"), E(30, 40, "a"), E(41, 50, "z"))
}

func TestBlendRightExtension(t *testing.T) {
	// span extending past the blend range is split: overlap blended, rest
	// keeps the original value
	s := &S8{}
	s.Mark(R(10, 30), "a")
	s.Blend(R(0, 20), "z", concat)
	checkSpace(t, s, E(0, 9, "z"), E(10, 20, "az"), E(21, 30, "a"))

	// same with a dropping blender: overlap removed, tail survives
	s = &S8{}
	s.Mark(R(10, 30), "x")
	s.Blend(R(0, 20), "ignored", dropX)
	checkSpace(t, s, E(21, 30, "x"))
}

func TestBlendCoalesce(t *testing.T) {
	// blended values that become equal to a neighbour must coalesce
	s := &S8{}
	s.Mark(R(10, 20), "a")
	s.Mark(R(21, 30), "b")
	s.Blend(R(10, 30), "z", func(existing *string, color string) bool {
		*existing = color
		return true
	})
	checkSpace(t, s, E(10, 30, "z"))

	// blended span coalesces with an untouched predecessor of equal value
	s = &S8{}
	s.Mark(R(10, 20), "az")
	s.Mark(R(21, 30), "a")
	s.Blend(R(21, 30), "z", concat)
	checkSpace(t, s, E(10, 30, "az"))
}

func TestBlendTailExtend(t *testing.T) {
	// final gap is covered by extending the left-adjacent plain-colored tail
	s := &S8{}
	s.Mark(R(10, 20), "z")
	s.Blend(R(21, 30), "z", func(existing *string, color string) bool {
		if *existing == "" {
			*existing = color
		}
		return true
	})
	checkSpace(t, s, E(10, 30, "z"))
}

func TestBlendDomainEdges(t *testing.T) {
	// blending the whole domain must not compute 255+1
	s := &S8{}
	s.Mark(R(100, 150), "a")
	s.Blend(R(0, 255), "z", concat)
	checkSpace(t, s, E(0, 99, "z"), E(100, 150, "az"), E(151, 255, "z"))

	// span ending at the domain maximum
	s = &S8{}
	s.Mark(R(200, 255), "a")
	s.Blend(R(0, 255), "z", concat)
	checkSpace(t, s, E(0, 199, "z"), E(200, 255, "az"))

	// blended span at the maximum coalescing with the plain fill
	s = &S8{}
	s.Mark(R(200, 255), "z")
	s.Blend(R(0, 255), "z", func(existing *string, color string) bool {
		if *existing == "" {
			*existing = color
		}
		return true
	})
	checkSpace(t, s, E(0, 255, "z"))
	require.True(t, s.AllRanges()[0].IsMaximal())
}

func TestBlendGeneric(t *testing.T) {
	// color type independent of the payload type
	type rgb struct{ r, g, b uint8 }
	s := &Space[uint8, rgb]{}
	s.Mark(R(0, 99), rgb{r: 100})

	Blend[uint8, rgb, uint8](s, R(50, 150), 7, func(existing *rgb, g uint8) bool {
		existing.g += g
		return true
	})
	s.verify()
	require.Equal(t, 3, s.Count())
	assert.Equal(t, rgb{r: 100}, s.Get(0))
	assert.Equal(t, rgb{r: 100, g: 7}, s.Get(50))
	assert.Equal(t, rgb{g: 7}, s.Get(150))
}
