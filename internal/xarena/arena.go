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

// Package xarena provides bump allocation of homogeneous values.
//
// Arena hands out *T slots carved from growing slabs, so that many small
// nodes share few big allocations and are released all at once on
// Clear. Fixed layers a typed free list on top of Arena to recycle
// destroyed slots before the arena grows.
package xarena

import (
	"unsafe"
)

// DefaultSize is the byte budget for the initial slab.
const DefaultSize = 4000

// Arena is a bump allocator for values of type T.
//
// Zero value is ready to use with the default initial slab size.
type Arena[T any] struct {
	slabs [][]T // all slabs; slots are handed out of the last one
	used  int   // slots handed out of the last slab
	size  int   // initial slab byte budget; 0 means DefaultSize
}

// New returns an arena whose first slab holds about size bytes.
func New[T any](size int) Arena[T] {
	return Arena[T]{size: size}
}

// slabSlots returns the slot count for the initial slab.
func (a *Arena[T]) slabSlots() int {
	size := a.size
	if size == 0 {
		size = DefaultSize
	}
	var z T
	n := size / int(unsafe.Sizeof(z))
	if n < 8 {
		n = 8
	}
	return n
}

// Alloc returns a pointer to a fresh zeroed slot.
//
// The slot stays valid until Clear.
func (a *Arena[T]) Alloc() *T {
	if len(a.slabs) == 0 {
		a.slabs = append(a.slabs, make([]T, a.slabSlots()))
		a.used = 0
	}
	slab := a.slabs[len(a.slabs)-1]
	if a.used == len(slab) {
		// grow geometrically
		slab = make([]T, 2*len(slab))
		a.slabs = append(a.slabs, slab)
		a.used = 0
	}
	p := &slab[a.used]
	a.used++
	return p
}

// Clear releases all slabs at once.
//
// Every pointer previously returned by Alloc becomes invalid.
func (a *Arena[T]) Clear() {
	a.slabs = nil
	a.used = 0
}

// Fixed is a typed free list layered over an arena.
//
// Destroyed slots go onto the free list and are reused by Make before the
// arena grows; Clear returns everything to the arena at once.
//
// Zero value is ready to use.
type Fixed[T any] struct {
	Arena Arena[T]
	free  []*T
}

// Make returns a pointer to a zeroed T, reusing a previously destroyed slot
// if one is available.
func (f *Fixed[T]) Make() *T {
	if n := len(f.free); n > 0 {
		p := f.free[n-1]
		f.free = f.free[:n-1]
		return p
	}
	return f.Arena.Alloc()
}

// Destroy returns the slot at p to the free list.
//
// The slot is zeroed, dropping any references held by *p so that what the
// value pointed to can be collected.
func (f *Fixed[T]) Destroy(p *T) {
	var z T
	*p = z
	f.free = append(f.free, p)
}

// Clear drops the free list and releases the arena storage.
func (f *Fixed[T]) Clear() {
	f.free = nil
	f.Arena.Clear()
}
