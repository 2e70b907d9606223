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
// cursor over the ranges of a Space.

// Iter is a cursor over the ranges of a Space in ascending order.
//
// Iterators are invalidated by any mutation of the space; using an
// invalidated iterator is a programming error with unspecified result.
type Iter[M Metric, P comparable] struct {
	n *node[M, P]
}

// Begin returns a cursor positioned at the first range of the space.
//
// For an empty space the cursor is done.
func (s *Space[M, P]) Begin() Iter[M, P] {
	return Iter[M, P]{n: s.list.Head()}
}

// Find returns a cursor positioned at the range covering m.
//
// If m is not covered, the cursor is done. The descent prunes subtrees
// whose hull does not contain m.
func (s *Space[M, P]) Find(m M) Iter[M, P] {
	n := s.root
	for n != nil {
		switch {
		case m < n.span.Lo:
			if !n.hull.Contains(m) {
				return Iter[M, P]{}
			}
			n = n.left()
		case n.span.Hi < m:
			if !n.hull.Contains(m) {
				return Iter[M, P]{}
			}
			n = n.right()
		default:
			return Iter[M, P]{n: n}
		}
	}
	return Iter[M, P]{}
}

// OK reports whether the cursor points at a range.
func (it Iter[M, P]) OK() bool {
	return it.n != nil
}

// Range returns the range under the cursor. The cursor must be OK.
func (it Iter[M, P]) Range() Range[M] {
	if it.n == nil {
		panicf("Range of done iterator")
	}
	return it.n.span
}

// Value returns the value under the cursor. The cursor must be OK.
func (it Iter[M, P]) Value() P {
	if it.n == nil {
		panicf("Value of done iterator")
	}
	return it.n.value
}

// Next moves the cursor to the following range. The cursor must be OK.
func (it *Iter[M, P]) Next() {
	if it.n == nil {
		panicf("Next of done iterator")
	}
	it.n = it.n.dll.Next()
}

// Prev moves the cursor to the preceding range. The cursor must be OK.
func (it *Iter[M, P]) Prev() {
	if it.n == nil {
		panicf("Prev of done iterator")
	}
	it.n = it.n.dll.Prev()
}
