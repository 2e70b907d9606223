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
// closed [Lo,Hi] ranges over a discrete metric.

import (
	"fmt"
)

// Relation describes how two ranges relate to each other.
type Relation int8

const (
	RelNone     Relation = iota // no common values
	RelEqual                    // identical ranges
	RelSubset                   // all values of lhs are also in rhs
	RelSuperset                 // every value of rhs is in lhs
	RelOverlap                  // at least one common value, neither contains the other
	RelAdjacent                 // disjoint with no gap in between
)

func (rel Relation) String() string {
	switch rel {
	case RelNone:
		return "none"
	case RelEqual:
		return "equal"
	case RelSubset:
		return "subset"
	case RelSuperset:
		return "superset"
	case RelOverlap:
		return "overlap"
	case RelAdjacent:
		return "adjacent"
	}
	return fmt.Sprintf("relation(%d)", int8(rel))
}

// EdgeRelation describes how the right edge of one range relates to the
// left edge of another.
type EdgeRelation int8

const (
	EdgeNone EdgeRelation = iota // other is to the left
	EdgeGap                      // disjoint with at least one value in between
	EdgeAdj                      // edges touch exactly
	EdgeOvlp                     // other's left edge is inside
)

func (er EdgeRelation) String() string {
	switch er {
	case EdgeNone:
		return "none"
	case EdgeGap:
		return "gap"
	case EdgeAdj:
		return "adj"
	case EdgeOvlp:
		return "ovlp"
	}
	return fmt.Sprintf("edgerelation(%d)", int8(er))
}

// Range is a closed interval [Lo,Hi] over metric M.
//
// The range is empty iff Lo > Hi; NewEmpty returns the canonical empty
// range (Lo = maximum, Hi = minimum). Note that the zero Range value is the
// singleton [0,0], not the empty range.
type Range[M Metric] struct {
	Lo M
	Hi M
}

// NewRange returns the range [lo,hi].
//
// lo > hi is not an error - it denotes an empty range.
func NewRange[M Metric](lo, hi M) Range[M] {
	return Range[M]{Lo: lo, Hi: hi}
}

// NewPoint returns the singleton range [m,m].
func NewPoint[M Metric](m M) Range[M] {
	return Range[M]{Lo: m, Hi: m}
}

// NewEmpty returns the canonical empty range.
func NewEmpty[M Metric]() Range[M] {
	return Range[M]{Lo: maximum[M](), Hi: minimum[M]()}
}

// ---- mutators ----

// Assign sets the range to [lo,hi].
func (r *Range[M]) Assign(lo, hi M) {
	r.Lo = lo
	r.Hi = hi
}

// AssignPoint sets the range to the singleton [m,m].
func (r *Range[M]) AssignPoint(m M) {
	r.Lo = m
	r.Hi = m
}

// AssignMin sets the lower bound.
func (r *Range[M]) AssignMin(m M) {
	r.Lo = m
}

// AssignMax sets the upper bound.
func (r *Range[M]) AssignMax(m M) {
	r.Hi = m
}

// ClipMax shrinks the range by one from the right.
//
// The range must not have Hi = minimum.
func (r *Range[M]) ClipMax() {
	r.Hi--
}

// Clear resets the range to the canonical empty state.
func (r *Range[M]) Clear() {
	r.Lo = maximum[M]()
	r.Hi = minimum[M]()
}

// ---- predicates ----

// Empty reports whether the range contains no values.
func (r Range[M]) Empty() bool {
	return r.Lo > r.Hi
}

// IsSingleton reports whether the range contains exactly one value.
func (r Range[M]) IsSingleton() bool {
	return r.Lo == r.Hi
}

// IsMaximal reports whether the range covers the whole domain of M.
func (r Range[M]) IsMaximal() bool {
	return r.Lo == minimum[M]() && r.Hi == maximum[M]()
}

// Contains reports whether m is in the range.
func (r Range[M]) Contains(m M) bool {
	return r.Lo <= m && m <= r.Hi
}

// HasIntersection reports whether the two ranges share at least one value.
func (r Range[M]) HasIntersection(o Range[M]) bool {
	return (o.Lo <= r.Lo && r.Lo <= o.Hi) || (r.Lo <= o.Lo && o.Lo <= r.Hi)
}

// IsSupersetOf reports whether every value of o is also in r.
func (r Range[M]) IsSupersetOf(o Range[M]) bool {
	return r.Lo <= o.Lo && o.Hi <= r.Hi
}

// IsSubsetOf reports whether every value of r is also in o.
func (r Range[M]) IsSubsetOf(o Range[M]) bool {
	return o.IsSupersetOf(r)
}

// IsStrictSupersetOf reports whether r contains o and r != o.
func (r Range[M]) IsStrictSupersetOf(o Range[M]) bool {
	return (r.Lo < o.Lo && o.Hi <= r.Hi) || (r.Lo <= o.Lo && o.Hi < r.Hi)
}

// IsStrictSubsetOf reports whether o contains r and r != o.
func (r Range[M]) IsStrictSubsetOf(o Range[M]) bool {
	return o.IsStrictSupersetOf(r)
}

// IsLeftAdjacentTo reports whether r ends exactly one value before o begins.
//
// The check never increments the maximal metric value: the ordering guard
// r.Hi < o.Lo comes first and the increment is done on a copy, so modular
// metrics are safe.
func (r Range[M]) IsLeftAdjacentTo(o Range[M]) bool {
	return leftAdjoins(r.Hi, o.Lo)
}

// IsAdjacentTo reports whether the two ranges are disjoint with no gap.
func (r Range[M]) IsAdjacentTo(o Range[M]) bool {
	return r.IsLeftAdjacentTo(o) || o.IsLeftAdjacentTo(r)
}

// HasUnion reports whether the union of the two ranges is itself a range.
func (r Range[M]) HasUnion(o Range[M]) bool {
	return r.HasIntersection(o) || r.IsAdjacentTo(o)
}

// Equal reports whether the two ranges have the same bounds.
func (r Range[M]) Equal(o Range[M]) bool {
	return r.Lo == o.Lo && r.Hi == o.Hi
}

// Less is the containment ordering: it reports whether r is a strict subset
// of o. It is not a strict weak order - use LexLess for sorted containers.
func (r Range[M]) Less(o Range[M]) bool {
	return r.IsStrictSubsetOf(o)
}

// More is the containment ordering: it reports whether r is a strict
// superset of o.
func (r Range[M]) More(o Range[M]) bool {
	return r.IsStrictSupersetOf(o)
}

// LexLess is a strict weak order on ranges: by Lo, ties broken by Hi.
func LexLess[M Metric](a, b Range[M]) bool {
	if a.Lo == b.Lo {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}

// ---- combinators ----

// Intersection returns the range of values contained in both r and o.
//
// The result is empty if the ranges are disjoint.
func (r Range[M]) Intersection(o Range[M]) Range[M] {
	lo := r.Lo
	if o.Lo > lo {
		lo = o.Lo
	}
	hi := r.Hi
	if o.Hi < hi {
		hi = o.Hi
	}
	return Range[M]{Lo: lo, Hi: hi}
}

// Hull returns the smallest range containing both r and o.
//
// An empty operand does not contribute: the hull of x and the empty range
// is x.
func (r Range[M]) Hull(o Range[M]) Range[M] {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	lo := r.Lo
	if o.Lo < lo {
		lo = o.Lo
	}
	hi := r.Hi
	if o.Hi > hi {
		hi = o.Hi
	}
	return Range[M]{Lo: lo, Hi: hi}
}

// ExtendTo grows r in place to cover o as well (in-place hull).
func (r *Range[M]) ExtendTo(o Range[M]) {
	*r = r.Hull(o)
}

// ClipTo shrinks r in place to the values shared with o (in-place
// intersection).
func (r *Range[M]) ClipTo(o Range[M]) {
	*r = r.Intersection(o)
}

// ---- relations ----

// Relationship classifies how r relates to o.
func (r Range[M]) Relationship(o Range[M]) Relation {
	if r.HasIntersection(o) {
		switch {
		case r.Equal(o):
			return RelEqual
		case r.IsSubsetOf(o):
			return RelSubset
		case r.IsSupersetOf(o):
			return RelSuperset
		default:
			return RelOverlap
		}
	}
	if r.IsAdjacentTo(o) {
		return RelAdjacent
	}
	return RelNone
}

// LeftEdgeRelationship relates the right edge of r to the left edge of o:
//
//   - EdgeGap:  o's left edge is right of r, with values in between
//   - EdgeAdj:  o's left edge is right adjacent to r
//   - EdgeOvlp: o's left edge is inside r
//   - EdgeNone: o's left edge is left of r
func (r Range[M]) LeftEdgeRelationship(o Range[M]) EdgeRelation {
	if r.Hi < o.Lo {
		x := r.Hi
		x++
		if x < o.Lo {
			return EdgeGap
		}
		return EdgeAdj
	}
	if o.Lo < r.Lo {
		return EdgeNone
	}
	return EdgeOvlp
}

// String formats the range as [lo,hi]; the empty range formats as [).
func (r Range[M]) String() string {
	if r.Empty() {
		return "[)"
	}
	return fmt.Sprintf("[%v,%v]", r.Lo, r.Hi)
}
