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
// Blend: combine a color into existing values over a range.

import (
	log "github.com/golang/glog"
)

// Blend combines color into the value of every metric in r.
//
// For covered metrics the blender is called with a copy of the existing
// value; it updates the value in place and returns whether to keep the
// result - returning false removes the affected region from the space.
//
// What happens to metrics in r that are not covered is decided by an
// initial probe: blender is applied to a zero P. If the probe returns true,
// gaps are filled with the resulting "plain" value; if it returns false,
// unmapped metrics stay unmapped.
//
// Blend is a package-level function because the color type C is independent
// of the space's type parameters, and Go methods cannot introduce new type
// parameters. For C == P there is the Space.Blend convenience method.
func Blend[M Metric, P comparable, C any](s *Space[M, P], r Range[M], color C, blender func(existing *P, color C) bool) {
	if r.Empty() {
		return
	}
	if traceSpace {
		log.Infof("Blend %s %v\t%s", r, color, s)
	}
	if debugSpace {
		s.verify()
		defer s.verify()
	}

	// base check for the color to use on unmapped values
	var plain P
	plainOK := blender(&plain, color)

	n := s.lowerBound(r.Lo)
	if n == nil {
		n = s.list.Head()
	}

	// what remains to be processed; only the low bound advances
	remaining := r

	for n != nil {
		// skip spans fully left of what remains
		if n.span.Hi < remaining.Lo {
			n = s.next(n)
			continue
		}

		pred := s.prev(n)

		// If n extends left of the remaining range, split off a stub
		// covering the overlap with the original value and clip n to end
		// right before it. The stub becomes the span to process.
		if n.span.Lo < remaining.Lo {
			stub := s.makeNode(NewRange(remaining.Lo, n.span.Hi), n.value)
			n.assignMax(decr(remaining.Lo)) // fine: n.Lo < remaining.Lo
			s.insertAfter(n, stub)
			pred = n
			n = stub
		}

		predEdge := EdgeNone
		if pred != nil {
			predEdge = pred.span.LeftEdgeRelationship(remaining)
		}

		// key relationships between n and remaining
		rightExt := n.span.Hi > remaining.Hi          // n extends past remaining
		rightOverlap := remaining.Contains(n.span.Lo) // n starts inside remaining
		rightAdj := remaining.IsLeftAdjacentTo(n.span)
		nPlain := plainOK && n.value == plain
		predPlain := plainOK && predEdge == EdgeAdj && pred.value == plain

		// No overlap on the right means n is past the target range; all of
		// what remains can be filled here, possibly by pulling n left or by
		// extending the predecessor.
		if !rightOverlap {
			if rightAdj && nPlain {
				n.assignMin(remaining.Lo)
				if predPlain {
					// that touches pred with the same value - collapse
					lo := pred.span.Lo
					s.remove(pred)
					n.assignMin(lo)
				}
			} else if predPlain {
				pred.assignMax(remaining.Hi)
			} else if plainOK && !remaining.Empty() {
				s.insertBefore(n, s.makeNode(remaining, plain))
			} else if remaining.Empty() && rightAdj && predEdge == EdgeAdj && pred.value == n.value {
				// nothing left to fill, but the span blended last now
				// matches n across the range end - coalesce
				lo := pred.span.Lo
				s.remove(pred)
				n.assignMin(lo)
			}
			return
		}

		// Fill the gap from remaining.Lo up to n.Lo-1, if there is one. The
		// gap gets its own plain span even when n's value is plain, so that
		// the blender below runs over n's values only; the collapse below
		// joins the gap with n when the values end up equal.
		if plainOK && remaining.Lo < n.span.Lo {
			lo1 := decr(n.span.Lo) // fine: remaining.Lo < n.Lo
			if predPlain {
				pred.assignMax(lo1)
			} else {
				s.insertBefore(n, s.makeNode(NewRange(remaining.Lo, lo1), plain))
			}
		}

		// Blend over the overlap of n and remaining.
		fillHi := n.span.Hi
		if rightExt {
			fillHi = remaining.Hi
		}
		fillLo := n.span.Lo
		fv := n.value
		keep := blender(&fv, color)
		nextN := s.next(n) // n may be removed below

		if keep {
			if rightExt {
				if n.value == fv {
					// blending did not change the value - n covers it as
					// is; still collapse with the previous span if the
					// earlier blending made the values equal
					pred = s.prev(n)
					if pred != nil && pred.value == fv && leftAdjoins(pred.span.Hi, n.span.Lo) {
						lo := pred.span.Lo
						s.remove(pred)
						n.assignMin(lo)
					}
				} else {
					// n.Hi > r.Hi, so the increment cannot wrap
					n.assignMin(incr(r.Hi))
					pred = s.prev(n)
					if pred != nil && pred.value == fv && leftAdjoins(pred.span.Hi, fillLo) {
						pred.assignMax(fillHi)
					} else {
						s.insertBefore(n, s.makeNode(NewRange(fillLo, fillHi), fv))
					}
					return
				}
			} else {
				// collapse into the previous span if adjacent with the same value
				pred = s.prev(n)
				if pred != nil && pred.value == fv && leftAdjoins(pred.span.Hi, fillLo) {
					s.remove(n)
					pred.assignMax(fillHi)
				} else {
					n.value = fv // the blended span is exactly n.span
				}
			}
		} else {
			if rightExt {
				n.assignMin(incr(r.Hi)) // fine: n.Hi > r.Hi
				return
			}
			s.remove(n)
		}

		// Everything up to fillHi is settled.
		if fillHi == maximum[M]() {
			return // nothing exists past the maximal value
		}
		remaining.Lo = incr(fillHi)
		n = nextN
	}

	// No more spans past r; the final fill, if any, goes at the tail.
	if plainOK && !remaining.Empty() {
		n = s.list.Tail()
		// The decrement is fine: when a span exists to the left,
		// remaining.Lo is not minimal.
		if n != nil && n.value == plain && n.span.Hi >= decr(remaining.Lo) {
			n.assignMax(r.Hi)
		} else {
			s.append(s.makeNode(remaining, plain))
		}
	}
}

// Blend combines color into the value of every metric in r using blender.
//
// It is Blend with the color type fixed to P; see the package-level Blend
// for the general form and the full contract.
func (s *Space[M, P]) Blend(r Range[M], color P, blender func(existing *P, color P) bool) {
	Blend[M, P, P](s, r, color, blender)
}
