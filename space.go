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
// Space: partition of a discrete domain into disjoint value-carrying ranges.

import (
	"fmt"
	"strings"

	log "github.com/golang/glog"

	"lab.nexedi.com/nexedi/dspace/internal/xarena"
	"lab.nexedi.com/nexedi/dspace/internal/xdlist"
	"lab.nexedi.com/nexedi/dspace/internal/xrbtree"
)

const traceSpace = false
const debugSpace = false

// Space maps ranges of metric M to values of P.
//
// Covered values are partitioned into disjoint closed ranges; the partition
// is canonical - adjacent ranges with equal values are always coalesced.
// Mutations position themselves via an augmented red-black tree in O(log n)
// and then walk the in-order list of neighbours.
//
// Zero value represents an empty space ready for use. A Space must not be
// copied and is not safe for concurrent mutation.
type Space[M Metric, P comparable] struct {
	root *node[M, P]
	list xdlist.List[node[M, P], *node[M, P]]
	fa   xarena.Fixed[node[M, P]]
}

// Entry is one range of a space together with its value.
type Entry[M Metric, P comparable] struct {
	Value P
	Range[M]
}

// ---- plumbing ----

func (s *Space[M, P]) next(n *node[M, P]) *node[M, P] {
	return xdlist.Next[node[M, P], *node[M, P]](n)
}

func (s *Space[M, P]) prev(n *node[M, P]) *node[M, P] {
	return xdlist.Prev[node[M, P], *node[M, P]](n)
}

// makeNode allocates a node from the free list / arena.
func (s *Space[M, P]) makeNode(r Range[M], v P) *node[M, P] {
	n := s.fa.Make()
	n.span = r
	n.hull = r
	n.value = v
	return n
}

// remove unlinks n from tree and list and returns its storage for reuse.
func (s *Space[M, P]) remove(n *node[M, P]) {
	s.root = xrbtree.Remove[node[M, P], *node[M, P]](s.root, n)
	s.list.Erase(n)
	s.fa.Destroy(n)
}

// insertBefore links n into tree and list just before spot.
func (s *Space[M, P]) insertBefore(spot, n *node[M, P]) {
	if spot.left() == nil {
		xrbtree.SetChild[node[M, P], *node[M, P]](spot, n, xrbtree.Left)
	} else {
		// the in-order predecessor is the rightmost node of the left
		// subtree and thus has no right child
		xrbtree.SetChild[node[M, P], *node[M, P]](s.prev(spot), n, xrbtree.Right)
	}
	s.list.InsertBefore(spot, n)
	s.root = xrbtree.RebalanceAfterInsert[node[M, P], *node[M, P]](n)
}

// insertAfter links n into tree and list just after spot.
func (s *Space[M, P]) insertAfter(spot, n *node[M, P]) {
	if spot.right() == nil {
		xrbtree.SetChild[node[M, P], *node[M, P]](spot, n, xrbtree.Right)
	} else {
		// the in-order successor is the leftmost node of the right subtree
		// and thus has no left child
		xrbtree.SetChild[node[M, P], *node[M, P]](s.next(spot), n, xrbtree.Left)
	}
	s.list.InsertAfter(spot, n)
	s.root = xrbtree.RebalanceAfterInsert[node[M, P], *node[M, P]](n)
}

// prepend links n as the new first node.
func (s *Space[M, P]) prepend(n *node[M, P]) {
	if s.root != nil {
		// the first node has no left child
		xrbtree.SetChild[node[M, P], *node[M, P]](s.list.Head(), n, xrbtree.Left)
	}
	s.list.Prepend(n)
	s.root = xrbtree.RebalanceAfterInsert[node[M, P], *node[M, P]](n)
}

// append links n as the new last node.
func (s *Space[M, P]) append(n *node[M, P]) {
	if s.root != nil {
		// the last node has no right child
		xrbtree.SetChild[node[M, P], *node[M, P]](s.list.Tail(), n, xrbtree.Right)
	}
	s.list.Append(n)
	s.root = xrbtree.RebalanceAfterInsert[node[M, P], *node[M, P]](n)
}

// lowerBound returns the rightmost node with span.Lo <= target, or nil if
// every range starts after target.
func (s *Space[M, P]) lowerBound(target M) *node[M, P] {
	n := s.root
	var best *node[M, P]
	for n != nil {
		if target < n.span.Lo {
			n = n.left()
		} else {
			best = n
			if n.span.Hi < target {
				n = n.right()
			} else {
				break
			}
		}
	}
	return best
}

// ---- lookup ----

// Get_ returns the value and range covering m.
//
// ok=false means m is not covered; the returned range is then empty.
//
// The descent prunes on subtree hulls: a subtree whose hull does not
// contain m cannot contain a covering range.
func (s *Space[M, P]) Get_(m M) (v P, r Range[M], ok bool) {
	n := s.root
	for n != nil {
		switch {
		case m < n.span.Lo:
			if !n.hull.Contains(m) {
				return v, NewEmpty[M](), false
			}
			n = n.left()
		case n.span.Hi < m:
			if !n.hull.Contains(m) {
				return v, NewEmpty[M](), false
			}
			n = n.right()
		default:
			return n.value, n.span, true
		}
	}
	return v, NewEmpty[M](), false
}

// Get returns the value covering m, or the zero value if m is not covered.
func (s *Space[M, P]) Get(m M) P {
	v, _, _ := s.Get_(m)
	return v
}

// Count returns the number of distinct ranges in the space.
func (s *Space[M, P]) Count() int {
	return s.list.Count()
}

// Empty returns whether the space covers nothing.
func (s *Space[M, P]) Empty() bool {
	return s.list.Count() == 0
}

// AllRanges returns all ranges of the space in ascending order.
//
// TODO -> iter? (see Begin for the allocation-free cursor)
func (s *Space[M, P]) AllRanges() []Entry[M, P] {
	ev := make([]Entry[M, P], 0, s.list.Count())
	for n := s.list.Head(); n != nil; n = s.next(n) {
		ev = append(ev, Entry[M, P]{Value: n.value, Range: n.span})
	}
	return ev
}

// Equal returns whether two spaces cover the same ranges with equal values.
func (a *Space[M, P]) Equal(b *Space[M, P]) bool {
	if a.Count() != b.Count() {
		return false
	}
	nb := b.list.Head()
	for na := a.list.Head(); na != nil; na = a.next(na) {
		if !(na.span.Equal(nb.span) && na.value == nb.value) {
			return false
		}
		nb = b.next(nb)
	}
	return true
}

// Clear removes all ranges from the space.
//
// Node storage is released to the arena at once.
func (s *Space[M, P]) Clear() {
	s.list.Clear()
	s.root = nil
	s.fa.Clear()
}

func (s *Space[M, P]) String() string {
	var b strings.Builder
	b.WriteString("{")
	for n := s.list.Head(); n != nil; n = s.next(n) {
		if n != s.list.Head() {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s:%v", n.span, n.value)
	}
	b.WriteString("}")
	return b.String()
}

// ---- mutation ----

// Mark sets the value for every metric in r to v, unconditionally replacing
// whatever was there before.
func (s *Space[M, P]) Mark(r Range[M], v P) {
	if r.Empty() {
		return
	}
	if traceSpace {
		log.Infof("Mark %s %v\t%s", r, v, s)
	}
	if debugSpace {
		s.verify()
		defer s.verify()
	}

	n := s.lowerBound(r.Lo)
	var x *node[M, P] // node carrying the marked range; reused when possible

	if n != nil {
		if n.span.Lo == r.Lo {
			// there could be a span further left which is adjacent.
			// Coalesce if the value is the same. The decrement is fine:
			// a predecessor exists, so r.Lo is not minimal.
			p := s.prev(n)
			if p != nil && p.value == v && p.span.Hi == decr(r.Lo) {
				x = p
				n = x
				x.assignMax(r.Hi)
			} else if n.span.Hi <= r.Hi {
				// existing span is subsumed by r - reuse it
				x = n
				x.assignMax(r.Hi)
				x.value = v
			} else if n.value == v {
				return // r is covered by an existing span with the same value
			} else {
				// existing span strictly covers r with another value:
				// clip it and put the new span in front. n.Hi > r.Hi, so
				// the increment cannot wrap.
				x = s.makeNode(r, v)
				n.assignMin(incr(r.Hi))
				s.insertBefore(n, x)
				return
			}
		} else if n.value == v && n.span.Hi >= decr(r.Lo) {
			// n.Lo < r.Lo here, so r.Lo is not minimal and the decrement
			// cannot wrap. Overlap or left-adjacency with the same value -
			// extend n over r.
			x = n
			if x.span.Hi >= r.Hi {
				return // r is covered by an existing span with the same value
			}
			x.assignMax(r.Hi)
		} else if n.span.Hi <= r.Hi {
			if n.span.Hi >= r.Lo {
				// left skew overlap - clip n
				n.assignMax(decr(r.Lo))
			} else if y := s.next(n); y != nil && y.span.Hi <= r.Hi {
				// n is disjoint from r. Because n was the lower bound, the
				// next span starts at or after r.Lo; here it is covered by
				// r entirely, so it can be reused.
				x = y
				x.value = v
				x.setSpan(r)
				n = x
			}
		} else {
			// existing span strictly covers r with another value: split it,
			// put the new span in between and we are done. n.Hi > r.Hi and
			// n.Lo < r.Lo, so neither edge computation can wrap.
			x = s.makeNode(r, v)
			rest := s.makeNode(NewRange(incr(r.Hi), n.span.Hi), n.value)
			n.assignMax(decr(r.Lo))
			s.insertAfter(n, x)
			s.insertAfter(x, rest)
			return
		}
		n = s.next(n) // lower bound span handled, move on
		if x == nil {
			x = s.makeNode(r, v)
			if n != nil {
				s.insertBefore(n, x)
			} else {
				s.append(x)
			}
		}
	} else if n = s.list.Head(); n != nil && n.value == v &&
		(n.span.Lo <= r.Hi || leftAdjoins(r.Hi, n.span.Lo)) {
		// every span starts after r.Lo; the head overlaps r or adjoins it
		// on the right and has the same value - reuse it.
		x = n
		n = s.next(n)
		x.assignMin(r.Lo)
		if x.span.Hi < r.Hi {
			x.assignMax(r.Hi)
		}
	} else {
		x = s.makeNode(r, v)
		s.prepend(x)
		// n still refers to the old head (if any); the sweep below resolves
		// the overlaps with it.
	}

	// x carries the marked range; all remaining spans of interest start at
	// or past r.Lo.
	for n != nil {
		if n.span.Hi <= r.Hi {
			// fully covered - drop
			y := n
			n = s.next(n)
			s.remove(y)
			continue
		}
		// n extends past r.Hi
		if n.span.Lo > r.Hi {
			// increment is safe: r.Hi < n.span.Lo
			if incr(r.Hi) < n.span.Lo {
				break // disjoint with a gap
			}
			if n.value == v {
				// adjacent with equal value - absorb
				x.assignMax(n.span.Hi)
				s.remove(n)
			}
			break
		}
		if n.value == v {
			// skew overlap with equal value - absorb
			x.assignMax(n.span.Hi)
			s.remove(n)
		} else {
			// skew overlap with different value - clip n on the left.
			// n.span.Hi > r.Hi, so the increment cannot wrap.
			n.assignMin(incr(r.Hi))
		}
		break
	}
}

// Fill sets the value for metrics in r that are not yet covered; covered
// metrics are left untouched.
func (s *Space[M, P]) Fill(r Range[M], v P) {
	if r.Empty() {
		return
	}
	if traceSpace {
		log.Infof("Fill %s %v\t%s", r, v, s)
	}
	if debugSpace {
		s.verify()
		defer s.verify()
	}

	n := s.lowerBound(r.Lo)
	var x *node[M, P] // span being extended over gaps, if any
	min := r.Lo
	max := r.Hi

	// handle a span that starts left of r
	if n != nil {
		if n.span.Lo < min {
			min1 := decr(min) // fine: n.Lo < min, so min is not minimal
			if n.span.Hi < min1 {
				// no overlap, not adjacent
				n = s.next(n)
			} else if n.span.Hi >= max {
				return // r is covered, nothing to fill
			} else if n.value != v {
				// different value - clip r on the left.
				// n.Hi < max, so the increment cannot wrap.
				min = incr(n.span.Hi)
				n = s.next(n)
			} else {
				// skew overlap or adjacent predecessor with same value -
				// carry it along and extend over the gaps.
				x = n
				n = s.next(n)
			}
		}
	} else {
		n = s.list.Head()
	}

	// Invariant: n == nil, or n.span.Lo >= min.
	// max never changes; each iteration either carries x or advances min.
	for n != nil {
		if n.value == v {
			if x != nil {
				if n.span.Hi <= max {
					// next span is covered whole - absorb and continue
					s.remove(n)
					n = s.next(x)
				} else if n.span.Lo <= max || leftAdjoins(max, n.span.Lo) {
					// overlap or adjacent with larger max - absorb, done
					x.assignMax(n.span.Hi)
					s.remove(n)
					return
				} else {
					// gap; finish off the range
					x.assignMax(max)
					return
				}
			} else {
				if n.span.Hi <= max {
					// next span is covered - use it as the carry
					x = n
					x.assignMin(min)
					n = s.next(n)
				} else if n.span.Lo <= max || leftAdjoins(max, n.span.Lo) {
					n.assignMin(min)
					return
				} else {
					// no overlap, space to complete the range
					s.insertBefore(n, s.makeNode(NewRange(min, max), v))
					return
				}
			}
		} else { // different value
			if x != nil {
				if max < n.span.Lo {
					// r ends before n starts - done
					x.assignMax(max)
					return
				} else if max <= n.span.Hi {
					// r ends inside n - close the gap up to n and done.
					// n has a left neighbour (x), so n.Lo is not minimal.
					x.assignMax(decr(n.span.Lo))
					return
				} else {
					// n is contained in r - skip over it.
					// n.Hi < max, so the increment cannot wrap.
					x.assignMax(decr(n.span.Lo))
					x = nil
					min = incr(n.span.Hi)
					n = s.next(n)
				}
			} else {
				if max < n.span.Lo {
					// entirely before the next span
					s.insertBefore(n, s.makeNode(NewRange(min, max), v))
					return
				}
				if min < n.span.Lo {
					// leading gap - needs a node
					s.insertBefore(n, s.makeNode(NewRange(min, decr(n.span.Lo)), v))
				}
				if max <= n.span.Hi {
					return // nothing past n
				}
				min = incr(n.span.Hi) // fine: n.Hi < max
				n = s.next(n)
			}
		}
	}

	// Invariant: min is past every existing span.
	if x != nil {
		x.assignMax(max)
	} else {
		s.append(s.makeNode(NewRange(min, max), v))
	}
}

// Erase removes every metric in r from the space.
func (s *Space[M, P]) Erase(r Range[M]) {
	if r.Empty() {
		return
	}
	if traceSpace {
		log.Infof("Erase %s\t%s", r, s)
	}
	if debugSpace {
		s.verify()
		defer s.verify()
	}

	n := s.lowerBound(r.Lo)
	if n == nil {
		n = s.list.Head()
	}
	for n != nil {
		if n.span.Lo > r.Hi {
			break
		}
		if n.span.Hi < r.Lo {
			// only the lower bound span can be fully left of r
			n = s.next(n)
			continue
		}
		if n.span.Lo < r.Lo {
			if n.span.Hi > r.Hi {
				// n strictly covers r: split into two residual spans.
				// Both edge computations cannot wrap.
				rest := s.makeNode(NewRange(incr(r.Hi), n.span.Hi), n.value)
				n.assignMax(decr(r.Lo))
				s.insertAfter(n, rest)
				return
			}
			// right part of n is erased
			n.assignMax(decr(r.Lo))
			n = s.next(n)
			continue
		}
		if n.span.Hi <= r.Hi {
			// fully covered - drop
			y := n
			n = s.next(n)
			s.remove(y)
			continue
		}
		// left part of n is erased. n.Hi > r.Hi, so the increment cannot wrap.
		n.assignMin(incr(r.Hi))
		break
	}
}

// ---- verify ----

// verify checks Space for internal consistency: ordering, disjointness,
// canonical coalescing, hull correctness and tree/list agreement.
func (s *Space[M, P]) verify() {
	var badv []string
	badf := func(format string, argv ...interface{}) {
		badv = append(badv, fmt.Sprintf(format, argv...))
	}
	defer func() {
		if badv != nil {
			emsg := "S.verify: fail:\n\n"
			for _, bad := range badv {
				emsg += fmt.Sprintf("- %s\n", bad)
			}
			emsg += fmt.Sprintf("\nS: %s\n", s)
			panic(emsg)
		}
	}()

	nlist := 0
	var prev *node[M, P]
	for n := s.list.Head(); n != nil; n = s.next(n) {
		nlist++
		if n.span.Empty() {
			badf("empty range in space")
		}
		if prev != nil {
			if !(prev.span.Hi < n.span.Lo) {
				badf("unordered or overlapping: %s %s", prev.span, n.span)
			}
			if prev.value == n.value && prev.span.IsLeftAdjacentTo(n.span) {
				badf("adjacent ranges with equal value not coalesced: %s %s", prev.span, n.span)
			}
		}
		prev = n
	}
	if nlist != s.list.Count() {
		badf("list.Count() = %d; walked %d", s.list.Count(), nlist)
	}

	// tree must enumerate the same nodes in the same order
	var inorder []*node[M, P]
	s.verifyTree(s.root, nil, &inorder, badf)
	if len(inorder) != nlist {
		badf("tree has %d nodes; list has %d", len(inorder), nlist)
	} else {
		i := 0
		for n := s.list.Head(); n != nil; n = s.next(n) {
			if inorder[i] != n {
				badf("tree and list disagree at #%d", i)
				break
			}
			i++
		}
	}
}

func (s *Space[M, P]) verifyTree(n, parent *node[M, P], inorder *[]*node[M, P], badf func(format string, argv ...interface{})) {
	if n == nil {
		return
	}
	if xrbtree.Parent[node[M, P], *node[M, P]](n) != parent {
		badf("%s: broken parent link", n.span)
	}
	h := n.span
	if l := n.left(); l != nil {
		h = h.Hull(l.hull)
	}
	if r := n.right(); r != nil {
		h = h.Hull(r.hull)
	}
	if !n.hull.Equal(h) {
		badf("%s: hull mismatch: have %s;  want %s", n.span, n.hull, h)
	}
	s.verifyTree(n.left(), n, inorder, badf)
	*inorder = append(*inorder, n)
	s.verifyTree(n.right(), n, inorder, badf)
}
