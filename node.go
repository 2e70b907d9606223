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
// node of a Space: range + value + subtree hull + tree/list linkage.

import (
	"lab.nexedi.com/nexedi/dspace/internal/xdlist"
	"lab.nexedi.com/nexedi/dspace/internal/xrbtree"
)

// node is one entry of a Space.
//
// The tree is keyed by span.Lo; the list threads nodes in the same order so
// that neighbours are reachable in O(1) during mutation. hull is the convex
// hull of the ranges in the subtree rooted at this node and is what lets
// lookups prune subtrees that cannot cover the target.
type node[M Metric, P comparable] struct {
	rbl xrbtree.Link[node[M, P]]
	dll xdlist.Link[node[M, P]]

	span  Range[M]
	hull  Range[M]
	value P
}

// RBLink implements xrbtree.Node.
func (n *node[M, P]) RBLink() *xrbtree.Link[node[M, P]] { return &n.rbl }

// ListLink implements xdlist.Node.
func (n *node[M, P]) ListLink() *xdlist.Link[node[M, P]] { return &n.dll }

func (n *node[M, P]) left() *node[M, P] {
	return xrbtree.Child[node[M, P], *node[M, P]](n, xrbtree.Left)
}

func (n *node[M, P]) right() *node[M, P] {
	return xrbtree.Child[node[M, P], *node[M, P]](n, xrbtree.Right)
}

// StructureFixup recomputes the subtree hull.
//
// xrbtree invokes it on every node whose set of descendants changed; with
// no children the hull is the node's own range.
func (n *node[M, P]) StructureFixup() {
	h := n.span
	if l := n.left(); l != nil {
		h = h.Hull(l.hull)
	}
	if r := n.right(); r != nil {
		h = h.Hull(r.hull)
	}
	n.hull = h
}

// ripple recomputes hulls from n up to the root. Must follow every in-place
// change of n.span.
func (n *node[M, P]) ripple() {
	xrbtree.RippleFixup[node[M, P], *node[M, P]](n)
}

func (n *node[M, P]) assignMin(m M) {
	n.span.Lo = m
	n.ripple()
}

func (n *node[M, P]) assignMax(m M) {
	n.span.Hi = m
	n.ripple()
}

func (n *node[M, P]) decMax() {
	n.span.ClipMax()
	n.ripple()
}

func (n *node[M, P]) setSpan(r Range[M]) {
	n.span = r
	n.ripple()
}
