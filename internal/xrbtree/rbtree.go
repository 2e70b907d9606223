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

// Package xrbtree provides an intrusive red-black tree primitive.
//
// A tree node embeds Link and exposes it via the RBLink method. The package
// implements only the structural part - linking, rebalancing and removal;
// key ordering and the decision where a node goes are left to the caller,
// which positions new nodes itself via SetChild and then restores balance
// with RebalanceAfterInsert.
//
// Nodes also provide a StructureFixup hook. It is invoked on every node
// whose set of descendants changed - after each rotation, relink and on
// RippleFixup - bottom-up, so that per-subtree augmented data (for example
// the convex hull of an interval tree) can be maintained.
package xrbtree

// Direction selects a child of a node.
type Direction int8

const (
	Left Direction = iota
	Right
)

type color int8

const (
	red color = iota
	black
)

// Link is the linkage embedded into tree nodes.
type Link[T any] struct {
	parent *T
	left   *T
	right  *T
	color  color
}

// Node is the constraint for types whose pointers can be linked into a tree.
type Node[T any] interface {
	*T
	RBLink() *Link[T]
	StructureFixup()
}

// Child returns the child of n in direction d, or nil.
func Child[T any, PT Node[T]](n PT, d Direction) PT {
	l := n.RBLink()
	if d == Left {
		return l.left
	}
	return l.right
}

// Parent returns the parent of n, or nil if n is the root.
func Parent[T any, PT Node[T]](n PT) PT {
	return n.RBLink().parent
}

// SetChild links child under parent in direction d.
//
// The previous child in that direction, if any, must have been unlinked by
// the caller. Balance is not restored - follow up with RebalanceAfterInsert
// on the new node.
func SetChild[T any, PT Node[T]](parent, child PT, d Direction) {
	l := parent.RBLink()
	if d == Left {
		l.left = child
	} else {
		l.right = child
	}
	if child != nil {
		child.RBLink().parent = parent
	}
}

// RippleFixup invokes StructureFixup on n and every ancestor of n, bottom-up.
//
// Call it after changing node data that feeds the augmentation, e.g. the
// range of an interval-tree node.
func RippleFixup[T any, PT Node[T]](n PT) {
	for x := n; x != nil; x = PT(x.RBLink().parent) {
		x.StructureFixup()
	}
}

// colorOf treats nil as black, as usual for leaves.
func colorOf[T any, PT Node[T]](n PT) color {
	if n == nil {
		return black
	}
	return n.RBLink().color
}

func setColor[T any, PT Node[T]](n PT, c color) {
	n.RBLink().color = c
}

// replaceChild redirects the parent link that points at old to new.
// parent == nil means old was the root; *root is updated instead.
func replaceChild[T any, PT Node[T]](root *PT, parent, old, new PT) {
	if parent == nil {
		*root = new
	} else {
		lp := parent.RBLink()
		if lp.left == old {
			lp.left = new
		} else {
			lp.right = new
		}
	}
	if new != nil {
		new.RBLink().parent = parent
	}
}

// rotate rotates p down in direction d; the opposite child comes up.
// StructureFixup runs on both pivoted nodes, lower one first.
func rotate[T any, PT Node[T]](root *PT, p PT, d Direction) {
	lp := p.RBLink()
	var c PT
	if d == Left {
		c = lp.right
	} else {
		c = lp.left
	}
	lc := c.RBLink()

	// the inner subtree of c changes sides
	var inner PT
	if d == Left {
		inner = lc.left
		lp.right = inner
	} else {
		inner = lc.right
		lp.left = inner
	}
	if inner != nil {
		inner.RBLink().parent = p
	}

	replaceChild[T, PT](root, PT(lp.parent), p, c)
	if d == Left {
		lc.left = p
	} else {
		lc.right = p
	}
	lp.parent = c

	p.StructureFixup()
	c.StructureFixup()
}

// RebalanceAfterInsert restores red-black balance after n was linked into
// the tree as a leaf via SetChild. It returns the new root.
func RebalanceAfterInsert[T any, PT Node[T]](n PT) PT {
	setColor[T, PT](n, red)
	RippleFixup[T, PT](n) // the new leaf grew ancestor subtrees

	// locate current root for rotations
	root := n
	for PT(root.RBLink().parent) != nil {
		root = PT(root.RBLink().parent)
	}

	x := n
	for {
		p := PT(x.RBLink().parent)
		if p == nil {
			setColor[T, PT](x, black)
			break
		}
		if colorOf[T, PT](p) == black {
			break
		}
		g := PT(p.RBLink().parent) // p is red, so g exists
		var uncle PT
		if Child[T, PT](g, Left) == p {
			uncle = Child[T, PT](g, Right)
		} else {
			uncle = Child[T, PT](g, Left)
		}

		if colorOf[T, PT](uncle) == red {
			setColor[T, PT](p, black)
			setColor[T, PT](uncle, black)
			setColor[T, PT](g, red)
			x = g
			continue
		}

		// uncle is black: rotate the zig-zag into a zig-zig first
		if x == Child[T, PT](p, Right) && p == Child[T, PT](g, Left) {
			rotate[T, PT](&root, p, Left)
			x = p
			continue
		}
		if x == Child[T, PT](p, Left) && p == Child[T, PT](g, Right) {
			rotate[T, PT](&root, p, Right)
			x = p
			continue
		}

		setColor[T, PT](p, black)
		setColor[T, PT](g, red)
		if x == Child[T, PT](p, Left) {
			rotate[T, PT](&root, g, Right)
		} else {
			rotate[T, PT](&root, g, Left)
		}
		break
	}

	for PT(root.RBLink().parent) != nil {
		root = PT(root.RBLink().parent)
	}
	return root
}

// Remove unlinks n from the tree rooted at root and returns the new root.
//
// n keeps its identity - only linkage changes - so intrusive references to
// other nodes stay valid. n's link is cleared on return.
func Remove[T any, PT Node[T]](root, n PT) PT {
	ln := n.RBLink()

	// two children: exchange n with its in-order successor so that n has at
	// most one child. Node identities are preserved - pointers are
	// relinked, data is not copied.
	if ln.left != nil && ln.right != nil {
		s := PT(ln.right)
		for PT(s.RBLink().left) != nil {
			s = PT(s.RBLink().left)
		}
		exchange[T, PT](&root, n, s)
	}

	// now at most one child
	child := PT(ln.left)
	if child == nil {
		child = PT(ln.right)
	}

	if colorOf[T, PT](n) == black {
		if colorOf[T, PT](child) == red {
			setColor[T, PT](child, black)
		} else {
			// black node with no red child has no child at all;
			// resolve the double-black with n still in place.
			deleteFixup[T, PT](&root, n)
		}
	}

	p := PT(ln.parent) // after fixup rotations
	replaceChild[T, PT](&root, p, n, child)
	if p != nil {
		RippleFixup[T, PT](p)
	}

	ln.parent = nil
	ln.left = nil
	ln.right = nil
	ln.color = red
	return root
}

// exchange swaps the tree positions of a and its in-order successor b.
// a must have two children; b has no left child by construction.
func exchange[T any, PT Node[T]](root *PT, a, b PT) {
	la, lb := a.RBLink(), b.RBLink()
	la.color, lb.color = lb.color, la.color

	ap := PT(la.parent)
	al := PT(la.left)
	ar := PT(la.right)
	bp := PT(lb.parent)
	br := PT(lb.right)

	replaceChild[T, PT](root, ap, a, b)

	lb.left = al
	al.RBLink().parent = b

	if b == ar {
		// b was a's right child: a goes directly under b
		lb.right = a
		la.parent = b
	} else {
		lb.right = ar
		ar.RBLink().parent = b
		// b was the leftmost node of a's right subtree
		bp.RBLink().left = a
		la.parent = bp
	}

	la.left = nil
	la.right = br
	if br != nil {
		br.RBLink().parent = a
	}

	// subtree contents changed for everything from a's new position up
	RippleFixup[T, PT](a)
}

// deleteFixup resolves a double-black at n. n is still linked and is known
// to have no children.
func deleteFixup[T any, PT Node[T]](root *PT, n PT) {
	x := n
	for {
		p := PT(x.RBLink().parent)
		if p == nil {
			return
		}
		s := siblingOf[T, PT](x)

		if colorOf[T, PT](s) == red {
			setColor[T, PT](p, red)
			setColor[T, PT](s, black)
			if x == Child[T, PT](p, Left) {
				rotate[T, PT](root, p, Left)
			} else {
				rotate[T, PT](root, p, Right)
			}
			p = PT(x.RBLink().parent)
			s = siblingOf[T, PT](x)
		}

		if colorOf[T, PT](p) == black &&
			colorOf[T, PT](s) == black &&
			colorOf[T, PT](Child[T, PT](s, Left)) == black &&
			colorOf[T, PT](Child[T, PT](s, Right)) == black {
			setColor[T, PT](s, red)
			x = p
			continue
		}

		if colorOf[T, PT](p) == red &&
			colorOf[T, PT](s) == black &&
			colorOf[T, PT](Child[T, PT](s, Left)) == black &&
			colorOf[T, PT](Child[T, PT](s, Right)) == black {
			setColor[T, PT](s, red)
			setColor[T, PT](p, black)
			return
		}

		if x == Child[T, PT](p, Left) &&
			colorOf[T, PT](Child[T, PT](s, Left)) == red &&
			colorOf[T, PT](Child[T, PT](s, Right)) == black {
			setColor[T, PT](s, red)
			setColor[T, PT](Child[T, PT](s, Left), black)
			rotate[T, PT](root, s, Right)
			s = siblingOf[T, PT](x)
		} else if x == Child[T, PT](p, Right) &&
			colorOf[T, PT](Child[T, PT](s, Right)) == red &&
			colorOf[T, PT](Child[T, PT](s, Left)) == black {
			setColor[T, PT](s, red)
			setColor[T, PT](Child[T, PT](s, Right), black)
			rotate[T, PT](root, s, Left)
			s = siblingOf[T, PT](x)
		}

		setColor[T, PT](s, colorOf[T, PT](p))
		setColor[T, PT](p, black)
		if x == Child[T, PT](p, Left) {
			setColor[T, PT](Child[T, PT](s, Right), black)
			rotate[T, PT](root, p, Left)
		} else {
			setColor[T, PT](Child[T, PT](s, Left), black)
			rotate[T, PT](root, p, Right)
		}
		return
	}
}

func siblingOf[T any, PT Node[T]](n PT) PT {
	p := PT(n.RBLink().parent)
	if Child[T, PT](p, Left) == n {
		return Child[T, PT](p, Right)
	}
	return Child[T, PT](p, Left)
}
