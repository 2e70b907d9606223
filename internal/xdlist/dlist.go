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

// Package xdlist provides intrusive doubly-linked lists.
//
// A list node embeds Link and exposes it via the ListLink method. The links
// live inside the nodes themselves, so membership costs no allocation and
// neighbour access is O(1) given a node pointer.
package xdlist

// Link is the linkage embedded into list nodes.
type Link[T any] struct {
	next *T
	prev *T
}

// Next returns the node linked after the one owning l, or nil.
func (l *Link[T]) Next() *T { return l.next }

// Prev returns the node linked before the one owning l, or nil.
func (l *Link[T]) Prev() *T { return l.prev }

// Node is the constraint for types whose pointers can be linked into a List.
type Node[T any] interface {
	*T
	ListLink() *Link[T]
}

// List is an intrusive doubly-linked list of *T.
//
// Zero value represents an empty list.
type List[T any, PT Node[T]] struct {
	head PT
	tail PT
	n    int
}

// Next returns the node after n, or nil.
func Next[T any, PT Node[T]](n PT) PT { return n.ListLink().next }

// Prev returns the node before n, or nil.
func Prev[T any, PT Node[T]](n PT) PT { return n.ListLink().prev }

// Head returns the first node, or nil if the list is empty.
func (l *List[T, PT]) Head() PT { return l.head }

// Tail returns the last node, or nil if the list is empty.
func (l *List[T, PT]) Tail() PT { return l.tail }

// Count returns the number of nodes in the list.
func (l *List[T, PT]) Count() int { return l.n }

// Prepend links n in front of the current head.
//
// n must not be an element of any list.
func (l *List[T, PT]) Prepend(n PT) {
	ln := n.ListLink()
	ln.prev = nil
	ln.next = l.head
	if l.head != nil {
		l.head.ListLink().prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.n++
}

// Append links n after the current tail.
//
// n must not be an element of any list.
func (l *List[T, PT]) Append(n PT) {
	ln := n.ListLink()
	ln.next = nil
	ln.prev = l.tail
	if l.tail != nil {
		l.tail.ListLink().next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.n++
}

// InsertBefore links n just before at.
//
// at must be an element of the list; n must not be.
func (l *List[T, PT]) InsertBefore(at, n PT) {
	la := at.ListLink()
	ln := n.ListLink()
	ln.prev = la.prev
	ln.next = at
	if la.prev != nil {
		PT(la.prev).ListLink().next = n
	} else {
		l.head = n
	}
	la.prev = n
	l.n++
}

// InsertAfter links n just after at.
//
// at must be an element of the list; n must not be.
func (l *List[T, PT]) InsertAfter(at, n PT) {
	la := at.ListLink()
	ln := n.ListLink()
	ln.next = la.next
	ln.prev = at
	if la.next != nil {
		PT(la.next).ListLink().prev = n
	} else {
		l.tail = n
	}
	la.next = n
	l.n++
}

// Erase unlinks n from the list.
//
// n must be an element of the list.
func (l *List[T, PT]) Erase(n PT) {
	ln := n.ListLink()
	if ln.prev != nil {
		PT(ln.prev).ListLink().next = ln.next
	} else {
		l.head = ln.next
	}
	if ln.next != nil {
		PT(ln.next).ListLink().prev = ln.prev
	} else {
		l.tail = ln.prev
	}
	ln.next = nil
	ln.prev = nil
	l.n--
}

// Clear unlinks all nodes at once.
//
// The nodes themselves are left to the caller to release; their links are
// not reset individually.
func (l *List[T, PT]) Clear() {
	l.head = nil
	l.tail = nil
	l.n = 0
}
