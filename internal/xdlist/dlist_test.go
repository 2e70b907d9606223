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

package xdlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	link Link[item]
	v    int
}

func (i *item) ListLink() *Link[item] { return &i.link }

type itemList = List[item, *item]

// collect walks the list forward and backward and checks both agree.
func collect(t *testing.T, l *itemList) []int {
	t.Helper()
	var fwd, back []int
	for n := l.Head(); n != nil; n = Next[item, *item](n) {
		fwd = append(fwd, n.v)
	}
	for n := l.Tail(); n != nil; n = Prev[item, *item](n) {
		back = append([]int{n.v}, back...)
	}
	require.Equal(t, fwd, back)
	require.Equal(t, len(fwd), l.Count())
	return fwd
}

func TestList(t *testing.T) {
	l := &itemList{}
	assert.Nil(t, l.Head())
	assert.Nil(t, l.Tail())
	assert.Equal(t, 0, l.Count())

	n1 := &item{v: 1}
	n2 := &item{v: 2}
	n3 := &item{v: 3}
	n4 := &item{v: 4}
	n5 := &item{v: 5}

	l.Append(n3)
	require.Equal(t, []int{3}, collect(t, l))

	l.Prepend(n1)
	require.Equal(t, []int{1, 3}, collect(t, l))

	l.InsertBefore(n3, n2)
	require.Equal(t, []int{1, 2, 3}, collect(t, l))

	l.InsertAfter(n3, n5)
	require.Equal(t, []int{1, 2, 3, 5}, collect(t, l))

	l.InsertAfter(n3, n4)
	require.Equal(t, []int{1, 2, 3, 4, 5}, collect(t, l))

	assert.Equal(t, n1, l.Head())
	assert.Equal(t, n5, l.Tail())
	assert.Equal(t, n3, n2.link.Next())
	assert.Equal(t, n1, n2.link.Prev())

	// erase middle, head, tail
	l.Erase(n3)
	require.Equal(t, []int{1, 2, 4, 5}, collect(t, l))
	l.Erase(n1)
	require.Equal(t, []int{2, 4, 5}, collect(t, l))
	l.Erase(n5)
	require.Equal(t, []int{2, 4}, collect(t, l))

	// erased nodes can be relinked
	l.InsertBefore(n2, n3)
	require.Equal(t, []int{3, 2, 4}, collect(t, l))

	l.Clear()
	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.Head())

	// erase down to empty
	l2 := &itemList{}
	l2.Append(n1)
	l2.Erase(n1)
	assert.Equal(t, 0, l2.Count())
	assert.Nil(t, l2.Head())
	assert.Nil(t, l2.Tail())
}
