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

// Package dspace provides discrete spaces - mappings from whole ranges of a
// discrete ordered domain to values.
//
// A Space[M,P] partitions covered values of metric type M into disjoint
// closed ranges, each carrying a value of type P. The partition is kept
// canonical: ranges never overlap and two adjacent ranges never carry equal
// values. Space supports marking (unconditional overwrite), filling (paint
// only gaps), erasing and blending (combine a color into existing values
// via a caller-supplied function), point lookup and ordered enumeration.
//
// Range[M] is the supporting value type: a closed interval [Lo,Hi] over M
// with set-algebra predicates and combinators.
//
// A Space is a single-owner structure: it is not safe for concurrent
// mutation and does not support copying.
package dspace

import (
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Metric is the constraint for domain element types of a discrete space.
//
// Any integer type qualifies: such types are totally ordered, discrete, and
// their extrema are known. IP addresses, timestamps and similar domains are
// used via their integer representation (e.g. uint32 for IPv4).
type Metric interface {
	constraints.Integer
}

// minimum returns the smallest value of M.
func minimum[M Metric]() M {
	var z M
	if ^z > z { // unsigned
		return z
	}
	return M(1) << (8*unsafe.Sizeof(z) - 1)
}

// maximum returns the largest value of M.
func maximum[M Metric]() M {
	var z M
	ones := ^z
	if ones > z { // unsigned
		return ones
	}
	return ones ^ minimum[M]()
}

// incr returns m+1.
//
// Callers must have already proven m < maximum via an ordering test; the
// increment happens on a copy, so modular metrics never wrap in place.
func incr[M Metric](m M) M {
	m++
	return m
}

// decr returns m-1.
//
// Callers must have already proven m > minimum via an ordering test.
func decr[M Metric](m M) M {
	m--
	return m
}

// leftAdjoins reports whether hi+1 == lo, without ever incrementing the
// maximal metric value: the ordering guard comes first and the increment
// runs on a copy.
func leftAdjoins[M Metric](hi, lo M) bool {
	if hi >= lo {
		return false
	}
	hi++
	return hi == lo
}

func panicf(format string, argv ...interface{}) {
	panic(fmt.Sprintf(format, argv...))
}
