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
// Key: the int64 metric, for users that do not need the generic form.

import (
	"math"
	"strconv"
	"strings"

	"github.com/johncgriffin/overflow"
	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/go123/xerr"
)

// Key is the default concrete metric.
type Key = int64

const (
	KeyMax Key = math.MaxInt64
	KeyMin Key = math.MinInt64
)

// KeyRange is a range over Key.
type KeyRange = Range[Key]

// KStr formats a key as a string, with the extrema shown as ±∞.
func KStr(k Key) string {
	if k == KeyMin {
		return "-∞"
	}
	if k == KeyMax {
		return "∞"
	}
	return strconv.FormatInt(k, 10)
}

// KeyRangeSize returns the number of keys covered by r.
//
// ok=false means the count does not fit into int64.
func KeyRangeSize(r KeyRange) (size int64, ok bool) {
	if r.Empty() {
		return 0, true
	}
	d, ok := overflow.Sub64(r.Hi, r.Lo)
	if !ok {
		return 0, false
	}
	size, ok = overflow.Add64(d, 1)
	if !ok {
		return 0, false
	}
	return size, true
}

// ParseKeyRange parses a key range from text.
//
// Accepted forms are "[lo,hi]", "lo-hi" and a bare "k" for the singleton
// range. Both bounds are inclusive.
func ParseKeyRange(s string) (_ KeyRange, err error) {
	defer xerr.Contextf(&err, "parse keyrange %q", s)

	if s == "" {
		return KeyRange{}, errors.New("empty input")
	}

	var slo, shi string
	switch {
	case strings.HasPrefix(s, "["):
		if !strings.HasSuffix(s, "]") {
			return KeyRange{}, errors.New("missing closing ]")
		}
		inner := s[1 : len(s)-1]
		var found bool
		slo, shi, found = strings.Cut(inner, ",")
		if !found {
			return KeyRange{}, errors.New("missing ,")
		}

	default:
		// "lo-hi" | "k"; mind the leading minus of a negative lo
		i := strings.Index(s[1:], "-")
		if i < 0 {
			slo, shi = s, s
		} else {
			slo, shi = s[:i+1], s[i+2:]
		}
	}

	lo, err := strconv.ParseInt(strings.TrimSpace(slo), 10, 64)
	if err != nil {
		return KeyRange{}, errors.Wrap(err, "lo")
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(shi), 10, 64)
	if err != nil {
		return KeyRange{}, errors.Wrap(err, "hi")
	}
	return NewRange(lo, hi), nil
}
