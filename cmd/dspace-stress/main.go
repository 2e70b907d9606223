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

// Program dspace-stress runs random mutation sequences on a discrete space
// and cross-checks every step against a brute-force model.
//
// Usage:
//
//	dspace-stress [-n <iterations>] [-seed <seed>]
//
// On success it prints a short summary, including the process RSS so that
// arena behaviour can be eyeballed across runs.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/bits-and-blooms/bitset"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"

	"lab.nexedi.com/kirr/go123/xerr"

	"lab.nexedi.com/nexedi/dspace"
)

var (
	niter = flag.Int("n", 100000, "number of operations to run")
	seed  = flag.Int64("seed", 1, "random seed")
)

// model is the brute-force reference: per-metric value + coverage bitset.
type model struct {
	covered *bitset.BitSet
	value   [1 << 16]uint32
}

type space = dspace.Space[uint16, uint32]

func (ref *model) apply(op int, r dspace.Range[uint16], v uint32, s *space) {
	switch op {
	case 0:
		s.Mark(r, v)
		if !r.Empty() {
			for m := int(r.Lo); m <= int(r.Hi); m++ {
				ref.covered.Set(uint(m))
				ref.value[m] = v
			}
		}
	case 1:
		s.Fill(r, v)
		if !r.Empty() {
			for m := int(r.Lo); m <= int(r.Hi); m++ {
				if !ref.covered.Test(uint(m)) {
					ref.covered.Set(uint(m))
					ref.value[m] = v
				}
			}
		}
	case 2:
		s.Erase(r)
		if !r.Empty() {
			for m := int(r.Lo); m <= int(r.Hi); m++ {
				ref.covered.Clear(uint(m))
			}
		}
	case 3:
		// blend: or the color in; drop regions that become all-ones
		blender := func(existing *uint32, color uint32) bool {
			*existing |= color
			return *existing != ^uint32(0)
		}
		dspace.Blend(s, r, v, blender)
		if !r.Empty() {
			for m := int(r.Lo); m <= int(r.Hi); m++ {
				blended := v // plain = 0 | v
				if ref.covered.Test(uint(m)) {
					blended = ref.value[m] | v
				}
				if blended == ^uint32(0) {
					ref.covered.Clear(uint(m))
				} else {
					ref.covered.Set(uint(m))
					ref.value[m] = blended
				}
			}
		}
	}
}

// compare cross-checks the space against the model at sample points.
func (ref *model) compare(s *space, rng *rand.Rand, nsample int) error {
	for i := 0; i < nsample; i++ {
		m := uint16(rng.Intn(1 << 16))
		v, _, ok := s.Get_(m)
		if ok != ref.covered.Test(uint(m)) {
			return errors.Errorf("@%d: covered mismatch: space says %t", m, ok)
		}
		if ok && v != ref.value[m] {
			return errors.Errorf("@%d: value mismatch: space %08x;  model %08x", m, v, ref.value[m])
		}
	}
	return nil
}

func run(n int, seed int64) (err error) {
	defer xerr.Contextf(&err, "stress n=%d seed=%d", n, seed)

	rng := rand.New(rand.NewSource(seed))
	s := &space{}
	ref := &model{covered: bitset.New(1 << 16)}

	// mild bias towards idempotent colors keeps the space interesting
	colors := []uint32{0x1, 0x2, 0x10, 0xff, 0xff00, 0xffff0000, ^uint32(0)}

	for i := 0; i < n; i++ {
		lo := uint16(rng.Intn(1 << 16))
		hi := lo + uint16(rng.Intn(1<<12)) // mostly short ranges; may wrap to empty
		r := dspace.NewRange(lo, hi)
		v := colors[rng.Intn(len(colors))]
		op := rng.Intn(4)

		ref.apply(op, r, v, s)

		if err := ref.compare(s, rng, 64); err != nil {
			return errors.Wrapf(err, "op#%d", i)
		}
		if i%10000 == 0 {
			log.Infof("op#%d: %d ranges", i, s.Count())
		}
	}

	log.Infof("done: %d ops, %d ranges", n, s.Count())
	fmt.Printf("ok: %d operations, %d ranges in final space\n", n, s.Count())

	// report the memory footprint
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	mi, err := proc.MemoryInfo()
	if err != nil {
		return err
	}
	fmt.Printf("rss: %.1f MB\n", float64(mi.RSS)/(1024*1024))
	return nil
}

func main() {
	flag.Parse()
	defer log.Flush()

	err := run(*niter, *seed)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
