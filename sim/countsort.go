package sim

import (
	"math/bits"
	"sync/atomic"
)

// countingSorter reorders a particle buffer into bin-contiguous order.
// The counts and cursors arrays are distinct arenas even though they have
// the same shape: counts measures occupancy for the scan, cursors allocates
// write slots during scatter. Both are one entry longer than the bin count
// so every bin's range is [offsets[k], offsets[k+1]) with no special case
// for the last bin.
type countingSorter struct {
	counts  []int32
	cursors []int32
	scanA   []int32
	scanB   []int32
	pool    *workerPool
}

func newCountingSorter(binCount int, pool *workerPool) *countingSorter {
	n := binCount + 1
	return &countingSorter{
		counts:  make([]int32, n),
		cursors: make([]int32, n),
		scanA:   make([]int32, n),
		scanB:   make([]int32, n),
		pool:    pool,
	}
}

// clear zeroes the occupancy counters.
func (s *countingSorter) clear() {
	s.pool.run(len(s.counts), func(start, end, _ int) {
		for i := start; i < end; i++ {
			s.counts[i] = 0
		}
	})
}

// fill tallies bin occupancy. The +1 offset pre-shapes the array for the
// scan: after summing, offsets[k] holds the count of particles in bins < k.
func (s *countingSorter) fill(src []Particle, grid Grid) {
	s.pool.run(len(src), func(start, end, _ int) {
		for i := start; i < end; i++ {
			bin := grid.BinIndex(src[i].Pos.X, src[i].Pos.Y)
			atomic.AddInt32(&s.counts[bin+1], 1)
		}
	})
}

// scan converts the per-bin counts into cumulative offsets with a
// Hillis-Steele iterative-doubling pass over the ping-pong pair. The step
// count is rounded up to an even number so the result lands back in scanA;
// a pass whose stride exceeds the array length is a plain copy.
func (s *countingSorter) scan() []int32 {
	n := len(s.counts)
	copy(s.scanA, s.counts)

	src, dst := s.scanA, s.scanB
	for step := 0; step < scanSteps(n); step++ {
		stride := 1 << step
		s.pool.run(n, func(start, end, _ int) {
			for i := start; i < end; i++ {
				if i >= stride {
					dst[i] = src[i-stride] + src[i]
				} else {
					dst[i] = src[i]
				}
			}
		})
		src, dst = dst, src
	}
	return src
}

// scanSteps returns ceil(log2(n)) rounded up to an even number.
func scanSteps(n int) int {
	if n <= 1 {
		return 0
	}
	steps := bits.Len(uint(n - 1))
	if steps%2 == 1 {
		steps++
	}
	return steps
}

// scatter copies every particle of src into its bin's next free slot of
// dst. Slots are allocated with an atomic fetch-and-add on the per-bin
// cursor, so intra-bin order is unspecified (the sort is not stable).
func (s *countingSorter) scatter(src, dst []Particle, grid Grid, offsets []int32) {
	s.pool.run(len(s.cursors), func(start, end, _ int) {
		for i := start; i < end; i++ {
			s.cursors[i] = 0
		}
	})

	s.pool.run(len(src), func(start, end, _ int) {
		for i := start; i < end; i++ {
			p := src[i]
			bin := grid.BinIndex(p.Pos.X, p.Pos.Y)
			slot := offsets[bin] + atomic.AddInt32(&s.cursors[bin], 1) - 1
			dst[slot] = p
		}
	})
}
