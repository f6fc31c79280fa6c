package sim

// pairForce returns the force exerted on recv by one nearby particle:
// the species-pair term with linear falloff inside Radius, plus the
// always-repulsive collision term inside CollisionRadius. Coincident pairs
// produce no force — there is no direction for a radial term, and dividing
// by a zero distance would inject a NaN that persists in velocity forever.
func pairForce(recv, other Particle, table *ForceTable, opts Options) Vec2 {
	dx := other.Pos.X - recv.Pos.X
	dy := other.Pos.Y - recv.Pos.Y
	if opts.Looping {
		dx, dy = minImage(dx, dy, opts.Width(), opts.Height())
	}

	distSq := dx*dx + dy*dy
	if distSq == 0 {
		return Vec2{}
	}
	dist := fastSqrt(distSq)

	desc := table.At(recv.Species, other.Species)
	var f float32
	if dist < desc.Radius {
		f += desc.Strength * (1 - dist/desc.Radius)
	}
	if dist < desc.CollisionRadius {
		f -= desc.CollisionStrength * (1 - dist/desc.CollisionRadius)
	}
	if f == 0 {
		return Vec2{}
	}

	scale := f / dist
	return Vec2{X: dx * scale, Y: dy * scale}
}

// minImage applies the minimum-image correction: when a displacement
// component exceeds half the extent, the nearest periodic copy of the
// neighbor is on the other side of the boundary.
func minImage(dx, dy, w, h float32) (float32, float32) {
	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dy > h/2 {
		dy -= h
	} else if dy < -h/2 {
		dy += h
	}
	return dx, dy
}

// pointerForce returns the interactive perturbation force at pos: a
// Gaussian-weighted pull toward the pointer's target velocity. The smooth
// falloff avoids the discontinuity of a hard cutoff as particles cross the
// interaction radius.
func pointerForce(pos Vec2, ptr Pointer) Vec2 {
	if ptr.Strength == 0 || ptr.Radius <= 0 {
		return Vec2{}
	}
	dx := pos.X - ptr.Origin.X
	dy := pos.Y - ptr.Origin.Y
	w := ptr.Strength * fastExp(-(dx*dx+dy*dy)/(ptr.Radius*ptr.Radius))
	return Vec2{X: w * ptr.TargetVel.X, Y: w * ptr.TargetVel.Y}
}

// particleForce accumulates the total force on sorted[i]: pair forces from
// the 3×3 bin neighborhood, the central restoring force, and the pointer
// force. It also returns the number of candidate pairs visited, for
// telemetry. Self-comparison is detected by index equality, never by
// distance — distinct particles may coincide spatially.
func particleForce(i int, sorted []Particle, offsets []int32, grid Grid, table *ForceTable, opts Options, ptr Pointer) (Vec2, int) {
	p := sorted[i]
	col, row := grid.BinID(p.Pos.X, p.Pos.Y)

	// On grids narrower than the neighborhood, wrapping would visit the
	// same bin twice and double-count its pairs.
	minDC, maxDC := -1, 1
	if opts.Looping && grid.Cols < 3 {
		minDC, maxDC = 0, grid.Cols-1
	}
	minDR, maxDR := -1, 1
	if opts.Looping && grid.Rows < 3 {
		minDR, maxDR = 0, grid.Rows-1
	}

	var fx, fy float32
	pairs := 0
	for dr := minDR; dr <= maxDR; dr++ {
		r := row + dr
		if opts.Looping {
			r = (r + grid.Rows) % grid.Rows
		} else if r < 0 || r >= grid.Rows {
			continue
		}
		for dc := minDC; dc <= maxDC; dc++ {
			c := col + dc
			if opts.Looping {
				c = (c + grid.Cols) % grid.Cols
			} else if c < 0 || c >= grid.Cols {
				continue
			}

			bin := r*grid.Cols + c
			for j := int(offsets[bin]); j < int(offsets[bin+1]); j++ {
				if j == i {
					continue
				}
				f := pairForce(p, sorted[j], table, opts)
				fx += f.X
				fy += f.Y
				pairs++
			}
		}
	}

	fx -= p.Pos.X * opts.CentralForce
	fy -= p.Pos.Y * opts.CentralForce

	pf := pointerForce(p.Pos, ptr)
	fx += pf.X
	fy += pf.Y

	return Vec2{X: fx, Y: fy}, pairs
}
