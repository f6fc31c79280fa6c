package sim

// integrate applies friction to the post-force velocity, advances the
// position, and enforces the boundary policy. Fully independent per
// particle: no shared state is read or written.
func integrate(p *Particle, vel Vec2, frictionFactor float32, opts Options) {
	vx := vel.X * frictionFactor
	vy := vel.Y * frictionFactor

	x := p.Pos.X + vx*opts.DT
	y := p.Pos.Y + vy*opts.DT

	if opts.Looping {
		x = wrap(x, opts.Left, opts.Right)
		y = wrap(y, opts.Bottom, opts.Top)
	} else {
		if x < opts.Left {
			x = opts.Left
			vx = -vx
		} else if x > opts.Right {
			x = opts.Right
			vx = -vx
		}
		if y < opts.Bottom {
			y = opts.Bottom
			vy = -vy
		} else if y > opts.Top {
			y = opts.Top
			vy = -vy
		}
	}

	p.Pos = Vec2{X: x, Y: y}
	p.Vel = Vec2{X: vx, Y: vy}
}

// wrap maps x into [lo, hi) by whole-extent shifts (torus topology).
func wrap(x, lo, hi float32) float32 {
	return lo + mod(x-lo, hi-lo)
}
