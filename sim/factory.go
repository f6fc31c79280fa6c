package sim

import "math/rand"

// RandomParticles places count particles uniformly in the world rectangle
// with zero velocity and uniformly random species. The caller owns the rng,
// so runs are reproducible from a seed.
func RandomParticles(rng *rand.Rand, count, species int, opts Options) []Particle {
	particles := make([]Particle, count)
	for i := range particles {
		particles[i] = Particle{
			Pos: Vec2{
				X: opts.Left + rng.Float32()*opts.Width(),
				Y: opts.Bottom + rng.Float32()*opts.Height(),
			},
			Species: uint8(rng.Intn(species)),
		}
	}
	return particles
}
