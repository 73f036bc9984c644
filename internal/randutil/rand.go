// Package randutil centralises deterministic RNG construction. Every worker
// and traversal owns its own generator seeded through here; nothing in the
// solver touches a process-global source, which keeps seeded runs
// reproducible under parallelism.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64,
// deriving the two 64-bit PCG seeds rand/v2 needs so all call sites get
// reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// mix is the splitmix64 finalizer; it spreads nearby seeds across the state
// space so sequential worker seeds do not produce correlated streams.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
