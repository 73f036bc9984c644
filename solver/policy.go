package solver

import (
	"errors"
	rand "math/rand/v2"
)

// Policy exposes read-only access to a blueprint's average strategies for
// sampling actions during play. Unseen info sets fall back to uniform over
// the legal actions, which guarantees a valid distribution.
type Policy struct {
	blueprint *Blueprint
}

// NewPolicy wraps a blueprint.
func NewPolicy(bp *Blueprint) (*Policy, error) {
	if bp == nil {
		return nil, errors.New("nil blueprint")
	}
	return &Policy{blueprint: bp}, nil
}

// LoadPolicy constructs a policy from a stored blueprint file.
func LoadPolicy(path string) (*Policy, error) {
	bp, err := LoadBlueprint(path)
	if err != nil {
		return nil, err
	}
	return NewPolicy(bp)
}

// Blueprint returns the underlying blueprint metadata.
func (p *Policy) Blueprint() *Blueprint {
	return p.blueprint
}

// ActionProbs writes the probability of each legal action into buf (indexed
// by action id, length NumActions) and returns it.
func (p *Policy) ActionProbs(key []byte, legal []int, buf []float64) []float64 {
	if buf == nil {
		buf = make([]float64, NumActions)
	}
	buf = buf[:NumActions]
	for i := range buf {
		buf[i] = 0
	}

	stored, ok := p.blueprint.Strategy(key)
	total := 0.0
	if ok {
		for _, a := range legal {
			buf[a] = stored[a]
			total += stored[a]
		}
	}
	if total > 0 {
		for _, a := range legal {
			buf[a] /= total
		}
		return buf
	}
	uniform := 1.0 / float64(len(legal))
	for _, a := range legal {
		buf[a] = uniform
	}
	return buf
}

// SampleAction draws a legal action id according to the policy.
func (p *Policy) SampleAction(key []byte, legal []int, buf []float64, rng *rand.Rand) int {
	probs := p.ActionProbs(key, legal, buf)
	return legal[sampleAction(legal, probs, rng)]
}
