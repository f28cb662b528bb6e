// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/ik5/audgrain/params"
)

// Rand is the random source presets are drawn from.
type Rand interface {
	Float64() float64
}

type Option func(*Generator)

// WithRanges replaces the range table. Fields missing from rs keep their
// default range.
func WithRanges(rs Ranges) Option {
	return func(g *Generator) {
		for f, r := range rs {
			g.ranges[f] = r
		}
	}
}

func WithRand(r Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// Generator draws random presets. It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rng    Rand
	ranges Ranges
}

func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		ranges: DefaultRanges(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.ranges.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// Ranges returns a copy of the range table in use.
func (g *Generator) Ranges() Ranges {
	out := make(Ranges, len(g.ranges))
	for f, r := range g.ranges {
		out[f] = r
	}

	return out
}

// Generate draws every parameter uniformly from its range. The pitch
// shift is rounded to whole semitones.
func (g *Generator) Generate() params.Parameters {
	g.mu.Lock()
	defer g.mu.Unlock()

	return params.Parameters{
		GrainSize:         g.draw(params.FieldGrainSize),
		Density:           g.draw(params.FieldDensity),
		PitchShift:        int(math.Round(g.draw(params.FieldPitchShift))),
		PlaybackRate:      g.draw(params.FieldPlaybackRate),
		PositionVariation: g.draw(params.FieldPositionVariation),
		PlaybackPosition:  g.draw(params.FieldPlaybackPosition),
		AttackTime:        g.draw(params.FieldAttackTime),
		ReleaseTime:       g.draw(params.FieldReleaseTime),
	}
}

// Apply writes a fresh preset to store in one step and returns it.
// Observers of the store see one live and one density change.
func (g *Generator) Apply(store *params.Store) (params.Parameters, error) {
	if store == nil {
		return params.Parameters{}, ErrNilStore
	}

	p := g.Generate()
	if err := store.Apply(p); err != nil {
		return params.Parameters{}, err
	}

	return store.Snapshot(), nil
}

func (g *Generator) draw(f params.Field) float64 {
	r := g.ranges[f]
	v := r.Min + g.rng.Float64()*(r.Max-r.Min)

	// rounding can land just past Max
	return max(r.Min, min(v, r.Max))
}
