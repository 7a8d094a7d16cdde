// Package sampler draws deterministic truth specs from the warehouse.
// Every emitted spec is guaranteed to have a computable truth value: draws
// that resolve to insufficient data are discarded and resampled within a
// bounded retry budget.
package sampler

import (
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/transform"
)

// Weights partitions draws across transforms. Weights need not sum to 1;
// they are normalized over the canonical transform order.
type Weights map[model.Transform]float64

// Profile bundles the tunable knobs of a sampling run.
type Profile struct {
	Name          string  `yaml:"name" mapstructure:"name"`
	Weights       Weights `yaml:"weights" mapstructure:"weights"`
	MAWindowMin   int     `yaml:"ma_window_min" mapstructure:"ma_window_min"`
	MAWindowMax   int     `yaml:"ma_window_max" mapstructure:"ma_window_max"`
	MinWindowSpan int     `yaml:"min_window_span" mapstructure:"min_window_span"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// BaseProfile favors point lookups with narrow extrema windows.
func BaseProfile() Profile {
	return Profile{
		Name: "base",
		Weights: Weights{
			model.TransformPoint: 0.40,
			model.TransformMoM:   0.15,
			model.TransformYoY:   0.15,
			model.TransformMA:    0.10,
			model.TransformMin:   0.10,
			model.TransformMax:   0.10,
		},
		MAWindowMin:   3,
		MAWindowMax:   6,
		MinWindowSpan: 3,
		MaxRetries:    25,
	}
}

// ToughProfile biases toward derived transforms and wide extrema windows.
func ToughProfile() Profile {
	return Profile{
		Name: "tough",
		Weights: Weights{
			model.TransformPoint: 0.10,
			model.TransformMoM:   0.20,
			model.TransformYoY:   0.20,
			model.TransformMA:    0.20,
			model.TransformMin:   0.15,
			model.TransformMax:   0.15,
		},
		MAWindowMin:   4,
		MAWindowMax:   12,
		MinWindowSpan: 12,
		MaxRetries:    25,
	}
}

// Sampler draws truth specs from a fixed snapshot of series. It owns an
// explicit seeded generator: two samplers built with the same series,
// profile, and seed produce identical sequences, and concurrent samplers
// never perturb each other.
type Sampler struct {
	series    []*model.Series
	profile   Profile
	rng       *rand.Rand
	drawIndex int
}

// New creates a Sampler over series in the given order.
func New(series []*model.Series, profile Profile, seed uint64) *Sampler {
	if profile.MaxRetries <= 0 {
		profile.MaxRetries = 25
	}
	return &Sampler{
		series:  series,
		profile: profile,
		rng:     rand.New(rand.NewPCG(seed, seed)),
	}
}

// Sample draws perSeries specs for every series, in series order. A series
// with no observations is a configuration error, not a sparsity outcome.
func (s *Sampler) Sample(perSeries int) ([]model.TruthSpec, error) {
	var specs []model.TruthSpec
	for _, series := range s.series {
		if len(series.Observations) == 0 {
			return nil, eris.Errorf("sampler: series %s has no observations", series.ID)
		}
		for i := 0; i < perSeries; i++ {
			spec, ok, err := s.drawWithRetry(series)
			if err != nil {
				return nil, err
			}
			if !ok {
				zap.L().Warn("sampler: retry budget exhausted",
					zap.String("series_id", series.ID),
					zap.Int("max_retries", s.profile.MaxRetries),
				)
				continue
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// drawWithRetry draws until the spec resolves to a computable truth value
// or the retry budget runs out.
func (s *Sampler) drawWithRetry(series *model.Series) (model.TruthSpec, bool, error) {
	for attempt := 0; attempt < s.profile.MaxRetries; attempt++ {
		spec := s.draw(series)
		_, err := transform.Compute(series, spec)
		if err == nil {
			return spec, true, nil
		}
		if !model.IsInsufficientData(err) {
			return model.TruthSpec{}, false, eris.Wrap(err, "sampler: compute drawn spec")
		}
	}
	return model.TruthSpec{}, false, nil
}

// draw produces one candidate spec and advances the draw counter.
func (s *Sampler) draw(series *model.Series) model.TruthSpec {
	s.drawIndex++
	spec := model.TruthSpec{
		SeriesID:  series.ID,
		Transform: s.pickTransform(),
		SeedIndex: s.drawIndex,
	}

	if spec.Transform.NeedsWindow() {
		spec.Window = s.pickWindow(series)
		return spec
	}

	idx := s.rng.IntN(len(series.Observations))
	d := series.Observations[idx].Date
	spec.Date = &d
	if spec.Transform == model.TransformMA {
		lo, hi := s.profile.MAWindowMin, s.profile.MAWindowMax
		if lo < 2 {
			lo = 2
		}
		if hi < lo {
			hi = lo
		}
		spec.MAWindow = lo + s.rng.IntN(hi-lo+1)
	}
	return spec
}

// pickTransform chooses a transform by cumulative weight over the
// canonical tag order, keeping the choice stable for a fixed seed.
func (s *Sampler) pickTransform() model.Transform {
	total := 0.0
	for _, t := range model.Transforms {
		total += s.profile.Weights[t]
	}
	if total <= 0 {
		return model.TransformPoint
	}
	r := s.rng.Float64() * total
	acc := 0.0
	for _, t := range model.Transforms {
		acc += s.profile.Weights[t]
		if r < acc {
			return t
		}
	}
	return model.Transforms[len(model.Transforms)-1]
}

// pickWindow draws an ordered observation-date window, stretched to the
// profile's minimum span when the series is long enough.
func (s *Sampler) pickWindow(series *model.Series) *model.Window {
	n := len(series.Observations)
	a := s.rng.IntN(n)
	b := s.rng.IntN(n)
	if a > b {
		a, b = b, a
	}
	if span := s.profile.MinWindowSpan; b-a < span {
		b = a + span
		if b >= n {
			b = n - 1
			if a = b - span; a < 0 {
				a = 0
			}
		}
	}
	return &model.Window{
		Start: series.Observations[a].Date,
		End:   series.Observations[b].Date,
	}
}
