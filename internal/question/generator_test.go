package question

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/macro-eval/internal/model"
)

var titles = map[string]string{
	"CPIAUCSL": "Consumer Price Index",
	"UNRATE":   "Unemployment Rate",
}

func TestVariants_Deterministic(t *testing.T) {
	anchor := model.MustDate("2024-03-01")
	spec := model.TruthSpec{SeriesID: "CPIAUCSL", Transform: model.TransformYoY, Date: &anchor}

	first, err := NewGenerator(titles, 123).Variants(spec, 3)
	require.NoError(t, err)
	second, err := NewGenerator(titles, 123).Variants(spec, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := NewGenerator(titles, 124).Variants(spec, 3)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestVariants_PerTransformContent(t *testing.T) {
	anchor := model.MustDate("2024-03-01")
	w := &model.Window{Start: model.MustDate("2023-01-01"), End: model.MustDate("2023-12-01")}
	g := NewGenerator(titles, 7)

	tests := []struct {
		name string
		spec model.TruthSpec
		want []string // substrings at least one variant must contain
	}{
		{"point", model.TruthSpec{SeriesID: "CPIAUCSL", Transform: model.TransformPoint, Date: &anchor},
			[]string{"Consumer Price Index"}},
		{"mom", model.TruthSpec{SeriesID: "UNRATE", Transform: model.TransformMoM, Date: &anchor},
			[]string{"Unemployment Rate"}},
		{"ma", model.TruthSpec{SeriesID: "UNRATE", Transform: model.TransformMA, Date: &anchor, MAWindow: 6},
			[]string{"6-"}},
		{"max", model.TruthSpec{SeriesID: "UNRATE", Transform: model.TransformMax, Window: w},
			[]string{"2023"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants, err := g.Variants(tt.spec, 4)
			require.NoError(t, err)
			require.Len(t, variants, 4)
			for _, v := range variants {
				assert.True(t, strings.HasSuffix(v.Question, "?"), "question %q", v.Question)
				for _, want := range tt.want {
					assert.Contains(t, v.Question, want)
				}
				assert.NotEmpty(t, v.Template)
			}
		})
	}
}

func TestVariants_UnknownSeriesFallsBackToID(t *testing.T) {
	anchor := model.MustDate("2024-03-01")
	variants, err := NewGenerator(nil, 1).Variants(
		model.TruthSpec{SeriesID: "GDPC1", Transform: model.TransformPoint, Date: &anchor}, 1)
	require.NoError(t, err)
	assert.Contains(t, variants[0].Question, "GDPC1")
}

func TestVariants_UnknownTransform(t *testing.T) {
	anchor := model.MustDate("2024-03-01")
	_, err := NewGenerator(titles, 1).Variants(
		model.TruthSpec{SeriesID: "GDPC1", Transform: "median", Date: &anchor}, 1)
	assert.Error(t, err)
}

func TestLoadRefusals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refusals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`refusals:
  - id: refusal_no_series
    question: "What was the rate in March?"
    reason: no series named
  - id: refusal_conflicting_range
    question: "What was CPI between 2025 and 2020?"
    reason: conflicting date range
`), 0o644))

	refusals, err := LoadRefusals(path)
	require.NoError(t, err)
	require.Len(t, refusals, 2)
	assert.Equal(t, "refusal_no_series", refusals[0].ID)
	assert.Equal(t, "conflicting date range", refusals[1].Reason)
}

func TestLoadRefusals_MissingID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refusals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refusals:\n  - question: \"huh?\"\n"), 0o644))

	_, err := LoadRefusals(path)
	assert.Error(t, err)
}
