package expect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/macro-eval/internal/model"
)

func TestFromTruth_DatedTransforms(t *testing.T) {
	anchor := model.MustDate("2024-03-01")
	truth := &model.TruthValue{Value: 3.7, SupportingDates: []model.Date{anchor}}

	for _, tr := range []model.Transform{model.TransformPoint, model.TransformMoM, model.TransformYoY, model.TransformMA} {
		spec := model.TruthSpec{SeriesID: "UNRATE", Transform: tr, Date: &anchor}
		if tr == model.TransformMA {
			spec.MAWindow = 3
		}
		e := FromTruth(spec, truth)

		assert.True(t, e.ShouldHaveValue)
		assert.True(t, e.RequireDate, "transform %s", tr)
		assert.False(t, e.RequireWindow, "transform %s", tr)
		assert.Equal(t, tr, e.Transform)
		assert.Equal(t, 3.7, e.Value)
		assert.Equal(t, model.DefaultTolerance, e.Tolerance)
		assert.Equal(t, &anchor, e.AnchorDate)
	}
}

func TestFromTruth_WindowedTransforms(t *testing.T) {
	w := &model.Window{Start: model.MustDate("2023-01-01"), End: model.MustDate("2023-12-01")}
	truth := &model.TruthValue{Value: 5.5, SupportingDates: []model.Date{w.Start}}

	for _, tr := range []model.Transform{model.TransformMin, model.TransformMax} {
		e := FromTruth(model.TruthSpec{SeriesID: "FEDFUNDS", Transform: tr, Window: w}, truth)

		assert.False(t, e.RequireDate, "transform %s", tr)
		assert.True(t, e.RequireWindow, "transform %s", tr)
		assert.Equal(t, w, e.Window)
	}
}

func TestFromTruth_Options(t *testing.T) {
	anchor := model.MustDate("2024-03-01")
	e := FromTruth(
		model.TruthSpec{SeriesID: "UNRATE", Transform: model.TransformPoint, Date: &anchor},
		&model.TruthValue{Value: 3.7},
		WithTolerance(0.05),
		WithCitationRequired(),
	)

	assert.Equal(t, 0.05, e.Tolerance)
	assert.True(t, e.DocIDRequired)
}

func TestFromRefusal(t *testing.T) {
	e := FromRefusal(model.RefusalTemplate{ID: "refusal_1", Question: "What was it?", Reason: "no series named"})

	assert.False(t, e.ShouldHaveValue)
	assert.Empty(t, e.Transform)
	assert.False(t, e.RequireDate)
	assert.False(t, e.RequireWindow)
	assert.Nil(t, e.AnchorDate)
	assert.Nil(t, e.Window)
}
