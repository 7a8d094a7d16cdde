// Package cards renders Markdown series cards: the per-series context
// documents handed to agents under evaluation.
package cards

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/macro-eval/internal/model"
)

// DefaultRecentObservations is the number of latest readings shown on a card.
const DefaultRecentObservations = 12

var printer = message.NewPrinter(language.AmericanEnglish)

// Render returns a Markdown card for the series: metadata, a one-line
// definition, and the most recent observations newest-first.
func Render(meta model.SeriesMeta, series *model.Series, lastN int) string {
	if lastN <= 0 {
		lastN = DefaultRecentObservations
	}

	title := meta.Title
	if title == "" {
		title = "Unknown Series"
	}
	units := meta.Units
	if units == "" {
		units = "Not specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", meta.ID, title)
	fmt.Fprintf(&b, "- **Units:** %s\n", units)
	fmt.Fprintf(&b, "- **Frequency:** %s\n", meta.Frequency)
	if !meta.FetchedAt.IsZero() {
		fmt.Fprintf(&b, "- **Last Updated:** %s\n", meta.FetchedAt.Format("2006-01-02"))
	}
	b.WriteString("\n## Definition\n")
	b.WriteString(definition(meta))
	b.WriteString("\n\n## Recent observations\n")

	recent := recentObservations(series, lastN)
	if len(recent) == 0 {
		b.WriteString("_No observations available._\n")
	} else {
		b.WriteString("| Date | Value |\n| --- | --- |\n")
		for _, o := range recent {
			fmt.Fprintf(&b, "| %s | %s |\n", o.Date, formatValue(o.Value))
		}
	}

	fmt.Fprintf(&b, "\nSource: FRED series_id=%s (cached in the warehouse)\n", meta.ID)
	return b.String()
}

// DocID returns the citation document id for a series card.
func DocID(seriesID string) string {
	return "series_" + seriesID
}

func definition(meta model.SeriesMeta) string {
	notes := strings.TrimSpace(meta.Notes)
	if notes != "" {
		return strings.Join(strings.Fields(notes), " ")
	}
	title := meta.Title
	if title == "" {
		title = "this indicator"
	}
	return fmt.Sprintf("This FRED series measures %s as published by the St. Louis Fed.", strings.ToLower(title))
}

// recentObservations returns the last n observations newest-first.
func recentObservations(series *model.Series, n int) []model.Observation {
	if series == nil || len(series.Observations) == 0 {
		return nil
	}
	obs := series.Observations
	if len(obs) > n {
		obs = obs[len(obs)-n:]
	}
	out := make([]model.Observation, len(obs))
	for i, o := range obs {
		out[len(obs)-1-i] = o
	}
	return out
}

func formatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	switch {
	case math.Abs(*v) >= 1000:
		return printer.Sprintf("%.2f", *v)
	case math.Abs(*v) >= 1:
		return fmt.Sprintf("%.2f", *v)
	default:
		return fmt.Sprintf("%.4f", *v)
	}
}
