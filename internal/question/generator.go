// Package question renders truth specs as natural-language questions,
// including deliberately noisy phrasings, with a seeded generator so a
// fixed seed always yields the same variants.
package question

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/macro-eval/internal/model"
)

// Generator expands truth specs into question variants. It owns an
// explicit seeded RNG; never a global one.
type Generator struct {
	titles map[string]string
	rng    *rand.Rand
}

// NewGenerator creates a Generator. titles maps series ids to the display
// titles used in phrasing; a missing title falls back to the id.
func NewGenerator(titles map[string]string, seed uint64) *Generator {
	return &Generator{
		titles: titles,
		rng:    rand.New(rand.NewPCG(seed, seed)),
	}
}

// Variant is one rendered question for a spec.
type Variant struct {
	Question string
	Template string
	Index    int
}

// Variants renders n question phrasings for the spec.
func (g *Generator) Variants(spec model.TruthSpec, n int) ([]Variant, error) {
	out := make([]Variant, 0, n)
	for i := 0; i < n; i++ {
		q, tmpl, err := g.build(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, Variant{Question: q, Template: tmpl, Index: i + 1})
	}
	return out, nil
}

func (g *Generator) build(spec model.TruthSpec) (string, string, error) {
	title := g.titles[spec.SeriesID]
	if title == "" {
		title = spec.SeriesID
	}

	var body, tmpl string
	switch spec.Transform {
	case model.TransformPoint:
		tmpl = g.pick(pointTemplates)
		body = expand(tmpl, map[string]string{
			"series": title,
			"date":   g.dateText(spec.Date),
		})
	case model.TransformMoM:
		tmpl = g.pick(changeTemplates)
		body = expand(tmpl, map[string]string{
			"series": title,
			"date":   g.dateText(spec.Date),
			"label":  g.pick(momLabels),
		})
	case model.TransformYoY:
		tmpl = g.pick(changeTemplates)
		body = expand(tmpl, map[string]string{
			"series": title,
			"date":   g.dateText(spec.Date),
			"label":  g.pick(yoyLabels),
		})
	case model.TransformMA:
		tmpl = g.pick(maTemplates)
		body = expand(tmpl, map[string]string{
			"series": title,
			"date":   g.dateText(spec.Date),
			"period": fmt.Sprintf("%d", spec.MAWindow),
		})
	case model.TransformMax:
		tmpl = g.pick(extremeTemplates)
		lab := g.pickExtreme(maxLabels)
		body = expand(tmpl, map[string]string{
			"series": title,
			"window": g.windowText(spec.Window),
			"label":  lab.label,
			"adj":    lab.adj,
		})
	case model.TransformMin:
		tmpl = g.pick(extremeTemplates)
		lab := g.pickExtreme(minLabels)
		body = expand(tmpl, map[string]string{
			"series": title,
			"window": g.windowText(spec.Window),
			"label":  lab.label,
			"adj":    lab.adj,
		})
	default:
		return "", "", eris.Errorf("question: unsupported transform %q", spec.Transform)
	}

	return g.decorate(body), tmpl, nil
}

// dateText picks one of the supported date phrasings.
func (g *Generator) dateText(d *model.Date) string {
	if d == nil {
		return "the requested period"
	}
	options := []string{
		d.Format("January 2006"),
		d.Format("Jan 2006"),
		d.Format("2006-01"),
	}
	return g.pick(options)
}

// windowText picks one of the supported window phrasings.
func (g *Generator) windowText(w *model.Window) string {
	if w == nil {
		return "between the requested dates"
	}
	startLong := w.Start.Format("January 2006")
	endLong := w.End.Format("January 2006")
	startShort := w.Start.Format("2006-01")
	endShort := w.End.Format("2006-01")
	options := []string{
		fmt.Sprintf("between %s and %s", startLong, endLong),
		fmt.Sprintf("between %s and %s", startShort, endShort),
		fmt.Sprintf("from %s to %s", startLong, endLong),
		fmt.Sprintf("from %s to %s", startShort, endShort),
	}
	return g.pick(options)
}

// decorate wraps the question body in optional noise and normalizes the
// trailing question mark.
func (g *Generator) decorate(body string) string {
	prefix := strings.TrimSpace(g.pick(noisePrefixes))
	suffix := strings.TrimSpace(g.pick(noiseSuffixes))
	out := strings.TrimSpace(body)
	if prefix != "" {
		out = prefix + " " + out
	}
	if suffix != "" {
		out = out + " " + suffix
	}
	if !strings.HasSuffix(out, "?") {
		out += "?"
	}
	return out
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}

func (g *Generator) pickExtreme(options []extremeLabel) extremeLabel {
	return options[g.rng.IntN(len(options))]
}

func expand(tmpl string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
