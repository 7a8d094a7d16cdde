package question

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/macro-eval/internal/model"
)

// LoadRefusals reads the hand-authored refusal templates from a YAML
// file of the shape:
//
//	refusals:
//	  - id: refusal_no_series
//	    question: "What was the rate in March?"
//	    reason: no series named
func LoadRefusals(path string) ([]model.RefusalTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "question: read refusals")
	}

	var doc struct {
		Refusals []model.RefusalTemplate `yaml:"refusals"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "question: unmarshal refusals")
	}
	for _, r := range doc.Refusals {
		if r.ID == "" || r.Question == "" {
			return nil, eris.New("question: refusal template missing id or question")
		}
	}
	return doc.Refusals, nil
}
