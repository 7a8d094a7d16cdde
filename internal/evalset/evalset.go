// Package evalset reads, writes, and merges JSONL evalsets: one
// model.EvalCase per line, answered cases first, refusal cases appended.
package evalset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/macro-eval/internal/model"
)

// Load reads a JSONL evalset. Blank lines are skipped.
func Load(path string) ([]model.EvalCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "evalset: open")
	}
	defer f.Close()

	var cases []model.EvalCase
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var c model.EvalCase
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, eris.Wrapf(err, "evalset: parse line %d of %s", line, path)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "evalset: scan")
	}
	return cases, nil
}

// Write renders cases as JSONL, creating parent directories as needed.
func Write(path string, cases []model.EvalCase) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "evalset: mkdir")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "evalset: create")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, c := range cases {
		if err := enc.Encode(c); err != nil {
			return eris.Wrapf(err, "evalset: encode case %s", c.ID)
		}
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "evalset: flush")
	}
	return nil
}

// Merge concatenates answered and refusal cases, rejecting empty or
// duplicate case ids.
func Merge(answered, refusals []model.EvalCase) ([]model.EvalCase, error) {
	combined := make([]model.EvalCase, 0, len(answered)+len(refusals))
	combined = append(combined, answered...)
	combined = append(combined, refusals...)

	seen := make(map[string]struct{}, len(combined))
	for _, c := range combined {
		if c.ID == "" {
			return nil, eris.New("evalset: case missing id")
		}
		if _, dup := seen[c.ID]; dup {
			return nil, eris.Errorf("evalset: duplicate case id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return combined, nil
}
