package model

import "encoding/json"

// AgentResponse is the structured answer produced by an agent under test.
// It is untrusted input: every field is optional and validated by the
// verification rules, never assumed.
type AgentResponse struct {
	Value     *float64   `json:"value"`
	Transform *Transform `json:"transform"`
	Date      *Date      `json:"date"`
	Window    *Window    `json:"window"`
	Citations []string   `json:"citations"`
	RawText   string     `json:"text"`
}

// DecodeAgentResponse parses an agent payload leniently: any missing key
// becomes a null/empty field rather than a parse error, so verification
// can still run and report precise rule failures. Only a payload that is
// not a JSON object at all fails to decode.
func DecodeAgentResponse(data []byte) (AgentResponse, error) {
	var raw struct {
		Value     *float64 `json:"value"`
		Transform *string  `json:"transform"`
		Date      *string  `json:"date"`
		Window    *struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"window"`
		Citations []string `json:"citations"`
		Text      string   `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return AgentResponse{}, err
	}

	resp := AgentResponse{
		Value:     raw.Value,
		Citations: raw.Citations,
		RawText:   raw.Text,
	}
	if raw.Transform != nil {
		// An unknown tag is kept as-is so expectation_transform can
		// report the mismatch instead of masking it as a null.
		t := Transform(*raw.Transform)
		resp.Transform = &t
	}
	if raw.Date != nil {
		if d, err := ParseDate(*raw.Date); err == nil {
			resp.Date = &d
		}
	}
	if raw.Window != nil {
		w := Window{}
		ok := false
		if s, err := ParseDate(raw.Window.Start); err == nil {
			w.Start = s
			ok = true
		}
		if e, err := ParseDate(raw.Window.End); err == nil {
			w.End = e
			ok = true
		}
		if ok {
			resp.Window = &w
		}
	}
	return resp, nil
}
