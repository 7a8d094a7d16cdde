package agent

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/resilience"
	"github.com/sells-group/macro-eval/pkg/anthropic"
)

const claudeSystemPrompt = `You answer questions about macroeconomic time series.
Respond with a single JSON object and nothing else, using exactly these keys:
{"value": number or null, "transform": "point"|"mom"|"yoy"|"ma"|"min"|"max" or null,
"date": "YYYY-MM-DD" or null, "window": {"start":"YYYY-MM-DD","end":"YYYY-MM-DD"} or null,
"citations": [doc ids], "text": short plain-language answer}.
Percent changes are percentage points (4.29 means 4.29%). If the question is
ambiguous or unanswerable, set value to null and explain in text.`

// Claude asks an Anthropic model to answer each question and returns the
// JSON object embedded in the reply.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// NewClaude creates a Claude agent. maxTokens <= 0 uses a sane default.
func NewClaude(client anthropic.Client, model string, maxTokens int64) *Claude {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	return &Claude{client: client, model: model, maxTokens: maxTokens, retry: retry}
}

// Answer sends the question and extracts the structured payload.
// Transient API failures (429, overloaded, network) are retried with
// backoff before the case is written off as an agent error.
func (a *Claude) Answer(ctx context.Context, c model.EvalCase) ([]byte, error) {
	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      claudeSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: c.Question},
		},
	}
	resp, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "agent: answer case %s", c.ID)
	}
	resp.Usage.LogUsage(a.model, "answer")

	text := resp.Text()
	payload := extractJSONObject(text)
	if payload == "" {
		zap.L().Warn("agent: no JSON object in reply",
			zap.String("case_id", c.ID),
			zap.Int("reply_len", len(text)),
		)
		return nil, eris.Errorf("agent: reply for case %s contains no JSON object", c.ID)
	}
	return []byte(payload), nil
}

// extractJSONObject returns the first balanced top-level {...} in text,
// tolerating code fences and prose around it.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
