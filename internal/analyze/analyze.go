package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/config"
	"github.com/xeipuuv/gojsonschema"
)

// Analyzer scores one article via the configured model.
//
// Analyze never fails: any network, HTTP, parse, or schema problem degrades
// to DefaultAnalysis. It makes exactly one attempt per article; the caller
// caches whatever comes back and never retries.
type Analyzer interface {
	Analyze(ctx context.Context, article cache.Article) cache.Analysis
}

// New creates an Analyzer from the given AI config.
func New(cfg *config.AIConfig, apiKey string) (Analyzer, error) {
	provider, err := newProvider(cfg, apiKey)
	if err != nil {
		return nil, err
	}
	return &modelAnalyzer{provider: provider}, nil
}

// DefaultAnalysis is the fixed fallback verdict substituted whenever scoring
// fails. Returned fresh each call so callers cannot share slices.
func DefaultAnalysis() cache.Analysis {
	return cache.Analysis{
		Score:       5,
		Reasons:     []string{"Analysis failed"},
		Tags:        []string{},
		IsHighlight: false,
	}
}

const systemPrompt = "You are a tech news analyst. Always respond with valid JSON and nothing else. Provide concise, accurate analysis in JSON format."

const analyzePrompt = `Analyze this tech news article and provide a score from 1-10 based on:
- Importance in the tech industry
- Potential impact
- Novelty/innovation
- Relevance to developers/tech professionals

Title: %s
Summary: %s

Return your response as JSON with these fields:
- score (1-10)
- reasons (array of strings explaining the score)
- tags (array of relevant tech tags)
- is_highlight (boolean, true if score >= 7)

Only respond with a valid JSON object and nothing else.`

// responseSchemaJSON constrains the model reply. reasons and tags must be
// string arrays and is_highlight a boolean, or the whole reply is rejected.
// score is left untyped: it goes through coerceScore, which handles numbers,
// numeric strings, and garbage on its own.
const responseSchemaJSON = `{
	"type": "object",
	"properties": {
		"reasons": {"type": "array", "items": {"type": "string"}},
		"tags": {"type": "array", "items": {"type": "string"}},
		"is_highlight": {"type": "boolean"}
	}
}`

var responseSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("compiling response schema: %v", err))
	}
	return s
}()

type modelAnalyzer struct {
	provider provider
}

func (m *modelAnalyzer) Analyze(ctx context.Context, article cache.Article) cache.Analysis {
	prompt := fmt.Sprintf(analyzePrompt, article.Title, article.Summary)
	text, err := m.provider.complete(ctx, systemPrompt, prompt)
	if err != nil {
		log.Printf("analyzing %q: %v", article.Title, err)
		return DefaultAnalysis()
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		log.Printf("analyzing %q: bad model reply: %v", article.Title, err)
		return DefaultAnalysis()
	}
	return analysis
}

// parseAnalysis validates and decodes a model reply. A reply that is not a
// JSON object, or whose reasons/tags/is_highlight violate the schema, is an
// error and the caller substitutes the default verdict. A bad score is not:
// it falls back to 5 while the rest of the reply is kept.
func parseAnalysis(text string) (cache.Analysis, error) {
	result, err := responseSchema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return cache.Analysis{}, fmt.Errorf("parsing reply: %w", err)
	}
	if !result.Valid() {
		return cache.Analysis{}, fmt.Errorf("reply violates schema: %v", result.Errors())
	}

	var raw struct {
		Score       json.RawMessage `json:"score"`
		Reasons     []string        `json:"reasons"`
		Tags        []string        `json:"tags"`
		IsHighlight bool            `json:"is_highlight"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return cache.Analysis{}, fmt.Errorf("decoding reply: %w", err)
	}

	analysis := cache.Analysis{
		Score:       clamp(coerceScore(raw.Score), 1, 10),
		Reasons:     raw.Reasons,
		Tags:        raw.Tags,
		IsHighlight: raw.IsHighlight,
	}
	if analysis.Reasons == nil {
		analysis.Reasons = []string{}
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	return analysis, nil
}

// coerceScore turns the score field into an integer. Accepts an integer, a
// float (truncated), or a numeric string; anything else, including a missing
// field, becomes 5.
func coerceScore(raw json.RawMessage) int {
	// A JSON null unmarshals into an int as a no-op, so treat it like a
	// missing field explicitly.
	if raw == nil || string(raw) == "null" {
		return 5
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 5
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
