package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeminiExtractor implements Extractor using Google's Gemini models via
// the official GenAI SDK.
type GeminiExtractor struct {
	Model   string   // e.g. "gemini-2.0-flash-exp"
	Metrics []string // metric names the prompt asks for
}

// Ensure interface compliance
var _ Extractor = (*GeminiExtractor)(nil)

// NewGeminiExtractor creates an extractor targeting the given model and
// metric vocabulary.
func NewGeminiExtractor(model string, metrics []string) *GeminiExtractor {
	return &GeminiExtractor{Model: model, Metrics: metrics}
}

const extractionSystemPrompt = `You are a financial data extraction service.
You read one quarterly filing and report the requested metrics as JSON.
Rules:
- Report ONLY values that appear in the filing text. Never estimate or invent a number.
- Omit a metric entirely if the filing does not state it.
- "value" is a plain number in millions of the filing's reporting currency (percentages as percentage points).
- "display" is the value formatted as it appears in the filing (e.g. "$24,927M", "46.2%").
- "unit" is "millions", "percent", or "dollars" (per-share figures).
- Respond with a single JSON object: {"metrics": {"<name>": {"value": ..., "unit": ..., "display": ...}, ...}}`

// Extract sends the filing text to Gemini and decodes the structured result.
func (g *GeminiExtractor) Extract(ctx context.Context, fullText, symbol string) (*RawExtraction, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := g.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		// Pin temperature low: extraction should be deterministic enough
		// that re-running on identical content converges to the same facts.
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: extractionSystemPrompt},
			},
		},
	}

	prompt := fmt.Sprintf(
		"Company: %s\nMetrics to extract: %s\n\nFiling text:\n%s",
		symbol, strings.Join(g.Metrics, ", "), fullText,
	)

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	return DecodeRawExtraction(result.Text())
}
