package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers without a JSON object
var ErrEmptyResponse = errors.New("no JSON object in response")

// systemPrompt is shared by every provider
const systemPrompt = "You extract structured fields from Mexican real-estate listings. Answer with a single flat JSON object and nothing else."

// Provider defines the interface for inference providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract asks the model for the requested fields of one listing
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one inference call
type ExtractRequest struct {
	// Text is the normalized listing text
	Text string

	// Fields are the schema fields still missing; the answer is limited to them
	Fields []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the model's answer
type ExtractResponse struct {
	// Values maps requested field names to raw JSON values; nulls are dropped
	Values map[string]any

	// Raw is the unparsed completion text
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds inference provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 200,
	}
}

// fieldHints describe the expected value of each field the fallback may ask for
var fieldHints = map[string]string{
	"bedrooms":             "integer number of bedrooms",
	"bathrooms":            "integer number of full bathrooms",
	"half_bathrooms":       "integer number of half bathrooms",
	"levels":               "integer number of floors of the property",
	"parking_spaces":       "integer number of parking spaces",
	"age_years":            "integer age of the building in years",
	"lot_area_m2":          "lot surface in square meters",
	"construction_area_m2": "built surface in square meters",
	"frontage_m":           "lot frontage in meters",
	"depth_m":              "lot depth in meters",
	"price":                "asking price as a number",
	"currency":             `"MXN" or "USD"`,
	"operation_type":       `"sale" or "rental"`,
	"property_type":        `"house", "apartment", "land", "commercial", "office" or "warehouse"`,
	"colony":               "neighborhood (colonia) name",
	"city":                 "city or municipality name",
	"state":                "Mexican state name",
}

// BuildPrompt constructs the default extraction prompt. The answer contract
// is a flat JSON object with exactly the requested keys, null when unknown.
func BuildPrompt(text string, fields []string) string {
	keys := append([]string(nil), fields...)
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Read the listing below and return a JSON object with exactly these keys:\n")
	for _, k := range keys {
		hint, ok := fieldHints[k]
		if !ok {
			hint = "value"
		}
		fmt.Fprintf(&b, "- %s: %s\n", k, hint)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("1. Use null for anything the listing does not state.\n")
	b.WriteString("2. Do not add keys, comments or explanations.\n")
	b.WriteString("3. Numbers must be plain JSON numbers without units or separators.\n")
	b.WriteString("\nListing:\n")
	b.WriteString(text)
	return b.String()
}

// ParseAnswer extracts the JSON object from a completion and keeps only the
// requested, non-null keys. Models sometimes wrap the object in prose or code
// fences, so the outermost braces are located first.
func ParseAnswer(raw string, fields []string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, ErrEmptyResponse
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decoded); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}

	values := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := decoded[f]; ok && v != nil {
			values[f] = v
		}
	}
	return values, nil
}

// resolve fills the request defaults shared by all providers
func (c Config) resolve(req ExtractRequest, fallbackModel string) (prompt, model string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Text, req.Fields)
	}

	model = req.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 200
	}
	return prompt, model, maxTokens
}
