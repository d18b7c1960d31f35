package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

// ChatCompleter is the slice of the OpenAI client the extractor needs;
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type PromptSpec struct {
	System string        `yaml:"system"`
	Fields []PromptField `yaml:"fields"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
		Language    string  `yaml:"language"`
	} `yaml:"style"`
}

type PromptField struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Extractor asks the model oracle for a structured intent and refuses to trust
// anything outside the schema. A failed or malformed call is "no result", never
// a turn-level failure.
type Extractor struct {
	spec   PromptSpec
	client ChatCompleter
	model  string
}

const oracleTimeout = 10 * time.Second

func LoadExtractor(path string, client ChatCompleter, model string) (*Extractor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("parse intent prompt spec: %w", err)
	}
	return NewExtractor(spec, client, model), nil
}

func NewExtractor(spec PromptSpec, client ChatCompleter, model string) *Extractor {
	return &Extractor{spec: spec, client: client, model: model}
}

// rawIntent is the oracle's JSON as-is, before any validation.
type rawIntent struct {
	Intent string  `json:"intent"`
	Date   *string `json:"date"`
	Item   *string `json:"item"`
	Amount any     `json:"amount"`
	Target *string `json:"target"`
}

// ExtractIntent runs the full-JSON pass. A (nil, nil) return means the oracle
// produced nothing usable; the error is non-nil only for transport failures.
func (e *Extractor) ExtractIntent(ctx context.Context, message string, today time.Time) (*Intent, error) {
	raw, err := e.complete(ctx, e.systemPrompt(today), message)
	if err != nil {
		return nil, err
	}
	parsed := parseIntentJSON(raw)
	if parsed == nil {
		return nil, nil
	}
	intent := e.validate(message, today, parsed)
	return &intent, nil
}

// ExtractDateField is the single-field retry for a missing date. The result is
// accepted only if it normalizes to ISO.
func (e *Extractor) ExtractDateField(ctx context.Context, message string, today time.Time) (string, error) {
	instruction := fmt.Sprintf(
		"Today is %s. Extract the date the user refers to from the message, as ISO YYYY-MM-DD. Reply with only the date, or null if no date is mentioned.",
		today.Format(DateLayout))
	value, err := e.completeField(ctx, instruction, message)
	if err != nil || value == "" {
		return "", err
	}
	return NormalizeDate(value, today), nil
}

// ExtractItemField is the single-field retry for a missing item. The result is
// accepted only if it is a literal substring of the message.
func (e *Extractor) ExtractItemField(ctx context.Context, message string) (string, error) {
	instruction := "Extract the purchased item or store name from the message, quoting it verbatim. Reply with only that exact substring, or null if none is mentioned."
	value, err := e.completeField(ctx, instruction, message)
	if err != nil || value == "" {
		return "", err
	}
	if !IsItemSubstring(message, value) {
		return "", nil
	}
	return value, nil
}

// ExtractAmountField is the single-field retry for a missing amount.
func (e *Extractor) ExtractAmountField(ctx context.Context, message string) (*int64, error) {
	instruction := "Extract the amount of money in Korean won from the message as a plain integer (no separators, no currency unit). Reply with only the number, or null if no amount is mentioned."
	value, err := e.completeField(ctx, instruction, message)
	if err != nil || value == "" {
		return nil, err
	}
	return ParseAmount(value), nil
}

func (e *Extractor) systemPrompt(today time.Time) string {
	schemaJSON, _ := json.Marshal(e.spec.Fields)
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(e.spec.System, "{today}", today.Format(DateLayout)))
	b.WriteString("\n\nFields:\n")
	b.Write(schemaJSON)
	b.WriteString("\n\nOutput ONLY the JSON object with exactly these fields.\n")
	return b.String()
}

func (e *Extractor) completeField(ctx context.Context, instruction, message string) (string, error) {
	raw, err := e.complete(ctx, instruction, message)
	if err != nil {
		return "", err
	}
	value := strings.Trim(strings.TrimSpace(raw), `"'`)
	switch strings.ToLower(value) {
	case "", "null", "none":
		return "", nil
	}
	return value, nil
}

func (e *Extractor) complete(ctx context.Context, system, user string) (string, error) {
	temperature := e.spec.Style.Temperature
	if temperature <= 0 {
		temperature = 0.1
	}
	maxTokens := e.spec.Style.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}

	ctx, cancel := context.WithTimeout(ctx, oracleTimeout)
	defer cancel()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseIntentJSON tries strict JSON first, then rescues the outermost {...}
// block from chatty output. Anything else is discarded, not repaired.
func parseIntentJSON(raw string) *rawIntent {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	var out rawIntent
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return &out
	}
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last <= first {
		return nil
	}
	if err := json.Unmarshal([]byte(text[first:last+1]), &out); err != nil {
		return nil
	}
	return &out
}

// validate applies the oracle contract field by field: enum kind, ISO date,
// verbatim-substring item, non-negative integer amount, target "last" only.
// Violations drop the field, never the turn.
func (e *Extractor) validate(message string, today time.Time, r *rawIntent) Intent {
	intent := Intent{Kind: ParseKind(r.Intent)}
	if r.Date != nil {
		intent.Date = NormalizeDate(*r.Date, today)
	}
	if r.Item != nil {
		item := strings.TrimSpace(*r.Item)
		if IsItemSubstring(message, item) {
			intent.Item = item
		}
	}
	intent.Amount = ParseAmount(r.Amount)
	if r.Target != nil && strings.TrimSpace(*r.Target) == TargetLast {
		intent.Target = TargetLast
	}
	return intent
}
