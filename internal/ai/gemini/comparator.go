package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
	"github.com/arnavj/consultmatch/internal/logger"
	"github.com/arnavj/consultmatch/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Comparator evaluates a job description against consultant profiles in a
// single Gemini call and parses the judgments out of the model response.
type Comparator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewComparator(generator contentGenerator, maxLogLength int, log *zap.Logger) *Comparator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Comparator{
		generator: generator,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// rawComparison mirrors the JSON element shape the model is instructed to
// emit. Everything is decoded loosely; scores are coerced separately because
// models occasionally return them as strings or omit them entirely.
type rawComparison struct {
	ProfileName     string `mapstructure:"profile_name"`
	ApplicantName   string `mapstructure:"applicant_name"`
	SimilarityScore any    `mapstructure:"similarity_score"`
	Reasoning       string `mapstructure:"reasoning"`
}

func (c *Comparator) Compare(ctx context.Context, jdContent string, profiles []ai.Profile) ([]ai.ComparisonRecord, error) {
	if strings.TrimSpace(jdContent) == "" {
		return nil, fmt.Errorf("job description content is required")
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("at least one profile is required")
	}

	prompt := buildPrompt(jdContent, profiles)

	c.logger.Debug("gemini comparison request",
		zap.Int("profiles", len(profiles)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini comparison response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	records, err := parseComparisons(raw)
	if err != nil {
		return nil, err
	}

	attachProfileIDs(records, profiles)

	return records, nil
}

func buildPrompt(jdContent string, profiles []ai.Profile) string {
	var sb strings.Builder
	for _, p := range profiles {
		sb.WriteString(fmt.Sprintf("\n--- Consultant Profile: %s ---\n%s\n", p.Name, p.Content))
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JD_CONTENT}}", jdContent)
	return strings.ReplaceAll(prompt, "{{PROFILES_CONTENT}}", sb.String())
}

// parseComparisons accepts either the documented envelope
// {"comparisons": [...]} or a bare JSON array.
func parseComparisons(raw string) ([]ai.ComparisonRecord, error) {
	cleaned := extractJSON(raw)

	var elements []map[string]any

	var envelope struct {
		Comparisons []map[string]any `json:"comparisons"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err == nil && envelope.Comparisons != nil {
		elements = envelope.Comparisons
	} else if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		return nil, fmt.Errorf("parse gemini comparison response: %w", err)
	}

	records := make([]ai.ComparisonRecord, 0, len(elements))
	for _, element := range elements {
		var decoded rawComparison
		if err := mapstructure.Decode(element, &decoded); err != nil {
			return nil, fmt.Errorf("decode comparison element: %w", err)
		}

		records = append(records, ai.ComparisonRecord{
			ProfileName:     strings.TrimSpace(decoded.ProfileName),
			ApplicantName:   strings.TrimSpace(decoded.ApplicantName),
			SimilarityScore: coerceScore(decoded.SimilarityScore),
			Reasoning:       strings.TrimSpace(decoded.Reasoning),
		})
	}

	return records, nil
}

// attachProfileIDs joins stable profile identifiers back onto the records.
// The model only ever sees display names, so the name is the join key.
func attachProfileIDs(records []ai.ComparisonRecord, profiles []ai.Profile) {
	ids := make(map[string]string, len(profiles))
	for _, p := range profiles {
		if p.ID != "" {
			ids[p.Name] = p.ID
		}
	}

	for i := range records {
		records[i].ProfileID = ids[records[i].ProfileName]
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// coerceScore returns NaN for missing or non-numeric values. Range checking
// is deliberately left to the ranking layer so defaulting stays observable.
func coerceScore(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
