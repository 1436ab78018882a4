package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/Boniole/test-task-candidates-scraper/internal/ai"
	"github.com/Boniole/test-task-candidates-scraper/internal/util"
)

//go:embed prompt.md
var promptTemplate string

const (
	systemPrompt = "Ти експерт з аналізу резюме."

	resumePlaceholder = "{{RESUME_TEXT}}"

	defaultMaxLogLength = 200

	minScore = 0
	maxScore = 10
)

// scoreKeys are the rubric categories the model response must contain.
var scoreKeys = []string{
	"hard_skills",
	"soft_skills",
	"education",
	"languages",
	"work_experience",
	"projects_and_certificates",
	"overall_structure",
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Evaluator scores resume texts against the fixed rubric via a content
// generator. One model call per resume, no caching.
type Evaluator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewEvaluator(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Evaluator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Evaluate sends the resume text to the model and parses the structured
// verdict. Responses that do not match the evaluation shape are reported via
// ai.ErrInvalidEvaluation; transport and quota failures pass through as-is.
func (e *Evaluator) Evaluate(ctx context.Context, resumeText string) (*ai.Evaluation, error) {
	prompt := strings.ReplaceAll(promptTemplate, resumePlaceholder, resumeText)

	e.logger.Debug("evaluation request",
		zap.String("model", e.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("evaluation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseEvaluation(raw)
}

func parseEvaluation(raw string) (*ai.Evaluation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrInvalidEvaluation, err)
	}

	for _, key := range scoreKeys {
		if _, ok := data[key]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ai.ErrInvalidEvaluation, key)
		}
	}
	if _, ok := data["recommendations"]; !ok {
		return nil, fmt.Errorf("%w: missing key %q", ai.ErrInvalidEvaluation, "recommendations")
	}

	// The model occasionally returns scores as floats or quoted numbers;
	// decode weakly typed like the rest of the project does for loose maps.
	var evaluation ai.Evaluation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &evaluation,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrInvalidEvaluation, err)
	}

	for i, score := range evaluation.Scores() {
		if score < minScore || score > maxScore {
			return nil, fmt.Errorf("%w: %s score %d is out of range", ai.ErrInvalidEvaluation, scoreKeys[i], score)
		}
	}

	return &evaluation, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its JSON payload.
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
