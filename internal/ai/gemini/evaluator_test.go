package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Boniole/test-task-candidates-scraper/internal/ai"
)

const validResponse = `{
	"hard_skills": 8,
	"soft_skills": 7,
	"education": 8,
	"languages": 9,
	"work_experience": 6,
	"projects_and_certificates": 8,
	"overall_structure": 7,
	"recommendations": ["Додати приклади проєктів.", "Оптимізувати структуру резюме."]
}`

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestEvaluatorEvaluate(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	evaluation, err := evaluator.Evaluate(context.Background(), "Wordpress developer. Розробка сайтів.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if evaluation.HardSkills != 8 {
		t.Fatalf("expected hard_skills 8, got %d", evaluation.HardSkills)
	}
	if evaluation.WorkExperience != 6 {
		t.Fatalf("expected work_experience 6, got %d", evaluation.WorkExperience)
	}
	if len(evaluation.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(evaluation.Recommendations))
	}
	if got := evaluation.Average(); got != 7.57 {
		t.Fatalf("expected average 7.57, got %v", got)
	}

	if stub.lastSystem != systemPrompt {
		t.Fatalf("unexpected system role message: %q", stub.lastSystem)
	}
	if !strings.Contains(stub.lastPrompt, "Wordpress developer. Розробка сайтів.") {
		t.Fatal("expected resume text to be embedded in the prompt")
	}
	if strings.Contains(stub.lastPrompt, resumePlaceholder) {
		t.Fatal("expected placeholder to be replaced")
	}
}

func TestEvaluatorHandlesCodeFencedResponse(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + validResponse + "\n```"}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	evaluation, err := evaluator.Evaluate(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluation.Languages != 9 {
		t.Fatalf("expected languages 9, got %d", evaluation.Languages)
	}
}

func TestEvaluatorFloatScoresAreAccepted(t *testing.T) {
	response := strings.Replace(validResponse, `"hard_skills": 8`, `"hard_skills": 8.0`, 1)
	stub := &stubGenerator{response: response}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	evaluation, err := evaluator.Evaluate(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluation.HardSkills != 8 {
		t.Fatalf("expected hard_skills 8, got %d", evaluation.HardSkills)
	}
}

func TestEvaluatorMissingKeyIsValidationError(t *testing.T) {
	response := strings.Replace(validResponse, `"languages": 9,`, "", 1)
	stub := &stubGenerator{response: response}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	_, err := evaluator.Evaluate(context.Background(), "text")
	if !errors.Is(err, ai.ErrInvalidEvaluation) {
		t.Fatalf("expected ErrInvalidEvaluation, got %v", err)
	}
}

func TestEvaluatorOutOfRangeScoreIsValidationError(t *testing.T) {
	response := strings.Replace(validResponse, `"education": 8`, `"education": 12`, 1)
	stub := &stubGenerator{response: response}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	_, err := evaluator.Evaluate(context.Background(), "text")
	if !errors.Is(err, ai.ErrInvalidEvaluation) {
		t.Fatalf("expected ErrInvalidEvaluation, got %v", err)
	}
}

func TestEvaluatorBrokenJSONIsValidationError(t *testing.T) {
	stub := &stubGenerator{response: "sorry, I cannot evaluate this resume"}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	_, err := evaluator.Evaluate(context.Background(), "text")
	if !errors.Is(err, ai.ErrInvalidEvaluation) {
		t.Fatalf("expected ErrInvalidEvaluation, got %v", err)
	}
}

func TestEvaluatorGeneratorErrorIsNotValidationError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exhausted")}
	evaluator := NewEvaluator(stub, zap.NewNop(), 0)

	_, err := evaluator.Evaluate(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ai.ErrInvalidEvaluation) {
		t.Fatalf("generator failure must not be a validation error: %v", err)
	}
}
