// Package ai defines the resume evaluation contract shared by the model
// providers and the pipeline.
package ai

import (
	"context"
	"errors"
	"math"
)

// ErrInvalidEvaluation marks model responses that could not be parsed into
// the expected evaluation shape (missing keys, out-of-range scores, broken
// JSON). Any other evaluation failure is a plain provider error.
var ErrInvalidEvaluation = errors.New("evaluation does not match the expected shape")

// Evaluation is the structured verdict for a single resume: seven rubric
// categories scored 0-10 plus ranked improvement advice.
type Evaluation struct {
	HardSkills              int      `json:"hard_skills"`
	SoftSkills              int      `json:"soft_skills"`
	Education               int      `json:"education"`
	Languages               int      `json:"languages"`
	WorkExperience          int      `json:"work_experience"`
	ProjectsAndCertificates int      `json:"projects_and_certificates"`
	OverallStructure        int      `json:"overall_structure"`
	Recommendations         []string `json:"recommendations"`
}

// Scores returns the category scores in rubric order.
func (e *Evaluation) Scores() []int {
	return []int{
		e.HardSkills,
		e.SoftSkills,
		e.Education,
		e.Languages,
		e.WorkExperience,
		e.ProjectsAndCertificates,
		e.OverallStructure,
	}
}

// Average is the mean of the category scores rounded to 2 decimal places.
func (e *Evaluation) Average() float64 {
	scores := e.Scores()

	sum := 0
	for _, score := range scores {
		sum += score
	}

	return math.Round(float64(sum)/float64(len(scores))*100) / 100
}

// Evaluator scores one resume text per call. Implementations do not retry;
// callers treat a failure as terminal for that one resume.
type Evaluator interface {
	Evaluate(ctx context.Context, resumeText string) (*Evaluation, error)
}
