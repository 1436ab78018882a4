package pipeline

import (
	"encoding/json"
	"os"

	"github.com/Boniole/test-task-candidates-scraper/internal/ai"
)

// Resume is the final entity returned to consumers: the listing summary
// enriched with the fetched resume text and its AI evaluation. AverageScore
// is present if and only if the evaluation is.
type Resume struct {
	Title        string         `json:"title"`
	Name         string         `json:"name"`
	Age          string         `json:"age,omitempty"`
	Link         string         `json:"link"`
	Location     string         `json:"location,omitempty"`
	Education    string         `json:"education,omitempty"`
	LastUpdate   string         `json:"last_update,omitempty"`
	ResumeText   string         `json:"resume_text,omitempty"`
	Evaluation   *ai.Evaluation `json:"evaluation,omitempty"`
	AverageScore *float64       `json:"average_score"`
}

// Score returns the sorting key: the average score, or 0 when the resume has
// no evaluation.
func (r *Resume) Score() float64 {
	if r.AverageScore != nil {
		return *r.AverageScore
	}
	return 0
}

// Result is an ordered collection of assembled resumes.
type Result struct {
	Items []*Resume
}

func (r *Result) Len() int {
	return len(r.Items)
}

// Top returns up to n leading resumes without copying them.
func (r *Result) Top(n int) []*Resume {
	if n > len(r.Items) {
		n = len(r.Items)
	}
	return r.Items[:n]
}

// Scored counts resumes that carry an evaluation.
func (r *Result) Scored() int {
	scored := 0
	for _, resume := range r.Items {
		if resume.Evaluation != nil {
			scored++
		}
	}
	return scored
}

// DumpToTmpFile writes the result as indented JSON to a temporary file and
// returns its name.
func (r *Result) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "resumes_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
