package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Boniole/test-task-candidates-scraper/internal/pipeline"
)

const notSpecified = "Not specified"

// FormatResume renders one resume as a Telegram HTML message: the summary
// block, the per-category scores, and the ranked recommendations.
func FormatResume(resume *pipeline.Resume) string {
	average := "N/A"
	if resume.AverageScore != nil {
		average = strconv.FormatFloat(*resume.AverageScore, 'f', -1, 64)
	}

	var builder strings.Builder

	fmt.Fprintf(&builder, "📄 <b>Title:</b> %s\n", resume.Title)
	fmt.Fprintf(&builder, "👤 <b>Name:</b> %s\n", resume.Name)
	fmt.Fprintf(&builder, "🎂 <b>Age:</b> %s\n", orNotSpecified(resume.Age))
	fmt.Fprintf(&builder, "📍 <b>Location:</b> %s\n", orNotSpecified(resume.Location))
	fmt.Fprintf(&builder, "🔗 <b>Link:</b> <a href='%s'>View Resume</a>\n", resume.Link)
	fmt.Fprintf(&builder, "🎓 <b>Education:</b> %s\n", orNotSpecified(resume.Education))
	fmt.Fprintf(&builder, "📅 <b>Last Update:</b> %s\n", orNotSpecified(resume.LastUpdate))
	fmt.Fprintf(&builder, "⭐ <b>Average Score:</b> <b>%s</b>\n", average)

	builder.WriteString("\n")
	builder.WriteString(formatScores(resume))
	builder.WriteString("\n")
	builder.WriteString(formatRecommendations(resume))

	return builder.String()
}

func formatScores(resume *pipeline.Resume) string {
	if resume.Evaluation == nil {
		return "<b>📊 Evaluation Scores:</b> Not available\n"
	}

	evaluation := resume.Evaluation

	var builder strings.Builder
	builder.WriteString("<b>📊 Evaluation Scores:</b>\n")
	fmt.Fprintf(&builder, "  - Hard Skills: <b>%d</b>\n", evaluation.HardSkills)
	fmt.Fprintf(&builder, "  - Soft Skills: <b>%d</b>\n", evaluation.SoftSkills)
	fmt.Fprintf(&builder, "  - Education: <b>%d</b>\n", evaluation.Education)
	fmt.Fprintf(&builder, "  - Languages: <b>%d</b>\n", evaluation.Languages)
	fmt.Fprintf(&builder, "  - Work Experience: <b>%d</b>\n", evaluation.WorkExperience)
	fmt.Fprintf(&builder, "  - Projects & Certificates: <b>%d</b>\n", evaluation.ProjectsAndCertificates)
	fmt.Fprintf(&builder, "  - Overall Structure: <b>%d</b>\n", evaluation.OverallStructure)

	return builder.String()
}

func formatRecommendations(resume *pipeline.Resume) string {
	if resume.Evaluation == nil || len(resume.Evaluation.Recommendations) == 0 {
		return "<b>💡 Recommendations:</b> Not available"
	}

	lines := make([]string, 0, len(resume.Evaluation.Recommendations))
	for _, recommendation := range resume.Evaluation.Recommendations {
		lines = append(lines, "  - "+recommendation)
	}

	return "<b>💡 Recommendations:</b>\n" + strings.Join(lines, "\n")
}

func orNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return notSpecified
	}
	return value
}
