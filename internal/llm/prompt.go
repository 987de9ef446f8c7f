package llm

import (
	_ "embed"
	"strings"

	"assessment-backend/internal/catalog"
)

// PromptVersion identifies the embedded instruction template in submission logs.
const PromptVersion = "assessment_v1"

const (
	promptHeader    = "The following are the security-related answers provided by a small business:"
	missingAnswer   = "No answer provided"
	questionLineSep = " - "
)

//go:embed prompts/assessment_v1.txt
var assessmentInstructions string

// BuildAssessmentPrompt renders one line per catalog question, in catalog order,
// followed by the fixed instructions. Questions without an answer get a placeholder.
func BuildAssessmentPrompt(cat catalog.Catalog, answers map[string]string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")
	for _, section := range cat {
		for _, q := range section.Questions {
			answer, ok := answers[q.ID]
			if !ok {
				answer = missingAnswer
			}
			b.WriteString(section.Name)
			b.WriteString(questionLineSep)
			b.WriteString(q.Text)
			b.WriteString(": ")
			b.WriteString(answer)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(assessmentInstructions))
	b.WriteString("\n")
	return b.String()
}
