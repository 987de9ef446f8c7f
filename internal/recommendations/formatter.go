package recommendations

import "strings"

const untitled = "Untitled"

// Format renders doc as markdown that Parse reads back. Nil fields and empty
// categories are omitted.
func Format(doc Document) string {
	var sections []string
	if doc.OverallScore != nil {
		sections = append(sections, "**Overall Security Score:** "+*doc.OverallScore)
	}
	if doc.Summary != nil {
		sections = append(sections, "**Summary:** "+*doc.Summary)
	}
	for _, c := range AllCategories {
		items := doc.Categories[c]
		if len(items) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString("**")
		b.WriteString(string(c))
		b.WriteString("**")
		for _, item := range items {
			b.WriteString("\n")
			writeItem(&b, item)
		}
		sections = append(sections, b.String())
	}
	if doc.Conclusion != nil {
		sections = append(sections, "**Conclusion:** "+*doc.Conclusion)
	}
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func writeItem(b *strings.Builder, item Item) {
	title := untitled
	if item.Title != nil {
		title = *item.Title
	}
	b.WriteString("* **")
	b.WriteString(title)
	b.WriteString(":**")
	if item.Description != nil {
		b.WriteString("\n  **Description:** ")
		b.WriteString(*item.Description)
	}
	if item.Insight != nil {
		b.WriteString("\n  **AI Insights:** ")
		b.WriteString(*item.Insight)
	}
	if len(item.ActionSteps) > 0 {
		b.WriteString("\n  **Action Steps:**")
		for _, step := range item.ActionSteps {
			b.WriteString("\n  * ")
			b.WriteString(step)
		}
	}
	if item.Priority != nil {
		b.WriteString("\n  **Priority:** ")
		b.WriteString(*item.Priority)
	}
}
