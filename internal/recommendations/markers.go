package recommendations

import (
	"regexp"
	"strings"
)

// Marker patterns are case-insensitive. A bold marker may carry its colon
// inside or after the closing asterisks.

const boldColon = `[ \t]*:?[ \t]*\*\*[ \t]*:?`

var (
	scoreMarker   = regexp.MustCompile(`(?i)\*\*[ \t]*Overall[ \t]+Security[ \t]+Score` + boldColon)
	scoreValue    = regexp.MustCompile(`(?i)(\d+)[ \t]*/[ \t]*(\d+)|\bN/A\b`)
	summaryMarker = regexp.MustCompile(`(?i)\*\*[ \t]*Summary` + boldColon)

	// Conclusion starts a line, optionally as a markdown heading.
	conclusionMarker = regexp.MustCompile(`(?im)^(?:#{1,6}[ \t]*)?\*\*[ \t]*Conclusion` + boldColon)

	blankLine = regexp.MustCompile(`\n[ \t]*\n`)

	// Items start at column 0 with a bullet followed by a bold title.
	itemDelimiter = regexp.MustCompile(`\n[*-][ \t]*\*\*`)

	stepDelimiter = regexp.MustCompile(`\n[ \t]*(?:[*-]|\d+\.)[ \t]+`)

	categoryHeadings = buildCategoryHeadings()
)

func boundaryMarkers() []*regexp.Regexp {
	out := []*regexp.Regexp{scoreMarker, summaryMarker, conclusionMarker}
	for _, c := range AllCategories {
		out = append(out, categoryHeadings[c])
	}
	return out
}

// fieldLabel is an item sub-label and the pattern that finds it.
type fieldLabel struct {
	name    string
	pattern *regexp.Regexp
}

const (
	fieldDescription = "description"
	fieldInsight     = "insight"
	fieldActionSteps = "action_steps"
	fieldPriority    = "priority"
)

// fieldLabels are searched in this order within an item block.
var fieldLabels = []fieldLabel{
	{name: fieldDescription, pattern: subLabel(`Description`)},
	{name: fieldInsight, pattern: subLabel(`(?:AI[ \t]+Insights?|Insights?|Why[ \t]+It[ \t]+Matters|Rationale)`)},
	{name: fieldActionSteps, pattern: subLabel(`Action[ \t]+Steps?`)},
	{name: fieldPriority, pattern: subLabel(`Priority(?:[ \t]+Level)?`)},
}

func subLabel(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\*\*[ \t]*` + name + boldColon)
}

// A category heading is a line holding only the bold category name, optionally
// numbered or prefixed with markdown heading hashes. The Action Steps heading
// takes no colon since "**Action Steps:**" is the item sub-label.
func buildCategoryHeadings() map[Category]*regexp.Regexp {
	out := make(map[Category]*regexp.Regexp, len(AllCategories))
	for _, c := range AllCategories {
		name := strings.ReplaceAll(regexp.QuoteMeta(string(c)), " ", `[ \t]+`)
		colon := `[ \t]*:?`
		if c == ActionSteps {
			colon = ``
		}
		out[c] = regexp.MustCompile(`(?im)^(?:#{1,6}[ \t]*)?(?:\d+\.[ \t]*)?\*\*[ \t]*(?:\d+\.[ \t]*)?` +
			name + colon + `[ \t]*\*\*` + colon + `[ \t]*$`)
	}
	return out
}
