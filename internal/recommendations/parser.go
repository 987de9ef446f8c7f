package recommendations

import (
	"strings"
)

// Parse converts a raw completion into a Document. Missing markers leave the
// dependent fields nil or empty; Parse never fails.
func Parse(raw string) Document {
	text := normalizeNewlines(raw)
	doc := NewDocument()
	doc.OverallScore = extractScore(text)
	doc.Summary = extractSummary(text)

	body := text
	if loc := conclusionMarker.FindStringIndex(text); loc != nil {
		body = text[:loc[0]]
	}
	for _, c := range AllCategories {
		doc.Categories[c] = parseItems(categorySpan(body, c))
	}
	doc.Conclusion = extractConclusion(text)
	return doc
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// extractScore returns the first "N/M" (or "N/A") after the score marker and
// before the next blank line or section marker.
func extractScore(text string) *string {
	loc := scoreMarker.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	span := text[loc[1]:fieldEnd(text, loc[1])]
	m := scoreValue.FindStringSubmatch(span)
	if m == nil {
		return nil
	}
	if m[1] == "" {
		return strPtr("N/A")
	}
	return strPtr(m[1] + "/" + m[2])
}

// extractSummary returns the text after the summary marker up to the next
// blank line or section marker.
func extractSummary(text string) *string {
	loc := summaryMarker.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	start := loc[1]
	for start < len(text) && strings.ContainsRune(" \t\n", rune(text[start])) {
		start++
	}
	return nonEmpty(text[start:fieldEnd(text, start)])
}

// fieldEnd returns the offset where a single-paragraph field starting at from
// ends: the next blank line, category heading, or top-level marker.
func fieldEnd(text string, from int) int {
	end := len(text)
	if loc := blankLine.FindStringIndex(text[from:]); loc != nil {
		end = from + loc[0]
	}
	for _, re := range boundaryMarkers() {
		if loc := re.FindStringIndex(text[from:end]); loc != nil {
			end = from + loc[0]
		}
	}
	return end
}

// extractConclusion returns everything after the conclusion marker.
func extractConclusion(text string) *string {
	loc := conclusionMarker.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	return nonEmpty(text[loc[1]:])
}

// categorySpan isolates the text under c's heading, ending at the nearest
// following category heading or the end of body. A missing heading yields "".
func categorySpan(body string, c Category) string {
	heading := categoryHeadings[c].FindStringIndex(body)
	if heading == nil {
		return ""
	}
	start := heading[1]
	end := len(body)
	for _, other := range AllCategories {
		if other == c {
			continue
		}
		for _, loc := range categoryHeadings[other].FindAllStringIndex(body, -1) {
			if loc[0] >= start && loc[0] < end {
				end = loc[0]
				break
			}
		}
	}
	return body[start:end]
}

// splitItems cuts a category span into item blocks. Each block after the first
// starts with the "**" that opened its bullet title. The text before the first
// bullet is kept only if it carries a field label.
func splitItems(span string) []string {
	if strings.TrimSpace(span) == "" {
		return nil
	}
	pieces := itemDelimiter.Split("\n"+span, -1)
	var blocks []string
	if pre := pieces[0]; strings.TrimSpace(pre) != "" && hasFieldLabel(pre) {
		blocks = append(blocks, pre)
	}
	for _, p := range pieces[1:] {
		if strings.TrimSpace(p) == "" {
			continue
		}
		blocks = append(blocks, "**"+p)
	}
	return blocks
}

func hasFieldLabel(block string) bool {
	for _, l := range fieldLabels {
		if l.pattern.MatchString(block) {
			return true
		}
	}
	return false
}

func parseItems(span string) []Item {
	items := []Item{}
	for _, block := range splitItems(span) {
		if item, ok := parseItem(block); ok {
			items = append(items, item)
		}
	}
	return items
}

// parseItem extracts the title and labeled fields from one block. Blocks with
// neither a title nor any field are rejected.
func parseItem(block string) (Item, bool) {
	fields, firstLabel := extractFields(block)
	item := Item{
		Title:       extractTitle(block[:firstLabel]),
		Description: cleanField(fields[fieldDescription]),
		Insight:     cleanField(fields[fieldInsight]),
		ActionSteps: splitActionSteps(fields[fieldActionSteps]),
		Priority:    extractPriority(fields[fieldPriority]),
	}
	if item.Title == nil && item.Description == nil && item.Insight == nil &&
		len(item.ActionSteps) == 0 && item.Priority == nil {
		return Item{}, false
	}
	return item, true
}

type labelHit struct {
	name       string
	start      int
	valueStart int
}

// extractFields finds the sub-labels in their fixed order, each search resuming
// after the previous hit. A field's value runs to the next hit or the block end.
// It also returns the offset of the first hit, or len(block) when none matched.
func extractFields(block string) (map[string]*string, int) {
	var hits []labelHit
	pos := 0
	for _, l := range fieldLabels {
		loc := l.pattern.FindStringIndex(block[pos:])
		if loc == nil {
			continue
		}
		hits = append(hits, labelHit{name: l.name, start: pos + loc[0], valueStart: pos + loc[1]})
		pos += loc[1]
	}

	fields := make(map[string]*string, len(hits))
	for i, h := range hits {
		end := len(block)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		val := block[h.valueStart:end]
		fields[h.name] = &val
	}
	first := len(block)
	if len(hits) > 0 {
		first = hits[0].start
	}
	return fields, first
}

// extractTitle takes the first line of the text before the first label, cut at
// the first colon or closing bold marker.
func extractTitle(lead string) *string {
	line := strings.TrimSpace(lead)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	title, rest := titleText(line)

	// "**Title:** Weak passwords" names the title explicitly. The value goes
	// through the same cut so the formatted heading reads back unchanged.
	if strings.EqualFold(title, "title") {
		if explicit, _ := titleText(strings.Trim(rest, ":* \t")); explicit != "" {
			title = explicit
		}
	}
	return nonEmpty(title)
}

// titleText strips list and heading markers, then cuts at the first colon or
// bold marker. rest is what follows the cut.
func titleText(line string) (title, rest string) {
	line = strings.TrimLeft(line, "*-# \t")
	cut := len(line)
	if i := strings.Index(line, ":"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(line, "**"); i >= 0 && i < cut {
		cut = i
	}
	return strings.Trim(line[:cut], "* \t"), line[cut:]
}

// splitActionSteps splits a field value on bullets or numbered lines.
func splitActionSteps(value *string) []string {
	steps := []string{}
	if value == nil {
		return steps
	}
	for _, frag := range stepDelimiter.Split("\n"+*value, -1) {
		if step := collapseLines(frag); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

// extractPriority keeps the first line of the value with asterisks removed.
func extractPriority(value *string) *string {
	if value == nil {
		return nil
	}
	line := strings.TrimSpace(*value)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return nonEmpty(strings.ReplaceAll(line, "*", ""))
}

func cleanField(value *string) *string {
	if value == nil {
		return nil
	}
	return nonEmpty(collapseLines(*value))
}

// collapseLines joins the non-blank trimmed lines of s with single spaces.
func collapseLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func strPtr(s string) *string {
	return &s
}
