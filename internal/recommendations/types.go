package recommendations

import (
	"bytes"
	"encoding/json"
)

// Category is one of the four fixed recommendation groupings.
type Category string

const (
	SecurityVulnerabilities Category = "Security Vulnerabilities"
	BestPractices           Category = "Best Practices"
	ActionSteps             Category = "Action Steps"
	OngoingMonitoring       Category = "Ongoing Monitoring"
)

// AllCategories lists the categories in document order.
var AllCategories = []Category{SecurityVulnerabilities, BestPractices, ActionSteps, OngoingMonitoring}

// Item is a single recommendation. Nil fields were not found in the completion.
type Item struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Insight     *string  `json:"insight"`
	ActionSteps []string `json:"action_steps"`
	Priority    *string  `json:"priority"`
}

// Categories maps every category to its items. JSON always carries all four keys in document order.
type Categories map[Category][]Item

// Document is the structured form of one completion.
type Document struct {
	OverallScore *string    `json:"overall_score"`
	Summary      *string    `json:"summary"`
	Categories   Categories `json:"categories"`
	Conclusion   *string    `json:"conclusion"`
}

// NewDocument returns an empty document with all categories present.
func NewDocument() Document {
	cats := make(Categories, len(AllCategories))
	for _, c := range AllCategories {
		cats[c] = []Item{}
	}
	return Document{Categories: cats}
}

// Items returns the items for c, never nil.
func (d Document) Items(c Category) []Item {
	if items := d.Categories[c]; items != nil {
		return items
	}
	return []Item{}
}

// ItemCount returns the number of items across all categories.
func (d Document) ItemCount() int {
	n := 0
	for _, c := range AllCategories {
		n += len(d.Categories[c])
	}
	return n
}

func (c Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range AllCategories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(cat))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(normalizeItems(c[cat]))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Categories) UnmarshalJSON(data []byte) error {
	var raw map[Category][]Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Categories, len(AllCategories))
	for _, cat := range AllCategories {
		out[cat] = normalizeItems(raw[cat])
	}
	*c = out
	return nil
}

// normalizeItems copies items so that neither the slice nor any ActionSteps is nil.
func normalizeItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ActionSteps == nil {
			out[i].ActionSteps = []string{}
		}
	}
	return out
}
