package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrUnavailable means the catalog resource is missing or malformed.
var ErrUnavailable = errors.New("question catalog unavailable")

// Question is a single catalog entry.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Section groups questions under a display name.
type Section struct {
	Name      string     `json:"section"`
	Questions []Question `json:"questions"`
}

// Catalog is the ordered list of sections. Treat it as read-only once loaded.
type Catalog []Section

// Source loads the question catalog.
type Source interface {
	Load(ctx context.Context) (Catalog, error)
}

// QuestionCount returns the total number of questions across sections.
func (c Catalog) QuestionCount() int {
	n := 0
	for _, s := range c {
		n += len(s.Questions)
	}
	return n
}

// Decode reads, schema-validates and decodes a catalog document.
// All failures wrap ErrUnavailable.
func Decode(r io.Reader) (Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(raw []byte) (Catalog, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if err := checkUniqueIDs(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func checkUniqueIDs(cat Catalog) error {
	seen := make(map[string]string)
	for _, s := range cat {
		for _, q := range s.Questions {
			if prev, ok := seen[q.ID]; ok {
				return fmt.Errorf("%w: duplicate question id %q in sections %q and %q", ErrUnavailable, q.ID, prev, s.Name)
			}
			seen[q.ID] = s.Name
		}
	}
	return nil
}
