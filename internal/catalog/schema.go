package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const catalogSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["section", "questions"],
    "properties": {
      "section": {"type": "string", "minLength": 1},
      "questions": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "text"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "text": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(catalogSchema)

// Validate checks raw JSON against the catalog schema.
func Validate(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: schema: %s", ErrUnavailable, strings.Join(msgs, "; "))
	}
	return nil
}
