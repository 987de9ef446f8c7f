package assessment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xeipuuv/gojsonschema"
)

const answerSetSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {"type": ["string", "number", "boolean"]}
}`

var answerSchemaLoader = gojsonschema.NewStringLoader(answerSetSchema)

// ValidateAnswers checks that raw is a non-empty JSON object of scalar values.
// It returns the decoded answers (numbers kept as json.Number) and their string forms.
func ValidateAnswers(raw []byte) (map[string]any, map[string]string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, newValidationError("request body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, nil, newValidationError("request body must be valid JSON")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, nil, newValidationError("request body must hold a single JSON value")
	}

	result, err := gojsonschema.Validate(answerSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, nil, newValidationError("request body must be valid JSON")
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		sort.Strings(issues)
		return nil, nil, newValidationError(issues...)
	}

	answers, ok := decoded.(map[string]any)
	if !ok {
		return nil, nil, newValidationError("answers must be a JSON object")
	}
	text := make(map[string]string, len(answers))
	for id, v := range answers {
		s, err := scalarString(v)
		if err != nil {
			return nil, nil, newValidationError(fmt.Sprintf("%s: %v", id, err))
		}
		text[id] = s
	}
	return answers, text, nil
}

func scalarString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
