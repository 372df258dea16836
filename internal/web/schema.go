package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const runExperimentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"days": {"type": "integer", "minimum": 1, "maximum": 20}
	},
	"required": ["days"],
	"additionalProperties": false
}`

var runExperimentValidator = mustSchema(runExperimentSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid json schema: %v", err))
	}
	return schema
}

// validate checks body against schema and joins every violation into one error.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
