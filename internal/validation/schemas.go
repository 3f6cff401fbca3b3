// Package validation checks request payloads against JSON schemas before they
// reach binding, so structurally malformed bodies are rejected with a precise
// reason instead of a decoding error.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const sessionRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["user_id"],
	"properties": {
		"user_id": {
			"type": "string",
			"minLength": 1
		},
		"ratings": {
			"type": "object",
			"additionalProperties": {
				"type": "number"
			}
		}
	},
	"additionalProperties": false
}`

var sessionSchema = gojsonschema.NewStringLoader(sessionRequestSchema)

// ValidateSessionRequest validates the raw login body. The numeric range of
// each rating is checked later against the configured scale; the schema only
// pins down the shape.
func ValidateSessionRequest(body []byte) error {
	result, err := gojsonschema.Validate(sessionSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	if result.Valid() {
		return nil
	}

	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return fmt.Errorf("payload validation failed: %s", strings.Join(reasons, "; "))
}
