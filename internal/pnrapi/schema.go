package pnrapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// statusSchema constrains the fields we actually consume. The provider adds
// and renames fields freely, so additionalProperties stays open everywhere.
var statusSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"success": map[string]any{"type": "boolean"},
		"data": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pnrNumber":     map[string]any{"type": "string"},
				"trainNumber":   map[string]any{"type": "string"},
				"trainName":     map[string]any{"type": "string"},
				"dateOfJourney": map[string]any{"type": "string"},
				"arrivalDate":   map[string]any{"type": "string"},
				"passengerList": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "object"},
				},
			},
		},
	},
	"required": []any{"success"},
}

// validateStatusPayload validates raw JSON against statusSchema.
func validateStatusPayload(raw []byte) error {
	b, err := json.Marshal(statusSchema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("status.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("status.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
