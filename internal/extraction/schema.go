package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns the record contract as a JSON-Schema
// (draft 2020-12 subset) in generic map form. The same schema is described
// to the model in the prompt and enforced locally on its output.
func BuildInvoiceJSONSchema() map[string]any {
	props := map[string]any{
		"vendor":         fieldProp(nil),
		"invoice_number": fieldProp(nil),
		"invoice_date":   fieldProp(dateValueProp()),
		"due_date":       fieldProp(dateValueProp()),
		"total_amount":   fieldProp(amountValueProp()),
		"summary":        map[string]any{"type": "string"},
		"answer":         map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		// No field is required: the model omits what the document lacks.
		"required": []string{},
	}
}

// fieldProp describes one extracted attribute. Every present field must
// carry a value and an in-range confidence.
func fieldProp(valueProp map[string]any) map[string]any {
	if valueProp == nil {
		valueProp = map[string]any{"type": "string", "minLength": 1}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"value":      valueProp,
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"reasoning":  map[string]any{"type": "string"},
		},
		"required": []string{"value", "confidence"},
	}
}

func dateValueProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

func amountValueProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d{1,2})?$`,
	}
}

// recordSchema is compiled once; the schema is built from constants, so
// compilation cannot fail at runtime.
var recordSchema = mustCompileRecordSchema()

func mustCompileRecordSchema() *jsonschema.Schema {
	b, err := json.Marshal(BuildInvoiceJSONSchema())
	if err != nil {
		panic(fmt.Sprintf("marshal record schema: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice-record.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add record schema: %v", err))
	}

	schema, err := compiler.Compile("invoice-record.json")
	if err != nil {
		panic(fmt.Sprintf("compile record schema: %v", err))
	}
	return schema
}

// ValidateRecordJSON validates sanitized model output against the record
// schema.
func ValidateRecordJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}

	if err := recordSchema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}

	return nil
}
