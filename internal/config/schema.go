package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed schema.json
var schemaJSON string

var compiledSchema = jsonschema.MustCompileString("depbaseline-config.schema.json", schemaJSON)

// validateSchema checks raw YAML config bytes against the embedded schema
// before any decoding happens, so typos fail with a field-level message.
func validateSchema(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decoding config JSON: %w", err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
