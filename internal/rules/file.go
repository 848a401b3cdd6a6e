package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDoc is the decoded shape of a rule definition file.
type fileDoc struct {
	Rules []Def `yaml:"rules"`
}

// LoadFile reads a YAML (or JSON) rule definition file, schema-checks it,
// and builds the validated Repository. Shape violations and structural
// violations are both returned as *StructuralError; I/O and decode failures
// are wrapped plainly.
func LoadFile(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes is LoadFile over an in-memory document.
func LoadBytes(data []byte) (*Repository, error) {
	// Decode twice: once into a raw value for the CUE shape check, once
	// into typed definitions. YAML is a superset of JSON, so plain JSON
	// rule files decode through the same path.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding rule file: %w", err)
	}
	if errs := checkSchema(raw); len(errs) > 0 {
		return nil, &StructuralError{Errors: errs}
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding rule file: %w", err)
	}
	return Load(doc.Rules)
}
