package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for a project structure
// import.
type ImportSchema struct {
	Project ProjectImport `json:"project"`
	Items   []ItemImport  `json:"items"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ItemImport defines one project item. Parents must appear before their
// children; exactly one item has no parent_ref.
type ItemImport struct {
	Ref        string            `json:"ref"`
	ParentRef  *string           `json:"parent_ref,omitempty"`
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Order      *int              `json:"order,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// LoadImportSchema reads and parses a project import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

// ParseImportSchema parses import JSON. Unknown fields are rejected.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
