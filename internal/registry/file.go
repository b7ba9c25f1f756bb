package registry

import (
	"fmt"
	"os"

	"github.com/bsolutions/shes/internal/domain"
	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk YAML shape of a catalog:
//
//	types:
//	  - type: Building
//	    children: [Floor]
type fileSchema struct {
	Types []fileEntry `yaml:"types"`
}

type fileEntry struct {
	Type     string            `yaml:"type"`
	Label    string            `yaml:"label"`
	Children []string          `yaml:"children"`
	Defaults map[string]string `yaml:"defaults"`
}

// Parse builds a registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if len(schema.Types) == 0 {
		return nil, fmt.Errorf("parsing registry: no types defined")
	}
	entries := make([]Entry, 0, len(schema.Types))
	for _, fe := range schema.Types {
		e := Entry{
			Type:     domain.ItemType(fe.Type),
			Label:    fe.Label,
			Defaults: fe.Defaults,
		}
		for _, c := range fe.Children {
			e.Children = append(e.Children, domain.ItemType(c))
		}
		entries = append(entries, e)
	}
	return New(entries...)
}

// LoadFile reads a YAML catalog. An empty path yields the built-in catalog.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	return Parse(data)
}
