// Package brokers holds the built-in source configurations.
package brokers

import (
	_ "embed"
	"fmt"

	"position-report-extractor/internal/models"

	"gopkg.in/yaml.v2"
)

//go:embed brokers.yaml
var builtin []byte

// Builtin returns the embedded broker configurations.
func Builtin() ([]models.SourceConfig, error) {
	var doc struct {
		Brokers []models.SourceConfig `yaml:"brokers"`
	}
	if err := yaml.UnmarshalStrict(builtin, &doc); err != nil {
		return nil, fmt.Errorf("built-in brokers: %w", err)
	}
	return doc.Brokers, nil
}

// Merge overlays configured sources on the built-ins. A configured source
// replaces the built-in of the same name, new names are appended.
func Merge(base, override []models.SourceConfig) []models.SourceConfig {
	out := append([]models.SourceConfig(nil), base...)
	index := make(map[string]int, len(out))
	for i, s := range out {
		index[s.Name] = i
	}
	for _, s := range override {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}
