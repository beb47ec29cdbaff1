package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Decode parses a JSON settings document, assigns IDs to burdens and rules
// written without one, and validates the result.
func Decode(data []byte) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	s.EnsureIDs()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// DecodeYAML parses a YAML settings document. The document is converted to
// JSON first so both formats share one set of field names and defaults.
func DecodeYAML(data []byte) (*Settings, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML settings: %w", err)
	}
	if doc == nil {
		return Default(), nil
	}
	jsonData, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML settings: %w", err)
	}
	return Decode(jsonData)
}

// EnsureIDs gives every burden and rule without an ID a fresh one.
func (s *Settings) EnsureIDs() {
	for i := range s.Burdens {
		if s.Burdens[i].ID == uuid.Nil {
			s.Burdens[i].ID = uuid.New()
		}
		for j := range s.Burdens[i].Rules {
			if s.Burdens[i].Rules[j].ID == uuid.Nil {
				s.Burdens[i].Rules[j].ID = uuid.New()
			}
		}
	}
}

// LoadFile reads settings from a .yaml, .yml or .json file.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".json":
		return Decode(data)
	default:
		return nil, fmt.Errorf("unsupported settings file extension %q", filepath.Ext(path))
	}
}

// normalizeYAML turns map[any]any nodes into map[string]any so the result can
// be marshaled as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
