package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a rules document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from the file extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// decodeDocument returns the generic document plus the declared key order of
// each file section. Go maps lose that order, so it is recovered from the
// token stream (JSON) or the node tree (YAML).
func decodeDocument(data []byte, format Format) (any, map[string][]string, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON, "":
		return decodeJSON(data)
	default:
		return nil, nil, fmt.Errorf("unsupported rules format %q", format)
	}
}

func decodeJSON(data []byte) (any, map[string][]string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse json: %w", err)
	}
	top, ok := doc.(map[string]any)
	if !ok {
		// left for schema validation to report
		return doc, nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse json: %w", err)
	}
	order := make(map[string][]string)
	for _, section := range []string{SiteSection, IPSection} {
		if _, ok := top[section]; !ok {
			continue
		}
		keys, err := jsonObjectKeys(raw[section])
		if err != nil {
			return nil, nil, fmt.Errorf("parse json %s: %w", section, err)
		}
		order[section] = keys
	}
	return doc, order, nil
}

func jsonObjectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func decodeYAML(data []byte) (any, map[string][]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return map[string]any{}, nil, nil
	}

	var doc any
	if err := root.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("parse yaml: %w", err)
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return doc, nil, nil
	}
	order := make(map[string][]string)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		if key.Value != SiteSection && key.Value != IPSection {
			continue
		}
		if value.Kind != yaml.MappingNode {
			continue
		}
		keys := make([]string, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			keys = append(keys, value.Content[j].Value)
		}
		order[key.Value] = keys
	}
	return doc, order, nil
}
