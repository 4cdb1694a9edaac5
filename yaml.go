package blockkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes every document of a (possibly multi-document) YAML
// stream into generic maps and slices with string keys.
func ParseYAML(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("blockkit: decode yaml: %w", err)
		}
		if node == nil {
			continue
		}
		out = append(out, yamlAnyToStringMap(node))
	}
	return out, nil
}

// DecodeYAML parses the first YAML document and resolves it into a document.
func DecodeYAML(data []byte, r *Resolver) (*Document, error) {
	docs, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: empty yaml input", ErrNotCastable)
	}
	return resolveDecoded(docs[0], r)
}

// yamlAnyToStringMap converts map[any]any produced by YAML decoding into
// map[string]any, recursively.
func yamlAnyToStringMap(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlAnyToStringMap(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlAnyToStringMap(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = yamlAnyToStringMap(t[i])
		}
		return out
	}
	return v
}
