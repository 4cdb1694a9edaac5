package blockkit

import (
	"bytes"
	"errors"
	"fmt"

	j "github.com/goccy/go-json"
)

// ErrNotCastable is returned by the Decode helpers when the decoded value
// does not cast into any candidate variant (missing or unknown tag).
var ErrNotCastable = errors.New("blockkit: value does not cast into a known variant")

// MarshalJSON encodes ToJSON. Object keys are emitted in sorted order.
func (d *Document) MarshalJSON() ([]byte, error) { return j.Marshal(d.ToJSON()) }

// MarshalJSON encodes the collection as an array of its elements' wire form.
func (c *Collection) MarshalJSON() ([]byte, error) { return j.Marshal(toJSONValue(c)) }

// MarshalIndent encodes d with indentation, for human-facing output.
func MarshalIndent(d *Document, indent string) ([]byte, error) {
	return j.MarshalIndent(d.ToJSON(), "", indent)
}

// ParseJSON decodes data into generic maps and slices. Numbers are kept as
// json.Number so integer attributes survive without float rounding.
func ParseJSON(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("blockkit: decode json: %w", err)
	}
	return v, nil
}

// DecodeJSON parses data and resolves it into a document.
func DecodeJSON(data []byte, r *Resolver) (*Document, error) {
	raw, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return resolveDecoded(raw, r)
}

func resolveDecoded(raw any, r *Resolver) (*Document, error) {
	d := r.Resolve(raw)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCastable, r.Name())
	}
	return d, nil
}
