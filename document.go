package blockkit

import (
	"fmt"
	"sort"
)

// Document is a typed, validated and fixable node of a payload tree.
//
// Every stored value passed its attribute's Type cast. A Document is not safe
// for concurrent mutation; build and fix a tree on one goroutine before
// sharing it read-only.
type Document struct {
	schema *Schema
	values map[string]any
	// fixing is set only for the duration of one Fix call.
	fixing bool
}

// New constructs a document from a map whose keys align with attribute
// names. Defaults are applied first; unknown keys and the discriminator are
// ignored; known keys are cast, and an explicit nil unsets the attribute.
func (s *Schema) New(attrs map[string]any) *Document {
	d := &Document{schema: s, values: make(map[string]any, len(s.attrs))}
	for _, a := range s.attrs {
		if raw, present := attrs[a.Name]; present {
			d.assign(a, raw)
			continue
		}
		if a.HasDefault {
			d.assign(a, a.Default)
		}
	}
	return d
}

// From constructs a document from another one. A document of the same
// schema is deep-copied; otherwise the attributes sharing a name are re-cast.
func (s *Schema) From(other *Document) *Document {
	if other == nil {
		return s.New(nil)
	}
	if other.schema == s {
		return other.Clone()
	}
	attrs := make(map[string]any, len(other.values))
	for k, v := range other.values {
		attrs[k] = cloneValue(v)
	}
	return s.New(attrs)
}

// Cast resolves raw through a single-schema resolver.
func (s *Schema) Cast(raw any) (*Document, bool) {
	d := Doc(s).Resolve(raw)
	return d, d != nil
}

func (d *Document) assign(a Attribute, raw any) {
	v, ok := a.Type.Cast(raw)
	if !ok || v == nil {
		delete(d.values, a.Name)
		return
	}
	d.values[a.Name] = v
}

// Schema returns the document's schema.
func (d *Document) Schema() *Schema { return d.schema }

// Type returns the discriminator tag ("" for untagged objects).
func (d *Document) Type() string { return d.schema.tag }

// Get returns the attribute value, or nil when unset or undeclared.
func (d *Document) Get(name string) any { return d.values[name] }

// Has reports whether the attribute holds a value.
func (d *Document) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Set casts raw through the attribute type. A value that does not cast
// unsets the attribute; only undeclared names are an error.
func (d *Document) Set(name string, raw any) error {
	a, ok := d.schema.Attribute(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, d.schema.name, name)
	}
	d.assign(a, raw)
	return nil
}

// MustSet is Set that panics on undeclared names.
func (d *Document) MustSet(name string, raw any) *Document {
	if err := d.Set(name, raw); err != nil {
		panic(err)
	}
	return d
}

// Unset clears the attribute.
func (d *Document) Unset(name string) { delete(d.values, name) }

// GetString returns a string attribute, or "" when unset or not a string.
func (d *Document) GetString(name string) string {
	s, _ := d.values[name].(string)
	return s
}

// GetInt returns an integer attribute, or 0.
func (d *Document) GetInt(name string) int {
	n, _ := d.values[name].(int)
	return n
}

// GetBool returns a boolean attribute, or false.
func (d *Document) GetBool(name string) bool {
	b, _ := d.values[name].(bool)
	return b
}

// Doc returns a nested document attribute, or nil.
func (d *Document) Doc(name string) *Document {
	n, _ := d.values[name].(*Document)
	return n
}

// Collection returns a collection attribute, or nil when unset. Mutating
// a nil collection does nothing; Set the attribute first to add elements.
func (d *Document) Collection(name string) *Collection {
	c, _ := d.values[name].(*Collection)
	return c
}

// Equal compares schema and attribute values recursively.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == nil && other == nil
	}
	if d.schema != other.schema || len(d.values) != len(other.values) {
		return false
	}
	for k, v := range d.values {
		ov, ok := other.values[k]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := &Document{schema: d.schema, values: make(map[string]any, len(d.values))}
	for k, v := range d.values {
		cp.values[k] = cloneValue(v)
	}
	return cp
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Clone()
	case *Collection:
		return t.Clone()
	}
	return v
}

// Walk visits d and every nested document depth-first in attribute
// declaration order. Returning false from fn stops descending below that
// document.
func (d *Document) Walk(fn func(path PathRef, doc *Document) bool) {
	d.walk(Root(), fn)
}

func (d *Document) walk(at PathRef, fn func(PathRef, *Document) bool) {
	if !fn(at, d) {
		return
	}
	for _, a := range d.schema.attrs {
		switch v := d.values[a.Name].(type) {
		case *Document:
			v.walk(at.Field(a.Name), fn)
		case *Collection:
			for i, it := range v.items {
				if nd, ok := it.(*Document); ok {
					nd.walk(at.Field(a.Name).Index(i), fn)
				}
			}
		}
	}
}

// ToJSON returns the wire form: the discriminator for tagged schemas plus
// every attribute holding a value. Collections become []any and nested
// documents are serialized recursively.
func (d *Document) ToJSON() map[string]any {
	out := make(map[string]any, len(d.values)+1)
	if d.schema.tag != "" {
		out[d.schema.discriminator] = d.schema.tag
	}
	for k, v := range d.values {
		out[k] = toJSONValue(v)
	}
	return out
}

func toJSONValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.ToJSON()
	case *Collection:
		arr := make([]any, 0, len(t.items))
		for _, it := range t.items {
			arr = append(arr, toJSONValue(it))
		}
		return arr
	}
	return v
}

// Keys returns the names of attributes holding a value, sorted.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *Document) String() string {
	return fmt.Sprintf("%s%v", d.schema.name, d.ToJSON())
}
