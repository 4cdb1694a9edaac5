package blockkit

import (
	"fmt"
	"sort"
)

// Resolver casts raw values into Documents of one of its candidate schemas.
// It is immutable once constructed and safe to share.
//
// Three shapes exist:
//   - Doc: a single untagged schema (options, confirmation dialogs, filters).
//   - Union: a discriminated union resolved by an explicit tag.
//   - KeyedUnion: a union whose variants may also be told apart by which keys
//     are present when the tag is missing.
type Resolver struct {
	name          string
	discriminator string
	variants      map[string]*Schema
	single        *Schema
	// keyed unions
	fallback   *Schema
	keyRules   []KeyRule
	fromString string
}

// KeyRule maps the presence of a disambiguating key to a variant.
type KeyRule struct {
	Key    string
	Schema *Schema
}

// When builds a KeyRule.
func When(key string, s *Schema) KeyRule { return KeyRule{Key: key, Schema: s} }

var _ Type = (*Resolver)(nil)

// Doc returns a resolver for a single schema. The discriminator is not
// consulted: any map is constructed as s.
func Doc(s *Schema) *Resolver {
	if s == nil {
		panic("blockkit: Doc with nil schema")
	}
	return &Resolver{name: s.Name(), single: s}
}

// Union returns a resolver that selects a variant by the value of the
// discriminator key. It panics on duplicate or empty tags; unions are declared
// once at schema-definition time.
func Union(discriminator string, schemas ...*Schema) *Resolver {
	r := &Resolver{discriminator: discriminator, variants: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		r.register(s)
	}
	r.name = "union(" + r.tagList() + ")"
	return r
}

// KeyedUnion returns a union resolved by tag when the tag is present, and by
// key precedence when it is absent: if exactly one rule's key is present the
// rule's variant wins; if several or none are present, fallback is used. A
// present but unregistered tag still drops the value.
func KeyedUnion(discriminator string, fallback *Schema, rules ...KeyRule) *Resolver {
	r := Union(discriminator, fallback)
	r.fallback = fallback
	for _, kr := range rules {
		if _, ok := r.variants[kr.Schema.Tag()]; !ok {
			r.register(kr.Schema)
		}
	}
	r.keyRules = append([]KeyRule(nil), rules...)
	r.name = "keyed_union(" + r.tagList() + ")"
	return r
}

// FromString returns a copy of a keyed union that also accepts bare strings,
// casting them to the fallback variant with attr set to the string.
func (r *Resolver) FromString(attr string) *Resolver {
	cp := *r
	cp.fromString = attr
	return &cp
}

func (r *Resolver) register(s *Schema) {
	if s == nil || s.Tag() == "" {
		panic("blockkit: union variants must be tagged schemas")
	}
	if _, dup := r.variants[s.Tag()]; dup {
		panic(fmt.Sprintf("blockkit: duplicate union variant %q", s.Tag()))
	}
	if s.Discriminator() != r.discriminator {
		panic(fmt.Sprintf("blockkit: union variant %q is tagged by %q, not %q", s.Tag(), s.Discriminator(), r.discriminator))
	}
	r.variants[s.Tag()] = s
}

func (r *Resolver) tagList() string {
	tags := r.Tags()
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += "|"
		}
		out += t
	}
	return out
}

// Name implements Type.
func (r *Resolver) Name() string { return r.name }

// Discriminator returns the tag key consulted by unions ("" for Doc).
func (r *Resolver) Discriminator() string { return r.discriminator }

// Tags returns the registered tags in ascending order.
func (r *Resolver) Tags() []string {
	if r.single != nil {
		return nil
	}
	tags := make([]string, 0, len(r.variants))
	for t := range r.variants {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Schemas returns the candidate schemas ordered by tag.
func (r *Resolver) Schemas() []*Schema {
	if r.single != nil {
		return []*Schema{r.single}
	}
	out := make([]*Schema, 0, len(r.variants))
	for _, t := range r.Tags() {
		out = append(out, r.variants[t])
	}
	return out
}

// Lookup returns the variant registered for tag.
func (r *Resolver) Lookup(tag string) (*Schema, bool) {
	if r.single != nil {
		return r.single, r.single.Tag() == tag
	}
	s, ok := r.variants[tag]
	return s, ok
}

// Accepts reports whether s is one of the candidate schemas.
func (r *Resolver) Accepts(s *Schema) bool {
	if s == nil {
		return false
	}
	if r.single != nil {
		return r.single == s
	}
	return r.variants[s.Tag()] == s
}

// Cast implements Type. It returns a *Document or (nil, false).
func (r *Resolver) Cast(raw any) (any, bool) {
	d := r.Resolve(raw)
	if d == nil {
		return nil, false
	}
	return d, true
}

// Resolve casts raw into a Document, returning nil when raw is not a
// candidate document, not a map, or carries a missing or unknown tag.
func (r *Resolver) Resolve(raw any) *Document {
	switch v := raw.(type) {
	case nil:
		return nil
	case *Document:
		if v == nil || !r.Accepts(v.schema) {
			return nil
		}
		return v
	case string:
		if r.fromString == "" || r.fallback == nil {
			return nil
		}
		return r.fallback.New(map[string]any{r.fromString: v})
	}
	m, ok := stringMap(raw)
	if !ok {
		return nil
	}
	s := r.selectSchema(m)
	if s == nil {
		return nil
	}
	return s.New(m)
}

func (r *Resolver) selectSchema(m map[string]any) *Schema {
	if r.single != nil {
		return r.single
	}
	if dv, present := m[r.discriminator]; present && dv != nil {
		tag, _ := dv.(string)
		return r.variants[tag]
	}
	if r.fallback == nil {
		return nil
	}
	var picked *Schema
	hits := 0
	for _, kr := range r.keyRules {
		if _, ok := m[kr.Key]; ok {
			picked = kr.Schema
			hits++
		}
	}
	if hits == 1 {
		return picked
	}
	return r.fallback
}

// stringMap normalizes map-shaped raw input. YAML decoders produce
// map[any]any for nested mappings.
func stringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}
