package blockkit

import (
	"context"
	"errors"
	"fmt"
)

// DefaultDiscriminator is the tag key written by ToJSON and read by unions
// unless a schema or union says otherwise.
const DefaultDiscriminator = "type"

// Attribute describes one named, typed value of a document.
type Attribute struct {
	Name       string
	Type       Type
	Default    any
	HasDefault bool
}

// AttrOpt configures an Attribute at declaration time.
type AttrOpt func(*Attribute)

// WithDefault sets the raw default value. It is cast through the attribute
// Type for every new document, so mutable defaults are never shared.
func WithDefault(v any) AttrOpt {
	return func(a *Attribute) {
		a.Default = v
		a.HasDefault = true
	}
}

// Validation binds a Validator to an attribute ("" for base validators).
type Validation struct {
	Attribute string
	Rule      Validator
}

// MethodFunc is a named self-repair routine used by Method fixers. It may
// mutate d and may call d.Validate or d.Fix.
type MethodFunc func(ctx context.Context, d *Document)

// Fragment is a reusable bundle of attributes, validations, fixers and
// methods merged explicitly into a schema with SchemaBuilder.Include.
type Fragment struct {
	Attributes  []Attribute
	Validations []Validation
	Fixers      []Fixer
	Methods     map[string]MethodFunc
}

// Schema is the immutable descriptor of one document variant.
type Schema struct {
	name          string
	tag           string
	discriminator string
	lengthAttr    string
	attrs         []Attribute
	index         map[string]int
	validations   []Validation
	fixers        []Fixer
	methods       map[string]MethodFunc
}

// Tag returns the discriminator value ("" for untagged objects).
func (s *Schema) Tag() string { return s.tag }

// Name returns the tag, or the object name for untagged schemas.
func (s *Schema) Name() string { return s.name }

// Discriminator returns the tag key written by ToJSON.
func (s *Schema) Discriminator() string { return s.discriminator }

// MeasuredBy returns the string attribute that gives documents of this
// schema a length ("" when they have none).
func (s *Schema) MeasuredBy() string { return s.lengthAttr }

// Attributes returns the declared attributes in declaration order.
func (s *Schema) Attributes() []Attribute { return append([]Attribute(nil), s.attrs...) }

// Attribute looks up a declared attribute.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	i, ok := s.index[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Validations returns the declared validations in declaration order.
func (s *Schema) Validations() []Validation { return append([]Validation(nil), s.validations...) }

// Fixers returns the declared fixers in declaration order.
func (s *Schema) Fixers() []Fixer { return append([]Fixer(nil), s.fixers...) }

// SchemaBuilder assembles a Schema. It is not safe for concurrent use; build
// schemas once at package initialization.
type SchemaBuilder struct {
	s    Schema
	errs []error
}

// NewSchema starts a tagged schema: ToJSON writes the tag under the
// discriminator key and unions select it by that tag.
func NewSchema(tag string) *SchemaBuilder {
	b := newBuilder(tag)
	b.s.tag = tag
	if tag == "" {
		b.errs = append(b.errs, errors.New("blockkit: NewSchema requires a tag; use NewObject for untagged objects"))
	}
	return b
}

// NewObject starts an untagged schema; name is used in messages only.
func NewObject(name string) *SchemaBuilder { return newBuilder(name) }

func newBuilder(name string) *SchemaBuilder {
	return &SchemaBuilder{s: Schema{
		name:          name,
		discriminator: DefaultDiscriminator,
		index:         map[string]int{},
		methods:       map[string]MethodFunc{},
	}}
}

// Discriminator overrides the tag key.
func (b *SchemaBuilder) Discriminator(key string) *SchemaBuilder {
	b.s.discriminator = key
	return b
}

// MeasuredBy makes documents of this schema measurable by the string
// attribute attr: length rules and Truncate fixers on attributes holding such
// documents apply to attr (text objects are measured by their text).
func (b *SchemaBuilder) MeasuredBy(attr string) *SchemaBuilder {
	b.s.lengthAttr = attr
	return b
}

// Attribute declares an attribute.
func (b *SchemaBuilder) Attribute(name string, t Type, opts ...AttrOpt) *SchemaBuilder {
	a := Attribute{Name: name, Type: t}
	for _, o := range opts {
		o(&a)
	}
	b.addAttribute(a)
	return b
}

func (b *SchemaBuilder) addAttribute(a Attribute) {
	switch {
	case a.Name == "":
		b.errs = append(b.errs, fmt.Errorf("blockkit: %s: attribute without a name", b.s.name))
		return
	case a.Type == nil:
		b.errs = append(b.errs, fmt.Errorf("blockkit: %s.%s: attribute without a type", b.s.name, a.Name))
		return
	case b.s.tag != "" && a.Name == b.s.discriminator:
		b.errs = append(b.errs, fmt.Errorf("blockkit: %s.%s: attribute shadows the discriminator", b.s.name, a.Name))
		return
	}
	if _, dup := b.s.index[a.Name]; dup {
		b.errs = append(b.errs, fmt.Errorf("blockkit: %s.%s: duplicate attribute", b.s.name, a.Name))
		return
	}
	b.s.index[a.Name] = len(b.s.attrs)
	b.s.attrs = append(b.s.attrs, a)
}

// Validate binds validators to an attribute.
func (b *SchemaBuilder) Validate(attr string, rules ...Validator) *SchemaBuilder {
	for _, r := range rules {
		b.s.validations = append(b.s.validations, Validation{Attribute: attr, Rule: r})
	}
	return b
}

// ValidateBase binds validators that are not tied to one attribute.
func (b *SchemaBuilder) ValidateBase(rules ...Validator) *SchemaBuilder {
	return b.Validate("", rules...)
}

// Fix binds fixers to an attribute, in the order they should run.
func (b *SchemaBuilder) Fix(attr string, fixers ...Fixer) *SchemaBuilder {
	for _, f := range fixers {
		f.Attribute = attr
		b.s.fixers = append(b.s.fixers, f)
	}
	return b
}

// FixBase binds document-level fixers (Method fixers).
func (b *SchemaBuilder) FixBase(fixers ...Fixer) *SchemaBuilder { return b.Fix("", fixers...) }

// Method registers a named self-repair routine for Method fixers.
func (b *SchemaBuilder) Method(name string, fn MethodFunc) *SchemaBuilder {
	if _, dup := b.s.methods[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("blockkit: %s: duplicate method %q", b.s.name, name))
		return b
	}
	b.s.methods[name] = fn
	return b
}

// Include merges fragments in order: attributes, then validations, fixers
// (keeping each fixer's own target attribute) and methods.
func (b *SchemaBuilder) Include(frags ...Fragment) *SchemaBuilder {
	for _, f := range frags {
		for _, a := range f.Attributes {
			b.addAttribute(a)
		}
		b.s.validations = append(b.s.validations, f.Validations...)
		b.s.fixers = append(b.s.fixers, f.Fixers...)
		for name, fn := range f.Methods {
			b.Method(name, fn)
		}
	}
	return b
}

// Build validates the declarations and returns an immutable Schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	errs := append([]error(nil), b.errs...)
	if b.s.lengthAttr != "" {
		if _, ok := b.s.index[b.s.lengthAttr]; !ok {
			errs = append(errs, fmt.Errorf("blockkit: %s: measured by unknown attribute %q", b.s.name, b.s.lengthAttr))
		}
	}
	for _, v := range b.s.validations {
		if v.Rule == nil {
			errs = append(errs, fmt.Errorf("blockkit: %s: nil validator", b.s.name))
		}
		if v.Attribute != "" {
			if _, ok := b.s.index[v.Attribute]; !ok {
				errs = append(errs, fmt.Errorf("blockkit: %s: validation for unknown attribute %q", b.s.name, v.Attribute))
			}
		}
	}
	for _, f := range b.s.fixers {
		if err := b.checkFixer(f); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	s := b.s
	s.attrs = append([]Attribute(nil), b.s.attrs...)
	s.index = make(map[string]int, len(b.s.index))
	for k, v := range b.s.index {
		s.index[k] = v
	}
	s.validations = append([]Validation(nil), b.s.validations...)
	s.fixers = append([]Fixer(nil), b.s.fixers...)
	s.methods = make(map[string]MethodFunc, len(b.s.methods))
	for k, v := range b.s.methods {
		s.methods[k] = v
	}
	return &s, nil
}

// MustBuild is Build that panics on declaration errors.
func (b *SchemaBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *SchemaBuilder) checkFixer(f Fixer) error {
	if f.Attribute == "" {
		if f.Kind != KindMethod {
			return fmt.Errorf("blockkit: %s: %s fixer must target an attribute", b.s.name, f.Kind)
		}
		if _, ok := b.s.methods[f.Method]; !ok {
			return fmt.Errorf("blockkit: %s: method fixer names unknown method %q", b.s.name, f.Method)
		}
		return nil
	}
	if _, ok := b.s.index[f.Attribute]; !ok {
		return fmt.Errorf("blockkit: %s: fixer for unknown attribute %q", b.s.name, f.Attribute)
	}
	switch f.Kind {
	case KindMethod:
		return fmt.Errorf("blockkit: %s.%s: method fixers are declared with FixBase", b.s.name, f.Attribute)
	case KindTruncate:
		if f.Maximum <= 0 {
			return fmt.Errorf("blockkit: %s.%s: truncate maximum must be positive", b.s.name, f.Attribute)
		}
	case KindNullValue:
		if len(f.Codes) == 0 {
			return fmt.Errorf("blockkit: %s.%s: null value fixer without error codes", b.s.name, f.Attribute)
		}
	}
	return nil
}
