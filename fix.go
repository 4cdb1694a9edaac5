package blockkit

import (
	"context"
	"log/slog"
	"slices"
	"unicode/utf8"
)

// FixerKind names a repair strategy.
type FixerKind int

const (
	KindTruncate FixerKind = iota
	KindNullValue
	KindAssociated
	KindMethod
)

func (k FixerKind) String() string {
	switch k {
	case KindTruncate:
		return "truncate"
	case KindNullValue:
		return "null_value"
	case KindAssociated:
		return "associated"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// DefaultOmission replaces the tail of strings shortened by Truncate.
const DefaultOmission = "..."

// Fixer is a narrowly scoped repair strategy bound to one attribute, or to
// the whole document for Method fixers. Fixers are values; schemas copy them
// at build time.
type Fixer struct {
	Attribute string // set by SchemaBuilder.Fix; "" for base fixers
	Kind      FixerKind
	// Dangerous fixers may change the meaning of a payload and only run
	// when the caller asks for dangerous fixing.
	Dangerous bool

	Maximum  int      // Truncate
	Omission string   // Truncate
	Codes    []string // NullValue
	Method   string   // Method
}

// TruncateOpt configures a Truncate fixer.
type TruncateOpt func(*Fixer)

// WithOmission replaces the default "..." marker.
func WithOmission(marker string) TruncateOpt { return func(f *Fixer) { f.Omission = marker } }

// WithoutOmission cuts strings hard at the maximum.
func WithoutOmission() TruncateOpt { return func(f *Fixer) { f.Omission = "" } }

// Truncate fires on too_long: strings are shortened to maximum characters
// (the omission marker counts toward the budget) and collections keep their
// first maximum elements.
func Truncate(maximum int, opts ...TruncateOpt) Fixer {
	f := Fixer{Kind: KindTruncate, Maximum: maximum, Omission: DefaultOmission}
	for _, o := range opts {
		o(&f)
	}
	return f
}

// NullValue fires when the attribute's errors carry one of codes. Scalars
// are unset. A collection with an inclusion error among the matched codes
// loses exactly its offending elements, even if other matched codes remain,
// and is unset only when that leaves it empty and codes contains blank.
// Collections matched on other codes alone are unset.
func NullValue(codes ...string) Fixer {
	return Fixer{Kind: KindNullValue, Codes: append([]string(nil), codes...)}
}

// FixAssociated fires on invalid and delegates to the nested document's Fix,
// or to the Fix of each collection element reported invalid. Elements are
// tracked by identity, so one removed by an earlier fixer on the same
// attribute is skipped and a shifted one is still found.
func FixAssociated() Fixer { return Fixer{Kind: KindAssociated} }

// Method invokes a routine registered with SchemaBuilder.Method. Method
// fixers are bound with FixBase and always run when the document is invalid.
func Method(name string) Fixer { return Fixer{Kind: KindMethod, Method: name} }

// MarkDangerous returns a copy of f that only runs under dangerous fixing.
func (f Fixer) MarkDangerous() Fixer {
	f.Dangerous = true
	return f
}

// On returns a copy of f bound to attr, for fixers listed in a Fragment.
func (f Fixer) On(attr string) Fixer {
	f.Attribute = attr
	return f
}

func (f Fixer) triggered(errs ValidationErrors) bool {
	switch f.Kind {
	case KindTruncate:
		return errs.HasCode(CodeTooLong)
	case KindNullValue:
		return errs.HasCode(f.Codes...)
	case KindAssociated:
		return errs.HasCode(CodeInvalid)
	}
	return false
}

// Fix tries to make d valid with its configured fixers and reports whether
// it is valid afterwards. Dangerous fixers run only when dangerous is true.
//
// Order: base Method fixers in declaration order, then for each attribute
// owning fixers (in declaration order) a fresh validation followed by the
// fixers whose trigger matches. A Fix reached again on the same document
// while it is being fixed only reports validity.
func (d *Document) Fix(ctx context.Context, dangerous bool) bool {
	ctx = WithFailFast(ctx, false)
	if d.fixing {
		return d.Valid(ctx)
	}
	d.fixing = true
	defer func() { d.fixing = false }()

	if d.Valid(ctx) {
		return true
	}
	log := LoggerFrom(ctx)

	for _, f := range d.schema.fixers {
		if f.Attribute != "" {
			continue
		}
		if !allowed(ctx, log, d, f, dangerous) {
			continue
		}
		d.schema.methods[f.Method](ctx, d)
		logApplied(ctx, log, d, f)
	}

	for _, attr := range d.schema.fixedAttributes() {
		errs := d.Validate(ctx).On(attr)
		if len(errs) == 0 {
			continue
		}
		flagged := invalidElements(d.Get(attr), errs)
		for _, f := range d.schema.fixers {
			if f.Attribute != attr || !f.triggered(errs) || !allowed(ctx, log, d, f, dangerous) {
				continue
			}
			f.apply(ctx, d, errs, flagged, dangerous)
			logApplied(ctx, log, d, f)
		}
	}
	return d.Valid(ctx)
}

// FixOrError runs Fix and returns a *ValidationFailedError carrying the
// final errors when the document is still invalid.
func (d *Document) FixOrError(ctx context.Context, dangerous bool) error {
	if d.Fix(ctx, dangerous) {
		return nil
	}
	return &ValidationFailedError{Type: d.schema.name, Errors: d.Validate(WithFailFast(ctx, false))}
}

func allowed(ctx context.Context, log *slog.Logger, d *Document, f Fixer, dangerous bool) bool {
	if !f.Dangerous || dangerous {
		return true
	}
	log.DebugContext(ctx, "blockkit: skipped dangerous fixer",
		slog.String("type", d.schema.name), slog.String("attribute", f.Attribute), slog.String("fixer", f.Kind.String()))
	return false
}

func logApplied(ctx context.Context, log *slog.Logger, d *Document, f Fixer) {
	log.DebugContext(ctx, "blockkit: applied fixer",
		slog.String("type", d.schema.name), slog.String("attribute", f.Attribute), slog.String("fixer", f.Kind.String()))
}

// fixedAttributes lists attributes owning fixers, in order of first declaration.
func (s *Schema) fixedAttributes() []string {
	var out []string
	for _, f := range s.fixers {
		if f.Attribute != "" && !slices.Contains(out, f.Attribute) {
			out = append(out, f.Attribute)
		}
	}
	return out
}

// invalidElements resolves the element indexes of invalid errors to the
// documents they named, so that fixers removing or reordering elements
// earlier in the same pass do not redirect FixAssociated.
func invalidElements(v any, errs ValidationErrors) []*Document {
	c, ok := v.(*Collection)
	if !ok {
		return nil
	}
	var out []*Document
	for _, e := range errs {
		if e.Code != CodeInvalid {
			continue
		}
		i, ok := e.Metadata[MetaIndex].(int)
		if !ok {
			continue
		}
		if nd, ok := c.At(i).(*Document); ok {
			out = append(out, nd)
		}
	}
	return out
}

func (f Fixer) apply(ctx context.Context, d *Document, errs ValidationErrors, flagged []*Document, dangerous bool) {
	switch f.Kind {
	case KindTruncate:
		switch v := d.Get(f.Attribute).(type) {
		case string:
			d.values[f.Attribute] = truncateString(v, f.Maximum, f.Omission)
		case *Collection:
			v.Truncate(f.Maximum)
		case *Document:
			if attr := v.schema.lengthAttr; attr != "" && v.Has(attr) {
				v.values[attr] = truncateString(v.GetString(attr), f.Maximum, f.Omission)
			}
		}
	case KindNullValue:
		f.nullValue(d, errs)
	case KindAssociated:
		switch v := d.Get(f.Attribute).(type) {
		case *Document:
			v.Fix(ctx, dangerous)
		case *Collection:
			current := v.Documents()
			for _, nd := range flagged {
				if slices.Contains(current, nd) {
					nd.Fix(ctx, dangerous)
				}
			}
		}
	}
}

func (f Fixer) nullValue(d *Document, errs ValidationErrors) {
	c, isCollection := d.Get(f.Attribute).(*Collection)
	if !isCollection || !slices.Contains(f.Codes, CodeInclusion) || !errs.HasCode(CodeInclusion) {
		d.Unset(f.Attribute)
		return
	}
	var invalid []any
	for _, e := range errs {
		if e.Code == CodeInclusion {
			if vals, ok := e.Metadata[MetaInvalidValues].([]any); ok {
				invalid = append(invalid, vals...)
			}
		}
	}
	c.DeleteFunc(func(v any) bool {
		return slices.ContainsFunc(invalid, func(bad any) bool { return valuesEqual(bad, v) })
	})
	if c.Len() == 0 && slices.Contains(f.Codes, CodeBlank) {
		d.Unset(f.Attribute)
	}
}

// truncateString shortens s to at most maximum characters. The omission
// marker is kept within the budget when it fits.
func truncateString(s string, maximum int, omission string) string {
	if utf8.RuneCountInString(s) <= maximum {
		return s
	}
	runes := []rune(s)
	om := utf8.RuneCountInString(omission)
	if omission == "" || om >= maximum {
		return string(runes[:maximum])
	}
	return string(runes[:maximum-om]) + omission
}
