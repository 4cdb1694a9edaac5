package blockkit

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/blockkit/i18n"
)

// Validator checks one attribute (or, with attr == "", the whole document)
// and returns errors with paths relative to d.
type Validator interface {
	Validate(ctx context.Context, d *Document, attr string) ValidationErrors
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, d *Document, attr string) ValidationErrors

func (f ValidatorFunc) Validate(ctx context.Context, d *Document, attr string) ValidationErrors {
	return f(ctx, d, attr)
}

// Rule adapts a cross-field predicate to a base Validator.
func Rule(fn func(ctx context.Context, d *Document) ValidationErrors) Validator {
	return ValidatorFunc(func(ctx context.Context, d *Document, _ string) ValidationErrors {
		return fn(ctx, d)
	})
}

// Validate runs every declared validation in declaration order. It never
// mutates d and has no memory of earlier runs. An empty result means valid.
func (d *Document) Validate(ctx context.Context) ValidationErrors {
	var errs ValidationErrors
	for _, v := range d.schema.validations {
		if e := v.Rule.Validate(ctx, d, v.Attribute); len(e) > 0 {
			errs = AppendErrors(errs, e...)
			if IsFailFast(ctx) {
				return errs
			}
		}
	}
	return errs
}

// Valid reports whether Validate returns no errors.
func (d *Document) Valid(ctx context.Context) bool { return len(d.Validate(ctx)) == 0 }

// ---- presence ----

// Presence rejects unset values, whitespace-only strings and empty collections.
func Presence() Validator { return presenceRule{} }

type presenceRule struct{}

func (presenceRule) Validate(_ context.Context, d *Document, attr string) ValidationErrors {
	if !isBlank(d.Get(attr)) {
		return nil
	}
	return ValidationErrors{Root().Field(attr).Error(attr, CodeBlank, i18n.T(CodeBlank, nil))}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *Collection:
		return t.Len() == 0
	}
	return false
}

// ---- length ----

// LengthRule bounds string length (in characters) or collection size.
type LengthRule struct {
	Min, Max   int // 0 disables the bound
	allowNil   bool
	allowBlank bool
}

// MaxLength bounds the length from above.
func MaxLength(n int) *LengthRule { return &LengthRule{Max: n} }

// MinLength bounds the length from below.
func MinLength(n int) *LengthRule { return &LengthRule{Min: n} }

// LengthBetween bounds the length on both sides.
func LengthBetween(lo, hi int) *LengthRule { return &LengthRule{Min: lo, Max: hi} }

// AllowNil skips the rule when the attribute is unset.
func (r *LengthRule) AllowNil() *LengthRule { r.allowNil = true; return r }

// AllowBlank skips the rule when the attribute is blank.
func (r *LengthRule) AllowBlank() *LengthRule { r.allowBlank = true; return r }

func (r *LengthRule) Validate(_ context.Context, d *Document, attr string) ValidationErrors {
	v := d.Get(attr)
	if v == nil && r.allowNil {
		return nil
	}
	if r.allowBlank && isBlank(v) {
		return nil
	}
	n := valueLength(v)
	at := Root().Field(attr)
	if r.Min > 0 && n < r.Min {
		return ValidationErrors{at.Error(attr, CodeTooShort, i18n.T(CodeTooShort, params(MetaMinimum, r.Min)), MetaMinimum, r.Min)}
	}
	if r.Max > 0 && n > r.Max {
		return ValidationErrors{at.Error(attr, CodeTooLong, i18n.T(CodeTooLong, params(MetaMaximum, r.Max)), MetaMaximum, r.Max)}
	}
	return nil
}

func valueLength(v any) int {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t)
	case *Collection:
		return t.Len()
	case *Document:
		if attr := t.schema.lengthAttr; attr != "" {
			return utf8.RuneCountInString(t.GetString(attr))
		}
		return 0
	case nil:
		return 0
	}
	return utf8.RuneCountInString(fmt.Sprint(v))
}

// ---- numeric range ----

// RangeRule bounds a numeric attribute. Unset values pass.
type RangeRule struct {
	min, max       float64
	hasMin, hasMax bool
}

// AtLeast requires value >= n.
func AtLeast(n float64) *RangeRule { return &RangeRule{min: n, hasMin: true} }

// AtMost requires value <= n.
func AtMost(n float64) *RangeRule { return &RangeRule{max: n, hasMax: true} }

// Between requires lo <= value <= hi.
func Between(lo, hi float64) *RangeRule {
	return &RangeRule{min: lo, max: hi, hasMin: true, hasMax: true}
}

func (r *RangeRule) Validate(_ context.Context, d *Document, attr string) ValidationErrors {
	v := d.Get(attr)
	if v == nil {
		return nil
	}
	f, ok := toFloat(v)
	at := Root().Field(attr)
	if !ok {
		return ValidationErrors{at.Error(attr, CodeNotNumber, i18n.T(CodeNotNumber, nil))}
	}
	if r.hasMin && f < r.min {
		return ValidationErrors{at.Error(attr, CodeTooSmall, i18n.T(CodeTooSmall, params(MetaMinimum, r.min)), MetaMinimum, r.min)}
	}
	if r.hasMax && f > r.max {
		return ValidationErrors{at.Error(attr, CodeTooBig, i18n.T(CodeTooBig, params(MetaMaximum, r.max)), MetaMaximum, r.max)}
	}
	return nil
}

// ---- format ----

// Format requires string values to match re. Unset values pass.
func Format(re *regexp.Regexp) Validator { return formatRule{re: re} }

type formatRule struct{ re *regexp.Regexp }

func (r formatRule) Validate(_ context.Context, d *Document, attr string) ValidationErrors {
	s, ok := d.Get(attr).(string)
	if !ok || r.re.MatchString(s) {
		return nil
	}
	return ValidationErrors{Root().Field(attr).Error(attr, CodeFormat, i18n.T(CodeFormat, nil), "pattern", r.re.String())}
}

// ---- inclusion ----

// Inclusion requires the value (or, for collections, every element) to be
// one of values. For collections the rejected elements are reported in
// Metadata["invalid_values"], in collection order. Unset values pass.
func Inclusion(values ...any) Validator {
	return inclusionRule{allowed: append([]any(nil), values...)}
}

type inclusionRule struct{ allowed []any }

func (r inclusionRule) in(v any) bool {
	for _, a := range r.allowed {
		if valuesEqual(a, v) {
			return true
		}
	}
	return false
}

func (r inclusionRule) Validate(_ context.Context, d *Document, attr string) ValidationErrors {
	v := d.Get(attr)
	if v == nil {
		return nil
	}
	at := Root().Field(attr)
	msg := i18n.T(CodeInclusion, nil)
	if c, ok := v.(*Collection); ok {
		var bad []any
		for _, it := range c.items {
			if !r.in(it) {
				bad = append(bad, it)
			}
		}
		if len(bad) == 0 {
			return nil
		}
		return ValidationErrors{at.Error(attr, CodeInclusion, msg, MetaInvalidValues, bad)}
	}
	if r.in(v) {
		return nil
	}
	return ValidationErrors{at.Error(attr, CodeInclusion, msg, MetaInvalidValues, []any{v})}
}

// ---- associated ----

// Associated validates a nested document, or every document of a collection.
// An invalid nested document yields one invalid error at the attribute (or at
// attr[i] for collection elements) whose message lists the nested messages
// and whose Metadata["errors"] carries the nested errors at full paths.
func Associated() Validator {
	return ValidatorFunc(func(ctx context.Context, d *Document, attr string) ValidationErrors {
		at := Root().Field(attr)
		switch v := d.Get(attr).(type) {
		case *Document:
			if e := associatedError(ctx, v, at, attr, -1); e != nil {
				return ValidationErrors{*e}
			}
		case *Collection:
			var errs ValidationErrors
			for i, it := range v.items {
				nd, ok := it.(*Document)
				if !ok {
					continue
				}
				if e := associatedError(ctx, nd, at.Index(i), attr, i); e != nil {
					errs = append(errs, *e)
					if IsFailFast(ctx) {
						break
					}
				}
			}
			return errs
		}
		return nil
	})
}

func associatedError(ctx context.Context, nd *Document, at PathRef, attr string, index int) *ValidationError {
	nested := nd.Validate(ctx)
	if len(nested) == 0 {
		return nil
	}
	msg := i18n.T(CodeInvalid, nil) + ": " + strings.Join(nested.Messages(), ", ")
	e := at.Error(attr, CodeInvalid, msg, MetaErrors, rebase(nested, at, attr))
	if index >= 0 {
		e.Metadata[MetaIndex] = index
	}
	return &e
}

func params(kv ...any) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		switch v := kv[i+1].(type) {
		case float64:
			m[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			m[key] = fmt.Sprint(v)
		}
	}
	return m
}
