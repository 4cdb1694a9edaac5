package rules

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/blockkit"
	"github.com/reoring/blockkit/i18n"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
	Present
	Absent
)

// Conditional composes conditional execution of validators.
type Conditional struct {
	attr string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates an attribute against a value using an operator.
// Present and Absent ignore want.
func If(attr string, op Op, want any) Conditional {
	return Conditional{attr: attr, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then runs rules (as base validators) when the condition is satisfied.
func (c Conditional) Then(rules ...blockkit.Validator) blockkit.Validator {
	return blockkit.ValidatorFunc(func(ctx context.Context, d *blockkit.Document, attr string) blockkit.ValidationErrors {
		if !evalConditional(d, c) {
			return nil
		}
		return And(rules...).Validate(ctx, d, attr)
	})
}

// ExactlyOneOf requires exactly one of attrs to hold a non-blank value.
func ExactlyOneOf(attrs ...string) blockkit.Validator {
	return countRule(blockkit.CodeExactlyOne, attrs, func(n int) bool { return n == 1 })
}

// AtMostOneOf allows at most one of attrs to hold a non-blank value.
func AtMostOneOf(attrs ...string) blockkit.Validator {
	return countRule(blockkit.CodeAtMostOne, attrs, func(n int) bool { return n <= 1 })
}

// AtLeastOneOf requires one or more of attrs to hold a non-blank value.
func AtLeastOneOf(attrs ...string) blockkit.Validator {
	return countRule(blockkit.CodeAtLeastOne, attrs, func(n int) bool { return n >= 1 })
}

func countRule(code string, attrs []string, ok func(int) bool) blockkit.Validator {
	names := append([]string(nil), attrs...)
	return blockkit.Rule(func(_ context.Context, d *blockkit.Document) blockkit.ValidationErrors {
		n := 0
		for _, a := range names {
			if present(d.Get(a)) {
				n++
			}
		}
		if ok(n) {
			return nil
		}
		msg := i18n.T(code, map[string]string{"attributes": strings.Join(names, ", ")})
		return blockkit.ValidationErrors{blockkit.Root().Error("", code, msg, "attributes", names, "count", n)}
	})
}

// UniqueBy ensures documents in the collection attribute have unique values
// for keyAttr. Elements without the key are skipped.
func UniqueBy(collectionAttr, keyAttr string) blockkit.Validator {
	return blockkit.Rule(func(_ context.Context, d *blockkit.Document) blockkit.ValidationErrors {
		c := d.Collection(collectionAttr)
		seen := map[string]int{}
		var out blockkit.ValidationErrors
		for i, v := range c.All() {
			el, ok := v.(*blockkit.Document)
			if !ok || !el.Has(keyAttr) {
				continue
			}
			key := fmt.Sprint(el.Get(keyAttr))
			if j, dup := seen[key]; dup {
				msg := i18n.T(blockkit.CodeUniqueness, map[string]string{"value": key})
				out = append(out, blockkit.Root().Field(collectionAttr).Index(i).Field(keyAttr).Error(
					collectionAttr, blockkit.CodeUniqueness, msg,
					"first", j, "dup", i, "key", key,
				))
			} else {
				seen[key] = i
			}
		}
		return out
	})
}

// And executes all validators and concatenates their errors, stopping early
// under fail-fast.
func And(rules ...blockkit.Validator) blockkit.Validator {
	return blockkit.ValidatorFunc(func(ctx context.Context, d *blockkit.Document, attr string) blockkit.ValidationErrors {
		var out blockkit.ValidationErrors
		for _, r := range rules {
			if r == nil {
				continue
			}
			if errs := r.Validate(ctx, d, attr); len(errs) > 0 {
				out = append(out, errs...)
				if blockkit.IsFailFast(ctx) {
					return out
				}
			}
		}
		return out
	})
}

// Or succeeds if any validator returns no errors. When all fail, the branch
// with the fewest errors is returned.
func Or(rules ...blockkit.Validator) blockkit.Validator {
	return blockkit.ValidatorFunc(func(ctx context.Context, d *blockkit.Document, attr string) blockkit.ValidationErrors {
		var best blockkit.ValidationErrors
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			errs := r.Validate(ctx, d, attr)
			if len(errs) == 0 {
				return nil
			}
			if !bestSet || len(errs) < len(best) {
				best = errs
				bestSet = true
			}
		}
		return best
	})
}

// ------- helpers -------

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case *blockkit.Collection:
		return t.Len() > 0
	}
	return true
}

func evalConditional(d *blockkit.Document, c Conditional) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !evalConditional(d, it) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if evalConditional(d, it) {
				return true
			}
		}
		return false
	}
	cur := d.Get(c.attr)
	switch c.op {
	case Present:
		return present(cur)
	case Absent:
		return !present(cur)
	}
	if cur == nil {
		return false
	}
	return compare(cur, c.op, c.want)
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

func compareOrdered(cur any, op Op, want any) bool {
	a, ok1 := toFloat64(reflect.ValueOf(cur))
	b, ok2 := toFloat64(reflect.ValueOf(want))
	if !ok1 || !ok2 {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func toFloat64(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
