package blockkit

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type casts raw input into an attribute's declared representation.
//
// Cast never fails loudly: when raw cannot be represented it returns
// (nil, false) and the caller treats the value as absent. A nil raw value
// always casts to (nil, false).
type Type interface {
	Name() string
	Cast(raw any) (any, bool)
}

// String returns the string type. Numbers and booleans are formatted;
// fmt.Stringer values use their String method.
func String() Type { return stringType{} }

// Integer returns the integer type. Whole floats and numeric strings are accepted.
func Integer() Type { return integerType{} }

// Float returns the float64 type.
func Float() Type { return floatType{} }

// Boolean returns the bool type. "true"/"false" strings are accepted.
func Boolean() Type { return booleanType{} }

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Cast(raw any) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case *Document, *Collection:
		return nil, false
	case fmt.Stringer:
		return v.String(), true
	}
	if f, ok := toFloat(raw); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return nil, false
}

type integerType struct{}

func (integerType) Name() string { return "integer" }

func (integerType) Cast(raw any) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return n, true
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= math.MinInt && n <= math.MaxInt {
			return int(n), true
		}
	}
	switch rv := reflect.ValueOf(raw); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n >= math.MinInt && n <= math.MaxInt {
			return int(n), true
		}
		return nil, false
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt {
			return int(u), true
		}
		return nil, false
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
		return nil, false
	}
	return int(f), true
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Cast(raw any) (any, bool) {
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	f, ok := toFloat(raw)
	if !ok {
		return nil, false
	}
	return f, true
}

type booleanType struct{}

func (booleanType) Name() string { return "boolean" }

func (booleanType) Cast(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

// toFloat converts any Go numeric kind or json.Number to float64.
func toFloat(raw any) (float64, bool) {
	if n, ok := raw.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// valuesEqual compares two cast values: documents and collections
// attribute-wise, everything else with ==.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *Document:
		bv, ok := b.(*Document)
		return ok && av.Equal(bv)
	case *Collection:
		bv, ok := b.(*Collection)
		return ok && av.Equal(bv)
	}
	switch b.(type) {
	case *Document, *Collection:
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}
