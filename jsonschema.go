package blockkit

import (
	js "github.com/reoring/blockkit/jsonschema"
)

// schemaDescriber is implemented by validators that can project themselves
// onto a JSON Schema property.
type schemaDescriber interface {
	describe(prop *js.Schema) (required bool)
}

// JSONSchema projects the schema into a JSON Schema object. Tagged schemas
// pin the discriminator with const; nested unions become oneOf.
func (s *Schema) JSONSchema() *js.Schema {
	return s.jsonSchema(map[*Schema]bool{})
}

// JSONSchema projects every candidate variant; unions become oneOf.
func (r *Resolver) JSONSchema() *js.Schema {
	return typeSchema(r, map[*Schema]bool{})
}

func (s *Schema) jsonSchema(seen map[*Schema]bool) *js.Schema {
	out := &js.Schema{Type: "object", Title: s.name, Properties: map[string]*js.Schema{}}
	if seen[s] {
		// recursive reference: leave the nested object open
		return out
	}
	seen[s] = true
	defer delete(seen, s)

	if s.tag != "" {
		out.Properties[s.discriminator] = &js.Schema{Type: "string", Const: s.tag}
		out.Required = append(out.Required, s.discriminator)
	}
	for _, a := range s.attrs {
		prop := typeSchema(a.Type, seen)
		if a.HasDefault {
			if v, ok := a.Type.Cast(a.Default); ok {
				prop.Default = toJSONValue(v)
			}
		}
		out.Properties[a.Name] = prop
	}
	for _, v := range s.validations {
		ds, ok := v.Rule.(schemaDescriber)
		if !ok || v.Attribute == "" {
			continue
		}
		if ds.describe(out.Properties[v.Attribute]) {
			out.Required = append(out.Required, v.Attribute)
		}
	}
	return out
}

func typeSchema(t Type, seen map[*Schema]bool) *js.Schema {
	switch tt := t.(type) {
	case stringType:
		return &js.Schema{Type: "string"}
	case integerType:
		return &js.Schema{Type: "integer"}
	case floatType:
		return &js.Schema{Type: "number"}
	case booleanType:
		return &js.Schema{Type: "boolean"}
	case *collectionType:
		return &js.Schema{Type: "array", Items: typeSchema(tt.item, seen), UniqueItems: tt.unique}
	case *Resolver:
		schemas := tt.Schemas()
		if len(schemas) == 1 {
			return schemas[0].jsonSchema(seen)
		}
		out := &js.Schema{OneOf: make([]*js.Schema, 0, len(schemas))}
		for _, s := range schemas {
			out.OneOf = append(out.OneOf, s.jsonSchema(seen))
		}
		return out
	}
	return &js.Schema{}
}

func (presenceRule) describe(prop *js.Schema) bool {
	one := 1
	switch prop.Type {
	case "string":
		prop.MinLength = &one
	case "array":
		prop.MinItems = &one
	}
	return true
}

func (r *LengthRule) describe(prop *js.Schema) bool {
	if prop.Type != "string" && prop.Type != "array" {
		return false
	}
	lo, hi := r.Min, r.Max
	minP, maxP := &prop.MinLength, &prop.MaxLength
	if prop.Type == "array" {
		minP, maxP = &prop.MinItems, &prop.MaxItems
	}
	if lo > 0 {
		*minP = &lo
	}
	if hi > 0 {
		*maxP = &hi
	}
	return false
}

func (r *RangeRule) describe(prop *js.Schema) bool {
	if r.hasMin {
		v := r.min
		prop.Minimum = &v
	}
	if r.hasMax {
		v := r.max
		prop.Maximum = &v
	}
	return false
}

func (r formatRule) describe(prop *js.Schema) bool {
	prop.Pattern = r.re.String()
	return false
}

func (r inclusionRule) describe(prop *js.Schema) bool {
	target := prop
	if prop.Type == "array" && prop.Items != nil {
		target = prop.Items
	}
	target.Enum = append([]any(nil), r.allowed...)
	return false
}
