package blockkit

import (
	"fmt"
	"strconv"
	"strings"
)

// PathRef builds dotted/bracket paths in a chain-safe way and creates
// ValidationErrors at them.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	// Join appends a path that was rendered relative to this one.
	Join(rel string) PathRef
	String() string
	Error(attribute, code, msg string, kv ...any) ValidationError
}

// Root returns the empty path of a document.
func Root() PathRef { return pathRef("") }

// At parses an already rendered path.
func At(path string) PathRef { return pathRef(path) }

type pathRef string

func (p pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	if p == "" {
		return pathRef(name)
	}
	return pathRef(string(p) + "." + name)
}

func (p pathRef) Index(i int) PathRef {
	return pathRef(string(p) + "[" + strconv.Itoa(i) + "]")
}

func (p pathRef) Join(rel string) PathRef {
	switch {
	case rel == "":
		return p
	case p == "":
		return pathRef(rel)
	case strings.HasPrefix(rel, "["):
		return pathRef(string(p) + rel)
	default:
		return pathRef(string(p) + "." + rel)
	}
}

func (p pathRef) String() string { return string(p) }

func (p pathRef) Error(attribute, code, msg string, kv ...any) ValidationError {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return ValidationError{Path: string(p), Attribute: attribute, Code: code, Message: msg, Metadata: m}
}

// rebase moves errors produced inside a nested document under base, keeping
// the owning attribute of the outer document.
func rebase(errs ValidationErrors, base PathRef, attribute string) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		ne := e
		ne.Path = base.Join(e.Path).String()
		ne.Attribute = attribute
		if nested, ok := e.Metadata[MetaErrors].(ValidationErrors); ok {
			md := make(map[string]any, len(e.Metadata))
			for k, v := range e.Metadata {
				md[k] = v
			}
			md[MetaErrors] = rebase(nested, base, attribute)
			ne.Metadata = md
		}
		out = append(out, ne)
	}
	return out
}
