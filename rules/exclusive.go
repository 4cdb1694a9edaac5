package rules

import (
	"context"
	"strings"

	"github.com/reoring/blockkit"
	"github.com/reoring/blockkit/i18n"
)

// ExclusiveFlag allows at most one document in the tree rooted at the
// validated document to have the boolean attribute flag set to true.
// The error is a base error listing every offending path.
func ExclusiveFlag(flag string) blockkit.Validator {
	return blockkit.Rule(func(_ context.Context, d *blockkit.Document) blockkit.ValidationErrors {
		paths := flaggedPaths(d, flag)
		if len(paths) <= 1 {
			return nil
		}
		msg := i18n.T(blockkit.CodeAtMostOne, map[string]string{"attributes": strings.Join(paths, ", ")})
		return blockkit.ValidationErrors{blockkit.Root().Error("", blockkit.CodeAtMostOne, msg, "flag", flag, "paths", paths)}
	})
}

// ClearExtraFlags keeps flag on the first flagged document (depth-first, in
// attribute declaration order) and unsets it on every other one.
func ClearExtraFlags(flag string) blockkit.MethodFunc {
	return func(_ context.Context, d *blockkit.Document) {
		first := true
		d.Walk(func(_ blockkit.PathRef, n *blockkit.Document) bool {
			if !n.GetBool(flag) {
				return true
			}
			if first {
				first = false
				return true
			}
			n.Unset(flag)
			return true
		})
	}
}

// ExclusiveFlagFragment bundles ExclusiveFlag with a Method fixer named
// method that runs ClearExtraFlags.
func ExclusiveFlagFragment(flag, method string, dangerous bool) blockkit.Fragment {
	fixer := blockkit.Method(method)
	if dangerous {
		fixer = fixer.MarkDangerous()
	}
	return blockkit.Fragment{
		Validations: []blockkit.Validation{{Rule: ExclusiveFlag(flag)}},
		Fixers:      []blockkit.Fixer{fixer},
		Methods:     map[string]blockkit.MethodFunc{method: ClearExtraFlags(flag)},
	}
}

func flaggedPaths(d *blockkit.Document, flag string) []string {
	var paths []string
	d.Walk(func(at blockkit.PathRef, n *blockkit.Document) bool {
		if n.GetBool(flag) {
			paths = append(paths, at.Field(flag).String())
		}
		return true
	})
	return paths
}
