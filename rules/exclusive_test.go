package rules_test

import (
	"testing"

	"github.com/reoring/blockkit"
	"github.com/reoring/blockkit/rules"
)

var (
	field = blockkit.NewSchema("field").
		Attribute("name", blockkit.String()).
		Attribute("focus", blockkit.Boolean()).
		MustBuild()

	form = blockkit.NewSchema("form").
		Attribute("focus", blockkit.Boolean()).
		Attribute("fields", blockkit.ListOf(blockkit.Doc(field))).
		Include(rules.ExclusiveFlagFragment("focus", "clear_focus", false)).
		MustBuild()

	strictForm = blockkit.NewSchema("strict_form").
		Attribute("fields", blockkit.ListOf(blockkit.Doc(field))).
		Include(rules.ExclusiveFlagFragment("focus", "clear_focus", true)).
		MustBuild()
)

func focused(names ...string) []any {
	out := make([]any, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]any{"name": n, "focus": true})
	}
	return out
}

func TestExclusiveFlag_ReportsEveryPath(t *testing.T) {
	d := form.New(map[string]any{
		"focus":  true,
		"fields": append(focused("a", "b"), map[string]any{"name": "c"}),
	})
	errs := d.Validate(ctx)
	if len(errs) != 1 || errs[0].Code != blockkit.CodeAtMostOne || errs[0].Path != "" {
		t.Fatalf("expected one base error, got %v", errs)
	}
	paths, _ := errs[0].Metadata["paths"].([]string)
	if len(paths) != 3 || paths[0] != "focus" || paths[1] != "fields[0].focus" || paths[2] != "fields[1].focus" {
		t.Fatalf("unexpected paths %v", paths)
	}
}

func TestExclusiveFlag_FixKeepsFirst(t *testing.T) {
	d := form.New(map[string]any{"fields": focused("a", "b", "c")})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid, got %v", d.Validate(ctx))
	}
	fields := d.Collection("fields").Documents()
	if !fields[0].GetBool("focus") || fields[1].Has("focus") || fields[2].Has("focus") {
		t.Fatalf("expected only the first field to keep focus: %v", d.ToJSON())
	}
	if !d.Fix(ctx, false) {
		t.Fatalf("fix must be idempotent")
	}
}

func TestExclusiveFlag_DangerousMethod(t *testing.T) {
	d := strictForm.New(map[string]any{"fields": focused("a", "b")})
	if d.Fix(ctx, false) {
		t.Fatalf("dangerous method must not run by default")
	}
	if !d.Fix(ctx, true) {
		t.Fatalf("expected valid after dangerous fixing, got %v", d.Validate(ctx))
	}
}

func TestExclusiveFlag_SingleFlagIsValid(t *testing.T) {
	d := form.New(map[string]any{"fields": append(focused("a"), map[string]any{"name": "b", "focus": false})})
	if errs := d.Validate(ctx); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
}
