package blockkit_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	bk "github.com/reoring/blockkit"
)

func TestFix_TruncatesScalar(t *testing.T) {
	ctx := context.Background()
	d := tHeader.New(map[string]any{"text": strings.Repeat("é", 30)})
	if d.Valid(ctx) {
		t.Fatalf("expected invalid before fixing")
	}
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid after fixing, errors: %v", d.Validate(ctx))
	}
	got := d.GetString("text")
	if utf8.RuneCountInString(got) > 24 || !strings.HasSuffix(got, bk.DefaultOmission) {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestFix_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := tHeader.New(map[string]any{"text": strings.Repeat("x", 40)})
	d.Fix(ctx, false)
	first := d.ToJSON()
	if !d.Fix(ctx, false) {
		t.Fatalf("second fix should report valid")
	}
	if !reflect.DeepEqual(first, d.ToJSON()) {
		t.Fatalf("second fix changed the document: %v -> %v", first, d.ToJSON())
	}
}

func TestFix_AssociatedIsNotACure(t *testing.T) {
	ctx := context.Background()
	d := tActions.New(map[string]any{"elements": []any{
		map[string]any{"type": "button", "action_id": "no_label"},
	}})
	errs := d.Validate(ctx)
	if len(errs) != 1 || errs[0].Path != "elements[0]" || !strings.Contains(errs[0].Message, "label") {
		t.Fatalf("unexpected errors %v", errs)
	}
	if d.Fix(ctx, false) {
		t.Fatalf("a missing required field has no fixer; document must stay invalid")
	}
	if !d.Validate(ctx).HasCode(bk.CodeInvalid) {
		t.Fatalf("expected the invalid element to still be reported")
	}
}

func TestFix_AssociatedRepairsNestedElements(t *testing.T) {
	ctx := context.Background()
	d := tModal.New(map[string]any{"blocks": []any{
		map[string]any{"type": "header", "text": strings.Repeat("h", 30)},
		map[string]any{"type": "actions", "elements": []any{
			button("fine"),
			map[string]any{"type": "button", "label": "a label that is too long", "style": "loud"},
		}},
	}})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected nested fixes to repair the tree: %v", d.Validate(ctx).Flatten())
	}
	blocks := d.Collection("blocks").Documents()
	if n := utf8.RuneCountInString(blocks[0].GetString("text")); n > 24 {
		t.Fatalf("header not truncated: %d", n)
	}
	btn := blocks[1].Collection("elements").Documents()[1]
	if got := btn.Doc("label").GetString("text"); utf8.RuneCountInString(got) > 10 {
		t.Fatalf("label not truncated: %q", got)
	}
	if btn.Has("style") {
		t.Fatalf("invalid style should have been unset")
	}
}

func TestFix_AssociatedFollowsElementsShiftedByEarlierFixers(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("h", 30)
	header := func(text string) *bk.Document { return tHeader.New(map[string]any{"text": text}) }
	repaired := header(long)
	repaired.Fix(ctx, false)

	shelf := bk.NewObject("shelf").
		Attribute("headers", bk.ListOf(bk.Union("type", tHeader))).
		Validate("headers", bk.Inclusion(header(long), repaired, header("Fine")), bk.Associated()).
		Fix("headers", bk.NullValue(bk.CodeInclusion), bk.FixAssociated()).
		MustBuild()

	d := shelf.New(map[string]any{"headers": []any{
		map[string]any{"type": "header", "text": "Gone"},
		map[string]any{"type": "header", "text": long},
		map[string]any{"type": "header", "text": "Fine"},
	}})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid after fixing: %v", d.Validate(ctx).Flatten())
	}
	headers := d.Collection("headers").Documents()
	if len(headers) != 2 {
		t.Fatalf("expected the disallowed header to be removed, got %d", len(headers))
	}
	if got := headers[0].GetString("text"); got != repaired.GetString("text") {
		t.Fatalf("the shifted header was not repaired: %q", got)
	}
	if got := headers[1].GetString("text"); got != "Fine" {
		t.Fatalf("unexpected second header %q", got)
	}
}

func TestFix_NullValueOnSet(t *testing.T) {
	ctx := context.Background()

	d := tFilter.New(map[string]any{"include": []any{"im", "channels", "public"}})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid after fixing: %v", d.Validate(ctx))
	}
	if got := d.Collection("include").Strings(); !slices.Equal(got, []string{"im", "public"}) {
		t.Fatalf("expected only valid values to remain, got %v", got)
	}

	d = tFilter.New(map[string]any{"include": []any{"a", "b", "c"}})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid after fixing: %v", d.Validate(ctx))
	}
	if d.Has("include") {
		t.Fatalf("expected include to be unset, got %v", d.Get("include"))
	}
}

func TestFix_NullValueKeepsValidElementsAlongsideOtherCodes(t *testing.T) {
	ctx := context.Background()
	picks := bk.NewObject("picks").
		Attribute("letters", bk.SetOf(bk.String())).
		Validate("letters", bk.MaxLength(2), bk.Inclusion("a", "b", "c", "d")).
		Fix("letters", bk.NullValue(bk.CodeInclusion, bk.CodeTooLong, bk.CodeBlank)).
		MustBuild()

	d := picks.New(map[string]any{"letters": []any{"a", "b", "zzz"}})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid after fixing: %v", d.Validate(ctx))
	}
	if got := d.Collection("letters").Strings(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("expected the allowed letters to survive, got %v", got)
	}

	// removing the offending element still leaves it too long
	d = picks.New(map[string]any{"letters": []any{"a", "b", "c", "zzz"}})
	if d.Fix(ctx, false) {
		t.Fatalf("expected too_long to remain")
	}
	if got := d.Collection("letters").Strings(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected only the offending element to be removed, got %v", got)
	}

	d = picks.New(map[string]any{"letters": []any{"a", "b", "c"}})
	d.Fix(ctx, false)
	if d.Has("letters") {
		t.Fatalf("without an inclusion error the collection is unset, got %v", d.Get("letters"))
	}
}

func TestFix_NullValueUnsetsScalar(t *testing.T) {
	ctx := context.Background()
	d := tButton.New(map[string]any{"label": "ok", "style": "loud"})
	if !d.Fix(ctx, false) || d.Has("style") {
		t.Fatalf("expected style to be unset, got %v", d.ToJSON())
	}
}

func TestFix_DangerousFixersAreGated(t *testing.T) {
	ctx := context.Background()
	raw := make([]any, 0, 7)
	for i := range 7 {
		raw = append(raw, button(strings.Repeat("b", i+1)))
	}
	d := tActions.New(map[string]any{"elements": raw})

	if d.Fix(ctx, false) {
		t.Fatalf("truncating elements is dangerous and must not run by default")
	}
	if d.Collection("elements").Len() != 7 {
		t.Fatalf("non-dangerous pass must leave the collection alone")
	}
	if !d.Fix(ctx, true) {
		t.Fatalf("expected valid after dangerous fixing: %v", d.Validate(ctx))
	}
	if d.Collection("elements").Len() != 5 {
		t.Fatalf("expected the first 5 elements to be kept, got %d", d.Collection("elements").Len())
	}
}

func TestFix_MethodFixersAndReentrancy(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := bk.NewObject("self_healing").
		Attribute("name", bk.String()).
		Attribute("slug", bk.String()).
		Validate("name", bk.Presence()).
		Validate("slug", bk.MaxLength(3)).
		Method("default_name", func(ctx context.Context, d *bk.Document) {
			calls++
			// a nested Fix on the same document only reports validity
			if d.Fix(ctx, true) {
				t.Errorf("document is still invalid inside the method")
			}
			d.MustSet("name", "generated")
		}).
		FixBase(bk.Method("default_name")).
		Fix("slug", bk.Truncate(3, bk.WithoutOmission())).
		MustBuild()

	d := s.New(map[string]any{"slug": "abcdef"})
	if !d.Fix(ctx, false) {
		t.Fatalf("expected valid, got %v", d.Validate(ctx))
	}
	if calls != 1 {
		t.Fatalf("expected one method call, got %d", calls)
	}
	if d.GetString("name") != "generated" || d.GetString("slug") != "abc" {
		t.Fatalf("unexpected document %v", d.ToJSON())
	}
	if !d.Fix(ctx, false) || calls != 1 {
		t.Fatalf("valid documents skip every fixer")
	}
}

func TestFixOrError(t *testing.T) {
	ctx := context.Background()
	d := tActions.New(map[string]any{"elements": []any{map[string]any{"type": "image"}}})
	err := d.FixOrError(ctx, true)
	if !errors.Is(err, bk.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	errs, ok := bk.AsValidationErrors(err)
	if !ok || len(errs) != 1 || errs.Flatten()[0].Path != "elements[0].image_url" {
		t.Fatalf("unexpected carried errors %v", errs)
	}
	if !strings.Contains(err.Error(), "actions") {
		t.Fatalf("error should name the document type: %v", err)
	}

	ok2 := tHeader.New(map[string]any{"text": "hi"})
	if err := ok2.FixOrError(ctx, false); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFix_LogsAppliedAndSkippedFixers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := bk.WithLogger(context.Background(), logger)

	raw := make([]any, 0, 6)
	for range 6 {
		raw = append(raw, map[string]any{"type": "image", "image_url": "u"})
	}
	d := tActions.New(map[string]any{"elements": raw})
	d.Fix(ctx, false)
	if !strings.Contains(buf.String(), "skipped dangerous fixer") {
		t.Fatalf("expected skip to be logged, got %q", buf.String())
	}
	buf.Reset()
	d.Fix(ctx, true)
	if !strings.Contains(buf.String(), "applied fixer") || !strings.Contains(buf.String(), "fixer=truncate") {
		t.Fatalf("expected truncate to be logged, got %q", buf.String())
	}
}
