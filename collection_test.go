package blockkit_test

import (
	"context"
	"math"
	"slices"
	"testing"

	bk "github.com/reoring/blockkit"
)

func ints(c *bk.Collection) []int {
	var out []int
	for _, v := range c.All() {
		out = append(out, v.(int))
	}
	return out
}

func TestCollection_CastsOnEveryMutation(t *testing.T) {
	c := bk.NewList(bk.Integer(), 1, "2", "x", 3.0, 3.5)
	if got := ints(c); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("construct: got %v", got)
	}

	c.Append("4", nil, "five")
	if got := ints(c); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Fatalf("append: got %v", got)
	}

	c.Prepend(0)
	c.Insert(2, "10", "bad")
	if got := ints(c); !slices.Equal(got, []int{0, 1, 10, 2, 3, 4}) {
		t.Fatalf("insert: got %v", got)
	}

	c.Insert(-1, 99)
	if got := ints(c); got[len(got)-1] != 99 {
		t.Fatalf("negative insert should append, got %v", got)
	}

	c.SetSlice(1, 3, "7", "nope")
	if got := ints(c); !slices.Equal(got, []int{0, 7, 2, 3, 4, 99}) {
		t.Fatalf("set slice: got %v", got)
	}

	c.Concat([]any{5, "y"}, bk.NewList(bk.Integer(), 6))
	if got := ints(c); !slices.Equal(got, []int{0, 7, 2, 3, 4, 99, 5, 6}) {
		t.Fatalf("concat: got %v", got)
	}

	if !c.Delete(0) || c.Delete(100) {
		t.Fatalf("delete bounds mismatch")
	}
	if n := c.DeleteFunc(func(v any) bool { return v.(int) > 50 }); n != 1 {
		t.Fatalf("expected one removal, got %d", n)
	}

	c.Fill("8")
	if got := ints(c); len(got) != 6 || got[0] != 8 || got[5] != 8 {
		t.Fatalf("fill: got %v", got)
	}
	c.Fill("not a number")
	if c.Len() != 0 {
		t.Fatalf("fill with an uncastable value empties the collection, got %d", c.Len())
	}

	c.Replace(3, 2, 1)
	c.Truncate(2)
	if got := ints(c); !slices.Equal(got, []int{3, 2}) {
		t.Fatalf("replace/truncate: got %v", got)
	}
	if !c.Contains("3") || c.Contains(1) {
		t.Fatalf("contains mismatch")
	}
}

func TestInteger_CastRejectsOutOfRange(t *testing.T) {
	for _, raw := range []any{math.Pow(2, 63), math.Inf(1), -math.Pow(2, 64), math.NaN()} {
		if v, ok := bk.Integer().Cast(raw); ok {
			t.Fatalf("Cast(%v) = %v, want rejection", raw, v)
		}
	}
	if v, ok := bk.Integer().Cast(-math.Pow(2, 63)); !ok || v != math.MinInt {
		t.Fatalf("Cast(-2^63) = %v, %v", v, ok)
	}
	if v, ok := bk.Integer().Cast(float64(1 << 52)); !ok || v != 1<<52 {
		t.Fatalf("Cast(2^52) = %v, %v", v, ok)
	}
	if v, ok := bk.Integer().Cast(int64(math.MaxInt64)); !ok || v != math.MaxInt {
		t.Fatalf("Cast(MaxInt64) = %v, %v", v, ok)
	}
	if _, ok := bk.Integer().Cast(uint64(math.MaxUint64)); ok {
		t.Fatalf("Cast(MaxUint64) should be rejected")
	}
}

func TestSet_KeepsFirstOccurrence(t *testing.T) {
	s := bk.NewSet(bk.String(), "a", "b", "a", 1)
	if got := s.Strings(); !slices.Equal(got, []string{"a", "b", "1"}) {
		t.Fatalf("got %v", got)
	}
	s.Append("b", "c")
	s.Prepend("c")
	if got := s.Strings(); !slices.Equal(got, []string{"c", "a", "b", "1"}) {
		t.Fatalf("got %v", got)
	}
	s.Fill("z")
	if s.Len() != 1 {
		t.Fatalf("fill on a set collapses to one element, got %d", s.Len())
	}
	if !s.Unique() {
		t.Fatalf("expected set semantics")
	}
}

func TestCollection_DropsUnknownVariants(t *testing.T) {
	raw := []any{
		button("ok"),
		map[string]any{"type": "carousel"},
		map[string]any{"type": "image", "image_url": "u"},
	}
	d := tActions.New(map[string]any{"elements": raw})
	els := d.Collection("elements")
	if els.Len() != len(raw)-1 {
		t.Fatalf("expected %d elements, got %d", len(raw)-1, els.Len())
	}
	if els.At(0).(*bk.Document).Type() != "button" || els.At(1).(*bk.Document).Type() != "image" {
		t.Fatalf("unexpected order: %v", els.Items())
	}
	if els.At(2) != nil || els.At(-1) != nil {
		t.Fatalf("out of range access should be nil")
	}
}

func TestCollection_InvalidDocumentsKeptOrDropped(t *testing.T) {
	raw := []any{button("ok"), map[string]any{"type": "button"}}

	// default: structurally matching elements are kept and flagged later
	kept := bk.ListOf(tElement)
	v, ok := kept.Cast(raw)
	if !ok || v.(*bk.Collection).Len() != 2 {
		t.Fatalf("expected both elements to be kept, got %v", v)
	}

	dropping := bk.ListOf(tElement, bk.DropInvalid())
	v, ok = dropping.Cast(raw)
	if !ok || v.(*bk.Collection).Len() != 1 {
		t.Fatalf("expected the invalid element to be dropped, got %v", v)
	}
	if !v.(*bk.Collection).Documents()[0].Valid(context.Background()) {
		t.Fatalf("survivor must be valid")
	}
}

func TestCollection_EqualAndClone(t *testing.T) {
	a := bk.NewList(tElement, button("a"), button("b"))
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatalf("clone should be equal")
	}
	b.Documents()[0].MustSet("label", "changed")
	if a.Equal(b) {
		t.Fatalf("clone must be deep")
	}
	if a.Equal(bk.NewSet(tElement, button("a"), button("b"))) {
		t.Fatalf("list and set never compare equal")
	}
	var nilc *bk.Collection
	if nilc.Len() != 0 || nilc.Items() != nil || nilc.Contains("a") {
		t.Fatalf("nil collection should behave as empty")
	}
}

func TestCollection_UnsetAttributeIgnoresMutation(t *testing.T) {
	d := tActions.New(nil)
	els := d.Collection("elements")
	if els != nil {
		t.Fatalf("expected nil for an unset collection, got %v", els)
	}
	els.Append(button("a")).Prepend(button("b")).Insert(0, button("c"))
	els.SetSlice(0, 1, button("d"))
	els.Replace(button("e"))
	els.Concat([]any{button("f")}, els)
	els.Fill(button("g"))
	els.Truncate(0)
	if els.Delete(0) || els.DeleteFunc(func(any) bool { return true }) != 0 {
		t.Fatalf("nothing to delete from a nil collection")
	}
	if els.Len() != 0 || els.Unique() || els.ItemType() != nil {
		t.Fatalf("nil collection should stay empty")
	}
	if d.Has("elements") {
		t.Fatalf("mutating a nil collection must not set the attribute")
	}

	d.MustSet("elements", []any{button("a")})
	d.Collection("elements").Append(button("b"))
	if got := d.Collection("elements").Len(); got != 2 {
		t.Fatalf("expected 2 elements after Set and Append, got %d", got)
	}
}
