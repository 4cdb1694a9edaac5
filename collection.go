package blockkit

import (
	"context"
	"iter"
	"reflect"
)

// CollectionOpt configures a list or set Type.
type CollectionOpt func(*collectionType)

// DropInvalid makes the collection also drop elements that cast into a
// Document which does not validate. Without it such elements are kept and
// reported by the parent's Associated validation.
func DropInvalid() CollectionOpt { return func(t *collectionType) { t.dropInvalid = true } }

// ListOf returns a Type whose values are ordered *Collection instances of item.
func ListOf(item Type, opts ...CollectionOpt) Type { return newCollectionType(item, false, opts) }

// SetOf returns a Type whose values are *Collection instances of item that
// keep only the first occurrence of equal elements.
func SetOf(item Type, opts ...CollectionOpt) Type { return newCollectionType(item, true, opts) }

type collectionType struct {
	item        Type
	unique      bool
	dropInvalid bool
}

func newCollectionType(item Type, unique bool, opts []CollectionOpt) *collectionType {
	t := &collectionType{item: item, unique: unique}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *collectionType) Name() string {
	if t.unique {
		return "set<" + t.item.Name() + ">"
	}
	return "list<" + t.item.Name() + ">"
}

// Cast accepts any slice or an existing *Collection; the elements are
// re-cast into a new collection.
func (t *collectionType) Cast(raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if c, ok := raw.(*Collection); ok {
		return t.new(c.items), true
	}
	elems, ok := sliceElems(raw)
	if !ok {
		return nil, false
	}
	return t.new(elems), true
}

func (t *collectionType) new(raw []any) *Collection {
	c := &Collection{typ: t}
	c.items = c.normalize(c.castAll(raw))
	return c
}

// NewList builds an ordered collection of item from raw elements.
func NewList(item Type, raw ...any) *Collection { return newCollectionType(item, false, nil).new(raw) }

// NewSet builds a deduplicated collection of item from raw elements.
func NewSet(item Type, raw ...any) *Collection { return newCollectionType(item, true, nil).new(raw) }

// Collection is an ordered list or unique set whose every element passed the
// item Type's cast at insertion time.
//
// Every mutating operation casts the inserted raw elements and compacts out
// the ones that do not cast. Callers that insert malformed elements observe a
// shorter collection instead of an error; use the parent document's
// validation when strictness is needed.
//
// A nil *Collection reads as empty and ignores mutations.
type Collection struct {
	typ   *collectionType
	items []any
}

// ItemType returns the Type every element is cast through.
func (c *Collection) ItemType() Type {
	if c == nil {
		return nil
	}
	return c.typ.item
}

// Unique reports whether c has set semantics.
func (c *Collection) Unique() bool { return c != nil && c.typ.unique }

// Len returns the number of elements.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the element at i, or nil when out of range.
func (c *Collection) At(i int) any {
	if c == nil || i < 0 || i >= len(c.items) {
		return nil
	}
	return c.items[i]
}

// Items returns a copy of the elements.
func (c *Collection) Items() []any {
	if c == nil {
		return nil
	}
	return append([]any(nil), c.items...)
}

// All iterates over index/element pairs.
func (c *Collection) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if c == nil {
			return
		}
		for i, v := range c.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Documents returns the elements that are documents, in order.
func (c *Collection) Documents() []*Document {
	if c == nil {
		return nil
	}
	var out []*Document
	for _, v := range c.items {
		if d, ok := v.(*Document); ok {
			out = append(out, d)
		}
	}
	return out
}

// Strings returns the elements that are strings, in order.
func (c *Collection) Strings() []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, v := range c.items {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether an element equal to the cast of raw is present.
func (c *Collection) Contains(raw any) bool {
	if c == nil {
		return false
	}
	v, ok := c.cast(raw)
	if !ok {
		return false
	}
	return c.indexOf(c.items, v) >= 0
}

// Append casts raw elements and adds the survivors at the end.
func (c *Collection) Append(raw ...any) *Collection {
	if c == nil {
		return nil
	}
	c.items = c.normalize(append(c.items, c.castAll(raw)...))
	return c
}

// Prepend casts raw elements and adds the survivors at the front.
func (c *Collection) Prepend(raw ...any) *Collection {
	if c == nil {
		return nil
	}
	c.items = c.normalize(append(c.castAll(raw), c.items...))
	return c
}

// Insert casts raw elements and inserts the survivors before index i.
// Negative i counts from the end, -1 meaning after the last element.
func (c *Collection) Insert(i int, raw ...any) *Collection {
	if c == nil {
		return nil
	}
	n := len(c.items)
	if i < 0 {
		i += n + 1
	}
	i = clamp(i, 0, n)
	seq := make([]any, 0, n+len(raw))
	seq = append(seq, c.items[:i]...)
	seq = append(seq, c.castAll(raw)...)
	seq = append(seq, c.items[i:]...)
	c.items = c.normalize(seq)
	return c
}

// SetSlice replaces elements [lo, hi) with the cast survivors of raw.
func (c *Collection) SetSlice(lo, hi int, raw ...any) *Collection {
	if c == nil {
		return nil
	}
	n := len(c.items)
	lo = clamp(lo, 0, n)
	hi = clamp(hi, lo, n)
	seq := make([]any, 0, n-(hi-lo)+len(raw))
	seq = append(seq, c.items[:lo]...)
	seq = append(seq, c.castAll(raw)...)
	seq = append(seq, c.items[hi:]...)
	c.items = c.normalize(seq)
	return c
}

// Replace discards every element and inserts the cast survivors of raw.
func (c *Collection) Replace(raw ...any) *Collection {
	if c == nil {
		return nil
	}
	c.items = c.normalize(c.castAll(raw))
	return c
}

// Concat appends the elements of each list (a slice or a *Collection).
// Arguments that are not lists are ignored.
func (c *Collection) Concat(lists ...any) *Collection {
	if c == nil {
		return nil
	}
	var raw []any
	for _, l := range lists {
		if other, ok := l.(*Collection); ok {
			raw = append(raw, other.Items()...)
			continue
		}
		if elems, ok := sliceElems(l); ok {
			raw = append(raw, elems...)
		}
	}
	return c.Append(raw...)
}

// Fill overwrites every position with the cast of raw. A value that does not
// cast empties the collection.
func (c *Collection) Fill(raw any) *Collection {
	if c == nil {
		return nil
	}
	v, ok := c.cast(raw)
	if !ok {
		c.items = nil
		return c
	}
	seq := make([]any, len(c.items))
	for i := range seq {
		seq[i] = v
	}
	c.items = c.normalize(seq)
	return c
}

// Delete removes the element at i.
func (c *Collection) Delete(i int) bool {
	if c == nil || i < 0 || i >= len(c.items) {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true
}

// DeleteFunc removes every element for which del returns true and reports how many were removed.
func (c *Collection) DeleteFunc(del func(any) bool) int {
	if c == nil {
		return 0
	}
	kept := c.items[:0:0]
	removed := 0
	for _, v := range c.items {
		if del(v) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	c.items = kept
	return removed
}

// Truncate keeps the first n elements.
func (c *Collection) Truncate(n int) {
	if c == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	if n < len(c.items) {
		c.items = append([]any(nil), c.items[:n]...)
	}
}

// Equal compares element-wise; documents compare attribute-wise.
func (c *Collection) Equal(other *Collection) bool {
	if c == nil || other == nil {
		return c == nil && other == nil
	}
	if c.typ.unique != other.typ.unique || len(c.items) != len(other.items) {
		return false
	}
	for i := range c.items {
		if !valuesEqual(c.items[i], other.items[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy; nested documents are cloned too.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	cp := &Collection{typ: c.typ, items: make([]any, len(c.items))}
	for i, v := range c.items {
		cp.items[i] = cloneValue(v)
	}
	return cp
}

func (c *Collection) cast(raw any) (any, bool) {
	v, ok := c.typ.item.Cast(raw)
	if !ok || v == nil {
		return nil, false
	}
	if c.typ.dropInvalid {
		if d, isDoc := v.(*Document); isDoc && !d.Valid(context.Background()) {
			return nil, false
		}
	}
	return v, true
}

func (c *Collection) castAll(raw []any) []any {
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		if v, ok := c.cast(r); ok {
			out = append(out, v)
		}
	}
	return out
}

// normalize enforces set uniqueness, keeping the first occurrence.
func (c *Collection) normalize(seq []any) []any {
	if !c.typ.unique {
		return seq
	}
	out := make([]any, 0, len(seq))
	for _, v := range seq {
		if c.indexOf(out, v) < 0 {
			out = append(out, v)
		}
	}
	return out
}

func (c *Collection) indexOf(items []any, v any) int {
	for i, it := range items {
		if valuesEqual(it, v) {
			return i
		}
	}
	return -1
}

// sliceElems converts any slice or array into []any.
func sliceElems(raw any) ([]any, bool) {
	if s, ok := raw.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
