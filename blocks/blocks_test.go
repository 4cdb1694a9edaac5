package blocks_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	j "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/blocks"
)

var ctx = context.Background()

func option(label, value string) map[string]any {
	return map[string]any{"text": label, "value": value}
}

func surveyModal() *bk.Document {
	return blocks.Modal.New(map[string]any{
		"title":  "Survey",
		"submit": "Send",
		"blocks": []any{
			map[string]any{
				"type":  "input",
				"label": "Name",
				"element": map[string]any{
					"type": "plain_text_input", "action_id": "name", "focus_on_load": true,
				},
			},
			map[string]any{
				"type": "actions",
				"elements": []any{
					map[string]any{
						"type": "static_select", "action_id": "pick", "placeholder": "Pick one",
						"focus_on_load": true,
						"options":       []any{option("A", "a"), option("B", "b")},
					},
				},
			},
		},
	})
}

func TestText_Resolution(t *testing.T) {
	sec := blocks.Section.New(map[string]any{
		"text":   "*bold*",
		"fields": []any{"one", map[string]any{"text": "two", "emoji": true}},
	})
	assert.Equal(t, "mrkdwn", sec.Doc("text").Type())
	fields := sec.Collection("fields").Documents()
	require.Len(t, fields, 2)
	assert.Equal(t, "mrkdwn", fields[0].Type())
	assert.Equal(t, "plain_text", fields[1].Type())

	btn := blocks.Button.New(map[string]any{"text": map[string]any{"type": "mrkdwn", "text": "no"}})
	assert.False(t, btn.Has("text"), "buttons only accept plain text")
}

func TestModal_TitleIsTruncated(t *testing.T) {
	m := surveyModal()
	m.MustSet("title", strings.Repeat("t", 30))
	require.False(t, m.Valid(ctx))

	require.True(t, m.Fix(ctx, false), "errors: %v", m.Validate(ctx))
	title := m.Doc("title").GetString("text")
	assert.LessOrEqual(t, utf8.RuneCountInString(title), 24)
	assert.True(t, strings.HasSuffix(title, bk.DefaultOmission))
}

func TestModal_SingleFocusOnLoad(t *testing.T) {
	m := surveyModal()
	errs := m.Validate(ctx)
	require.Len(t, errs, 1)
	assert.Equal(t, bk.CodeAtMostOne, errs[0].Code)
	assert.Equal(t, []string{
		"blocks[0].element.focus_on_load",
		"blocks[1].elements[0].focus_on_load",
	}, errs[0].Metadata["paths"])

	require.True(t, m.Fix(ctx, false), "errors: %v", m.Validate(ctx))
	blks := m.Collection("blocks").Documents()
	assert.True(t, blks[0].Doc("element").GetBool(blocks.FocusOnLoad))
	assert.False(t, blks[1].Collection("elements").Documents()[0].Has(blocks.FocusOnLoad))
}

func TestModal_InputRequiresSubmit(t *testing.T) {
	m := surveyModal()
	m.Unset("submit")
	errs := m.Validate(ctx).On("submit")
	require.Len(t, errs, 1)
	assert.Equal(t, bk.CodeBlank, errs[0].Code)
}

func TestCheckboxes_InitialOptionsMustBeOffered(t *testing.T) {
	cb := blocks.Checkboxes.New(map[string]any{
		"action_id":       "c",
		"options":         []any{option("A", "a"), option("B", "b")},
		"initial_options": []any{option("A", "a"), option("Z", "z")},
	})
	errs := cb.Validate(ctx).On("initial_options")
	require.Len(t, errs, 1)
	assert.Equal(t, bk.CodeInclusion, errs[0].Code)

	require.True(t, cb.Fix(ctx, false))
	initial := cb.Collection("initial_options").Documents()
	require.Len(t, initial, 1)
	assert.Equal(t, "a", initial[0].GetString("value"))
}

func TestRadioButtons_UnofferedInitialOptionIsDropped(t *testing.T) {
	rb := blocks.RadioButtons.New(map[string]any{
		"options":        []any{option("A", "a")},
		"initial_option": option("Z", "z"),
	})
	require.True(t, rb.Fix(ctx, false))
	assert.False(t, rb.Has("initial_option"))
}

func TestStaticSelect_OptionsOrGroups(t *testing.T) {
	sel := blocks.StaticSelect.New(map[string]any{"action_id": "s"})
	assert.True(t, sel.Validate(ctx).HasCode(bk.CodeExactlyOne))

	sel = blocks.StaticSelect.New(map[string]any{
		"option_groups": []any{
			map[string]any{"label": "Group", "options": []any{option("A", "a")}},
		},
		"initial_option": option("A", "a"),
	})
	assert.Empty(t, sel.Validate(ctx))

	// an initial option that no group offers is only removed by dangerous fixing
	sel.MustSet("initial_option", option("B", "b"))
	assert.False(t, sel.Fix(ctx, false))
	assert.True(t, sel.Fix(ctx, true))
	assert.False(t, sel.Has("initial_option"))
}

func TestConversationFilter_DropsUnknownTypes(t *testing.T) {
	cs := blocks.ConversationsSelect.New(map[string]any{
		"action_id": "c",
		"filter":    map[string]any{"include": []any{"im", "bogus", "public", "im"}},
	})
	require.False(t, cs.Valid(ctx))
	require.True(t, cs.Fix(ctx, false), "errors: %v", cs.Validate(ctx))
	assert.Equal(t, []string{"im", "public"}, cs.Doc("filter").Collection("include").Strings())

	cs = blocks.ConversationsSelect.New(map[string]any{
		"filter": map[string]any{"include": []any{"x", "y", "z"}, "exclude_bot_users": true},
	})
	require.True(t, cs.Fix(ctx, false), "errors: %v", cs.Validate(ctx))
	assert.False(t, cs.Doc("filter").Has("include"))
}

func TestPlainTextInput_MinNotAboveMax(t *testing.T) {
	in := blocks.PlainTextInput.New(map[string]any{"min_length": 10, "max_length": 5})
	errs := in.Validate(ctx)
	require.Len(t, errs, 1)
	assert.Equal(t, "min_length", errs[0].Path)
	assert.Empty(t, blocks.PlainTextInput.New(map[string]any{"min_length": 1, "max_length": 5}).Validate(ctx))
}

func TestActions_TooManyElementsNeedDangerousFix(t *testing.T) {
	raw := make([]any, 0, 26)
	for i := range 26 {
		raw = append(raw, map[string]any{"type": "button", "text": "Go", "action_id": fmt.Sprintf("go_%d", i)})
	}
	a := blocks.Actions.New(map[string]any{"elements": raw})
	assert.False(t, a.Fix(ctx, false))
	assert.Equal(t, 26, a.Collection("elements").Len())
	assert.True(t, a.Fix(ctx, true))
	assert.Equal(t, 25, a.Collection("elements").Len())
}

func TestActions_DuplicateActionIDs(t *testing.T) {
	a := blocks.Actions.New(map[string]any{"elements": []any{
		map[string]any{"type": "button", "text": "One", "action_id": "same"},
		map[string]any{"type": "button", "text": "Two", "action_id": "same"},
	}})
	errs := a.Validate(ctx)
	require.Len(t, errs, 1)
	assert.Equal(t, bk.CodeUniqueness, errs[0].Code)
	assert.Equal(t, "elements[1].action_id", errs[0].Path)
}

func TestHome_DropsUnknownBlocks(t *testing.T) {
	h := blocks.Home.New(map[string]any{"blocks": []any{
		map[string]any{"type": "divider"},
		map[string]any{"type": "video", "title": "nope"},
		map[string]any{"type": "header", "text": "Welcome"},
	}})
	assert.Equal(t, 2, h.Collection("blocks").Len())
	assert.True(t, h.Valid(ctx))
}

func TestSection_NeedsTextOrFields(t *testing.T) {
	s := blocks.Section.New(map[string]any{
		"accessory": map[string]any{"type": "image", "image_url": "https://example.com/i.png", "alt_text": "i"},
	})
	assert.True(t, s.Validate(ctx).HasCode(bk.CodeAtLeastOne))
}

func TestEnsureBlockIDs(t *testing.T) {
	h := blocks.Home.New(map[string]any{"blocks": []any{
		map[string]any{"type": "section", "text": "hello"},
		map[string]any{"type": "divider"},
		map[string]any{"type": "header", "text": "kept", "block_id": "keep"},
	}})
	n := 0
	assigned := blocks.EnsureBlockIDs(h, func() string {
		n++
		return fmt.Sprintf("b%d", n)
	})
	assert.Equal(t, 2, assigned)
	var ids []string
	for _, b := range h.Collection("blocks").Documents() {
		ids = append(ids, b.GetString(blocks.BlockID))
	}
	assert.Equal(t, []string{"b1", "b2", "keep"}, ids)

	h.Collection("blocks").Append(map[string]any{"type": "divider"})
	require.Equal(t, 1, blocks.EnsureBlockIDs(h, nil))
	_, err := uuid.Parse(h.Collection("blocks").Documents()[3].GetString(blocks.BlockID))
	assert.NoError(t, err)
}

func TestSurface_JSONRoundTrip(t *testing.T) {
	m := surveyModal()
	require.True(t, m.Fix(ctx, false))
	blocks.EnsureBlockIDs(m, nil)

	data, err := j.Marshal(m)
	require.NoError(t, err)
	back, err := bk.DecodeJSON(data, blocks.Surface)
	require.NoError(t, err)
	assert.True(t, m.Equal(back), "round trip mismatch:\n%s", data)
	assert.True(t, back.Valid(ctx))
}
