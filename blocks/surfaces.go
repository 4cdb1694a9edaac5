package blocks

import (
	"context"

	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/i18n"
	"github.com/reoring/blockkit/rules"
)

// ClearExtraFocus is the method fixer that keeps focus_on_load on the first
// element of a surface.
const ClearExtraFocus = "clear_extra_focus"

func surface(blocksMax int) bk.Fragment {
	return bk.Fragment{
		Attributes: []bk.Attribute{
			{Name: "blocks", Type: bk.ListOf(Block)},
			{Name: "private_metadata", Type: bk.String()},
			{Name: "callback_id", Type: bk.String()},
			{Name: "external_id", Type: bk.String()},
		},
		Validations: []bk.Validation{
			{Attribute: "blocks", Rule: bk.Presence()},
			{Attribute: "blocks", Rule: bk.MaxLength(blocksMax)},
			{Attribute: "blocks", Rule: bk.Associated()},
			{Rule: rules.UniqueBy("blocks", BlockID)},
			{Attribute: "private_metadata", Rule: bk.MaxLength(3000)},
			{Attribute: "callback_id", Rule: bk.MaxLength(255)},
			{Attribute: "external_id", Rule: bk.MaxLength(255)},
		},
		Fixers: []bk.Fixer{
			bk.FixAssociated().On("blocks"),
			bk.Truncate(blocksMax).MarkDangerous().On("blocks"),
		},
	}
}

// Modal is a modal view.
var Modal = bk.NewSchema("modal").
	Attribute("title", PlainTextOnly).
	Attribute("close", PlainTextOnly).
	Attribute("submit", PlainTextOnly).
	Include(surface(100)).
	Attribute("clear_on_close", bk.Boolean()).
	Attribute("notify_on_close", bk.Boolean()).
	Include(rules.ExclusiveFlagFragment(FocusOnLoad, ClearExtraFocus, false)).
	Validate("title", bk.Presence(), bk.MaxLength(24), bk.Associated()).
	Validate("close", bk.MaxLength(24), bk.Associated()).
	Validate("submit", bk.MaxLength(24), bk.Associated()).
	ValidateBase(
		rules.If("blocks", rules.Present, nil).Then(inputNeedsSubmit()),
	).
	Fix("title", bk.Truncate(24), bk.FixAssociated()).
	Fix("close", bk.Truncate(24), bk.FixAssociated()).
	Fix("submit", bk.Truncate(24), bk.FixAssociated()).
	MustBuild()

// Home is an App Home tab view.
var Home = bk.NewSchema("home").
	Include(surface(100)).
	Include(rules.ExclusiveFlagFragment(FocusOnLoad, ClearExtraFocus, false)).
	MustBuild()

// Surface resolves a view payload.
var Surface = bk.Union(bk.DefaultDiscriminator, Modal, Home)

// inputNeedsSubmit requires a submit button on modals holding input blocks.
func inputNeedsSubmit() bk.Validator {
	return bk.Rule(func(_ context.Context, d *bk.Document) bk.ValidationErrors {
		if d.Has("submit") {
			return nil
		}
		for _, b := range d.Collection("blocks").Documents() {
			if b.Schema() == Input {
				return bk.ValidationErrors{bk.Root().Field("submit").Error("submit", bk.CodeBlank, i18n.T(bk.CodeBlank, nil))}
			}
		}
		return nil
	})
}
