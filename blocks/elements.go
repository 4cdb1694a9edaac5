package blocks

import (
	"context"

	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/i18n"
	"github.com/reoring/blockkit/rules"
)

// FocusOnLoad is the flag only one element of a surface may set.
const FocusOnLoad = "focus_on_load"

func actionID() bk.Fragment {
	return bk.Fragment{
		Attributes:  []bk.Attribute{{Name: "action_id", Type: bk.String()}},
		Validations: []bk.Validation{{Attribute: "action_id", Rule: bk.MaxLength(255)}},
		Fixers:      []bk.Fixer{bk.NullValue(bk.CodeTooLong).MarkDangerous().On("action_id")},
	}
}

func confirmable() bk.Fragment {
	return bk.Fragment{
		Attributes:  []bk.Attribute{{Name: "confirm", Type: bk.Doc(Confirm)}},
		Validations: []bk.Validation{{Attribute: "confirm", Rule: bk.Associated()}},
		Fixers:      []bk.Fixer{bk.FixAssociated().On("confirm")},
	}
}

func focusable() bk.Fragment {
	return bk.Fragment{Attributes: []bk.Attribute{{Name: FocusOnLoad, Type: bk.Boolean()}}}
}

func placeholder(maximum int) bk.Fragment {
	return bk.Fragment{
		Attributes: []bk.Attribute{{Name: "placeholder", Type: PlainTextOnly}},
		Validations: []bk.Validation{
			{Attribute: "placeholder", Rule: bk.MaxLength(maximum)},
			{Attribute: "placeholder", Rule: bk.Associated()},
		},
		Fixers: []bk.Fixer{bk.Truncate(maximum).On("placeholder"), bk.FixAssociated().On("placeholder")},
	}
}

// Button is an interactive button element.
var Button = bk.NewSchema("button").
	Attribute("text", PlainTextOnly).
	Include(actionID()).
	Attribute("url", bk.String()).
	Attribute("value", bk.String()).
	Attribute("style", bk.String()).
	Include(confirmable()).
	Attribute("accessibility_label", bk.String()).
	Validate("text", bk.Presence(), bk.MaxLength(75), bk.Associated()).
	Validate("url", bk.MaxLength(3000)).
	Validate("value", bk.MaxLength(2000)).
	Validate("style", bk.Inclusion("primary", "danger")).
	Validate("accessibility_label", bk.MaxLength(75)).
	Fix("text", bk.Truncate(75), bk.FixAssociated()).
	Fix("style", bk.NullValue(bk.CodeInclusion)).
	Fix("accessibility_label", bk.Truncate(75)).
	MustBuild()

// ImageElement is the image element used in sections and context blocks.
var ImageElement = bk.NewSchema("image").
	Attribute("image_url", bk.String()).
	Attribute("alt_text", bk.String()).
	Validate("image_url", bk.Presence(), bk.MaxLength(3000)).
	Validate("alt_text", bk.Presence(), bk.MaxLength(2000)).
	Fix("alt_text", bk.Truncate(2000)).
	MustBuild()

// StaticSelect is a select menu with inline options or option groups.
var StaticSelect = bk.NewSchema("static_select").
	Include(actionID(), placeholder(150)).
	Attribute("options", bk.ListOf(bk.Doc(Option))).
	Attribute("option_groups", bk.ListOf(bk.Doc(OptionGroup))).
	Attribute("initial_option", bk.Doc(Option)).
	Include(confirmable(), focusable()).
	Validate("options", bk.MaxLength(100), bk.Associated()).
	Validate("option_groups", bk.MaxLength(100), bk.Associated()).
	Validate("initial_option", bk.Associated(), OptionFrom("options", "option_groups")).
	ValidateBase(rules.ExactlyOneOf("options", "option_groups")).
	Fix("options", bk.FixAssociated(), bk.Truncate(100).MarkDangerous()).
	Fix("option_groups", bk.FixAssociated(), bk.Truncate(100).MarkDangerous()).
	Fix("initial_option", bk.NullValue(bk.CodeInclusion).MarkDangerous()).
	MustBuild()

// Checkboxes is a group of checkboxes.
var Checkboxes = bk.NewSchema("checkboxes").
	Include(actionID()).
	Attribute("options", bk.ListOf(bk.Doc(Option))).
	Attribute("initial_options", bk.SetOf(bk.Doc(Option))).
	Include(confirmable(), focusable()).
	Validate("options", bk.Presence(), bk.MaxLength(10), bk.Associated()).
	Validate("initial_options", bk.Associated(), OptionFrom("options")).
	Fix("options", bk.FixAssociated(), bk.Truncate(10).MarkDangerous()).
	Fix("initial_options", bk.NullValue(bk.CodeInclusion, bk.CodeBlank)).
	MustBuild()

// RadioButtons is a group of radio buttons.
var RadioButtons = bk.NewSchema("radio_buttons").
	Include(actionID()).
	Attribute("options", bk.ListOf(bk.Doc(Option))).
	Attribute("initial_option", bk.Doc(Option)).
	Include(confirmable(), focusable()).
	Validate("options", bk.Presence(), bk.MaxLength(10), bk.Associated()).
	Validate("initial_option", bk.Associated(), OptionFrom("options")).
	Fix("options", bk.FixAssociated(), bk.Truncate(10).MarkDangerous()).
	Fix("initial_option", bk.NullValue(bk.CodeInclusion)).
	MustBuild()

// PlainTextInput is a free-text input.
var PlainTextInput = bk.NewSchema("plain_text_input").
	Include(actionID(), placeholder(150)).
	Attribute("initial_value", bk.String()).
	Attribute("multiline", bk.Boolean()).
	Attribute("min_length", bk.Integer()).
	Attribute("max_length", bk.Integer()).
	Include(focusable()).
	Validate("min_length", bk.Between(0, 3000)).
	Validate("max_length", bk.Between(1, 3000)).
	ValidateBase(
		rules.If("min_length", rules.Present, nil).
			And(rules.If("max_length", rules.Present, nil)).
			Then(minNotAboveMax()),
	).
	MustBuild()

// ConversationsSelect is a select menu listing conversations.
var ConversationsSelect = bk.NewSchema("conversations_select").
	Include(actionID(), placeholder(150)).
	Attribute("initial_conversation", bk.String()).
	Attribute("default_to_current_conversation", bk.Boolean()).
	Attribute("filter", bk.Doc(ConversationFilter)).
	Include(confirmable(), focusable()).
	Validate("filter", bk.Associated()).
	Fix("filter", bk.FixAssociated()).
	MustBuild()

// Element unions for the places Block Kit accepts interactive elements.
var (
	ActionsElement   = bk.Union(bk.DefaultDiscriminator, Button, StaticSelect, Checkboxes, RadioButtons, ConversationsSelect)
	SectionAccessory = bk.Union(bk.DefaultDiscriminator, Button, ImageElement, StaticSelect, Checkboxes, RadioButtons, ConversationsSelect)
	InputElement     = bk.Union(bk.DefaultDiscriminator, PlainTextInput, StaticSelect, Checkboxes, RadioButtons, ConversationsSelect)
	ContextElement   = bk.Union(bk.DefaultDiscriminator, ImageElement, PlainText, Mrkdwn)
)

// OptionFrom requires the option (or every option of a collection) held by
// the attribute to appear among the options of the listed attributes, which
// may hold options or option groups. Rejected options are reported under
// invalid_values.
func OptionFrom(sources ...string) bk.Validator {
	return bk.ValidatorFunc(func(_ context.Context, d *bk.Document, attr string) bk.ValidationErrors {
		var picked []any
		switch v := d.Get(attr).(type) {
		case *bk.Document:
			picked = []any{v}
		case *bk.Collection:
			picked = v.Items()
		default:
			return nil
		}
		var bad []any
		for _, p := range picked {
			if !offered(d, sources, p) {
				bad = append(bad, p)
			}
		}
		if len(bad) == 0 {
			return nil
		}
		return bk.ValidationErrors{bk.Root().Field(attr).Error(attr, bk.CodeInclusion,
			i18n.T(bk.CodeInclusion, nil), bk.MetaInvalidValues, bad)}
	})
}

func offered(d *bk.Document, sources []string, opt any) bool {
	for _, src := range sources {
		for _, el := range d.Collection(src).Documents() {
			if el.Schema() == OptionGroup {
				if el.Collection("options").Contains(opt) {
					return true
				}
				continue
			}
			if o, ok := opt.(*bk.Document); ok && el.Equal(o) {
				return true
			}
		}
	}
	return false
}

func minNotAboveMax() bk.Validator {
	return bk.Rule(func(_ context.Context, d *bk.Document) bk.ValidationErrors {
		lo, hi := d.GetInt("min_length"), d.GetInt("max_length")
		if lo <= hi {
			return nil
		}
		return bk.ValidationErrors{bk.Root().Field("min_length").Error("min_length", bk.CodeTooBig,
			i18n.T(bk.CodeTooBig, map[string]string{bk.MetaMaximum: "max_length"}), bk.MetaMaximum, hi)}
	})
}
