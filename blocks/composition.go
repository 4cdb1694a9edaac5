// Package blocks declares a representative set of Block Kit payload schemas
// on top of the blockkit engine: composition objects, interactive elements,
// layout blocks and the modal and home surfaces.
package blocks

import (
	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/rules"
)

// PlainText is a plain text object. Text objects are measured by their text
// attribute, so a MaxLength or Truncate on an attribute holding one applies
// to the text.
var PlainText = bk.NewSchema("plain_text").
	MeasuredBy("text").
	Attribute("text", bk.String()).
	Attribute("emoji", bk.Boolean()).
	Validate("text", bk.Presence(), bk.MaxLength(3000)).
	Fix("text", bk.Truncate(3000)).
	MustBuild()

// Mrkdwn is a markdown text object.
var Mrkdwn = bk.NewSchema("mrkdwn").
	MeasuredBy("text").
	Attribute("text", bk.String()).
	Attribute("verbatim", bk.Boolean()).
	Validate("text", bk.Presence(), bk.MaxLength(3000)).
	Fix("text", bk.Truncate(3000)).
	MustBuild()

// Text resolves either text object. Untagged maps carrying verbatim are
// mrkdwn; everything else untagged, bare strings included, is plain_text.
var Text = bk.KeyedUnion(bk.DefaultDiscriminator, PlainText,
	bk.When("verbatim", Mrkdwn),
	bk.When("emoji", PlainText),
).FromString("text")

// Markdown is Text with mrkdwn as the default variant.
var Markdown = bk.KeyedUnion(bk.DefaultDiscriminator, Mrkdwn,
	bk.When("emoji", PlainText),
	bk.When("verbatim", Mrkdwn),
).FromString("text")

// PlainTextOnly accepts plain_text objects and bare strings.
var PlainTextOnly = bk.KeyedUnion(bk.DefaultDiscriminator, PlainText).FromString("text")

// Option is an entry of select menus, checkboxes and radio buttons.
var Option = bk.NewObject("option").
	Attribute("text", Text).
	Attribute("value", bk.String()).
	Attribute("description", PlainTextOnly).
	Attribute("url", bk.String()).
	Validate("text", bk.Presence(), bk.MaxLength(75), bk.Associated()).
	Validate("value", bk.Presence(), bk.MaxLength(150)).
	Validate("description", bk.MaxLength(75), bk.Associated()).
	Validate("url", bk.MaxLength(3000)).
	Fix("text", bk.Truncate(75), bk.FixAssociated()).
	Fix("value", bk.Truncate(150).MarkDangerous()).
	Fix("description", bk.Truncate(75), bk.FixAssociated()).
	Fix("url", bk.NullValue(bk.CodeTooLong).MarkDangerous()).
	MustBuild()

// OptionGroup groups options under a label in select menus.
var OptionGroup = bk.NewObject("option_group").
	Attribute("label", PlainTextOnly).
	Attribute("options", bk.ListOf(bk.Doc(Option))).
	Validate("label", bk.Presence(), bk.MaxLength(75), bk.Associated()).
	Validate("options", bk.Presence(), bk.MaxLength(100), bk.Associated()).
	Fix("label", bk.Truncate(75), bk.FixAssociated()).
	Fix("options", bk.FixAssociated(), bk.Truncate(100).MarkDangerous()).
	MustBuild()

// Confirm is the confirmation dialog shown before an element's action runs.
var Confirm = bk.NewObject("confirm").
	Attribute("title", PlainTextOnly).
	Attribute("text", Text).
	Attribute("confirm", PlainTextOnly).
	Attribute("deny", PlainTextOnly).
	Attribute("style", bk.String()).
	Validate("title", bk.Presence(), bk.MaxLength(100), bk.Associated()).
	Validate("text", bk.Presence(), bk.MaxLength(300), bk.Associated()).
	Validate("confirm", bk.Presence(), bk.MaxLength(30), bk.Associated()).
	Validate("deny", bk.Presence(), bk.MaxLength(30), bk.Associated()).
	Validate("style", bk.Inclusion("primary", "danger")).
	Fix("title", bk.Truncate(100), bk.FixAssociated()).
	Fix("text", bk.Truncate(300), bk.FixAssociated()).
	Fix("confirm", bk.Truncate(30), bk.FixAssociated()).
	Fix("deny", bk.Truncate(30), bk.FixAssociated()).
	Fix("style", bk.NullValue(bk.CodeInclusion)).
	MustBuild()

// ConversationTypes are the values accepted by a filter's include set.
var ConversationTypes = []any{"im", "mpim", "private", "public"}

// ConversationFilter narrows the conversations offered by conversation
// selects. Unknown include entries are dropped by the fixer; an include set
// left empty is removed.
var ConversationFilter = bk.NewObject("filter").
	Attribute("include", bk.SetOf(bk.String())).
	Attribute("exclude_external_shared_channels", bk.Boolean()).
	Attribute("exclude_bot_users", bk.Boolean()).
	Validate("include", bk.MinLength(1).AllowNil(), bk.Inclusion(ConversationTypes...)).
	ValidateBase(rules.AtLeastOneOf("include", "exclude_external_shared_channels", "exclude_bot_users")).
	Fix("include", bk.NullValue(bk.CodeInclusion, bk.CodeTooShort, bk.CodeBlank)).
	MustBuild()
