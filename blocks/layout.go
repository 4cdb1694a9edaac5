package blocks

import (
	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/rules"
)

// BlockID is the attribute Slack uses to identify a block in interaction
// payloads.
const BlockID = "block_id"

func blockID() bk.Fragment {
	return bk.Fragment{
		Attributes:  []bk.Attribute{{Name: BlockID, Type: bk.String()}},
		Validations: []bk.Validation{{Attribute: BlockID, Rule: bk.MaxLength(255)}},
		Fixers:      []bk.Fixer{bk.NullValue(bk.CodeTooLong).MarkDangerous().On(BlockID)},
	}
}

// Section displays text, optional fields and an accessory element.
var Section = bk.NewSchema("section").
	Attribute("text", Markdown).
	Attribute("fields", bk.ListOf(Markdown)).
	Attribute("accessory", SectionAccessory).
	Attribute("expand", bk.Boolean()).
	Include(blockID()).
	Validate("text", bk.MaxLength(3000), bk.Associated()).
	Validate("fields", bk.MaxLength(10), bk.Associated()).
	Validate("accessory", bk.Associated()).
	ValidateBase(rules.AtLeastOneOf("text", "fields")).
	Fix("text", bk.Truncate(3000), bk.FixAssociated()).
	Fix("fields", bk.FixAssociated(), bk.Truncate(10).MarkDangerous()).
	Fix("accessory", bk.FixAssociated()).
	MustBuild()

// Actions holds interactive elements.
var Actions = bk.NewSchema("actions").
	Attribute("elements", bk.ListOf(ActionsElement)).
	Include(blockID()).
	Validate("elements", bk.Presence(), bk.MaxLength(25), bk.Associated()).
	ValidateBase(rules.UniqueBy("elements", "action_id")).
	Fix("elements", bk.FixAssociated(), bk.Truncate(25).MarkDangerous()).
	MustBuild()

// Context shows images and text in a compact row.
var Context = bk.NewSchema("context").
	Attribute("elements", bk.ListOf(ContextElement)).
	Include(blockID()).
	Validate("elements", bk.Presence(), bk.MaxLength(10), bk.Associated()).
	Fix("elements", bk.FixAssociated(), bk.Truncate(10).MarkDangerous()).
	MustBuild()

// Divider is a horizontal rule.
var Divider = bk.NewSchema("divider").Include(blockID()).MustBuild()

// Header is large bold plain text.
var Header = bk.NewSchema("header").
	Attribute("text", PlainTextOnly).
	Include(blockID()).
	Validate("text", bk.Presence(), bk.MaxLength(150), bk.Associated()).
	Fix("text", bk.Truncate(150), bk.FixAssociated()).
	MustBuild()

// Image is the standalone image block.
var Image = bk.NewSchema("image").
	Attribute("image_url", bk.String()).
	Attribute("alt_text", bk.String()).
	Attribute("title", PlainTextOnly).
	Include(blockID()).
	Validate("image_url", bk.Presence(), bk.MaxLength(3000)).
	Validate("alt_text", bk.Presence(), bk.MaxLength(2000)).
	Validate("title", bk.MaxLength(2000), bk.Associated()).
	Fix("alt_text", bk.Truncate(2000)).
	Fix("title", bk.Truncate(2000), bk.FixAssociated()).
	MustBuild()

// Input collects a value with a single input element.
var Input = bk.NewSchema("input").
	Attribute("label", PlainTextOnly).
	Attribute("element", InputElement).
	Attribute("hint", PlainTextOnly).
	Attribute("optional", bk.Boolean(), bk.WithDefault(false)).
	Attribute("dispatch_action", bk.Boolean()).
	Include(blockID()).
	Validate("label", bk.Presence(), bk.MaxLength(2000), bk.Associated()).
	Validate("element", bk.Presence(), bk.Associated()).
	Validate("hint", bk.MaxLength(2000), bk.Associated()).
	Fix("label", bk.Truncate(2000), bk.FixAssociated()).
	Fix("element", bk.FixAssociated()).
	Fix("hint", bk.Truncate(2000), bk.FixAssociated()).
	MustBuild()

// Block resolves any layout block by its type.
var Block = bk.Union(bk.DefaultDiscriminator, Section, Actions, Context, Divider, Header, Image, Input)
