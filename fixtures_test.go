package blockkit_test

import (
	bk "github.com/reoring/blockkit"
)

// A small Block Kit-like schema family used across the engine tests.
var (
	tPlain = bk.NewSchema("plain_text").
		MeasuredBy("text").
		Attribute("text", bk.String()).
		Attribute("emoji", bk.Boolean()).
		Validate("text", bk.Presence(), bk.MaxLength(3000)).
		MustBuild()

	tMrkdwn = bk.NewSchema("mrkdwn").
		MeasuredBy("text").
		Attribute("text", bk.String()).
		Attribute("verbatim", bk.Boolean()).
		Validate("text", bk.Presence()).
		MustBuild()

	tText = bk.KeyedUnion("type", tPlain,
		bk.When("verbatim", tMrkdwn),
		bk.When("emoji", tPlain),
	).FromString("text")

	tHeader = bk.NewSchema("header").
		Attribute("text", bk.String()).
		Attribute("level", bk.Integer(), bk.WithDefault(1)).
		Validate("text", bk.Presence(), bk.MaxLength(24)).
		Validate("level", bk.Between(1, 3)).
		Fix("text", bk.Truncate(24)).
		MustBuild()

	tButton = bk.NewSchema("button").
		Attribute("label", tText).
		Attribute("action_id", bk.String()).
		Attribute("style", bk.String()).
		Validate("label", bk.Presence(), bk.MaxLength(10), bk.Associated()).
		Validate("style", bk.Inclusion("primary", "danger")).
		Fix("label", bk.Truncate(10), bk.FixAssociated()).
		Fix("style", bk.NullValue(bk.CodeInclusion)).
		MustBuild()

	tImage = bk.NewSchema("image").
		Attribute("image_url", bk.String()).
		Validate("image_url", bk.Presence()).
		MustBuild()

	tElement = bk.Union("type", tButton, tImage)

	tActions = bk.NewSchema("actions").
		Attribute("elements", bk.ListOf(tElement)).
		Attribute("block_id", bk.String()).
		Validate("elements", bk.Presence(), bk.MaxLength(5), bk.Associated()).
		Fix("elements", bk.FixAssociated(), bk.Truncate(5).MarkDangerous()).
		MustBuild()

	tModal = bk.NewSchema("modal").
		Attribute("blocks", bk.ListOf(bk.Union("type", tActions, tHeader))).
		Validate("blocks", bk.Presence(), bk.Associated()).
		Fix("blocks", bk.FixAssociated()).
		MustBuild()

	tFilter = bk.NewObject("filter").
		Attribute("include", bk.SetOf(bk.String())).
		Validate("include", bk.Inclusion("im", "mpim", "private", "public")).
		Fix("include", bk.NullValue(bk.CodeInclusion, bk.CodeBlank)).
		MustBuild()
)

func button(label string) map[string]any {
	return map[string]any{"type": "button", "label": label, "action_id": label}
}
