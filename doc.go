// Package blockkit provides:
//
// - Typed documents for Block Kit layout payloads (blocks, elements, composition objects, surfaces)
// - Casting of raw maps into concrete variants through discriminated unions (Union/KeyedUnion/Doc)
// - Collections that re-cast every inserted element and silently drop what does not cast
// - Recursive validation producing path-scoped errors (elements[2].text)
// - Fixers that repair invalid documents under a safe/dangerous policy
//
// Design policy:
// - Keep the engine in the root package; leaf schemas live under blocks/, reusable rules under rules/.
// - Schemas are immutable once built and safe to share; Documents are not safe for concurrent mutation.
// - Validation never fails and casting never fails; only FixOrError returns an error.
//
// Typical usage:
//
//	doc, ok := blocks.Block.Cast(raw)
//	if !ok {
//		// unknown or missing "type"
//	}
//	if !doc.Fix(ctx, false) {
//		for _, e := range doc.Validate(ctx).Flatten() {
//			fmt.Println(e.Path, e.Message)
//		}
//	}
//	wire, err := doc.MarshalJSON()
package blockkit
