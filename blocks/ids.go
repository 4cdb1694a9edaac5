package blocks

import (
	"github.com/google/uuid"

	bk "github.com/reoring/blockkit"
)

// IDFunc generates block identifiers.
type IDFunc func() string

// EnsureBlockIDs assigns a block_id to every block in the tree rooted at d
// that declares one but has none, and returns how many were assigned. A nil
// gen uses random UUIDs.
func EnsureBlockIDs(d *bk.Document, gen IDFunc) int {
	if gen == nil {
		gen = uuid.NewString
	}
	n := 0
	d.Walk(func(_ bk.PathRef, doc *bk.Document) bool {
		if _, ok := doc.Schema().Attribute(BlockID); !ok || doc.Has(BlockID) {
			return true
		}
		doc.MustSet(BlockID, gen())
		n++
		return true
	})
	return n
}
