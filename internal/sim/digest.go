package sim

import (
	"cmp"
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/l1jgo/entitycore/internal/persist"
)

// Rows projects every live positioned entity into snapshot rows ordered by
// slot. The projection goes through handles, so rows never alias the
// collection's components.
func Rows(c *ecs.EntityCollection) []persist.SnapshotRow {
	xs := ecs.SnapshotFor(c, func(p component.Position) float64 { return p.X })
	ys := ecs.SnapshotFor(c, func(p component.Position) float64 { return p.Y })

	rows := make([]persist.SnapshotRow, 0, len(xs))
	for i, sx := range xs {
		e, ok := c.Resolve(sx.Handle)
		if !ok {
			continue
		}
		rows = append(rows, persist.SnapshotRow{
			Slot:     sx.Handle.Slot,
			Gen:      sx.Handle.Gen,
			EntityID: int64(e.ID()),
			X:        sx.Value,
			Y:        ys[i].Value,
		})
	}
	slices.SortFunc(rows, func(a, b persist.SnapshotRow) int { return cmp.Compare(a.Slot, b.Slot) })
	return rows
}

// Digest hashes the positioned entities of c. Two collections that went
// through the same history produce the same digest.
func Digest(c *ecs.EntityCollection) uint64 {
	return DigestRows(Rows(c))
}

// DigestRows hashes rows in the order given.
func DigestRows(rows []persist.SnapshotRow) uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 32)
	for _, r := range rows {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, r.Slot)
		buf = binary.LittleEndian.AppendUint32(buf, r.Gen)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(r.EntityID))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(r.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(r.Y))
		h.Write(buf)
	}
	return h.Sum64()
}
