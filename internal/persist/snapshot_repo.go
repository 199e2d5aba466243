package persist

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// SnapshotRow is one entity's persisted position, keyed by its handle.
type SnapshotRow struct {
	Slot     uint32
	Gen      uint32
	EntityID int64
	X        float64
	Y        float64
}

// SnapshotHeader summarises one persisted tick of one world.
type SnapshotHeader struct {
	World       uuid.UUID
	Tick        int64
	EntityCount int
	Digest      uint64
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes the header and all rows of one tick in a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, hdr SnapshotHeader, rows []SnapshotRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "snapshot begin")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO snapshot_ticks (world_id, tick, entity_count, digest)
		 VALUES ($1, $2, $3, $4)`,
		hdr.World, hdr.Tick, hdr.EntityCount, int64(hdr.Digest),
	); err != nil {
		return eris.Wrap(err, "snapshot header insert")
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"entity_snapshots"},
		[]string{"world_id", "tick", "slot", "gen", "entity_id", "x", "y"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{hdr.World, hdr.Tick, int64(row.Slot), int64(row.Gen), row.EntityID, row.X, row.Y}, nil
		}),
	); err != nil {
		return eris.Wrap(err, "snapshot rows copy")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "snapshot commit")
	}
	return nil
}

// LatestTick returns the newest persisted tick for a world.
func (r *SnapshotRepo) LatestTick(ctx context.Context, world uuid.UUID) (int64, bool, error) {
	var tick int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT tick FROM snapshot_ticks WHERE world_id = $1 ORDER BY tick DESC LIMIT 1`, world,
	).Scan(&tick)
	if eris.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "latest tick")
	}
	return tick, true, nil
}

// Load returns the rows persisted for one tick, ordered by slot.
func (r *SnapshotRepo) Load(ctx context.Context, world uuid.UUID, tick int64) ([]SnapshotRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT slot, gen, entity_id, x, y
		 FROM entity_snapshots WHERE world_id = $1 AND tick = $2 ORDER BY slot`, world, tick,
	)
	if err != nil {
		return nil, eris.Wrap(err, "load snapshot")
	}
	defer rows.Close()

	var result []SnapshotRow
	for rows.Next() {
		var (
			row       SnapshotRow
			slot, gen int64
		)
		if err := rows.Scan(&slot, &gen, &row.EntityID, &row.X, &row.Y); err != nil {
			return nil, eris.Wrap(err, "scan snapshot row")
		}
		row.Slot, row.Gen = uint32(slot), uint32(gen)
		result = append(result, row)
	}
	return result, rows.Err()
}
