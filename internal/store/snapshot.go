package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/bandwire/internal/collection"
)

// Persist replaces the stored snapshot with snap.
// Implements collection.Persister.
func (s *Store) Persist(snap collection.Snapshot) error {
	ctx, cancel := contextForPersist()
	defer cancel()
	return s.Save(ctx, snap)
}

// Save writes snap in a single transaction. Older versions never overwrite newer ones.
func (s *Store) Save(ctx context.Context, snap collection.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var stored int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM collection_meta WHERE id = 1`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("save snapshot: read version: %w", err)
	case stored > snap.Version:
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bands`); err != nil {
		return fmt.Errorf("save snapshot: clear bands: %w", err)
	}
	for i, b := range snap.Bands {
		body, err := marshalBand(b)
		if err != nil {
			return fmt.Errorf("save snapshot: band %d: %w", b.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bands (id, position, body) VALUES (?, ?, ?)`,
			b.ID, i, body,
		); err != nil {
			return fmt.Errorf("save snapshot: insert band %d: %w", b.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO collection_meta (id, version, last_id, init_time)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			last_id = excluded.last_id,
			init_time = excluded.init_time
	`, snap.Version, snap.LastID, snap.InitTime.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save snapshot: write meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. found is false for a fresh database.
func (s *Store) Load(ctx context.Context) (snap collection.Snapshot, found bool, err error) {
	var initTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT version, last_id, init_time FROM collection_meta WHERE id = 1`,
	).Scan(&snap.Version, &snap.LastID, &initTime)
	if errors.Is(err, sql.ErrNoRows) {
		return collection.Snapshot{}, false, nil
	}
	if err != nil {
		return collection.Snapshot{}, false, fmt.Errorf("load snapshot: read meta: %w", err)
	}
	if snap.InitTime, err = time.Parse(time.RFC3339Nano, initTime); err != nil {
		return collection.Snapshot{}, false, fmt.Errorf("load snapshot: init_time: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT body FROM bands ORDER BY position ASC, id ASC`)
	if err != nil {
		return collection.Snapshot{}, false, fmt.Errorf("load snapshot: query bands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return collection.Snapshot{}, false, fmt.Errorf("load snapshot: scan band: %w", err)
		}
		b, err := unmarshalBand(body)
		if err != nil {
			return collection.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
		}
		snap.Bands = append(snap.Bands, b)
	}
	if err := rows.Err(); err != nil {
		return collection.Snapshot{}, false, fmt.Errorf("load snapshot: iterate bands: %w", err)
	}
	return snap, true, nil
}
