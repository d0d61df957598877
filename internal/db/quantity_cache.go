package db

import (
	"database/sql"
	"fmt"
	"time"
)

// InputQuantityRow is one cached "standard input batch size" entry.
// The cache is a derived index: recomputation replaces rows in place.
type InputQuantityRow struct {
	TypeID        int64  `db:"type_id"`
	TypeName      string `db:"type_name"`
	InputQuantity int64  `db:"input_quantity"`
	Source        string `db:"source"`
	NeedsReview   bool   `db:"needs_review"`
}

// UpsertInputQuantity replaces the cache entry for one item.
func (d *DB) UpsertInputQuantity(r InputQuantityRow) error {
	_, err := d.sql.Exec(`
		INSERT OR REPLACE INTO input_quantity_cache
		(type_id, type_name, input_quantity, source, needs_review, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.TypeID, r.TypeName, r.InputQuantity, r.Source, r.NeedsReview,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert input quantity %d: %w", r.TypeID, err)
	}
	return nil
}

// GetInputQuantity returns the cached entry for an item; ok is false when
// the item has not been computed yet.
func (d *DB) GetInputQuantity(typeID int64) (InputQuantityRow, bool) {
	var r InputQuantityRow
	err := d.sql.Get(&r, `
		SELECT type_id, type_name, input_quantity, source, needs_review
		FROM input_quantity_cache WHERE type_id = ?`, typeID)
	if err != nil {
		return InputQuantityRow{}, false
	}
	return r, true
}

// InputQuantityStats returns per-source entry counts plus the review total.
func (d *DB) InputQuantityStats() (bySource map[string]int, needsReview int, err error) {
	rows, err := d.sql.Query(`SELECT source, COUNT(*) FROM input_quantity_cache GROUP BY source`)
	if err != nil {
		return nil, 0, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	bySource = make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, 0, fmt.Errorf("scan cache stats: %w", err)
		}
		bySource[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	err = d.sql.Get(&needsReview, "SELECT COUNT(*) FROM input_quantity_cache WHERE needs_review = 1")
	if err != nil && err != sql.ErrNoRows {
		return nil, 0, fmt.Errorf("count needs_review: %w", err)
	}
	return bySource, needsReview, nil
}
