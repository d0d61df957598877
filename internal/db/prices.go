package db

import (
	"fmt"
	"time"

	"github.com/Morneplaine/EVE/internal/engine"
)

// SeedPriceRow ensures a zero-sentinel prices row exists for the item.
// An existing row (possibly already priced) is left untouched.
func (d *DB) SeedPriceRow(typeID int64) error {
	_, err := d.sql.Exec(`INSERT OR IGNORE INTO prices (type_id) VALUES (?)`, typeID)
	if err != nil {
		return fmt.Errorf("seed price row %d: %w", typeID, err)
	}
	return nil
}

// TrackedTypeIDs returns every type ID with a prices row, ordered for
// deterministic batch boundaries and restartable history runs.
func (d *DB) TrackedTypeIDs() ([]int64, error) {
	var ids []int64
	if err := d.sql.Select(&ids, "SELECT type_id FROM prices ORDER BY type_id"); err != nil {
		return nil, fmt.Errorf("tracked type ids: %w", err)
	}
	return ids, nil
}

// UpsertPriceQuote replaces the full quote for one item and stamps it.
// Rows for items outside the current batch are never touched.
func (d *DB) UpsertPriceQuote(q engine.PriceQuote) error {
	_, err := d.sql.Exec(`
		INSERT OR REPLACE INTO prices
		(type_id, buy_max, buy_volume, sell_min, sell_avg, sell_median, sell_volume, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.TypeID, q.BuyMax, q.BuyVolume, q.SellMin, q.SellAvg, q.SellMedian, q.SellVolume,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert price %d: %w", q.TypeID, err)
	}
	return nil
}

// LoadPrices returns the whole price table keyed by type ID.
func (d *DB) LoadPrices() (map[int64]engine.PriceQuote, error) {
	rows, err := d.sql.Queryx(`
		SELECT type_id, buy_max, buy_volume, sell_min, sell_avg, sell_median, sell_volume, updated_at
		FROM prices`)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]engine.PriceQuote)
	for rows.Next() {
		var q engine.PriceQuote
		var updatedAt string
		if err := rows.Scan(&q.TypeID, &q.BuyMax, &q.BuyVolume, &q.SellMin, &q.SellAvg,
			&q.SellMedian, &q.SellVolume, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		q.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		prices[q.TypeID] = q
	}
	return prices, rows.Err()
}

// GetPriceQuote returns the quote for one item; ok is false when no row exists.
func (d *DB) GetPriceQuote(typeID int64) (engine.PriceQuote, bool) {
	var q engine.PriceQuote
	var updatedAt string
	err := d.sql.QueryRow(`
		SELECT type_id, buy_max, buy_volume, sell_min, sell_avg, sell_median, sell_volume, updated_at
		FROM prices WHERE type_id = ?`, typeID).
		Scan(&q.TypeID, &q.BuyMax, &q.BuyVolume, &q.SellMin, &q.SellAvg, &q.SellMedian, &q.SellVolume, &updatedAt)
	if err != nil {
		return engine.PriceQuote{}, false
	}
	q.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return q, true
}
