package db

import (
	"fmt"
)

// HistoryRow is one day of market history for an item in a region.
type HistoryRow struct {
	RegionID   int64   `db:"region_id"`
	TypeID     int64   `db:"type_id"`
	TypeName   string  `db:"type_name"`
	DateUTC    string  `db:"date_utc"` // YYYY-MM-DD
	Average    float64 `db:"average"`
	Highest    float64 `db:"highest"`
	Lowest     float64 `db:"lowest"`
	OrderCount int64   `db:"order_count"`
	Volume     int64   `db:"volume"`
}

// UpsertHistoryRow stores one daily record, replacing any prior row for the
// same (region, type, date). Re-ingestion is idempotent by construction.
func (d *DB) UpsertHistoryRow(r HistoryRow) error {
	_, err := d.sql.Exec(`
		INSERT OR REPLACE INTO market_history_daily
		(region_id, type_id, type_name, date_utc, average, highest, lowest, order_count, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RegionID, r.TypeID, r.TypeName, r.DateUTC, r.Average, r.Highest, r.Lowest, r.OrderCount, r.Volume)
	if err != nil {
		return fmt.Errorf("upsert history %d/%d/%s: %w", r.RegionID, r.TypeID, r.DateUTC, err)
	}
	return nil
}

// GetHistory returns all stored daily rows for an item in a region, oldest first.
func (d *DB) GetHistory(regionID, typeID int64) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := d.sql.Select(&rows, `
		SELECT region_id, type_id, COALESCE(type_name, '') AS type_name, date_utc,
		       average, highest, lowest, COALESCE(order_count, 0) AS order_count, COALESCE(volume, 0) AS volume
		FROM market_history_daily
		WHERE region_id = ? AND type_id = ?
		ORDER BY date_utc`, regionID, typeID)
	if err != nil {
		return nil, fmt.Errorf("load history %d/%d: %w", regionID, typeID, err)
	}
	return rows, nil
}

// HistoryRowCount returns the number of stored daily rows.
func (d *DB) HistoryRowCount() (int, error) {
	var n int
	if err := d.sql.Get(&n, "SELECT COUNT(*) FROM market_history_daily"); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}
