package db

import (
	"fmt"

	"github.com/Morneplaine/EVE/internal/engine"
)

// ReprocessingOutput is one stored item-to-material yield row.
type ReprocessingOutput struct {
	ItemTypeID     int64  `db:"item_type_id"`
	ItemName       string `db:"item_name"`
	MaterialTypeID int64  `db:"material_type_id"`
	MaterialName   string `db:"material_name"`
	Quantity       int64  `db:"quantity"`
	BatchSize      int64  `db:"batch_size"`
}

// ReplaceReprocessingOutputs wipes and repopulates the yield table in one
// transaction. Like the catalog, yields are refreshed wholesale.
func (d *DB) ReplaceReprocessingOutputs(rows []ReprocessingOutput) error {
	tx, err := d.sql.Beginx()
	if err != nil {
		return fmt.Errorf("begin reprocessing tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM reprocessing_outputs"); err != nil {
		return fmt.Errorf("clear reprocessing_outputs: %w", err)
	}
	for _, r := range rows {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO reprocessing_outputs
			(item_type_id, item_name, material_type_id, material_name, quantity, batch_size)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ItemTypeID, r.ItemName, r.MaterialTypeID, r.MaterialName, r.Quantity, r.BatchSize)
		if err != nil {
			return fmt.Errorf("insert reprocessing %d/%d: %w", r.ItemTypeID, r.MaterialTypeID, err)
		}
	}
	return tx.Commit()
}

// LoadReprocessingItems reads the full yield table grouped per item, ordered
// by item then material type ID.
func (d *DB) LoadReprocessingItems() ([]engine.ReprocessingItem, error) {
	var rows []ReprocessingOutput
	err := d.sql.Select(&rows, `
		SELECT item_type_id, item_name, material_type_id, material_name, quantity, batch_size
		FROM reprocessing_outputs
		ORDER BY item_type_id, material_type_id`)
	if err != nil {
		return nil, fmt.Errorf("load reprocessing outputs: %w", err)
	}

	var items []engine.ReprocessingItem
	for _, r := range rows {
		if len(items) == 0 || items[len(items)-1].TypeID != r.ItemTypeID {
			items = append(items, engine.ReprocessingItem{TypeID: r.ItemTypeID, Name: r.ItemName})
		}
		last := &items[len(items)-1]
		last.Outputs = append(last.Outputs, engine.ReprocessingOutput{
			MaterialTypeID: r.MaterialTypeID,
			MaterialName:   r.MaterialName,
			Quantity:       r.Quantity,
			BatchSize:      r.BatchSize,
		})
	}
	return items, nil
}
