package db

import (
	"fmt"

	"github.com/Morneplaine/EVE/internal/engine"
)

// Item is a static catalog row.
type Item struct {
	TypeID         int64   `db:"type_id"`
	TypeName       string  `db:"type_name"`
	GroupID        int64   `db:"group_id"`
	CategoryID     int64   `db:"category_id"`
	Volume         float64 `db:"volume"`
	PackagedVolume float64 `db:"packaged_volume"`
}

// Group is a static item-group row.
type Group struct {
	GroupID    int64  `db:"group_id"`
	GroupName  string `db:"group_name"`
	CategoryID int64  `db:"category_id"`
}

// ReplaceCatalog wipes and repopulates the static tables in one transaction.
// Catalog data is refreshed wholesale, never patched row by row.
func (d *DB) ReplaceCatalog(items []Item, groups []Group, blueprints []engine.Blueprint) error {
	tx, err := d.sql.Beginx()
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"manufacturing_skills", "manufacturing_materials", "blueprints", "items", "groups"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, g := range groups {
		_, err := tx.Exec(`INSERT OR REPLACE INTO groups (group_id, group_name, category_id) VALUES (?, ?, ?)`,
			g.GroupID, g.GroupName, g.CategoryID)
		if err != nil {
			return fmt.Errorf("insert group %d: %w", g.GroupID, err)
		}
	}

	for _, it := range items {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO items (type_id, type_name, group_id, category_id, volume, packaged_volume)
			VALUES (?, ?, ?, ?, ?, ?)`,
			it.TypeID, it.TypeName, it.GroupID, it.CategoryID, it.Volume, it.PackagedVolume)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", it.TypeID, err)
		}
	}

	for _, bp := range blueprints {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO blueprints (blueprint_type_id, product_type_id, product_name, group_name, output_quantity)
			VALUES (?, ?, ?, ?, ?)`,
			bp.BlueprintTypeID, bp.ProductTypeID, bp.ProductName, bp.GroupName, bp.OutputQuantity)
		if err != nil {
			return fmt.Errorf("insert blueprint %d: %w", bp.BlueprintTypeID, err)
		}
		for _, m := range bp.Materials {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO manufacturing_materials (blueprint_type_id, material_type_id, material_name, quantity)
				VALUES (?, ?, ?, ?)`,
				bp.BlueprintTypeID, m.TypeID, m.Name, m.Quantity)
			if err != nil {
				return fmt.Errorf("insert material %d/%d: %w", bp.BlueprintTypeID, m.TypeID, err)
			}
		}
		for _, s := range bp.Skills {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO manufacturing_skills (blueprint_type_id, skill_type_id, skill_name, level)
				VALUES (?, ?, ?, ?)`,
				bp.BlueprintTypeID, s.TypeID, s.Name, s.Level)
			if err != nil {
				return fmt.Errorf("insert skill %d/%d: %w", bp.BlueprintTypeID, s.TypeID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadCatalog reads the full recipe store into memory for the engine.
func (d *DB) LoadCatalog() (*engine.Catalog, error) {
	var bps []struct {
		BlueprintTypeID int64  `db:"blueprint_type_id"`
		ProductTypeID   int64  `db:"product_type_id"`
		ProductName     string `db:"product_name"`
		GroupName       string `db:"group_name"`
		OutputQuantity  int64  `db:"output_quantity"`
	}
	err := d.sql.Select(&bps, `
		SELECT blueprint_type_id, product_type_id, product_name, group_name, output_quantity
		FROM blueprints ORDER BY blueprint_type_id`)
	if err != nil {
		return nil, fmt.Errorf("load blueprints: %w", err)
	}

	cat := &engine.Catalog{Blueprints: make([]engine.Blueprint, 0, len(bps))}
	for _, row := range bps {
		bp := engine.Blueprint{
			BlueprintTypeID: row.BlueprintTypeID,
			ProductTypeID:   row.ProductTypeID,
			ProductName:     row.ProductName,
			GroupName:       row.GroupName,
			OutputQuantity:  row.OutputQuantity,
		}
		err = d.sql.Select(&bp.Materials, `
			SELECT material_type_id, material_name, quantity
			FROM manufacturing_materials WHERE blueprint_type_id = ?
			ORDER BY material_type_id`, row.BlueprintTypeID)
		if err != nil {
			return nil, fmt.Errorf("load materials for %d: %w", row.BlueprintTypeID, err)
		}
		err = d.sql.Select(&bp.Skills, `
			SELECT skill_type_id, skill_name, level
			FROM manufacturing_skills WHERE blueprint_type_id = ?
			ORDER BY skill_type_id`, row.BlueprintTypeID)
		if err != nil {
			return nil, fmt.Errorf("load skills for %d: %w", row.BlueprintTypeID, err)
		}
		cat.Blueprints = append(cat.Blueprints, bp)
	}
	return cat, nil
}

// ItemName returns the display name for a type ID, or "" when unknown.
func (d *DB) ItemName(typeID int64) string {
	var name string
	if err := d.sql.Get(&name, "SELECT type_name FROM items WHERE type_id = ?", typeID); err != nil {
		return ""
	}
	return name
}

// AllItems returns every catalog item ordered by type ID.
func (d *DB) AllItems() ([]Item, error) {
	var items []Item
	err := d.sql.Select(&items, `
		SELECT type_id, type_name, group_id, category_id, volume, packaged_volume
		FROM items ORDER BY type_id`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}
