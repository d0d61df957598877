package db

import (
	"fmt"
)

// CharacterSkill is one held skill level (0-5).
type CharacterSkill struct {
	SkillTypeID int64  `db:"skill_type_id"`
	SkillName   string `db:"skill_name"`
	Level       int    `db:"level"`
}

// InventoryEntry is an on-hand material quantity.
type InventoryEntry struct {
	TypeID   int64  `db:"type_id"`
	TypeName string `db:"type_name"`
	Quantity int64  `db:"quantity"`
}

// ReplaceCharacterSkills swaps the whole held-skill set in one transaction.
func (d *DB) ReplaceCharacterSkills(skills []CharacterSkill, replace bool) error {
	tx, err := d.sql.Beginx()
	if err != nil {
		return fmt.Errorf("begin skills tx: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.Exec("DELETE FROM character_skills"); err != nil {
			return fmt.Errorf("clear character_skills: %w", err)
		}
	}
	for _, s := range skills {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO character_skills (skill_type_id, skill_name, level)
			VALUES (?, ?, ?)`, s.SkillTypeID, s.SkillName, s.Level)
		if err != nil {
			return fmt.Errorf("insert skill %d: %w", s.SkillTypeID, err)
		}
	}
	return tx.Commit()
}

// LoadCharacterSkills returns held skill levels keyed by skill type ID.
func (d *DB) LoadCharacterSkills() (map[int64]int, error) {
	var rows []CharacterSkill
	err := d.sql.Select(&rows, "SELECT skill_type_id, skill_name, level FROM character_skills")
	if err != nil {
		return nil, fmt.Errorf("load character skills: %w", err)
	}
	held := make(map[int64]int, len(rows))
	for _, s := range rows {
		held[s.SkillTypeID] = s.Level
	}
	return held, nil
}

// ReplaceInventory swaps (or merges into) the inventory in one transaction.
func (d *DB) ReplaceInventory(entries []InventoryEntry, replace bool) error {
	tx, err := d.sql.Beginx()
	if err != nil {
		return fmt.Errorf("begin inventory tx: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.Exec("DELETE FROM inventory"); err != nil {
			return fmt.Errorf("clear inventory: %w", err)
		}
	}
	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO inventory (type_id, type_name, quantity)
			VALUES (?, ?, ?)`, e.TypeID, e.TypeName, e.Quantity)
		if err != nil {
			return fmt.Errorf("insert inventory %d: %w", e.TypeID, err)
		}
	}
	return tx.Commit()
}

// LoadInventory returns on-hand quantities keyed by type ID.
func (d *DB) LoadInventory() (map[int64]int64, error) {
	var rows []InventoryEntry
	err := d.sql.Select(&rows, "SELECT type_id, type_name, quantity FROM inventory")
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	onHand := make(map[int64]int64, len(rows))
	for _, e := range rows {
		onHand[e.TypeID] = e.Quantity
	}
	return onHand, nil
}
