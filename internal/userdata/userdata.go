package userdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/logger"
)

// ImportSkills loads character skill levels from a CSV file.
//
// Accepted row shapes: "typeID,level" or "typeID,skillName,level". A header
// row is detected and skipped. Levels outside 0-5 reject the whole file.
// With replace set, the import swaps the stored skill set wholesale.
func ImportSkills(d *db.DB, path string, replace bool) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	skills := make([]db.CharacterSkill, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return 0, fmt.Errorf("%s line %d: expected typeID,[name,]level", path, i+1)
		}

		typeID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return 0, fmt.Errorf("%s line %d: bad type ID %q", path, i+1, rec[0])
		}

		name := ""
		levelField := rec[1]
		if len(rec) >= 3 {
			name = strings.TrimSpace(rec[1])
			levelField = rec[2]
		}
		level, err := strconv.Atoi(strings.TrimSpace(levelField))
		if err != nil {
			return 0, fmt.Errorf("%s line %d: bad level %q", path, i+1, levelField)
		}
		if level < 0 || level > 5 {
			return 0, fmt.Errorf("%s line %d: level %d outside 0-5", path, i+1, level)
		}

		if name == "" {
			name = d.ItemName(typeID)
		}
		skills = append(skills, db.CharacterSkill{
			SkillTypeID: typeID,
			SkillName:   name,
			Level:       level,
		})
	}

	if err := d.ReplaceCharacterSkills(skills, replace); err != nil {
		return 0, err
	}
	logger.Success("SKILLS", fmt.Sprintf("Imported %d skills from %s", len(skills), path))
	return len(skills), nil
}

// ImportInventory loads on-hand material quantities from a CSV file.
//
// Accepted row shapes: "typeID,quantity" or "typeID,typeName,quantity".
// Negative quantities reject the whole file.
func ImportInventory(d *db.DB, path string, replace bool) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	entries := make([]db.InventoryEntry, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return 0, fmt.Errorf("%s line %d: expected typeID,[name,]quantity", path, i+1)
		}

		typeID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return 0, fmt.Errorf("%s line %d: bad type ID %q", path, i+1, rec[0])
		}

		name := ""
		qtyField := rec[1]
		if len(rec) >= 3 {
			name = strings.TrimSpace(rec[1])
			qtyField = rec[2]
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(qtyField), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s line %d: bad quantity %q", path, i+1, qtyField)
		}
		if qty < 0 {
			return 0, fmt.Errorf("%s line %d: negative quantity %d", path, i+1, qty)
		}

		if name == "" {
			name = d.ItemName(typeID)
		}
		entries = append(entries, db.InventoryEntry{
			TypeID:   typeID,
			TypeName: name,
			Quantity: qty,
		})
	}

	if err := d.ReplaceInventory(entries, replace); err != nil {
		return 0, err
	}
	logger.Success("INVENTORY", fmt.Sprintf("Imported %d entries from %s", len(entries), path))
	return len(entries), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may carry an optional name column
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
