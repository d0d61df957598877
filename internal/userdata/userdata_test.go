package userdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Morneplaine/EVE/internal/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestImportSkills(t *testing.T) {
	d := openTestDB(t)
	path := writeCSV(t, "typeID,skillName,level\n3380,Industry,5\n3388,Production Efficiency,4\n")

	n, err := ImportSkills(d, path, true)
	if err != nil {
		t.Fatalf("ImportSkills: %v", err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}

	held, err := d.LoadCharacterSkills()
	if err != nil {
		t.Fatalf("LoadCharacterSkills: %v", err)
	}
	if held[3380] != 5 || held[3388] != 4 {
		t.Errorf("held = %v", held)
	}
}

func TestImportSkillsTwoColumnForm(t *testing.T) {
	d := openTestDB(t)
	path := writeCSV(t, "3380,5\n")

	if _, err := ImportSkills(d, path, true); err != nil {
		t.Fatalf("ImportSkills: %v", err)
	}
	held, err := d.LoadCharacterSkills()
	if err != nil {
		t.Fatalf("LoadCharacterSkills: %v", err)
	}
	if held[3380] != 5 {
		t.Errorf("held = %v", held)
	}
}

func TestImportSkillsRejectsBadLevel(t *testing.T) {
	d := openTestDB(t)
	path := writeCSV(t, "3380,Industry,6\n")

	if _, err := ImportSkills(d, path, true); err == nil {
		t.Fatal("expected error for level 6")
	}
	held, err := d.LoadCharacterSkills()
	if err != nil {
		t.Fatalf("LoadCharacterSkills: %v", err)
	}
	if len(held) != 0 {
		t.Errorf("rejected file must store nothing, got %v", held)
	}
}

func TestImportSkillsReplaceMode(t *testing.T) {
	d := openTestDB(t)

	if _, err := ImportSkills(d, writeCSV(t, "3380,5\n"), true); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := ImportSkills(d, writeCSV(t, "3388,4\n"), true); err != nil {
		t.Fatalf("second import: %v", err)
	}

	held, err := d.LoadCharacterSkills()
	if err != nil {
		t.Fatalf("LoadCharacterSkills: %v", err)
	}
	if len(held) != 1 || held[3388] != 4 {
		t.Errorf("replace-all import: held = %v, want only 3388", held)
	}
}

func TestImportInventory(t *testing.T) {
	d := openTestDB(t)
	path := writeCSV(t, "typeID,typeName,quantity\n34,Tritanium,100000\n35,Pyerite,0\n")

	n, err := ImportInventory(d, path, true)
	if err != nil {
		t.Fatalf("ImportInventory: %v", err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}

	onHand, err := d.LoadInventory()
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	if onHand[34] != 100000 {
		t.Errorf("onHand[34] = %d, want 100000", onHand[34])
	}
	if qty, ok := onHand[35]; !ok || qty != 0 {
		t.Errorf("zero quantity is a valid holding, got %v ok=%v", qty, ok)
	}
}

func TestImportInventoryRejectsNegative(t *testing.T) {
	d := openTestDB(t)
	path := writeCSV(t, "34,-5\n")

	if _, err := ImportInventory(d, path, true); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestImportInventoryResolvesNames(t *testing.T) {
	d := openTestDB(t)
	items := []db.Item{{TypeID: 34, TypeName: "Tritanium", GroupID: 18}}
	groups := []db.Group{{GroupID: 18, GroupName: "Mineral"}}
	if err := d.ReplaceCatalog(items, groups, nil); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	if _, err := ImportInventory(d, writeCSV(t, "34,500\n"), true); err != nil {
		t.Fatalf("ImportInventory: %v", err)
	}

	onHand, err := d.LoadInventory()
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	if onHand[34] != 500 {
		t.Errorf("onHand = %v", onHand)
	}
}

func TestImportMissingFile(t *testing.T) {
	d := openTestDB(t)
	if _, err := ImportSkills(d, "/nonexistent/skills.csv", true); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := ImportInventory(d, "/nonexistent/inv.csv", true); err == nil {
		t.Fatal("expected error for missing file")
	}
}
