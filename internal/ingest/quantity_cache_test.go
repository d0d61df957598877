package ingest

import (
	"testing"

	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/engine"
)

func TestPopulateInputQuantityCache(t *testing.T) {
	d := openTestDB(t)

	groups := []db.Group{
		{GroupID: 99, GroupName: "Frigates"},
		{GroupID: 100, GroupName: "Ammo S"},
		{GroupID: 200, GroupName: "Drones"},
		{GroupID: 300, GroupName: "Salvage"},
	}
	items := []db.Item{
		{TypeID: 10, TypeName: "Rifter", GroupID: 99},
		{TypeID: 20, TypeName: "EMP S", GroupID: 100},
		{TypeID: 21, TypeName: "Fusion S", GroupID: 100},
		{TypeID: 22, TypeName: "Phased Plasma S", GroupID: 100},
		{TypeID: 30, TypeName: "Hobgoblin", GroupID: 200},
		{TypeID: 31, TypeName: "Hammerhead", GroupID: 200},
		{TypeID: 32, TypeName: "Ogre", GroupID: 200},
		{TypeID: 40, TypeName: "Burned Logic Circuit", GroupID: 300},
	}
	blueprints := []engine.Blueprint{
		{BlueprintTypeID: 1010, ProductTypeID: 10, ProductName: "Rifter", OutputQuantity: 5},
		{BlueprintTypeID: 1021, ProductTypeID: 21, ProductName: "Fusion S", OutputQuantity: 100},
		{BlueprintTypeID: 1022, ProductTypeID: 22, ProductName: "Phased Plasma S", OutputQuantity: 100},
		{BlueprintTypeID: 1031, ProductTypeID: 31, ProductName: "Hammerhead", OutputQuantity: 1},
		{BlueprintTypeID: 1032, ProductTypeID: 32, ProductName: "Ogre", OutputQuantity: 2},
	}
	if err := d.ReplaceCatalog(items, groups, blueprints); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	if err := PopulateInputQuantityCache(d); err != nil {
		t.Fatalf("PopulateInputQuantityCache: %v", err)
	}

	tests := []struct {
		typeID     int64
		wantQty    int64
		wantSource string
		wantReview bool
	}{
		{10, 5, "blueprint", false},            // own blueprint
		{20, 100, "group_consensus", false},    // peers 100,100
		{21, 100, "blueprint", false},          // own blueprint beats group
		{30, 1, "group_most_frequent", true},   // peers 1,2 tie, smallest
		{40, 1, "default", true},               // no blueprint anywhere in group
	}
	for _, tt := range tests {
		row, ok := d.GetInputQuantity(tt.typeID)
		if !ok {
			t.Errorf("no cache row for %d", tt.typeID)
			continue
		}
		if row.InputQuantity != tt.wantQty || row.Source != tt.wantSource || row.NeedsReview != tt.wantReview {
			t.Errorf("type %d: got qty=%d source=%q review=%v, want qty=%d source=%q review=%v",
				tt.typeID, row.InputQuantity, row.Source, row.NeedsReview,
				tt.wantQty, tt.wantSource, tt.wantReview)
		}
	}

	bySource, needsReview, err := d.InputQuantityStats()
	if err != nil {
		t.Fatalf("InputQuantityStats: %v", err)
	}
	if bySource["blueprint"] != 5 {
		t.Errorf("blueprint count = %d, want 5", bySource["blueprint"])
	}
	if needsReview != 2 {
		t.Errorf("needsReview = %d, want 2", needsReview)
	}
}

func TestPopulateInputQuantityCacheRecompute(t *testing.T) {
	d := openTestDB(t)

	groups := []db.Group{{GroupID: 1, GroupName: "Minerals"}}
	items := []db.Item{{TypeID: 34, TypeName: "Tritanium", GroupID: 1}}
	if err := d.ReplaceCatalog(items, groups, nil); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	if err := PopulateInputQuantityCache(d); err != nil {
		t.Fatalf("first populate: %v", err)
	}

	row, ok := d.GetInputQuantity(34)
	if !ok || row.Source != "default" {
		t.Fatalf("row = %+v, ok = %v, want default source", row, ok)
	}

	// A blueprint appears in a later catalog import; recompute replaces the row.
	blueprints := []engine.Blueprint{
		{BlueprintTypeID: 100, ProductTypeID: 34, ProductName: "Tritanium", OutputQuantity: 50},
	}
	if err := d.ReplaceCatalog(items, groups, blueprints); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	if err := PopulateInputQuantityCache(d); err != nil {
		t.Fatalf("second populate: %v", err)
	}

	row, ok = d.GetInputQuantity(34)
	if !ok {
		t.Fatal("cache row missing after recompute")
	}
	if row.InputQuantity != 50 || row.Source != "blueprint" || row.NeedsReview {
		t.Errorf("row after recompute = %+v, want qty=50 source=blueprint", row)
	}
}
