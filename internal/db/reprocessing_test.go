package db

import "testing"

func TestReprocessingOutputsRoundTrip(t *testing.T) {
	d := openTestDB(t)

	rows := []ReprocessingOutput{
		{ItemTypeID: 201, ItemName: "Iron Charge S", MaterialTypeID: 34, MaterialName: "Tritanium", Quantity: 30, BatchSize: 100},
		{ItemTypeID: 201, ItemName: "Iron Charge S", MaterialTypeID: 35, MaterialName: "Pyerite", Quantity: 12, BatchSize: 100},
		{ItemTypeID: 300, ItemName: "Small Shield Extender I", MaterialTypeID: 34, MaterialName: "Tritanium", Quantity: 880, BatchSize: 1},
	}
	if err := d.ReplaceReprocessingOutputs(rows); err != nil {
		t.Fatalf("ReplaceReprocessingOutputs: %v", err)
	}

	items, err := d.LoadReprocessingItems()
	if err != nil {
		t.Fatalf("LoadReprocessingItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].TypeID != 201 || len(items[0].Outputs) != 2 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[0].Outputs[0].MaterialTypeID != 34 || items[0].Outputs[0].BatchSize != 100 {
		t.Errorf("output = %+v", items[0].Outputs[0])
	}
	if items[1].TypeID != 300 || items[1].Outputs[0].Quantity != 880 {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestReprocessingOutputsWholesaleReplace(t *testing.T) {
	d := openTestDB(t)

	first := []ReprocessingOutput{
		{ItemTypeID: 201, ItemName: "Iron Charge S", MaterialTypeID: 34, Quantity: 30, BatchSize: 100},
	}
	if err := d.ReplaceReprocessingOutputs(first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []ReprocessingOutput{
		{ItemTypeID: 300, ItemName: "Module", MaterialTypeID: 35, Quantity: 10, BatchSize: 1},
	}
	if err := d.ReplaceReprocessingOutputs(second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	items, err := d.LoadReprocessingItems()
	if err != nil {
		t.Fatalf("LoadReprocessingItems: %v", err)
	}
	if len(items) != 1 || items[0].TypeID != 300 {
		t.Errorf("items after replace = %+v, want only 300", items)
	}
}
