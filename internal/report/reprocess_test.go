package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/Morneplaine/EVE/internal/engine"
)

func sampleReprocessingReport() *engine.ReprocessingReport {
	return &engine.ReprocessingReport{
		Rows: []engine.ReprocessingRow{
			{
				TypeID:              201,
				Name:                "Iron Charge S",
				ItemPrice:           0.5,
				MineralValuePerItem: 0.66,
				CostPerItem:         0.0093,
				ProfitPerItem:       0.1507,
				ReturnPercent:       30.14,
				BreakevenPrice:      0.6480,
			},
			{
				TypeID:              300,
				Name:                "Small Shield Extender I",
				ItemPrice:           15000,
				MineralValuePerItem: 16200,
				CostPerItem:         278.03,
				ProfitPerItem:       921.97,
				ReturnPercent:       6.15,
				BreakevenPrice:      15905.21,
			},
		},
		SkippedUnpriced: 5,
	}
}

func TestWriteReprocessCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reprocess.csv")
	if err := WriteReprocessCSV(sampleReprocessingReport(), path); err != nil {
		t.Fatalf("WriteReprocessCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3 (header + 2 rows)", len(records))
	}
	if records[0][0] != "Type ID" || records[0][6] != "Return %" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][1] != "Iron Charge S" || records[1][6] != "30.14" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][7] != "15905.21" {
		t.Errorf("row 2 breakeven = %q, want 15905.21", records[2][7])
	}
}

func TestWriteReprocessCSVEmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteReprocessCSV(&engine.ReprocessingReport{}, path); err != nil {
		t.Fatalf("WriteReprocessCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want header only", len(records))
	}
}

func TestPrintReprocessTopNoPanic(t *testing.T) {
	PrintReprocessTop(sampleReprocessingReport(), 10)
	PrintReprocessTop(&engine.ReprocessingReport{}, 10)
	PrintReprocessTop(sampleReprocessingReport(), 1)
}
