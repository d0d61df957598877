package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/Morneplaine/EVE/internal/engine"
	"github.com/Morneplaine/EVE/internal/logger"
)

var reprocessColumns = []string{
	"Type ID",
	"Item Name",
	"Item Price",
	"Mineral Value / Item",
	"Fee / Item",
	"Profit / Item",
	"Return %",
	"Breakeven Price",
}

// PrintReprocessTop writes the best n reprocessing rows to the console.
func PrintReprocessTop(rep *engine.ReprocessingReport, n int) {
	logger.Section("Reprocessing Value Report")
	logger.Stats("Items analyzed", len(rep.Rows))
	logger.Stats("Skipped (unpriced)", rep.SkippedUnpriced)

	if len(rep.Rows) == 0 {
		logger.Warn("REPORT", "No item in the price window has priced minerals")
		return
	}
	if n <= 0 || n > len(rep.Rows) {
		n = len(rep.Rows)
	}

	for i, row := range rep.Rows[:n] {
		logger.Info("REPORT", fmt.Sprintf("%3d. %-40s return %8.2f%% (buy %.2f, minerals %.2f, breakeven %.2f)",
			i+1, row.Name, row.ReturnPercent, row.ItemPrice, row.MineralValuePerItem, row.BreakevenPrice))
	}
}

// WriteReprocessCSV writes the full reprocessing report to a CSV file.
func WriteReprocessCSV(rep *engine.ReprocessingReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reprocessColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rep.Rows {
		record := []string{
			strconv.FormatInt(row.TypeID, 10),
			row.Name,
			strconv.FormatFloat(row.ItemPrice, 'f', 2, 64),
			strconv.FormatFloat(row.MineralValuePerItem, 'f', 2, 64),
			strconv.FormatFloat(row.CostPerItem, 'f', 4, 64),
			strconv.FormatFloat(row.ProfitPerItem, 'f', 2, 64),
			strconv.FormatFloat(row.ReturnPercent, 'f', 2, 64),
			strconv.FormatFloat(row.BreakevenPrice, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	logger.Success("REPORT", fmt.Sprintf("Wrote %d rows to %s", len(rep.Rows), path))
	return nil
}
