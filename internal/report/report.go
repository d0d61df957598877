package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Morneplaine/EVE/internal/engine"
	"github.com/Morneplaine/EVE/internal/logger"
)

var columns = []string{
	"Product Type ID",
	"Product Name",
	"Output Quantity",
	"Revenue / Unit",
	"Material Cost / Unit",
	"Profit / Unit",
	"Max Buildable",
}

// maxBuildable renders the inventory constraint column. -1 means the
// resource filter was off or the recipe needs no materials.
func maxBuildable(n int64) string {
	if n < 0 {
		return "N/A"
	}
	return strconv.FormatInt(n, 10)
}

// PrintTop writes the best n rows to the console.
func PrintTop(rep *engine.Report, n int) {
	logger.Section("Profitability Report")
	logger.Stats("Profitable blueprints", len(rep.Rows))
	logger.Stats("Skipped (unpriced)", rep.SkippedUnpriced)

	if len(rep.Rows) == 0 {
		logger.Warn("REPORT", "No blueprint cleared the profit threshold")
		return
	}
	if n <= 0 || n > len(rep.Rows) {
		n = len(rep.Rows)
	}

	for i, row := range rep.Rows[:n] {
		logger.Info("REPORT", fmt.Sprintf("%3d. %-40s profit %14.2f ISK/unit (cost %.2f, builds %s)",
			i+1, row.ProductName, row.ProfitPerUnit, row.MaterialCostPerUnit, maxBuildable(row.MaxBuildable)))
	}
}

// WriteCSV writes the full report to a CSV file.
func WriteCSV(rep *engine.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rep.Rows {
		record := []string{
			strconv.FormatInt(row.ProductTypeID, 10),
			row.ProductName,
			strconv.FormatInt(row.OutputQuantity, 10),
			strconv.FormatFloat(row.RevenuePerUnit, 'f', 2, 64),
			strconv.FormatFloat(row.MaterialCostPerUnit, 'f', 2, 64),
			strconv.FormatFloat(row.ProfitPerUnit, 'f', 2, 64),
			maxBuildable(row.MaxBuildable),
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

const sheetName = "Profitability"

// WriteExcel writes the full report to an .xlsx workbook with a bold,
// frozen header row and ISK number formatting.
func WriteExcel(rep *engine.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	// #,##0.00
	iskStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetRowStyle(sheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, row := range rep.Rows {
		values := []interface{}{
			row.ProductTypeID,
			row.ProductName,
			row.OutputQuantity,
			row.RevenuePerUnit,
			row.MaterialCostPerUnit,
			row.ProfitPerUnit,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(len(columns), r+2)
		if err := f.SetCellValue(sheetName, cell, maxBuildable(row.MaxBuildable)); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if len(rep.Rows) > 0 {
		start, _ := excelize.CoordinatesToCellName(4, 2)
		end, _ := excelize.CoordinatesToCellName(6, len(rep.Rows)+1)
		if err := f.SetCellStyle(sheetName, start, end, iskStyle); err != nil {
			return fmt.Errorf("style prices: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 42); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	logger.Success("REPORT", fmt.Sprintf("Wrote %d rows to %s", len(rep.Rows), path))
	return nil
}
