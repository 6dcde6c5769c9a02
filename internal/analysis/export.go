package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"tablelab/internal/models"
)

var exportHeaders = []string{
	"#", "First System",
	"Trial 1 System", "Trial 1 Prompt", "Trial 1 Duration (s)",
	"Trial 2 System", "Trial 2 Prompt", "Trial 2 Duration (s)",
}

// ExportToExcel writes the flattened result table, one row per participant,
// and returns the created file path.
func ExportToExcel(results []models.ExperimentResult, exportDir string) (string, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	firstCell, _ := excelize.CoordinatesToCellName(1, 1)
	lastCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(sheetName, firstCell, lastCell, headerStyle)

	for i, result := range results {
		row := i + 2
		values := []interface{}{
			i + 1,
			string(result.FirstSystem),
			string(result.Trial1.System),
			result.Trial1.Prompt,
			float64(result.Trial1.Duration) / 1000,
			string(result.Trial2.System),
			result.Trial2.Prompt,
			float64(result.Trial2.Duration) / 1000,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "B", "H", 22)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("results_%s.xlsx", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(exportDir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}
