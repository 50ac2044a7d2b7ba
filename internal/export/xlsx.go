package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"festcal/internal/model"
	"festcal/internal/palette"
	"festcal/internal/schedule"
)

const (
	timeFormat = "2006-01-02 15:04"
	firstSheet = "Sheet1"
)

var header = []string{"Stage", "Artist", "Start", "End"}

// BuildLineupXLSX renders the lineup as a workbook with one sheet per
// festival day (named YYYY-MM-DD). Each row is one set; the stage cell is
// filled with the stage color.
func BuildLineupXLSX(days []model.FestivalDay, stageColors map[string]palette.Color) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if len(days) == 0 {
		_ = f.SetCellValue(firstSheet, "A1", "No festival days")
		return write(f)
	}

	for i, day := range days {
		sheet := day.Key()
		if i == 0 {
			if err := f.SetSheetName(firstSheet, sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		for col, title := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			_ = f.SetCellValue(sheet, cell, title)
		}

		colors := palette.ForStages(day.StageNames(), stageColors)
		row := 2
		for si, stage := range day.Stages {
			style, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{
					Type:    "pattern",
					Pattern: 1,
					Color:   []string{strings.TrimPrefix(colors[si].Hex(), "#")},
				},
			})
			if err != nil {
				return nil, err
			}

			for _, w := range schedule.Windows(stage, day.Date) {
				_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), stage.Name)
				_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), w.Artist)
				_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), w.Start.Format(timeFormat))
				_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), w.End.Format(timeFormat))
				cell := fmt.Sprintf("A%d", row)
				_ = f.SetCellStyle(sheet, cell, cell, style)
				row++
			}
		}
		_ = f.SetColWidth(sheet, "A", "B", 28)
		_ = f.SetColWidth(sheet, "C", "D", 18)
	}

	return write(f)
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
