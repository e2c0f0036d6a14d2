package export

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/growlab/growlab-cli/internal/dataset"
)

type xlsxEncoder struct{}

func (xlsxEncoder) Format() string { return "xlsx" }
func (xlsxEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (xlsxEncoder) Extension() string { return ".xlsx" }

// Encode writes the table as a single-sheet workbook. Every cell is
// written as a string so values survive a round trip unchanged; Excel's
// type inference stays out of the data.
func (xlsxEncoder) Encode(t *dataset.Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t)
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}

	write := func(rowIdx int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			vals[i] = c
		}
		return f.SetSheetRow(sheet, cell, &vals)
	}

	if err := write(1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := write(i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// sheetName derives a worksheet name from the table's source, honoring
// the 31-character limit and the characters Excel forbids.
func sheetName(t *dataset.Table) string {
	name := t.Source
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
