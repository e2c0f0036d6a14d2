package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/growlab/growlab-cli/internal/config"
)

// ErrWorkbookNotFound marks the growth workbook as missing from the data
// directory. Unlike a single site's absent CSV this is fatal for the
// growth side: every site's records live in the one workbook.
var ErrWorkbookNotFound = errors.New("growth workbook not found")

// LoadGrowth reads the shared growth workbook and splits its worksheets
// across sites by sheet name. Sheets that match no configured site are
// ignored; a configured site with no matching sheet, and a sheet that
// fails to parse, each contribute a Problem.
func LoadGrowth(dir, workbook string, sites []config.Site) (*Collection, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}
	entries := make([]string, 0, len(listing))
	for _, e := range listing {
		if !e.IsDir() {
			entries = append(entries, e.Name())
		}
	}

	name, ok := Resolve(entries, workbook)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, workbook)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	col := &Collection{Tables: make(map[string]*Table)}
	for _, sheet := range f.GetSheetList() {
		siteID, ok := SheetSite(sheet, sites)
		if !ok {
			continue
		}
		if _, dup := col.Tables[siteID]; dup {
			continue
		}
		table, err := readSheet(f, sheet, siteID)
		if err != nil {
			col.Problems = append(col.Problems, Problem{Site: siteID, Source: sheet, Err: err})
			continue
		}
		col.Tables[siteID] = table
	}

	for _, site := range sites {
		if _, ok := col.Tables[site.ID]; ok {
			continue
		}
		if hasProblem(col.Problems, site.ID) {
			continue
		}
		col.Problems = append(col.Problems, Problem{
			Site:   site.ID,
			Source: name,
			Err:    errors.New("no worksheet for site"),
		})
	}
	return col, nil
}

func readSheet(f *excelize.File, sheet, siteID string) (*Table, error) {
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("sheet is empty")
	}

	header := records[0]
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	if !hasKnownColumn(cols) {
		return nil, errors.New("no recognized columns in header")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blankRow(rec) {
			continue
		}
		if len(rec) < len(cols) {
			padded := make([]string, len(cols))
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}

	return &Table{
		Site:    siteID,
		Source:  sheet,
		Columns: cols,
		Rows:    rows,
	}, nil
}

func hasProblem(problems []Problem, siteID string) bool {
	for _, p := range problems {
		if p.Site == siteID {
			return true
		}
	}
	return false
}

// WorkbookPath resolves the growth workbook's on-disk name, for callers
// that need the file itself rather than its parsed contents.
func WorkbookPath(dir, workbook string) (string, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading data directory: %w", err)
	}
	entries := make([]string, 0, len(listing))
	for _, e := range listing {
		if !e.IsDir() {
			entries = append(entries, e.Name())
		}
	}
	name, ok := Resolve(entries, workbook)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrWorkbookNotFound, workbook)
	}
	return filepath.Join(dir, name), nil
}
