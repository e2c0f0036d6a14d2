package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/growlab/growlab-cli/internal/config"
)

// LoadEnvironment reads each site's environment CSV from dir. A site whose
// file is absent, unreadable, or unusable contributes a Problem instead of
// failing the whole load; the returned collection carries whatever did
// parse. The directory itself must be listable.
func LoadEnvironment(dir string, sites []config.Site) (*Collection, error) {
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

	col := &Collection{Tables: make(map[string]*Table)}
	for _, site := range sites {
		name, ok := Resolve(entries, site.EnvFile)
		if !ok {
			col.Problems = append(col.Problems, Problem{
				Site:   site.ID,
				Source: site.EnvFile,
				Err:    errors.New("environment file not found"),
			})
			continue
		}
		table, err := readDelimited(filepath.Join(dir, name), site.ID)
		if err != nil {
			col.Problems = append(col.Problems, Problem{Site: site.ID, Source: name, Err: err})
			continue
		}
		col.Tables[site.ID] = table
	}
	return col, nil
}

// readDelimited parses one CSV or TSV file into a site-tagged table.
func readDelimited(path, siteID string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = stripBOM(data)

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = sniffDelimiter(string(data), filepath.Ext(path))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, errors.New("file is empty")
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
		// Pad short rows so column indexes stay valid.
		if len(rec) < len(cols) {
			padded := make([]string, len(cols))
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}

	return &Table{
		Site:    siteID,
		Source:  filepath.Base(path),
		Columns: cols,
		Rows:    rows,
	}, nil
}

func hasKnownColumn(cols []string) bool {
	for _, c := range cols {
		if _, ok := matchField(c); ok {
			return true
		}
	}
	return false
}

// sniffDelimiter picks the field separator from the first line. European
// locale exports use semicolons; .tsv files use tabs; everything else is
// a plain comma.
func sniffDelimiter(data, ext string) rune {
	if strings.EqualFold(ext, ".tsv") {
		return '\t'
	}
	line := data
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if !strings.ContainsRune(line, ',') && strings.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// stripBOM drops a leading UTF-8 byte order mark. Spreadsheet tools prepend
// one when saving Korean CSVs, and it would otherwise glue itself to the
// first header.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xef && b[1] == 0xbb && b[2] == 0xbf {
		return b[3:]
	}
	return b
}
