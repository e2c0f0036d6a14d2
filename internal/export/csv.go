package export

import (
	"encoding/csv"
	"io"

	"github.com/growlab/growlab-cli/internal/dataset"
)

type csvEncoder struct{}

func (csvEncoder) Format() string      { return "csv" }
func (csvEncoder) ContentType() string { return "text/csv; charset=utf-8" }
func (csvEncoder) Extension() string   { return ".csv" }

// Encode writes the table as UTF-8 CSV with a byte order mark. Excel
// misreads Korean headers without the BOM. Headers and cells go out
// exactly as loaded; short rows are padded to the header width.
func (csvEncoder) Encode(t *dataset.Table, w io.Writer) error {
	if _, err := w.Write([]byte{0xef, 0xbb, 0xbf}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		out := row
		if len(out) < len(t.Columns) {
			out = make([]string, len(t.Columns))
			copy(out, row)
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
