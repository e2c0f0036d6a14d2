package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/growlab/growlab-cli/internal/dataset"
)

// Encoder writes a table in one output format.
type Encoder interface {
	Format() string
	ContentType() string
	Extension() string
	Encode(t *dataset.Table, w io.Writer) error
}

var registry []Encoder

// Register adds an encoder implementation to the registry.
func Register(e Encoder) {
	registry = append(registry, e)
}

// ForFormat selects the encoder for a format name, case-insensitively.
func ForFormat(format string) (Encoder, error) {
	for _, e := range registry {
		if strings.EqualFold(e.Format(), format) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, format)
}

// ForPath selects the encoder matching a file path's extension.
func ForPath(path string) (Encoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range registry {
		if e.Extension() == ext {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
}

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, len(registry))
	for i, e := range registry {
		out[i] = e.Format()
	}
	return out
}

// WriteFile encodes a table to path, picking the encoder by extension.
// The write goes through a temp file so a failed encode never leaves a
// truncated export behind.
func WriteFile(t *dataset.Table, path string) error {
	enc, err := ForPath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := enc.Encode(t, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DownloadName builds the conventional per-site file name, e.g.
// "한빛중학교_생육데이터.xlsx".
func DownloadName(siteName string, kind dataset.Kind, e Encoder) string {
	return siteName + "_" + kind.Label() + e.Extension()
}

// ErrUnsupported indicates no encoder handles the requested format.
var ErrUnsupported = errors.New("unsupported export format")

func init() {
	Register(csvEncoder{})
	Register(xlsxEncoder{})
}
