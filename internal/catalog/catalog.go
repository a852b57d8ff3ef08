// Package catalog queries WorldPop catalogue snapshots: tabular listings of
// gridded datasets whose column naming drifts between releases.
package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Table is an in-memory catalogue snapshot. Rows are raw strings; all
// typing decisions happen at query time because the schema varies.
type Table struct {
	Columns []string
	Rows    [][]string
}

// FromCSV parses a catalogue table from CSV. The first record is the header.
func FromCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // snapshots are not always rectangular

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("catalog: empty table")
	}
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "catalog: read row")
		}
		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// FromXLSX reads a catalogue table from the first sheet of an XLSX file.
func FromXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("catalog: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("catalog: empty table")
	}

	t := &Table{Columns: rowToStrings(sheet.Rows[0])}
	for _, row := range sheet.Rows[1:] {
		t.Rows = append(t.Rows, rowToStrings(row))
	}
	return t, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = strings.TrimSpace(cell.String())
	}
	return cells
}

// FromFile reads a catalogue snapshot from a local CSV or XLSX file.
func FromFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FromXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return FromCSV(f)
	default:
		return nil, eris.Errorf("catalog: unsupported snapshot format %q", filepath.Ext(path))
	}
}

// Fetch downloads a CSV catalogue snapshot from the given URL.
func Fetch(ctx context.Context, rawURL string) (*Table, error) {
	client := &http.Client{Timeout: 2 * time.Minute}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: build request")
	}
	req.Header.Set("User-Agent", "popmap/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("catalog: fetch returned status %d from %s", resp.StatusCode, rawURL)
	}

	return FromCSV(resp.Body)
}
