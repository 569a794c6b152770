package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CSVLedger keeps the ledger as a single CSV file with a Columns header. The
// file is rewritten in full on every Append, via temp file + rename, so a
// crash mid-write leaves the previous version intact. Columns added by hand
// are carried over on rewrite, after the standard ones.
type CSVLedger struct {
	path   string
	rows   []csvRow
	extra  []string // non-standard column names, in file order
	loaded bool
}

type csvRow struct {
	Row
	extra map[string]string
}

func NewCSVLedger(path string) *CSVLedger {
	return &CSVLedger{path: path}
}

func (l *CSVLedger) Path() string { return l.path }

// Load reads the ledger. Rows without an operationId (entered by hand) are
// kept; only a file encoding/csv cannot parse is reported as corrupt.
func (l *CSVLedger) Load() ([]Row, error) {
	l.rows = nil
	l.extra = nil
	l.loaded = true

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	rows, extra, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, l.path, err)
	}
	l.rows = rows
	l.extra = extra

	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Row
	}
	return out, nil
}

func readRows(r io.Reader) ([]csvRow, []string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	standard := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		standard[c] = true
	}
	var extra []string
	for _, name := range header {
		if !standard[name] {
			extra = append(extra, name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	rows := make([]csvRow, 0, len(records))
	for _, rec := range records {
		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = rec[i]
		}
		row := csvRow{Row: RowFromFields(fields)}
		if len(extra) > 0 {
			row.extra = make(map[string]string, len(extra))
			for _, name := range extra {
				row.extra[name] = fields[name]
			}
		}
		rows = append(rows, row)
	}
	return rows, extra, nil
}

func (l *CSVLedger) Append(rows []Row) (int, error) {
	if !l.loaded {
		// a corrupt file is replaced wholesale, same as an empty one
		_, _ = l.Load()
	}
	merged := append([]csvRow(nil), l.rows...)
	for _, r := range rows {
		merged = append(merged, csvRow{Row: r})
	}

	header := append(append([]string(nil), Columns...), l.extra...)
	records := make([][]string, 0, len(merged)+1)
	records = append(records, header)
	for _, r := range merged {
		rec := r.Record()
		for _, name := range l.extra {
			rec = append(rec, r.extra[name])
		}
		records = append(records, rec)
	}
	if err := atomicWriteCSV(l.path, records); err != nil {
		return len(l.rows), fmt.Errorf("write ledger: %w", err)
	}
	l.rows = merged
	return len(l.rows), nil
}

func (l *CSVLedger) Close() error { return nil }

func atomicWriteCSV(path string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
