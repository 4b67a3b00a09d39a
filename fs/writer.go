// Package fs provides file-based storage for approval records.
package fs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/drugwatch"
)

// DefaultDir is the default output directory.
const DefaultDir = drugwatch.DefaultOutputDir

// FileName returns the default output file name for records generated at t.
// Example: drug_approvals_20261019_143000.csv
func FileName(t time.Time) string {
	return "drug_approvals_" + t.Format("20060102_150405") + ".csv"
}

// Ensure RecordWriter implements drugwatch.RecordWriter at compile time.
var _ drugwatch.RecordWriter = (*RecordWriter)(nil)

// RecordWriter writes records as a CSV file, one row per record.
type RecordWriter struct {
	baseDir  string
	fileName string

	// Now returns the generation time used for default file names.
	Now func() time.Time
}

// NewWriter creates a RecordWriter writing into baseDir. An empty fileName
// selects a timestamped name on every write.
func NewWriter(baseDir, fileName string) *RecordWriter {
	if baseDir == "" {
		baseDir = DefaultDir
	}
	return &RecordWriter{baseDir: baseDir, fileName: fileName, Now: time.Now}
}

// WriteRecords writes records to a new CSV file and returns its path.
// The file is written under a temporary name and renamed into place, so a
// partially written file is never left at the final path.
func (w *RecordWriter) WriteRecords(ctx context.Context, records []*drugwatch.ApprovalRecord) (string, error) {
	if len(records) == 0 {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "no records to write")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	name := w.fileName
	if name == "" {
		name = FileName(w.Now())
	}
	path := filepath.Join(w.baseDir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// WriteCSV writes a header of drugwatch.RecordColumns followed by one row per record.
func WriteCSV(out io.Writer, records []*drugwatch.ApprovalRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(drugwatch.RecordColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecords parses a CSV file produced by WriteCSV.
func ReadRecords(in io.Reader) ([]*drugwatch.ApprovalRecord, error) {
	cr := csv.NewReader(in)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, drugwatch.Errorf(drugwatch.EINVALID, "missing CSV header")
	} else if err != nil {
		return nil, err
	}

	var records []*drugwatch.ApprovalRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		r, err := drugwatch.ParseRecordRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, r)
	}
	return records, nil
}
