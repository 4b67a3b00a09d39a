package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/drugwatch"
)

// Compile-time interface verification.
var _ drugwatch.RecordWriter = (*RecordWriter)(nil)

// FileName returns the default database file name for records generated at t.
// Example: drug_approvals_20261019_143000.db
func FileName(t time.Time) string {
	return "drug_approvals_" + t.Format("20060102_150405") + ".db"
}

// RecordWriter writes the records of one run into a new SQLite database
// file. It never appends to an existing file.
type RecordWriter struct {
	baseDir  string
	fileName string

	// Now returns the generation time used for default file names.
	Now func() time.Time
}

// NewWriter creates a RecordWriter writing into baseDir, or into
// drugwatch.DefaultOutputDir when baseDir is empty. An empty fileName
// selects a timestamped name on every write.
func NewWriter(baseDir, fileName string) *RecordWriter {
	if baseDir == "" {
		baseDir = drugwatch.DefaultOutputDir
	}
	return &RecordWriter{baseDir: baseDir, fileName: fileName, Now: time.Now}
}

// WriteRecords creates the database file, stores records in a single
// transaction and returns the file path.
func (w *RecordWriter) WriteRecords(ctx context.Context, records []*drugwatch.ApprovalRecord) (string, error) {
	if len(records) == 0 {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "no records to write")
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	name := w.fileName
	if name == "" {
		name = FileName(w.Now())
	}
	path := filepath.Join(w.baseDir, name)
	if _, err := os.Stat(path); err == nil {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "output file %q already exists", path)
	}

	db := NewDB(path)
	if err := db.Open(); err != nil {
		removeDB(path)
		return "", err
	}

	if err := insertRecords(ctx, db, records); err != nil {
		_ = db.Close()
		removeDB(path)
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// removeDB deletes a database file and its WAL companions.
func removeDB(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

func insertRecords(ctx context.Context, db *DB, records []*drugwatch.ApprovalRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			drug_name, sponsor_company, approval_date, indication, drug_type,
			regulatory_action, approval_status, therapeutic_area, source_agency,
			source_url, confidence_score, extraction_timestamp, search_title,
			search_snippet, search_position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.DrugName, r.SponsorCompany, r.ApprovalDate, r.Indication, r.DrugType,
			r.RegulatoryAction, r.ApprovalStatus, r.TherapeuticArea, r.SourceAgency,
			r.SourceURL, r.ConfidenceScore, r.ExtractionTimestamp, r.SearchTitle,
			r.SearchSnippet, r.SearchPosition,
		); err != nil {
			return fmt.Errorf("failed to insert record for %s: %w", r.SourceURL, err)
		}
	}

	return tx.Commit()
}

// ReadRecords returns every record stored in db in insertion order.
func ReadRecords(ctx context.Context, db *DB) ([]*drugwatch.ApprovalRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT drug_name, sponsor_company, approval_date, indication, drug_type,
			regulatory_action, approval_status, therapeutic_area, source_agency,
			source_url, confidence_score, extraction_timestamp, search_title,
			search_snippet, search_position
		FROM records
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*drugwatch.ApprovalRecord
	for rows.Next() {
		var r drugwatch.ApprovalRecord
		if err := rows.Scan(
			&r.DrugName, &r.SponsorCompany, &r.ApprovalDate, &r.Indication, &r.DrugType,
			&r.RegulatoryAction, &r.ApprovalStatus, &r.TherapeuticArea, &r.SourceAgency,
			&r.SourceURL, &r.ConfidenceScore, &r.ExtractionTimestamp, &r.SearchTitle,
			&r.SearchSnippet, &r.SearchPosition,
		); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}
