package drugwatch

import "context"

// DefaultOutputDir is the directory record writers use when none is given.
const DefaultOutputDir = "outputs"

// RecordWriter persists a batch of records.
type RecordWriter interface {
	// WriteRecords stores records and returns the location written to.
	WriteRecords(ctx context.Context, records []*ApprovalRecord) (string, error)
}
