package mock

import (
	"context"

	"github.com/fwojciec/drugwatch"
)

var _ drugwatch.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of drugwatch.RecordWriter.
type RecordWriter struct {
	WriteRecordsFn func(ctx context.Context, records []*drugwatch.ApprovalRecord) (string, error)
}

func (w *RecordWriter) WriteRecords(ctx context.Context, records []*drugwatch.ApprovalRecord) (string, error) {
	return w.WriteRecordsFn(ctx, records)
}
