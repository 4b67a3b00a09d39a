package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/drugwatch"
	"github.com/fwojciec/drugwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ drugwatch.RecordWriter = &mock.RecordWriter{}
}

func TestRecordWriter_WriteRecords(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteRecordsFn", func(t *testing.T) {
		t.Parallel()

		var calledWith []*drugwatch.ApprovalRecord
		w := &mock.RecordWriter{
			WriteRecordsFn: func(_ context.Context, records []*drugwatch.ApprovalRecord) (string, error) {
				calledWith = records
				return "outputs/test.csv", nil
			},
		}

		records := []*drugwatch.ApprovalRecord{
			{DrugName: "Drugzumab", SourceURL: "https://example.com/approval"},
		}

		path, err := w.WriteRecords(context.Background(), records)

		require.NoError(t, err)
		assert.Equal(t, "outputs/test.csv", path)
		assert.Equal(t, records, calledWith)
	})
}
