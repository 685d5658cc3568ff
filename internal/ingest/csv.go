// Package ingest feeds delimited files of (user_name, message) rows into an
// ingestion sink, either the engine itself or the ingest queue.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

type Sink interface {
	Ingest(ctx context.Context, userName, message string) error
}

var ErrShortRow = errors.New("rows need at least 2 cells")

// LoadCSV sends every row of a header-less CSV stream to sink. Columns past
// the second are ignored. The first short row or sink failure aborts the run.
func LoadCSV(ctx context.Context, r io.Reader, sink Sink) (rows int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		line, _ := cr.FieldPos(0)
		if len(record) < 2 {
			return rows, fmt.Errorf("line %d: %w", line, ErrShortRow)
		}
		if err := sink.Ingest(ctx, record[0], record[1]); err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		rows++
	}
}

func LoadCSVFile(ctx context.Context, path string, sink Sink) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return LoadCSV(ctx, f, sink)
}
