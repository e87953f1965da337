package table

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
	MaxRows    int // 0 = unlimited
}

// StreamCSV reads CSV records and sends them to a channel, header row included.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow ragged rows

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "table: csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "table: csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "table: csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV reads a CSV document with a header row into a Frame.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Frame, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := StreamCSV(ctx, r, opts)

	var header []string
	var rows [][]string
	var limited bool
	for record := range rowCh {
		if header == nil {
			header = stripBOM(record)
			continue
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			limited = true
			cancel()
			break
		}
		rows = append(rows, record)
	}
	// Drain so the producer can exit after an early stop.
	for range rowCh {
	}
	for err := range errCh {
		if err != nil && !limited {
			return nil, err
		}
	}

	if header == nil {
		return nil, eris.New("table: csv: missing header row")
	}
	return NewFrame(header, rows), nil
}

func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
