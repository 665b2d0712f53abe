package handler

import (
	"encoding/csv"
	"fmt"
	"mime"
	"net/http"
)

// RowWriter writes one CSV record.
type RowWriter func(record []string) error

type csvResponse struct {
	filename string
	header   []string
	rows     func(write RowWriter) error
}

// CSV streams a CSV attachment. rows is called once and writes records
// through the supplied RowWriter; an error before the first record falls
// back to the ErrorHandler.
func CSV(filename string, header []string, rows func(write RowWriter) error) Response {
	return csvResponse{filename: filename, header: header, rows: rows}
}

func (c csvResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	var (
		cw      *csv.Writer
		started bool
	)
	start := func() error {
		if started {
			return nil
		}
		started = true
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": c.filename}))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		cw = csv.NewWriter(w)
		if len(c.header) > 0 {
			return cw.Write(c.header)
		}
		return nil
	}

	err := c.rows(func(record []string) error {
		if err := start(); err != nil {
			return err
		}
		return cw.Write(record)
	})
	if err != nil {
		if !started {
			return err
		}
		// Headers are already sent; the truncated body is all we can do.
		cw.Flush()
		return nil
	}

	if err := start(); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
