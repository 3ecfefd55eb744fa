// pkg/report/csv_sink.go

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CsvSink appends one row per finding to a durable log file shared across
// runs. The file is never truncated; the header is written only when the
// file does not exist yet.
type CsvSink struct {
	Path string
}

var csvHeader = []string{"timestamp", "category", "item", "status", "priority", "details"}

// NewCsvSink creates a sink writing to path.
func NewCsvSink(path string) *CsvSink {
	return &CsvSink{Path: path}
}

// Append writes one row per finding, all stamped with the same run
// timestamp.
func (s *CsvSink) Append(timestamp string, findings []Finding) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	writeHeader := false
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, fd := range findings {
		row := []string{
			timestamp,
			fd.Category,
			fd.Item,
			string(fd.Status),
			string(fd.Priority),
			fd.Details,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
