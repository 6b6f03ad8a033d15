package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/finbatch/finbatch/internal/layout"
)

// Well-known column names. URL columns come from the category table.
const (
	ColumnRecordID = "record_id"
	ColumnDate     = "dt"
)

// ErrEmpty is returned when the input has no header row.
var ErrEmpty = errors.New("manifest: input has no header row")

// MissingColumnError is returned when a required column is absent from the
// header. The whole input is rejected before any download is attempted.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("manifest: missing required column %q", e.Column)
}

// Row is one accepted manifest row.
type Row struct {
	// Line is the 1-based line number in the input, header included.
	Line int

	// RecordID identifies the record the documents belong to.
	RecordID string

	// Date is the record's effective date, parsed from the dt column.
	Date time.Time

	// URLs maps category name to the URL found in that category's column.
	// Categories with an empty cell are absent from the map.
	URLs map[string]string
}

// RejectedRow records a row that was rejected before any download attempt.
type RejectedRow struct {
	Line     int
	RecordID string
	Reason   string
}

// Manifest is the parsed input: accepted rows plus pre-download rejections.
type Manifest struct {
	Rows     []Row
	Rejected []RejectedRow
}

// dateLayouts are the accepted formats for the dt column.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses a dt cell value.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("manifest: unparseable date %q", s)
}

// Parse reads a CSV manifest. Headers are matched case-insensitively after
// trimming. The record_id and dt columns plus one URL column per category are
// required; a missing column fails the parse with a *MissingColumnError.
// Rows with an empty record_id, an unparseable date, or a malformed record
// are returned in Rejected rather than failing the parse.
func Parse(r io.Reader, cats []layout.Category) (*Manifest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	required := []string{ColumnRecordID, ColumnDate}
	for _, cat := range cats {
		required = append(required, cat.Column)
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, &MissingColumnError{Column: col}
		}
	}

	m := &Manifest{}
	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			m.Rejected = append(m.Rejected, RejectedRow{
				Line:   line,
				Reason: fmt.Sprintf("malformed record: %v", err),
			})
			continue
		}

		cell := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		recordID := cell(ColumnRecordID)
		if recordID == "" {
			m.Rejected = append(m.Rejected, RejectedRow{
				Line:   line,
				Reason: "empty record_id",
			})
			continue
		}

		date, err := ParseDate(cell(ColumnDate))
		if err != nil {
			m.Rejected = append(m.Rejected, RejectedRow{
				Line:     line,
				RecordID: recordID,
				Reason:   err.Error(),
			})
			continue
		}

		urls := make(map[string]string)
		for _, cat := range cats {
			if v := cell(cat.Column); v != "" {
				urls[cat.Name] = v
			}
		}

		m.Rows = append(m.Rows, Row{
			Line:     line,
			RecordID: recordID,
			Date:     date,
			URLs:     urls,
		})
	}

	return m, nil
}
