// Package csvsource reads contact rows from comma-separated text.
//
// A record has either one column (a phone number, with names taken from
// Options) or three columns (first name, last name, phone number). Lines
// starting with '#' are comments and blank lines are skipped.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// ErrColumnCount indicates a record that has neither one nor three columns.
var ErrColumnCount = errors.New("csvsource: expected 1 or 3 columns")

// Row is one contact candidate read from the source. Fields are not validated.
type Row struct {
	Line        int
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Options configures how records map to rows.
type Options struct {
	HasHeader        bool   // Skip the first record.
	DefaultFirstName string // Used for phone-only records.
	DefaultLastName  string // Used for phone-only records.
}

// RowError reports a malformed record and the line it started on.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("csvsource: line %d: %s", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Read parses all records from r. It stops at the first malformed record.
func Read(r io.Reader, opts Options) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []Row
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RowError{Line: pe.StartLine, Err: pe.Err}
			}
			return nil, fmt.Errorf("csvsource: reading: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if first && opts.HasHeader {
			first = false
			continue
		}
		first = false

		row, err := toRow(rec, opts)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile opens name in fsys and parses it with Read.
func ReadFile(fsys fs.FS, name string, opts Options) ([]Row, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("csvsource: opening %s: %w", name, err)
	}
	defer f.Close()

	rows, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

// PhoneNumbers returns the phone number column of rows, in order.
func PhoneNumbers(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PhoneNumber
	}
	return out
}

func toRow(rec []string, opts Options) (Row, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	switch len(rec) {
	case 1:
		return Row{
			FirstName:   opts.DefaultFirstName,
			LastName:    opts.DefaultLastName,
			PhoneNumber: rec[0],
		}, nil
	case 3:
		return Row{FirstName: rec[0], LastName: rec[1], PhoneNumber: rec[2]}, nil
	default:
		return Row{}, fmt.Errorf("%w, got %d", ErrColumnCount, len(rec))
	}
}
