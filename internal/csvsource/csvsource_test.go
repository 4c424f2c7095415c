package csvsource

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
)

var defaults = Options{DefaultFirstName: "John", DefaultLastName: "Doe"}

func TestRead_PhoneOnlyRows(t *testing.T) {
	// Given a phone-only source
	src := "0123456789\n1234567890\n+0123456789\n"

	// When it is read
	rows, err := Read(strings.NewReader(src), defaults)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// Then names come from the defaults
	if got := PhoneNumbers(rows); !slices.Equal(got, []string{"0123456789", "1234567890", "+0123456789"}) {
		t.Errorf("PhoneNumbers() = %v", got)
	}
	for _, r := range rows {
		if r.FirstName != "John" || r.LastName != "Doe" {
			t.Errorf("row %d names = %q %q, want John Doe", r.Line, r.FirstName, r.LastName)
		}
	}
	if rows[2].Line != 3 {
		t.Errorf("rows[2].Line = %d, want 3", rows[2].Line)
	}
}

func TestRead_MixedWidthsCommentsAndBlanks(t *testing.T) {
	src := "# header comment\n\nJane, Smith , +44 20 7946 0958\n 0123456789 \n"

	rows, err := Read(strings.NewReader(src), defaults)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := Row{Line: 3, FirstName: "Jane", LastName: "Smith", PhoneNumber: "+44 20 7946 0958"}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
	if rows[1].PhoneNumber != "0123456789" || rows[1].Line != 4 {
		t.Errorf("rows[1] = %+v, want trimmed phone on line 4", rows[1])
	}
}

func TestRead_HasHeader(t *testing.T) {
	src := "first,last,phone\nJohn,Hernandez,0123456789\n"

	rows, err := Read(strings.NewReader(src), Options{HasHeader: true})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 || rows[0].LastName != "Hernandez" {
		t.Errorf("rows = %+v, want only John Hernandez", rows)
	}
}

func TestRead_EmptyFieldsPassThrough(t *testing.T) {
	// Validation belongs to the store; the reader keeps empty fields.
	rows, err := Read(strings.NewReader("John,,0123456789\n"), defaults)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 || rows[0].LastName != "" {
		t.Errorf("rows = %+v, want one row with empty last name", rows)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantIs   error
	}{
		{name: "two columns", src: "0123456789\nJohn,0123456789\n", wantLine: 2, wantIs: ErrColumnCount},
		{name: "four columns", src: "a,b,c,d\n", wantLine: 1, wantIs: ErrColumnCount},
		{name: "bare quote", src: "0123456789\n01\"23\n", wantLine: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src), defaults)

			var re *RowError
			if !errors.As(err, &re) {
				t.Fatalf("Read() error = %v, want *RowError", err)
			}
			if re.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", re.Line, tt.wantLine)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	fsys := fstest.MapFS{
		"data.csv": &fstest.MapFile{Data: []byte("0123456789\n")},
	}

	rows, err := ReadFile(fsys, "data.csv", defaults)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1", len(rows))
	}

	if _, err := ReadFile(fsys, "missing.csv", defaults); err == nil {
		t.Error("ReadFile(missing) should return error")
	}
}
