package money

import (
	"errors"
	"testing"
)

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "two decimal places", input: "150.00", want: 15000},
		{name: "no decimal places", input: "25", want: 2500},
		{name: "one decimal place", input: "9.5", want: 950},
		{name: "single cent", input: "0.01", want: 1},
		{name: "trailing zeros beyond cents", input: "1.500", want: 150},
		{name: "large amount", input: "1000000.99", want: 100000099},
		{name: "sub-cent precision", input: "1.005", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero with decimals", input: "0.00", wantErr: true},
		{name: "negative", input: "-5.00", wantErr: true},
		{name: "not a number", input: "ten dollars", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "float artifact", input: "0.1000000000000000000000001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMinorUnits(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMinorUnits(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseMinorUnits(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMinorUnits(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMinorUnits(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{input: 15000, want: "150.00"},
		{input: 1, want: "0.01"},
		{input: 0, want: "0.00"},
		{input: -250, want: "-2.50"},
		{input: 100000099, want: "1000000.99"},
	}

	for _, tt := range tests {
		if got := FormatMinorUnits(tt.input); got != tt.want {
			t.Errorf("FormatMinorUnits(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, input := range []string{"150.00", "0.01", "9.50"} {
		v, err := ParseMinorUnits(input)
		if err != nil {
			t.Fatalf("ParseMinorUnits(%q) unexpected error: %v", input, err)
		}
		if got := FormatMinorUnits(v); got != input {
			t.Errorf("round trip of %q = %q", input, got)
		}
	}
}
