package models

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-15", "2025-01-15"},
		{"15/01/2025", "2025-01-15"},
		{"15-01-2025", "2025-01-15"},
		{"15.01.2025", "2025-01-15"},
		{"2025-01-15 10:30:00", "2025-01-15"},
		{"  2025-01-15  ", "2025-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}
			if d.String() != tt.want {
				t.Errorf("got %q, want %q", d.String(), tt.want)
			}
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{"", "not a date", "2025/13/45"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q): expected error", in)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-06-30")
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2025-06-30"` {
		t.Errorf("marshaled = %s, want %q", data, `"2025-06-30"`)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.String() != d.String() {
		t.Errorf("round trip = %q, want %q", back.String(), d.String())
	}
}

func TestTransactionValidate(t *testing.T) {
	valid, _ := ParseDate("2025-01-01")

	tests := []struct {
		name    string
		txn     Transaction
		wantErr bool
	}{
		{
			"valid debit",
			Transaction{Date: valid, Description: "x", Amount: 100, Type: TypeDebit},
			false,
		},
		{
			"valid credit",
			Transaction{Date: valid, Description: "x", Amount: 100, Type: TypeCredit},
			false,
		},
		{
			"zero date",
			Transaction{Description: "x", Amount: 100, Type: TypeDebit},
			true,
		},
		{
			"malformed type",
			Transaction{Date: valid, Description: "x", Amount: 100, Type: "transfer"},
			true,
		},
		{
			"negative magnitude",
			Transaction{Date: valid, Description: "x", Amount: -5, Type: TypeDebit},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDisplayCategory(t *testing.T) {
	withCategory := CategorizedTransaction{Category: "Groceries"}
	if got := withCategory.DisplayCategory(); got != "Groceries" {
		t.Errorf("got %q", got)
	}

	empty := CategorizedTransaction{}
	if got := empty.DisplayCategory(); got != Uncategorized {
		t.Errorf("got %q, want %q", got, Uncategorized)
	}
}
