package csv_test

import (
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestSnifferDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		sample   string
		expected rune
	}{
		{"comma delimited", "a,b,c\n1,2,3\n4,5,6", ','},
		{"tab delimited", "a\tb\tc\n1\t2\t3\n4\t5\t6", '\t'},
		{"semicolon delimited", "a;b;c\n1;2;3\n4;5;6", ';'},
		{"pipe delimited", "a|b|c\n1|2|3\n4|5|6", '|'},
		{"empty sample defaults to comma", "", ','},
		{"single line comma", "a,b,c", ','},
		{"mixed but more commas", "a,b,c\n1,2,3\n4;5;6", ','},
		{"commas inside quotes ignored", "\"x,y\";z\n\"1,2\";3\n", ';'},
		{"sample cut inside quoted field", "a|b\n1|2\n3|\"unfinished", '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := csv.NewSniffer(tt.sample)
			if got := s.DetectDelimiter(); got != tt.expected {
				t.Errorf("DetectDelimiter() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSnifferDialect_Quote(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   csv.Dialect
	}{
		{"double quotes", "\"a,b\",c\n\"d,e\",f\n", csv.Dialect{Delimiter: ',', Quote: '"'}},
		{"single quotes needed", "'a;b',c\n'd\ne',f\n", csv.Dialect{Delimiter: ',', Quote: '\''}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv.NewSniffer(tt.sample).Dialect(); got != tt.want {
				t.Errorf("Dialect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSnifferHasHeader(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   bool
	}{
		{"identifier headers", "name,age,email\nAlice,30,alice@example.com\n", true},
		{"title case headers", "First Name,Last Name\nAda,Lovelace\n", true},
		{"numeric first row", "1,2,3\n4,5,6\n", false},
		{"dates first row", "2024-01-01,10\n2024-01-02,11\n", false},
		{"single row", "name,age", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv.NewSniffer(tt.sample).HasHeader(); got != tt.want {
				t.Errorf("HasHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}
