package csv_test

import (
	"reflect"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestDocument_Build(t *testing.T) {
	doc := csv.NewDocument().
		SetHeaders([]string{"name", "age"}).
		AddRecord([]string{"Alice", "30"}).
		AddRecord([]string{"Bob", "25"})

	if doc.RecordCount() != 2 {
		t.Fatalf("RecordCount() = %d, want 2", doc.RecordCount())
	}
	rec, ok := doc.GetRecord(1)
	if !ok {
		t.Fatal("GetRecord(1) not found")
	}
	if age, ok := rec.GetByName("age"); !ok || age != "25" {
		t.Errorf(`GetByName("age") = %q, %v`, age, ok)
	}
	if _, ok := rec.GetByName("missing"); ok {
		t.Error(`GetByName("missing") should fail`)
	}
	if _, ok := doc.GetRecord(2); ok {
		t.Error("GetRecord(2) should be out of bounds")
	}

	out, err := doc.CSV()
	if err != nil {
		t.Fatal(err)
	}
	if want := "name,age\nAlice,30\nBob,25\n"; out != want {
		t.Errorf("CSV() = %q, want %q", out, want)
	}
}

func TestParseDocumentWithDialect(t *testing.T) {
	doc, err := csv.ParseDocumentWithDialect("name;city\nAnn;\"Paris; FR\"\n", csv.Dialect{Delimiter: ';', Quote: '"'})
	if err != nil {
		t.Fatal(err)
	}
	doc.UseFirstRowAsHeaders()

	if got := doc.Headers(); !reflect.DeepEqual(got, []string{"name", "city"}) {
		t.Errorf("Headers() = %q", got)
	}
	rec, _ := doc.GetRecord(0)
	if city, _ := rec.GetByName("city"); city != "Paris; FR" {
		t.Errorf("city = %q", city)
	}

	out, err := doc.CSV()
	if err != nil {
		t.Fatal(err)
	}
	if want := "name;city\nAnn;\"Paris; FR\"\n"; out != want {
		t.Errorf("CSV() = %q, want %q", out, want)
	}
}

func TestParseDocument_Error(t *testing.T) {
	if _, err := csv.ParseDocument(`"open`); err == nil {
		t.Fatal("ParseDocument() with unclosed quote succeeded")
	}
}

func TestDocument_ASTRoundTrip(t *testing.T) {
	doc := csv.NewDocument().
		SetHeaders([]string{"k", "v"}).
		AddRecord([]string{"a", "1"})

	node, err := doc.ToAST()
	if err != nil {
		t.Fatal(err)
	}
	back, err := csv.FromAST(node)
	if err != nil {
		t.Fatal(err)
	}
	if back.RecordCount() != 2 {
		t.Errorf("RecordCount() = %d, want 2", back.RecordCount())
	}
	if _, err := csv.FromAST(nil); err == nil {
		t.Error("FromAST(nil) should fail")
	}
}

func TestRecord_Fields(t *testing.T) {
	doc := csv.NewDocument().AddRecord([]string{"x", "y"})
	rec, _ := doc.GetRecord(0)

	fields := rec.Fields()
	fields[0] = "changed"
	if v, _ := rec.Get(0); v != "x" {
		t.Errorf("Fields() should return a copy, Get(0) = %q", v)
	}
	if rec.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rec.Len())
	}
	if _, ok := rec.Get(-1); ok {
		t.Error("Get(-1) should fail")
	}
}
