package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/erazemk/assettrack/internal/model"
)

func TestSummarize(t *testing.T) {
	var assets []model.Asset
	add := func(location string, qty int) {
		assets = append(assets, model.Asset{Name: "a", Location: location, Quantity: qty})
	}
	add("Office", 1)
	add("Office", 2)
	add("Office", 3)
	add("Lab", 10)
	add("Lab", 1)
	add("Hall", 1)
	add("Attic", 1)
	add("Basement", 1)
	add("Garage", 1)

	s := Summarize(assets)
	if s.TotalAssets != 9 {
		t.Errorf("expected 9 assets, got %d", s.TotalAssets)
	}
	if s.TotalQuantity != 21 {
		t.Errorf("expected quantity 21, got %d", s.TotalQuantity)
	}

	want := []LocationCount{
		{"Office", 3},
		{"Lab", 2},
		{"Attic", 1},
		{"Basement", 1},
		{"Garage", 1},
	}
	if len(s.TopLocations) != len(want) {
		t.Fatalf("expected %d locations, got %+v", len(want), s.TopLocations)
	}
	for i, lc := range want {
		if s.TopLocations[i] != lc {
			t.Errorf("position %d: expected %+v, got %+v", i, lc, s.TopLocations[i])
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalAssets != 0 || s.TotalQuantity != 0 || s.TopLocations == nil || len(s.TopLocations) != 0 {
		t.Errorf("unexpected empty summary: %#v", s)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []model.Asset{
		{Name: "Desk, oak", SerialNumber: "D-1", Quantity: 2, Location: "Room \"A\"", RFIDCode: "X1"},
		{Name: "Lamp", SerialNumber: "L-1", Quantity: 1, Location: "Hall", RFIDCode: "X2"},
	})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatal("expected BOM prefix")
	}
	lines := strings.Split(strings.TrimPrefix(out, "\ufeff"), "\n")
	if lines[0] != "Name,Serial Number,Quantity,Location,RFID Code" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != `"Desk, oak",D-1,2,"Room ""A""",X1` {
		t.Errorf("expected quoted fields, got %q", lines[1])
	}

	// The quoted output parses back to the original fields.
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(records) != 3 || records[1][0] != "Desk, oak" || records[1][3] != `Room "A"` {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "\ufeffName,Serial Number,Quantity,Location,RFID Code\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteResultCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResultCSV(&buf, model.Result{
		Found:   []model.Asset{{Name: "A", SerialNumber: "S1", Quantity: 1, Location: "L", RFIDCode: "X1"}},
		Missing: []model.Asset{{Name: "B", SerialNumber: "S2", Quantity: 3, Location: "L", RFIDCode: "X2"}},
	})
	if err != nil {
		t.Fatalf("WriteResultCSV: %v", err)
	}

	want := "\ufeffName,Serial Number,Quantity,Location,RFID Code,Status\n" +
		"A,S1,1,L,X1,found\n" +
		"B,S2,3,L,X2,missing\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}
