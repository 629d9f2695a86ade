package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

func TestWriteEventsCSV(t *testing.T) {
	cost := 42.5
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		{
			ID:         1,
			Date:       time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
			AnimalTag:  "COW-001",
			TargetType: models.TargetAnimal,
			Type:       models.EventVaccination,
			Cost:       &cost,
			NextDue:    &due,
			Notes:      `booster, left flank`,
		},
		{
			ID:         2,
			Date:       time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
			AnimalTag:  "LOT-A",
			TargetType: models.TargetLot,
			Type:       models.EventWeight,
		},
	}

	var buf bytes.Buffer
	if err := writeEventsCSV(&buf, events); err != nil {
		t.Fatalf("writeEventsCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	wantHeader := []string{"id", "date", "animal_tag", "target_type", "type", "cost", "next_due", "notes"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	row := records[1]
	if row[0] != "1" || row[1] != "2026-03-15" || row[2] != "COW-001" {
		t.Errorf("row 1 = %v", row)
	}
	if row[5] != "42.50" {
		t.Errorf("cost = %q, want %q", row[5], "42.50")
	}
	if row[6] != "2026-04-01" {
		t.Errorf("next_due = %q, want %q", row[6], "2026-04-01")
	}
	// The comma in the notes survives the round trip.
	if row[7] != "booster, left flank" {
		t.Errorf("notes = %q", row[7])
	}

	row = records[2]
	if row[5] != "" || row[6] != "" {
		t.Errorf("optional fields = %q/%q, want empty", row[5], row[6])
	}
}

func TestWriteCashboxCSV(t *testing.T) {
	eventID := int64(9)
	entries := []models.CashboxEntry{
		{
			ID:          1,
			EntryType:   models.EntryExpense,
			Amount:      120,
			Description: "feed delivery",
			Category:    models.CategoryFeed,
			EventID:     &eventID,
			CreatedAt:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          2,
			EntryType:   models.EntryDeposit,
			Amount:      800,
			Description: "milk sales",
			Category:    models.CategorySale,
			CreatedAt:   time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := writeCashboxCSV(&buf, entries); err != nil {
		t.Fatalf("writeCashboxCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	row := records[1]
	if row[2] != string(models.EntryExpense) || row[4] != "120.00" || row[6] != "9" {
		t.Errorf("expense row = %v", row)
	}
	row = records[2]
	if row[2] != string(models.EntryDeposit) || row[6] != "" {
		t.Errorf("deposit row = %v", row)
	}
}

func TestSetCSVHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	setCSVHeaders(rec, "farm-7-events-2026-03-15.csv")

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `"farm-7-events-2026-03-15.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestExportFilename(t *testing.T) {
	name := exportFilename(7, "cashbox")
	if !strings.HasPrefix(name, "farm-7-cashbox-") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("filename = %q", name)
	}
}
