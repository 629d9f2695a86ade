package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

func newTestEventService() (*EventService, *fakeEventStore, *fakeAnimalStore, *fakeCashboxStore) {
	events := newFakeEventStore()
	animals := newFakeAnimalStore()
	cashbox := newFakeCashboxStore()
	return NewEventService(events, animals, cashbox, nil), events, animals, cashbox
}

func seedAnimal(t *testing.T, animals *fakeAnimalStore, farmID int64, tag string, typ models.AnimalType) *models.Animal {
	t.Helper()
	a := &models.Animal{
		FarmID:  farmID,
		Tag:     tag,
		Type:    typ,
		Species: "cattle",
		Sex:     models.SexFemale,
		Status:  models.AnimalActive,
	}
	if typ == models.AnimalLot {
		count := 12
		a.LotCount = &count
	}
	if err := animals.Create(a); err != nil {
		t.Fatalf("seed animal: %v", err)
	}
	return a
}

func costPtr(v float64) *float64 { return &v }

func TestCreateEventCashboxSideEffect(t *testing.T) {
	tests := []struct {
		name         string
		eventType    models.EventType
		cost         *float64
		category     models.Category
		wantEntry    bool
		wantCategory models.Category
	}{
		{
			name:         "vaccination with cost maps to vet",
			eventType:    models.EventVaccination,
			cost:         costPtr(50),
			wantEntry:    true,
			wantCategory: models.CategoryVet,
		},
		{
			name:         "treatment with cost maps to vet",
			eventType:    models.EventTreatment,
			cost:         costPtr(120.5),
			wantEntry:    true,
			wantCategory: models.CategoryVet,
		},
		{
			name:         "weight with cost maps to equipment",
			eventType:    models.EventWeight,
			cost:         costPtr(10),
			wantEntry:    true,
			wantCategory: models.CategoryEquipment,
		},
		{
			name:         "sale with cost maps to other",
			eventType:    models.EventSale,
			cost:         costPtr(30),
			wantEntry:    true,
			wantCategory: models.CategoryOther,
		},
		{
			name:         "explicit category wins over the mapping",
			eventType:    models.EventVaccination,
			cost:         costPtr(75),
			category:     models.CategoryLabor,
			wantEntry:    true,
			wantCategory: models.CategoryLabor,
		},
		{
			name:      "no cost, no entry",
			eventType: models.EventNote,
			wantEntry: false,
		},
		{
			name:      "zero cost, no entry",
			eventType: models.EventTreatment,
			cost:      costPtr(0),
			wantEntry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, animals, cashbox := newTestEventService()
			animal := seedAnimal(t, animals, 1, "A-17", models.AnimalIndividual)

			event, err := svc.CreateEvent(1, 9, EventInput{
				AnimalID:   animal.ID,
				TargetType: models.TargetAnimal,
				Type:       tt.eventType,
				Date:       time.Now(),
				Cost:       tt.cost,
				Category:   tt.category,
			})
			if err != nil {
				t.Fatalf("CreateEvent() error = %v", err)
			}

			if !tt.wantEntry {
				if len(cashbox.entries) != 0 {
					t.Fatalf("cashbox entries = %d, want 0", len(cashbox.entries))
				}
				return
			}

			if len(cashbox.entries) != 1 {
				t.Fatalf("cashbox entries = %d, want exactly 1", len(cashbox.entries))
			}
			var entry *models.CashboxEntry
			for _, e := range cashbox.entries {
				entry = e
			}
			if entry.EntryType != models.EntryExpense {
				t.Errorf("entry type = %q, want EXPENSE", entry.EntryType)
			}
			if entry.Amount != *tt.cost {
				t.Errorf("amount = %v, want %v", entry.Amount, *tt.cost)
			}
			if entry.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", entry.Category, tt.wantCategory)
			}
			if entry.EventID == nil || *entry.EventID != event.ID {
				t.Errorf("entry event reference = %v, want %d", entry.EventID, event.ID)
			}
			if entry.CreatedBy != 9 {
				t.Errorf("entry created by = %d, want 9", entry.CreatedBy)
			}
		})
	}
}

func TestCreateEventExpenseDescription(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  string
	}{
		{
			name:  "with note",
			notes: "ivermectin shot",
			want:  "VACCINATION: ivermectin shot (A-17)",
		},
		{
			name: "without note",
			want: "VACCINATION (A-17)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, animals, cashbox := newTestEventService()
			animal := seedAnimal(t, animals, 1, "A-17", models.AnimalIndividual)

			_, err := svc.CreateEvent(1, 9, EventInput{
				AnimalID:   animal.ID,
				TargetType: models.TargetAnimal,
				Type:       models.EventVaccination,
				Date:       time.Now(),
				Cost:       costPtr(50),
				Notes:      tt.notes,
			})
			if err != nil {
				t.Fatalf("CreateEvent() error = %v", err)
			}

			for _, entry := range cashbox.entries {
				if entry.Description != tt.want {
					t.Errorf("description = %q, want %q", entry.Description, tt.want)
				}
			}
		})
	}
}

func TestCreateEventTargetTypeMismatch(t *testing.T) {
	tests := []struct {
		name       string
		animalType models.AnimalType
		claimed    models.TargetType
	}{
		{
			name:       "lot target against an individual",
			animalType: models.AnimalIndividual,
			claimed:    models.TargetLot,
		},
		{
			name:       "animal target against a lot",
			animalType: models.AnimalLot,
			claimed:    models.TargetAnimal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events, animals, cashbox := newTestEventService()
			animal := seedAnimal(t, animals, 1, "L-3", tt.animalType)

			_, err := svc.CreateEvent(1, 9, EventInput{
				AnimalID:   animal.ID,
				TargetType: tt.claimed,
				Type:       models.EventTreatment,
				Date:       time.Now(),
				Cost:       costPtr(40),
			})
			if !errors.Is(err, ErrTargetTypeMismatch) {
				t.Fatalf("CreateEvent() error = %v, want ErrTargetTypeMismatch", err)
			}
			if len(events.events) != 0 {
				t.Errorf("events persisted = %d, want 0", len(events.events))
			}
			if len(cashbox.entries) != 0 {
				t.Errorf("cashbox entries = %d, want 0", len(cashbox.entries))
			}
		})
	}
}

func TestCreateEventUnknownAnimal(t *testing.T) {
	svc, events, animals, _ := newTestEventService()
	seedAnimal(t, animals, 2, "other-farm", models.AnimalIndividual)

	_, err := svc.CreateEvent(1, 9, EventInput{
		AnimalID:   1,
		TargetType: models.TargetAnimal,
		Type:       models.EventBirth,
		Date:       time.Now(),
	})
	if !errors.Is(err, ErrAnimalNotFound) {
		t.Fatalf("CreateEvent() error = %v, want ErrAnimalNotFound", err)
	}
	if len(events.events) != 0 {
		t.Errorf("events persisted = %d, want 0", len(events.events))
	}
}

func TestCreateEventCashboxFailureSwallowed(t *testing.T) {
	svc, events, animals, cashbox := newTestEventService()
	animal := seedAnimal(t, animals, 1, "A-1", models.AnimalIndividual)
	cashbox.createErr = errors.New("ledger write refused")

	event, err := svc.CreateEvent(1, 9, EventInput{
		AnimalID:   animal.ID,
		TargetType: models.TargetAnimal,
		Type:       models.EventTreatment,
		Date:       time.Now(),
		Cost:       costPtr(200),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v, want nil despite cashbox failure", err)
	}
	if event == nil || event.ID == 0 {
		t.Fatal("event was not persisted")
	}
	if len(events.events) != 1 {
		t.Errorf("events persisted = %d, want 1", len(events.events))
	}
	if len(cashbox.entries) != 0 {
		t.Errorf("cashbox entries = %d, want 0", len(cashbox.entries))
	}
}

func TestCreateEventValidation(t *testing.T) {
	tests := []struct {
		name  string
		input EventInput
	}{
		{
			name: "missing animal",
			input: EventInput{
				TargetType: models.TargetAnimal,
				Type:       models.EventBirth,
				Date:       time.Now(),
			},
		},
		{
			name: "unknown target type",
			input: EventInput{
				AnimalID:   1,
				TargetType: "HERD",
				Type:       models.EventBirth,
				Date:       time.Now(),
			},
		},
		{
			name: "unknown event type",
			input: EventInput{
				AnimalID:   1,
				TargetType: models.TargetAnimal,
				Type:       "SHEARING",
				Date:       time.Now(),
			},
		},
		{
			name: "missing date",
			input: EventInput{
				AnimalID:   1,
				TargetType: models.TargetAnimal,
				Type:       models.EventBirth,
			},
		},
		{
			name: "negative cost",
			input: EventInput{
				AnimalID:   1,
				TargetType: models.TargetAnimal,
				Type:       models.EventBirth,
				Date:       time.Now(),
				Cost:       costPtr(-5),
			},
		},
		{
			name: "follow-up before the event",
			input: EventInput{
				AnimalID:   1,
				TargetType: models.TargetAnimal,
				Type:       models.EventVaccination,
				Date:       time.Now(),
				NextDue:    timePtr(time.Now().AddDate(0, 0, -3)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events, animals, _ := newTestEventService()
			seedAnimal(t, animals, 1, "A-1", models.AnimalIndividual)

			_, err := svc.CreateEvent(1, 9, tt.input)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("CreateEvent() error = %v, want a validation error", err)
			}
			if len(events.events) != 0 {
				t.Errorf("events persisted = %d, want 0", len(events.events))
			}
		})
	}
}

func timePtr(ts time.Time) *time.Time { return &ts }

func TestListEventsLimitClamp(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero becomes the default", limit: 0, want: 50},
		{name: "negative becomes the default", limit: -4, want: 50},
		{name: "oversized is capped", limit: 5000, want: 200},
		{name: "in range passes through", limit: 25, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events, _, _ := newTestEventService()
			if _, err := svc.ListEvents(1, models.EventFilter{Limit: tt.limit}); err != nil {
				t.Fatalf("ListEvents() error = %v", err)
			}
			if events.lastFilter.Limit != tt.want {
				t.Errorf("limit = %d, want %d", events.lastFilter.Limit, tt.want)
			}
		})
	}
}

func TestListEventsRejectsUnknownType(t *testing.T) {
	svc, _, _, _ := newTestEventService()
	_, err := svc.ListEvents(1, models.EventFilter{Types: []models.EventType{"SHEARING"}})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("ListEvents() error = %v, want a validation error", err)
	}
}

func TestUpdateEventLeavesCashboxAlone(t *testing.T) {
	svc, _, animals, cashbox := newTestEventService()
	animal := seedAnimal(t, animals, 1, "A-2", models.AnimalIndividual)

	event, err := svc.CreateEvent(1, 9, EventInput{
		AnimalID:   animal.ID,
		TargetType: models.TargetAnimal,
		Type:       models.EventTreatment,
		Date:       time.Now(),
		Cost:       costPtr(80),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if len(cashbox.entries) != 1 {
		t.Fatalf("cashbox entries after create = %d, want 1", len(cashbox.entries))
	}

	updated, err := svc.UpdateEvent(1, event.ID, EventInput{
		Type: models.EventTreatment,
		Date: event.Date,
		Cost: costPtr(999),
	})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if updated.Cost == nil || *updated.Cost != 999 {
		t.Errorf("updated cost = %v, want 999", updated.Cost)
	}

	if len(cashbox.entries) != 1 {
		t.Fatalf("cashbox entries after update = %d, want still 1", len(cashbox.entries))
	}
	for _, entry := range cashbox.entries {
		if entry.Amount != 80 {
			t.Errorf("ledger amount = %v, want the original 80", entry.Amount)
		}
	}
}

func TestUpcomingWindow(t *testing.T) {
	svc, _, animals, _ := newTestEventService()
	animal := seedAnimal(t, animals, 1, "A-3", models.AnimalIndividual)

	mustCreate := func(nextDue *time.Time) {
		t.Helper()
		_, err := svc.CreateEvent(1, 9, EventInput{
			AnimalID:   animal.ID,
			TargetType: models.TargetAnimal,
			Type:       models.EventVaccination,
			Date:       time.Now(),
			NextDue:    nextDue,
		})
		if err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}
	}

	mustCreate(timePtr(time.Now().AddDate(0, 0, 3)))
	mustCreate(timePtr(time.Now().AddDate(0, 0, 30)))
	mustCreate(nil)

	due, err := svc.Upcoming(1, 0)
	if err != nil {
		t.Fatalf("Upcoming() error = %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("upcoming within default window = %d, want 1", len(due))
	}

	due, err = svc.Upcoming(1, 60)
	if err != nil {
		t.Fatalf("Upcoming() error = %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("upcoming within 60 days = %d, want 2", len(due))
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	svc, _, _, _ := newTestEventService()
	if err := svc.DeleteEvent(1, 42); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("DeleteEvent() error = %v, want ErrEventNotFound", err)
	}
}
