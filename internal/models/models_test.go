package models

import (
	"testing"
	"time"
)

func TestInvitationIsAcceptable(t *testing.T) {
	tests := []struct {
		name      string
		status    InvitationStatus
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "pending and not expired",
			status:    InvitationPending,
			expiresAt: time.Now().Add(24 * time.Hour),
			want:      true,
		},
		{
			name:      "pending but expired",
			status:    InvitationPending,
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      false,
		},
		{
			name:      "already accepted",
			status:    InvitationAccepted,
			expiresAt: time.Now().Add(24 * time.Hour),
			want:      false,
		},
		{
			name:      "marked expired",
			status:    InvitationExpired,
			expiresAt: time.Now().Add(24 * time.Hour),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := FarmInvitation{
				ID:        1,
				FarmID:    1,
				Token:     "abc123",
				Email:     "new@example.com",
				Role:      RoleWorker,
				Status:    tt.status,
				ExpiresAt: tt.expiresAt,
			}
			if got := inv.IsAcceptable(); got != tt.want {
				t.Errorf("FarmInvitation.IsAcceptable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnimalTargetType(t *testing.T) {
	tests := []struct {
		name       string
		animalType AnimalType
		want       TargetType
	}{
		{
			name:       "individual animal",
			animalType: AnimalIndividual,
			want:       TargetAnimal,
		},
		{
			name:       "lot",
			animalType: AnimalLot,
			want:       TargetLot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			animal := Animal{ID: 1, FarmID: 1, Tag: "A-001", Type: tt.animalType}
			if got := animal.TargetType(); got != tt.want {
				t.Errorf("Animal.TargetType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpenseCategoryFor(t *testing.T) {
	tests := []struct {
		name      string
		eventType EventType
		want      Category
	}{
		{name: "vaccination", eventType: EventVaccination, want: CategoryVet},
		{name: "treatment", eventType: EventTreatment, want: CategoryVet},
		{name: "birth", eventType: EventBirth, want: CategoryVet},
		{name: "death", eventType: EventDeath, want: CategoryVet},
		{name: "weight", eventType: EventWeight, want: CategoryEquipment},
		{name: "sale", eventType: EventSale, want: CategoryOther},
		{name: "note", eventType: EventNote, want: CategoryOther},
		{name: "feed", eventType: EventFeed, want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpenseCategoryFor(tt.eventType); got != tt.want {
				t.Errorf("ExpenseCategoryFor(%s) = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestEventHasCost(t *testing.T) {
	cost := 50.0
	zero := 0.0
	tests := []struct {
		name string
		cost *float64
		want bool
	}{
		{name: "positive cost", cost: &cost, want: true},
		{name: "zero cost", cost: &zero, want: false},
		{name: "no cost", cost: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Event{ID: 1, FarmID: 1, Type: EventVaccination, Cost: tt.cost}
			if got := event.HasCost(); got != tt.want {
				t.Errorf("Event.HasCost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCashboxEntrySigned(t *testing.T) {
	tests := []struct {
		name      string
		entryType EntryType
		amount    float64
		want      float64
	}{
		{name: "deposit counts positive", entryType: EntryDeposit, amount: 120.50, want: 120.50},
		{name: "expense counts negative", entryType: EntryExpense, amount: 45.0, want: -45.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := CashboxEntry{ID: 1, FarmID: 1, EntryType: tt.entryType, Amount: tt.amount}
			if got := entry.Signed(); got != tt.want {
				t.Errorf("CashboxEntry.Signed() = %v, want %v", got, tt.want)
			}
		})
	}
}
