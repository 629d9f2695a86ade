package models

import "time"

// EventType enumerates the kinds of occurrences that can be recorded
// against an animal or lot.
type EventType string

const (
	EventBirth       EventType = "BIRTH"
	EventVaccination EventType = "VACCINATION"
	EventTreatment   EventType = "TREATMENT"
	EventWeight      EventType = "WEIGHT"
	EventSale        EventType = "SALE"
	EventDeath       EventType = "DEATH"
	EventNote        EventType = "NOTE"
	EventFeed        EventType = "FEED"
)

// TargetType says whether an event points at an individual animal or a
// lot. It must match the target's AnimalType.
type TargetType string

const (
	TargetAnimal TargetType = "ANIMAL"
	TargetLot    TargetType = "LOT"
)

// Event represents a timestamped occurrence against an animal or lot,
// optionally carrying a cost that feeds the cashbox.
type Event struct {
	ID            int64
	FarmID        int64
	AnimalID      int64
	TargetType    TargetType
	Type          EventType
	Date          time.Time
	Cost          *float64
	NextDue       *time.Time
	Notes         string
	AttachmentKey string
	CreatedBy     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AnimalTag     string // Populated via JOIN
}

// HasCost reports whether the event carries a positive cost.
func (e *Event) HasCost() bool {
	return e.Cost != nil && *e.Cost > 0
}

// EventFilter narrows event listings. Zero values mean "any".
type EventFilter struct {
	Types    []EventType
	AnimalID int64
	From     *time.Time
	To       *time.Time
	Limit    int
}

// EventStatistics aggregates a farm's events over a date range.
type EventStatistics struct {
	Total       int64
	TotalCost   float64
	CountByType map[EventType]int64
	CostByType  map[EventType]float64
}
