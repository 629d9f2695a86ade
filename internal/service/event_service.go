package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTargetTypeMismatch = errors.New("target type does not match the animal's kind")
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200

	defaultUpcomingDays = 7
	maxUpcomingDays     = 365
)

// EventStore is the event persistence surface the event service
// depends on.
type EventStore interface {
	Create(e *models.Event) error
	GetByID(farmID, id int64) (*models.Event, error)
	List(farmID int64, filter models.EventFilter) ([]models.Event, error)
	Update(e *models.Event) error
	Delete(farmID, id int64) error
	Upcoming(farmID int64, from, to time.Time) ([]models.Event, error)
	Statistics(farmID int64, from, to *time.Time) (*models.EventStatistics, error)
}

// EventInput carries the caller-editable fields of an event.
type EventInput struct {
	AnimalID      int64
	TargetType    models.TargetType
	Type          models.EventType
	Date          time.Time
	Cost          *float64
	NextDue       *time.Time
	Notes         string
	AttachmentKey string
	// Category overrides the derived cashbox category for costed events.
	Category models.Category
}

// EventService handles event business logic, including the cashbox
// side effect of costed events.
type EventService struct {
	events  EventStore
	animals AnimalStore
	cashbox CashboxStore
	log     *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(events EventStore, animals AnimalStore, cashbox CashboxStore, log *zap.Logger) *EventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{
		events:  events,
		animals: animals,
		cashbox: cashbox,
		log:     log,
	}
}

// CreateEvent records an event against an animal or lot. Nothing is
// written until the target is resolved and its kind matches the claimed
// target type. A positive cost additionally appends a cashbox expense;
// that write is best-effort and its failure never undoes the event.
func (s *EventService) CreateEvent(farmID, userID int64, in EventInput) (*models.Event, error) {
	if err := validateEventInput(&in); err != nil {
		return nil, err
	}
	if in.Category != "" {
		if err := validation.ValidateCategory(in.Category); err != nil {
			return nil, err
		}
	}

	animal, err := s.animals.GetByID(farmID, in.AnimalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target animal: %w", err)
	}
	if animal == nil {
		return nil, ErrAnimalNotFound
	}
	if in.TargetType != animal.TargetType() {
		return nil, ErrTargetTypeMismatch
	}

	event := &models.Event{
		FarmID:        farmID,
		AnimalID:      animal.ID,
		TargetType:    in.TargetType,
		Type:          in.Type,
		Date:          in.Date,
		Cost:          in.Cost,
		NextDue:       in.NextDue,
		Notes:         in.Notes,
		AttachmentKey: in.AttachmentKey,
		CreatedBy:     userID,
		AnimalTag:     animal.Tag,
	}
	if err := s.events.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if event.HasCost() {
		s.recordExpense(event, animal, in.Category, userID)
	}

	return event, nil
}

// recordExpense appends the derived cashbox entry for a costed event.
// The event is the source of truth and the ledger entry a convenience,
// so a failure here is logged and swallowed.
func (s *EventService) recordExpense(event *models.Event, animal *models.Animal, category models.Category, userID int64) {
	if category == "" {
		category = models.ExpenseCategoryFor(event.Type)
	}

	entry := &models.CashboxEntry{
		FarmID:      event.FarmID,
		EntryType:   models.EntryExpense,
		Amount:      *event.Cost,
		Description: expenseDescription(event, animal),
		Category:    category,
		EventID:     &event.ID,
		CreatedBy:   userID,
	}
	if err := s.cashbox.Create(entry); err != nil {
		s.log.Warn("cashbox entry for event failed",
			zap.Int64("farm_id", event.FarmID),
			zap.Int64("event_id", event.ID),
			zap.Error(err))
	}
}

func expenseDescription(event *models.Event, animal *models.Animal) string {
	desc := string(event.Type)
	if event.Notes != "" {
		desc = fmt.Sprintf("%s: %s", event.Type, event.Notes)
	}
	return fmt.Sprintf("%s (%s)", desc, animal.Tag)
}

// GetEvent retrieves an event scoped to a farm.
func (s *EventService) GetEvent(farmID, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(farmID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// ListEvents retrieves a farm's events newest-first. The limit is
// clamped to 1..200 with a default of 50.
func (s *EventService) ListEvents(farmID int64, filter models.EventFilter) ([]models.Event, error) {
	for _, t := range filter.Types {
		if err := validation.ValidateEventType(t); err != nil {
			return nil, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultEventLimit
	}
	if filter.Limit > maxEventLimit {
		filter.Limit = maxEventLimit
	}

	events, err := s.events.List(farmID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEvent changes an event's editable fields. The target binding is
// fixed at creation, and an earlier cashbox entry is deliberately left
// untouched: the ledger records what was spent at the time.
func (s *EventService) UpdateEvent(farmID, id int64, in EventInput) (*models.Event, error) {
	event, err := s.GetEvent(farmID, id)
	if err != nil {
		return nil, err
	}

	in.AnimalID = event.AnimalID
	in.TargetType = event.TargetType
	if err := validateEventInput(&in); err != nil {
		return nil, err
	}

	event.Type = in.Type
	event.Date = in.Date
	event.Cost = in.Cost
	event.NextDue = in.NextDue
	event.Notes = in.Notes
	event.AttachmentKey = in.AttachmentKey

	if err := s.events.Update(event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// DeleteEvent removes an event. A cashbox entry derived from it keeps
// the spent amount and drops its event reference at the schema level.
func (s *EventService) DeleteEvent(farmID, id int64) error {
	if err := s.events.Delete(farmID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Upcoming retrieves events whose follow-up falls within the next N
// days, soonest first. Days defaults to 7.
func (s *EventService) Upcoming(farmID int64, days int) ([]models.Event, error) {
	if days <= 0 {
		days = defaultUpcomingDays
	}
	if days > maxUpcomingDays {
		days = maxUpcomingDays
	}

	now := time.Now()
	events, err := s.events.Upcoming(farmID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

// Export retrieves every event of a farm without a listing limit, for
// CSV export.
func (s *EventService) Export(farmID int64) ([]models.Event, error) {
	events, err := s.events.List(farmID, models.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to export events: %w", err)
	}
	return events, nil
}

// Statistics aggregates event counts and costs, optionally bounded by
// a date window.
func (s *EventService) Statistics(farmID int64, from, to *time.Time) (*models.EventStatistics, error) {
	stats, err := s.events.Statistics(farmID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute event statistics: %w", err)
	}
	return stats, nil
}

func validateEventInput(in *EventInput) error {
	if in.AnimalID <= 0 {
		return &validation.Error{Field: "animal_id", Message: "target animal is required"}
	}
	if err := validation.ValidateTargetType(in.TargetType); err != nil {
		return err
	}
	if err := validation.ValidateEventType(in.Type); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return &validation.Error{Field: "date", Message: "date is required"}
	}
	if in.Cost != nil && *in.Cost < 0 {
		return &validation.Error{Field: "cost", Message: "cost cannot be negative"}
	}
	if in.NextDue != nil && in.NextDue.Before(in.Date) {
		return &validation.Error{Field: "next_due", Message: "follow-up cannot predate the event"}
	}
	return nil
}
