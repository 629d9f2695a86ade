package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/database"
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// EventRepository handles database operations for animal events
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and fills in its ID and timestamps
func (r *EventRepository) Create(e *models.Event) error {
	query := `
		INSERT INTO events (farm_id, animal_id, target_type, event_type, event_date, cost, next_due, notes, attachment_key, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		e.FarmID, e.AnimalID, e.TargetType, e.Type, e.Date, e.Cost, e.NextDue, e.Notes, e.AttachmentKey, e.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	e.ID = id
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()
	return nil
}

const eventColumns = `
	e.id, e.farm_id, e.animal_id, e.target_type, e.event_type, e.event_date,
	e.cost, e.next_due, e.notes, e.attachment_key, e.created_by, e.created_at, e.updated_at, a.tag
`

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var cost sql.NullFloat64
	var nextDue sql.NullTime

	err := row.Scan(
		&e.ID, &e.FarmID, &e.AnimalID, &e.TargetType, &e.Type, &e.Date,
		&cost, &nextDue, &e.Notes, &e.AttachmentKey, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt, &e.AnimalTag,
	)
	if err != nil {
		return nil, err
	}

	if cost.Valid {
		e.Cost = &cost.Float64
	}
	if nextDue.Valid {
		e.NextDue = &nextDue.Time
	}

	return &e, nil
}

// GetByID retrieves an event scoped to a farm
func (r *EventRepository) GetByID(farmID, id int64) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		INNER JOIN animals a ON e.animal_id = a.id
		WHERE e.id = ? AND e.farm_id = ?
	`
	e, err := scanEvent(r.db.QueryRow(query, id, farmID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// List retrieves a farm's events with filters, newest first
func (r *EventRepository) List(farmID int64, filter models.EventFilter) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		INNER JOIN animals a ON e.animal_id = a.id
		WHERE e.farm_id = ?
	`
	args := []interface{}{farmID}

	if len(filter.Types) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Types))
		query += " AND e.event_type IN (" + strings.TrimSuffix(placeholders, ", ") + ")"
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if filter.AnimalID > 0 {
		query += " AND e.animal_id = ?"
		args = append(args, filter.AnimalID)
	}
	if filter.From != nil {
		query += " AND e.event_date >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += " AND e.event_date <= ?"
		args = append(args, *filter.To)
	}

	query += " ORDER BY e.event_date DESC, e.id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, nil
}

// Update rewrites an event's mutable fields
func (r *EventRepository) Update(e *models.Event) error {
	query := `
		UPDATE events
		SET event_type = ?, event_date = ?, cost = ?, next_due = ?, notes = ?, attachment_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND farm_id = ?
	`
	result, err := r.db.Exec(query,
		e.Type, e.Date, e.Cost, e.NextDue, e.Notes, e.AttachmentKey, e.ID, e.FarmID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(farmID, id int64) error {
	query := "DELETE FROM events WHERE id = ? AND farm_id = ?"
	result, err := r.db.Exec(query, id, farmID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Upcoming retrieves events whose next_due falls within [from, to],
// soonest first
func (r *EventRepository) Upcoming(farmID int64, from, to time.Time) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		INNER JOIN animals a ON e.animal_id = a.id
		WHERE e.farm_id = ? AND e.next_due IS NOT NULL AND e.next_due >= ? AND e.next_due <= ?
		ORDER BY e.next_due ASC
	`
	rows, err := r.db.Query(query, farmID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, nil
}

// Statistics aggregates a farm's events, optionally bounded by date
func (r *EventRepository) Statistics(farmID int64, from, to *time.Time) (*models.EventStatistics, error) {
	query := `
		SELECT event_type, COUNT(*), COALESCE(SUM(cost), 0)
		FROM events
		WHERE farm_id = ?
	`
	args := []interface{}{farmID}

	if from != nil {
		query += " AND event_date >= ?"
		args = append(args, *from)
	}
	if to != nil {
		query += " AND event_date <= ?"
		args = append(args, *to)
	}
	query += " GROUP BY event_type"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event statistics: %w", err)
	}
	defer rows.Close()

	stats := &models.EventStatistics{
		CountByType: make(map[models.EventType]int64),
		CostByType:  make(map[models.EventType]float64),
	}
	for rows.Next() {
		var eventType models.EventType
		var count int64
		var cost float64
		if err := rows.Scan(&eventType, &count, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan event statistics: %w", err)
		}
		stats.CountByType[eventType] = count
		stats.CostByType[eventType] = cost
		stats.Total += count
		stats.TotalCost += cost
	}

	return stats, nil
}

// CountDueByFarm counts events due within [from, to] grouped by farm.
// Used by the daily reminder job.
func (r *EventRepository) CountDueByFarm(from, to time.Time) (map[int64]int64, error) {
	query := `
		SELECT farm_id, COUNT(*)
		FROM events
		WHERE next_due IS NOT NULL AND next_due >= ? AND next_due <= ?
		GROUP BY farm_id
	`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query due events: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var farmID, count int64
		if err := rows.Scan(&farmID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan due events: %w", err)
		}
		counts[farmID] = count
	}

	return counts, nil
}
