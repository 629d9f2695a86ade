package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/database"
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// CashboxRepository handles database operations for cashbox entries
type CashboxRepository struct {
	db *database.DB
}

// NewCashboxRepository creates a new cashbox repository
func NewCashboxRepository(db *database.DB) *CashboxRepository {
	return &CashboxRepository{db: db}
}

// Create inserts a new cashbox entry and fills in its ID
func (r *CashboxRepository) Create(entry *models.CashboxEntry) error {
	query := `
		INSERT INTO cashbox_entries (farm_id, entry_type, amount, description, category, event_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		entry.FarmID, entry.EntryType, entry.Amount, entry.Description, entry.Category, entry.EventID, entry.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create cashbox entry: %w", err)
	}

	entry.ID = id
	entry.CreatedAt = time.Now()
	return nil
}

const cashboxColumns = `
	id, farm_id, entry_type, amount, description, category, event_id, created_by, created_at
`

func scanCashboxEntry(row rowScanner) (*models.CashboxEntry, error) {
	var entry models.CashboxEntry
	var eventID sql.NullInt64

	err := row.Scan(
		&entry.ID, &entry.FarmID, &entry.EntryType, &entry.Amount,
		&entry.Description, &entry.Category, &eventID, &entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if eventID.Valid {
		entry.EventID = &eventID.Int64
	}

	return &entry, nil
}

// GetByID retrieves an entry scoped to a farm
func (r *CashboxRepository) GetByID(farmID, id int64) (*models.CashboxEntry, error) {
	query := "SELECT " + cashboxColumns + " FROM cashbox_entries WHERE id = ? AND farm_id = ?"
	entry, err := scanCashboxEntry(r.db.QueryRow(query, id, farmID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cashbox entry: %w", err)
	}
	return entry, nil
}

// List retrieves a farm's entries with filters, newest first
func (r *CashboxRepository) List(farmID int64, filter models.CashboxFilter) ([]models.CashboxEntry, error) {
	query := "SELECT " + cashboxColumns + " FROM cashbox_entries WHERE farm_id = ?"
	args := []interface{}{farmID}

	if filter.EntryType != "" {
		query += " AND entry_type = ?"
		args = append(args, filter.EntryType)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.From != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += " AND created_at <= ?"
		args = append(args, *filter.To)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashbox entries: %w", err)
	}
	defer rows.Close()

	var entries []models.CashboxEntry
	for rows.Next() {
		entry, err := scanCashboxEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashbox entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// Delete removes an entry scoped to a farm
func (r *CashboxRepository) Delete(farmID, id int64) error {
	query := "DELETE FROM cashbox_entries WHERE id = ? AND farm_id = ?"
	result, err := r.db.Exec(query, id, farmID)
	if err != nil {
		return fmt.Errorf("failed to delete cashbox entry: %w", err)
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

// Balance returns deposits minus expenses for a farm
func (r *CashboxRepository) Balance(farmID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE -amount END), 0)
		FROM cashbox_entries
		WHERE farm_id = ?
	`
	var balance float64
	err := r.db.QueryRow(query, models.EntryDeposit, farmID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// Summary aggregates a farm's entries by type and category
func (r *CashboxRepository) Summary(farmID int64) (*models.CashboxSummary, error) {
	query := `
		SELECT entry_type, category, COALESCE(SUM(amount), 0)
		FROM cashbox_entries
		WHERE farm_id = ?
		GROUP BY entry_type, category
	`
	rows, err := r.db.Query(query, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashbox summary: %w", err)
	}
	defer rows.Close()

	summary := &models.CashboxSummary{
		ByCategory: make(map[models.Category]float64),
	}
	for rows.Next() {
		var entryType models.EntryType
		var category models.Category
		var total float64
		if err := rows.Scan(&entryType, &category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan cashbox summary: %w", err)
		}

		if entryType == models.EntryDeposit {
			summary.TotalDeposits += total
			summary.ByCategory[category] += total
		} else {
			summary.TotalExpenses += total
			summary.ByCategory[category] -= total
		}
	}
	summary.Balance = summary.TotalDeposits - summary.TotalExpenses

	return summary, nil
}
