package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

var ErrEntryNotFound = errors.New("cashbox entry not found")

// CashboxStore is the ledger persistence surface the cashbox service
// depends on.
type CashboxStore interface {
	Create(entry *models.CashboxEntry) error
	GetByID(farmID, id int64) (*models.CashboxEntry, error)
	List(farmID int64, filter models.CashboxFilter) ([]models.CashboxEntry, error)
	Delete(farmID, id int64) error
	Balance(farmID int64) (float64, error)
	Summary(farmID int64) (*models.CashboxSummary, error)
}

// CashboxService handles the farm ledger
type CashboxService struct {
	cashbox CashboxStore
}

// NewCashboxService creates a new cashbox service
func NewCashboxService(cashbox CashboxStore) *CashboxService {
	return &CashboxService{cashbox: cashbox}
}

// CreateEntry appends a manual deposit or expense to the ledger.
func (s *CashboxService) CreateEntry(farmID, userID int64, entryType models.EntryType, amount float64, description string, category models.Category) (*models.CashboxEntry, error) {
	if err := validation.ValidateEntryType(entryType); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, &validation.Error{Field: "amount", Message: "amount must be above zero"}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &validation.Error{Field: "description", Message: "description is required"}
	}
	if category == "" {
		category = models.CategoryOther
	}
	if err := validation.ValidateCategory(category); err != nil {
		return nil, err
	}

	entry := &models.CashboxEntry{
		FarmID:      farmID,
		EntryType:   entryType,
		Amount:      amount,
		Description: description,
		Category:    category,
		CreatedBy:   userID,
	}
	if err := s.cashbox.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create cashbox entry: %w", err)
	}

	return entry, nil
}

// ListEntries retrieves ledger entries newest-first together with the
// farm's running balance.
func (s *CashboxService) ListEntries(farmID int64, filter models.CashboxFilter) ([]models.CashboxEntry, float64, error) {
	entries, err := s.cashbox.List(farmID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cashbox entries: %w", err)
	}

	balance, err := s.cashbox.Balance(farmID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	return entries, balance, nil
}

// Summary aggregates the ledger per entry type and category.
func (s *CashboxService) Summary(farmID int64) (*models.CashboxSummary, error) {
	summary, err := s.cashbox.Summary(farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute cashbox summary: %w", err)
	}
	return summary, nil
}

// DeleteEntry removes a ledger entry.
func (s *CashboxService) DeleteEntry(farmID, id int64) error {
	if err := s.cashbox.Delete(farmID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete cashbox entry: %w", err)
	}
	return nil
}
