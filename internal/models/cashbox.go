package models

import "time"

// EntryType distinguishes money flowing into the cashbox from money
// flowing out.
type EntryType string

const (
	EntryDeposit EntryType = "DEPOSIT"
	EntryExpense EntryType = "EXPENSE"
)

// Category groups cashbox entries for reporting.
type Category string

const (
	CategoryVet       Category = "VET"
	CategoryFeed      Category = "FEED"
	CategoryEquipment Category = "EQUIPMENT"
	CategoryLabor     Category = "LABOR"
	CategorySale      Category = "SALE"
	CategoryOther     Category = "OTHER"
)

// CashboxEntry represents a single deposit or expense in a farm's cashbox
type CashboxEntry struct {
	ID          int64
	FarmID      int64
	EntryType   EntryType
	Amount      float64
	Description string
	Category    Category
	EventID     *int64 // set when auto-created from an event
	CreatedBy   int64
	CreatedAt   time.Time
}

// Signed returns the amount with expenses negated, for balance sums.
func (c *CashboxEntry) Signed() float64 {
	if c.EntryType == EntryExpense {
		return -c.Amount
	}
	return c.Amount
}

// ExpenseCategoryFor maps an event type to the expense category used
// when an event's cost is booked into the cashbox and the caller did
// not choose one.
func ExpenseCategoryFor(t EventType) Category {
	switch t {
	case EventVaccination, EventTreatment, EventBirth, EventDeath:
		return CategoryVet
	case EventWeight:
		return CategoryEquipment
	default:
		return CategoryOther
	}
}

// CashboxFilter narrows cashbox listings. Zero values mean "any".
type CashboxFilter struct {
	EntryType EntryType
	Category  Category
	From      *time.Time
	To        *time.Time
}

// CashboxSummary aggregates a farm's cashbox entries.
type CashboxSummary struct {
	Balance       float64
	TotalDeposits float64
	TotalExpenses float64
	ByCategory    map[Category]float64
}
