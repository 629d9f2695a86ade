package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Error reports a failed check on a single input field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks that an email address looks deliverable.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &Error{Field: "email", Message: "email is required"}
	}
	if len(email) > 254 {
		return &Error{Field: "email", Message: "email is too long"}
	}
	if !emailRegex.MatchString(email) {
		return &Error{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks password length bounds. The upper bound is the
// bcrypt input limit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &Error{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > 72 {
		return &Error{Field: "password", Message: "password must be at most 72 characters"}
	}
	return nil
}

// ValidateName checks a person or farm name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return &Error{Field: "name", Message: "name must be at least 2 characters"}
	}
	if len(name) > 100 {
		return &Error{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// ValidateCurrency checks for a three-letter ISO 4217 code.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return &Error{Field: "currency", Message: "currency must be a 3-letter code"}
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return &Error{Field: "currency", Message: "currency must be a 3-letter uppercase code"}
		}
	}
	return nil
}

// ValidateTimezone checks the name against the IANA tz database.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return &Error{Field: "timezone", Message: "timezone is required"}
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return &Error{Field: "timezone", Message: "unknown timezone"}
	}
	return nil
}

// ValidateRole checks for a known member role.
func ValidateRole(role models.Role) error {
	switch role {
	case models.RoleOwner, models.RoleAssociate, models.RoleWorker:
		return nil
	}
	return &Error{Field: "role", Message: "unknown role"}
}

// ValidateMemberStatus checks for a known membership status.
func ValidateMemberStatus(status models.MemberStatus) error {
	switch status {
	case models.MemberActive, models.MemberInactive:
		return nil
	}
	return &Error{Field: "status", Message: "unknown status"}
}

// ValidateAnimalType checks for a known animal type.
func ValidateAnimalType(t models.AnimalType) error {
	switch t {
	case models.AnimalIndividual, models.AnimalLot:
		return nil
	}
	return &Error{Field: "type", Message: "unknown animal type"}
}

// ValidateSex checks for a known sex value.
func ValidateSex(s models.Sex) error {
	switch s {
	case models.SexMale, models.SexFemale, models.SexUnknown:
		return nil
	}
	return &Error{Field: "sex", Message: "unknown sex"}
}

// ValidateAnimalStatus checks for a known animal status.
func ValidateAnimalStatus(s models.AnimalStatus) error {
	switch s {
	case models.AnimalActive, models.AnimalSold, models.AnimalDead:
		return nil
	}
	return &Error{Field: "status", Message: "unknown animal status"}
}

// ValidateEventType checks for a known event type.
func ValidateEventType(t models.EventType) error {
	switch t {
	case models.EventBirth, models.EventVaccination, models.EventTreatment,
		models.EventWeight, models.EventSale, models.EventDeath,
		models.EventNote, models.EventFeed:
		return nil
	}
	return &Error{Field: "type", Message: "unknown event type"}
}

// ValidateTargetType checks for a known event target type.
func ValidateTargetType(t models.TargetType) error {
	switch t {
	case models.TargetAnimal, models.TargetLot:
		return nil
	}
	return &Error{Field: "target_type", Message: "unknown target type"}
}

// ValidateEntryType checks for a known cashbox entry type.
func ValidateEntryType(t models.EntryType) error {
	switch t {
	case models.EntryDeposit, models.EntryExpense:
		return nil
	}
	return &Error{Field: "entry_type", Message: "unknown entry type"}
}

// ValidateCategory checks for a known cashbox category.
func ValidateCategory(c models.Category) error {
	switch c {
	case models.CategoryVet, models.CategoryFeed, models.CategoryEquipment,
		models.CategoryLabor, models.CategorySale, models.CategoryOther:
		return nil
	}
	return &Error{Field: "category", Message: "unknown category"}
}
