package handlers

import (
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// Response shapes for the JSON API. Domain models stay free of JSON
// tags; every payload crosses through one of these.

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

type farmResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toFarmResponse(f *models.Farm) farmResponse {
	return farmResponse{
		ID:        f.ID,
		Name:      f.Name,
		Currency:  f.Currency,
		Timezone:  f.Timezone,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

type farmWithRoleResponse struct {
	farmResponse
	Role models.Role `json:"role"`
}

type memberResponse struct {
	UserID   int64               `json:"user_id"`
	Name     string              `json:"name"`
	Email    string              `json:"email"`
	Role     models.Role         `json:"role"`
	Status   models.MemberStatus `json:"status"`
	JoinedAt time.Time           `json:"joined_at"`
}

func toMemberResponse(m *models.FarmMember) memberResponse {
	return memberResponse{
		UserID:   m.UserID,
		Name:     m.UserName,
		Email:    m.UserEmail,
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
}

type invitationResponse struct {
	ID          int64                   `json:"id,omitempty"`
	FarmID      int64                   `json:"farm_id,omitempty"`
	Token       string                  `json:"token,omitempty"`
	Email       string                  `json:"email"`
	Role        models.Role             `json:"role"`
	Status      models.InvitationStatus `json:"status"`
	FarmName    string                  `json:"farm_name,omitempty"`
	InviterName string                  `json:"inviter_name,omitempty"`
	ExpiresAt   time.Time               `json:"expires_at"`
	CreatedAt   time.Time               `json:"created_at"`
}

// toInvitationResponse is the management view: IDs and token included.
func toInvitationResponse(i *models.FarmInvitation) invitationResponse {
	return invitationResponse{
		ID:        i.ID,
		FarmID:    i.FarmID,
		Token:     i.Token,
		Email:     i.Email,
		Role:      i.Role,
		Status:    i.Status,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

// toPublicInvitationResponse is the unauthenticated token-lookup view:
// enough to render an accept page, no internal IDs.
func toPublicInvitationResponse(i *models.FarmInvitation) invitationResponse {
	return invitationResponse{
		Email:       i.Email,
		Role:        i.Role,
		Status:      i.Status,
		FarmName:    i.FarmName,
		InviterName: i.InviterName,
		ExpiresAt:   i.ExpiresAt,
		CreatedAt:   i.CreatedAt,
	}
}

type animalResponse struct {
	ID        int64               `json:"id"`
	Tag       string              `json:"tag"`
	Type      models.AnimalType   `json:"type"`
	Species   string              `json:"species"`
	Sex       models.Sex          `json:"sex"`
	Status    models.AnimalStatus `json:"status"`
	LotCount  *int                `json:"lot_count,omitempty"`
	BirthDate *time.Time          `json:"birth_date,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func toAnimalResponse(a *models.Animal) animalResponse {
	return animalResponse{
		ID:        a.ID,
		Tag:       a.Tag,
		Type:      a.Type,
		Species:   a.Species,
		Sex:       a.Sex,
		Status:    a.Status,
		LotCount:  a.LotCount,
		BirthDate: a.BirthDate,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type eventResponse struct {
	ID            int64             `json:"id"`
	AnimalID      int64             `json:"animal_id"`
	AnimalTag     string            `json:"animal_tag"`
	TargetType    models.TargetType `json:"target_type"`
	Type          models.EventType  `json:"type"`
	Date          time.Time         `json:"date"`
	Cost          *float64          `json:"cost,omitempty"`
	NextDue       *time.Time        `json:"next_due,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	AttachmentKey string            `json:"attachment_key,omitempty"`
	CreatedBy     int64             `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toEventResponse(e *models.Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		AnimalID:      e.AnimalID,
		AnimalTag:     e.AnimalTag,
		TargetType:    e.TargetType,
		Type:          e.Type,
		Date:          e.Date,
		Cost:          e.Cost,
		NextDue:       e.NextDue,
		Notes:         e.Notes,
		AttachmentKey: e.AttachmentKey,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}

func toEventResponses(events []models.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	return out
}

type statisticsResponse struct {
	Total       int64                        `json:"total"`
	TotalCost   float64                      `json:"total_cost"`
	CountByType map[models.EventType]int64   `json:"count_by_type"`
	CostByType  map[models.EventType]float64 `json:"cost_by_type"`
}

type entryResponse struct {
	ID          int64            `json:"id"`
	EntryType   models.EntryType `json:"entry_type"`
	Amount      float64          `json:"amount"`
	Description string           `json:"description"`
	Category    models.Category  `json:"category"`
	EventID     *int64           `json:"event_id,omitempty"`
	CreatedBy   int64            `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toEntryResponse(e *models.CashboxEntry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		EntryType:   e.EntryType,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		EventID:     e.EventID,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

type cashboxListResponse struct {
	Entries []entryResponse `json:"entries"`
	Balance float64         `json:"balance"`
}

type summaryResponse struct {
	Balance       float64                     `json:"balance"`
	TotalDeposits float64                     `json:"total_deposits"`
	TotalExpenses float64                     `json:"total_expenses"`
	ByCategory    map[models.Category]float64 `json:"by_category"`
}

type sessionResponse struct {
	User userResponse  `json:"user"`
	Farm *farmResponse `json:"farm,omitempty"`
	Role models.Role   `json:"role,omitempty"`
}
