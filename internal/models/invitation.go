package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

type FarmInvitation struct {
	ID          int64
	FarmID      int64
	Token       string
	Email       string
	Role        Role
	Status      InvitationStatus
	InvitedBy   int64
	CreatedAt   time.Time
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
	AcceptedBy  *int64
	FarmName    string // Populated via JOIN
	InviterName string
}

func (i *FarmInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *FarmInvitation) IsPending() bool {
	return i.Status == InvitationPending
}

// IsAcceptable reports whether the invitation can still be redeemed.
func (i *FarmInvitation) IsAcceptable() bool {
	return i.IsPending() && !i.IsExpired()
}
