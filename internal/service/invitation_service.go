package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/security"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExists   = errors.New("a pending invitation for this email already exists")
	ErrInvitationInvalid  = errors.New("invitation is no longer valid")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrAlreadyMember      = errors.New("user is already a member of this farm")
)

// invitationTTL is how long an invitation stays acceptable.
const invitationTTL = 7 * 24 * time.Hour

// InvitationStore is the invitation persistence surface the service
// depends on.
type InvitationStore interface {
	CreateInvitation(farmID int64, email string, role models.Role, invitedBy int64, expiresAt time.Time) (*models.FarmInvitation, error)
	GetByToken(token string) (*models.FarmInvitation, error)
	GetByID(farmID, id int64) (*models.FarmInvitation, error)
	GetFarmInvitations(farmID int64) ([]models.FarmInvitation, error)
	HasPendingInvitation(farmID int64, email string) (bool, error)
	MarkExpired(id int64) error
	Accept(inv *models.FarmInvitation, userID int64) error
	DeleteInvitation(farmID, id int64) error
	ExpirePending(now time.Time) (int64, error)
}

// InvitationService handles the invitation lifecycle: issuing, expiry
// and acceptance.
type InvitationService struct {
	invitations InvitationStore
	users       UserStore
	farms       FarmStore
	log         *zap.Logger
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitations InvitationStore, users UserStore, farms FarmStore, log *zap.Logger) *InvitationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvitationService{
		invitations: invitations,
		users:       users,
		farms:       farms,
		log:         log,
	}
}

// Invite issues a PENDING invitation for an email at a role and sends
// the invitation email when the email service is configured. The send
// is best-effort: a delivery failure does not undo the invitation.
func (s *InvitationService) Invite(ctx context.Context, emailService *EmailService, farmID, inviterID int64, email string, role models.Role) (*models.FarmInvitation, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateRole(role); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invited user: %w", err)
	}
	if user != nil {
		member, err := s.farms.GetMember(farmID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if member != nil && member.IsActive() {
			return nil, ErrAlreadyMember
		}
	}

	pending, err := s.invitations.HasPendingInvitation(farmID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending {
		return nil, ErrInvitationExists
	}

	inv, err := s.invitations.CreateInvitation(farmID, email, role, inviterID, time.Now().Add(invitationTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if emailService != nil && emailService.IsEnabled() {
		// Re-read by token: the joined row carries the farm and
		// inviter names for the email body.
		full, err := s.invitations.GetByToken(inv.Token)
		if err == nil && full != nil {
			if err := emailService.SendInvitationEmail(ctx, email, full.FarmName, full.InviterName, role, inv.Token); err != nil {
				s.log.Warn("invitation email failed",
					zap.String("email", email),
					zap.Error(err))
			}
		}
	}

	return inv, nil
}

// GetByToken retrieves an invitation for public display. A pending
// invitation past its expiry is persisted as EXPIRED before answering,
// so later reads agree.
func (s *InvitationService) GetByToken(token string) (*models.FarmInvitation, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}

	if inv.IsPending() && inv.IsExpired() {
		if err := s.invitations.MarkExpired(inv.ID); err != nil {
			return nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		inv.Status = models.InvitationExpired
	}

	return inv, nil
}

// Accept walks the invitation state machine: only a PENDING, unexpired
// invitation can be accepted. The invited user is created when the
// email is new (name and password required) or reused when it is not.
// Membership creation and the ACCEPTED flip happen in one transaction.
func (s *InvitationService) Accept(token, name, password string) (*models.User, *models.FarmInvitation, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, nil, ErrInvitationNotFound
	}
	if !inv.IsPending() {
		return nil, nil, ErrInvitationInvalid
	}
	if inv.IsExpired() {
		if err := s.invitations.MarkExpired(inv.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		return nil, nil, ErrInvitationExpired
	}

	user, err := s.users.GetUserByEmail(inv.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		// New account: the invitee picks a name and password.
		name = strings.TrimSpace(name)
		if err := validation.ValidateName(name); err != nil {
			return nil, nil, err
		}
		if err := validation.ValidatePassword(password); err != nil {
			return nil, nil, err
		}
		hash, err := security.HashPassword(password)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user, err = s.users.CreateUser(inv.Email, hash, name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	member, err := s.farms.GetMember(inv.FarmID, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member != nil {
		return nil, nil, ErrAlreadyMember
	}

	if err := s.invitations.Accept(inv, user.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race against another acceptance or an expiry sweep.
			return nil, nil, ErrInvitationInvalid
		}
		return nil, nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	now := time.Now()
	inv.Status = models.InvitationAccepted
	inv.AcceptedAt = &now
	inv.AcceptedBy = &user.ID
	return user, inv, nil
}

// List retrieves all invitations of a farm, newest first.
func (s *InvitationService) List(farmID int64) ([]models.FarmInvitation, error) {
	invitations, err := s.invitations.GetFarmInvitations(farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// Revoke deletes a pending invitation.
func (s *InvitationService) Revoke(farmID, invitationID int64) error {
	inv, err := s.invitations.GetByID(farmID, invitationID)
	if err != nil {
		return fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return ErrInvitationNotFound
	}
	if !inv.IsPending() {
		return ErrInvitationInvalid
	}

	if err := s.invitations.DeleteInvitation(farmID, invitationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return nil
}

// ExpirePending flips every pending invitation past its expiry to
// EXPIRED and reports how many rows changed.
func (s *InvitationService) ExpirePending() (int64, error) {
	n, err := s.invitations.ExpirePending(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	return n, nil
}
