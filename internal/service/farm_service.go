package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

var (
	ErrFarmNotFound   = errors.New("farm not found")
	ErrNotMember      = errors.New("user is not an active member of this farm")
	ErrMemberNotFound = errors.New("farm member not found")
	ErrLastOwner      = errors.New("farm must keep at least one active owner")
)

// FarmStore is the farm and membership persistence surface the farm
// service depends on.
type FarmStore interface {
	CreateFarm(name, currency, timezone string, creatorUserID int64) (*models.Farm, error)
	GetFarmByID(farmID int64) (*models.Farm, error)
	GetUserFarms(userID int64) ([]models.FarmWithRole, error)
	UpdateFarm(farmID int64, name, currency, timezone string) error
	DeleteFarm(farmID int64) error
	GetMember(farmID, userID int64) (*models.FarmMember, error)
	GetMembers(farmID int64) ([]models.FarmMember, error)
	UpdateMember(farmID, userID int64, role models.Role, status models.MemberStatus) error
	RemoveMember(farmID, userID int64) error
	CountActiveOwners(farmID int64) (int, error)
}

// FarmService handles farm and membership business logic
type FarmService struct {
	farms FarmStore
}

// NewFarmService creates a new farm service
func NewFarmService(farms FarmStore) *FarmService {
	return &FarmService{farms: farms}
}

// CreateFarm creates a farm with the creator as its first active owner.
func (s *FarmService) CreateFarm(creatorUserID int64, name, currency, timezone string) (*models.Farm, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	if currency == "" {
		currency = "USD"
	}
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	if timezone == "" {
		timezone = "UTC"
	}
	if err := validation.ValidateTimezone(timezone); err != nil {
		return nil, err
	}

	farm, err := s.farms.CreateFarm(name, currency, timezone, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}

	return farm, nil
}

// GetFarm retrieves a farm by ID
func (s *FarmService) GetFarm(farmID int64) (*models.Farm, error) {
	farm, err := s.farms.GetFarmByID(farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get farm: %w", err)
	}
	if farm == nil {
		return nil, ErrFarmNotFound
	}
	return farm, nil
}

// ListUserFarms retrieves all farms a user is an active member of,
// together with the user's role in each.
func (s *FarmService) ListUserFarms(userID int64) ([]models.FarmWithRole, error) {
	farms, err := s.farms.GetUserFarms(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user farms: %w", err)
	}
	return farms, nil
}

// UpdateFarm updates a farm's name, currency and timezone.
func (s *FarmService) UpdateFarm(farmID int64, name, currency, timezone string) (*models.Farm, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "USD"
	}
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if err := validation.ValidateTimezone(timezone); err != nil {
		return nil, err
	}

	if _, err := s.GetFarm(farmID); err != nil {
		return nil, err
	}

	if err := s.farms.UpdateFarm(farmID, name, currency, timezone); err != nil {
		return nil, fmt.Errorf("failed to update farm: %w", err)
	}

	return s.GetFarm(farmID)
}

// DeleteFarm deletes a farm and everything under it.
func (s *FarmService) DeleteFarm(farmID int64) error {
	if _, err := s.GetFarm(farmID); err != nil {
		return err
	}
	if err := s.farms.DeleteFarm(farmID); err != nil {
		return fmt.Errorf("failed to delete farm: %w", err)
	}
	return nil
}

// SelectFarm verifies an active membership and returns it. Used when a
// user switches their session onto a farm.
func (s *FarmService) SelectFarm(userID, farmID int64) (*models.FarmMember, error) {
	member, err := s.farms.GetMember(farmID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if member == nil || !member.IsActive() {
		return nil, ErrNotMember
	}
	return member, nil
}

// GetMember retrieves a single membership row.
func (s *FarmService) GetMember(farmID, userID int64) (*models.FarmMember, error) {
	member, err := s.farms.GetMember(farmID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// ListMembers retrieves all members of a farm with their user details.
func (s *FarmService) ListMembers(farmID int64) ([]models.FarmMember, error) {
	members, err := s.farms.GetMembers(farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get farm members: %w", err)
	}
	return members, nil
}

// UpdateMember changes a member's role or status. Demoting or
// deactivating the only active owner is refused.
func (s *FarmService) UpdateMember(farmID, userID int64, role models.Role, status models.MemberStatus) (*models.FarmMember, error) {
	if err := validation.ValidateRole(role); err != nil {
		return nil, err
	}
	if err := validation.ValidateMemberStatus(status); err != nil {
		return nil, err
	}

	member, err := s.farms.GetMember(farmID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	losesOwner := role != models.RoleOwner || status != models.MemberActive
	if member.Role == models.RoleOwner && member.IsActive() && losesOwner {
		if err := s.ensureAnotherOwner(farmID); err != nil {
			return nil, err
		}
	}

	if err := s.farms.UpdateMember(farmID, userID, role, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	member.Role = role
	member.Status = status
	return member, nil
}

// RemoveMember removes a user from a farm. The only active owner
// cannot be removed, not even by themselves.
func (s *FarmService) RemoveMember(farmID, userID int64) error {
	member, err := s.farms.GetMember(farmID, userID)
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if member.Role == models.RoleOwner && member.IsActive() {
		if err := s.ensureAnotherOwner(farmID); err != nil {
			return err
		}
	}

	if err := s.farms.RemoveMember(farmID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *FarmService) ensureAnotherOwner(farmID int64) error {
	owners, err := s.farms.CountActiveOwners(farmID)
	if err != nil {
		return fmt.Errorf("failed to count active owners: %w", err)
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}
