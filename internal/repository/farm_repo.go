package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/database"
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// FarmRepository handles database operations for farms and their members
type FarmRepository struct {
	db *database.DB
}

// NewFarmRepository creates a new farm repository
func NewFarmRepository(db *database.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

// CreateFarm creates a new farm and adds the creator as its first owner
func (r *FarmRepository) CreateFarm(name, currency, timezone string, creatorUserID int64) (*models.Farm, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Create farm
	query := "INSERT INTO farms (name, currency, timezone) VALUES (?, ?, ?)"
	farmID, err := tx.ExecReturningID(query, name, currency, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}

	// Add creator as owner
	query = "INSERT INTO farm_members (farm_id, user_id, role, status) VALUES (?, ?, ?, ?)"
	_, err = tx.Exec(query, farmID, creatorUserID, models.RoleOwner, models.MemberActive)
	if err != nil {
		return nil, fmt.Errorf("failed to add farm owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	farm := &models.Farm{
		ID:        farmID,
		Name:      name,
		Currency:  currency,
		Timezone:  timezone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return farm, nil
}

// GetFarmByID retrieves a farm by ID
func (r *FarmRepository) GetFarmByID(farmID int64) (*models.Farm, error) {
	query := "SELECT id, name, currency, timezone, created_at, updated_at FROM farms WHERE id = ?"
	farm := &models.Farm{}
	err := r.db.QueryRow(query, farmID).Scan(
		&farm.ID,
		&farm.Name,
		&farm.Currency,
		&farm.Timezone,
		&farm.CreatedAt,
		&farm.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get farm: %w", err)
	}

	return farm, nil
}

// GetUserFarms retrieves all farms a user is an active member of, with
// the user's role in each
func (r *FarmRepository) GetUserFarms(userID int64) ([]models.FarmWithRole, error) {
	query := `
		SELECT f.id, f.name, f.currency, f.timezone, f.created_at, f.updated_at, fm.role
		FROM farms f
		INNER JOIN farm_members fm ON f.id = fm.farm_id
		WHERE fm.user_id = ? AND fm.status = ?
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(query, userID, models.MemberActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query farms: %w", err)
	}
	defer rows.Close()

	var farms []models.FarmWithRole
	for rows.Next() {
		var fr models.FarmWithRole
		if err := rows.Scan(
			&fr.Farm.ID, &fr.Farm.Name, &fr.Farm.Currency, &fr.Farm.Timezone,
			&fr.Farm.CreatedAt, &fr.Farm.UpdatedAt, &fr.Role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan farm: %w", err)
		}
		farms = append(farms, fr)
	}

	return farms, nil
}

// UpdateFarm updates a farm's name, currency and timezone
func (r *FarmRepository) UpdateFarm(farmID int64, name, currency, timezone string) error {
	query := "UPDATE farms SET name = ?, currency = ?, timezone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, name, currency, timezone, farmID)
	if err != nil {
		return fmt.Errorf("failed to update farm: %w", err)
	}
	return nil
}

// DeleteFarm deletes a farm; members, animals, events and cashbox
// entries cascade at the schema level
func (r *FarmRepository) DeleteFarm(farmID int64) error {
	query := "DELETE FROM farms WHERE id = ?"
	_, err := r.db.Exec(query, farmID)
	if err != nil {
		return fmt.Errorf("failed to delete farm: %w", err)
	}
	return nil
}

// GetMember retrieves a single membership row
func (r *FarmRepository) GetMember(farmID, userID int64) (*models.FarmMember, error) {
	query := `
		SELECT id, farm_id, user_id, role, status, joined_at
		FROM farm_members
		WHERE farm_id = ? AND user_id = ?
	`
	member := &models.FarmMember{}
	err := r.db.QueryRow(query, farmID, userID).Scan(
		&member.ID,
		&member.FarmID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get farm member: %w", err)
	}

	return member, nil
}

// GetMembers retrieves all members of a farm joined with user details
func (r *FarmRepository) GetMembers(farmID int64) ([]models.FarmMember, error) {
	query := `
		SELECT fm.id, fm.farm_id, fm.user_id, fm.role, fm.status, fm.joined_at, u.name, u.email
		FROM farm_members fm
		INNER JOIN users u ON fm.user_id = u.id
		WHERE fm.farm_id = ?
		ORDER BY fm.joined_at ASC
	`
	rows, err := r.db.Query(query, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to query farm members: %w", err)
	}
	defer rows.Close()

	var members []models.FarmMember
	for rows.Next() {
		var member models.FarmMember
		if err := rows.Scan(
			&member.ID, &member.FarmID, &member.UserID, &member.Role,
			&member.Status, &member.JoinedAt, &member.UserName, &member.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan farm member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// AddMember adds a user to a farm
func (r *FarmRepository) AddMember(farmID, userID int64, role models.Role, status models.MemberStatus) error {
	query := "INSERT INTO farm_members (farm_id, user_id, role, status) VALUES (?, ?, ?, ?)"
	_, err := r.db.Exec(query, farmID, userID, role, status)
	if err != nil {
		return fmt.Errorf("failed to add farm member: %w", err)
	}
	return nil
}

// UpdateMember changes a member's role and status
func (r *FarmRepository) UpdateMember(farmID, userID int64, role models.Role, status models.MemberStatus) error {
	query := "UPDATE farm_members SET role = ?, status = ? WHERE farm_id = ? AND user_id = ?"
	result, err := r.db.Exec(query, role, status, farmID, userID)
	if err != nil {
		return fmt.Errorf("failed to update farm member: %w", err)
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

// RemoveMember deletes a membership row
func (r *FarmRepository) RemoveMember(farmID, userID int64) error {
	query := "DELETE FROM farm_members WHERE farm_id = ? AND user_id = ?"
	result, err := r.db.Exec(query, farmID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove farm member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read remove result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountActiveOwners counts ACTIVE members with the OWNER role
func (r *FarmRepository) CountActiveOwners(farmID int64) (int, error) {
	query := "SELECT COUNT(*) FROM farm_members WHERE farm_id = ? AND role = ? AND status = ?"
	var count int
	err := r.db.QueryRow(query, farmID, models.RoleOwner, models.MemberActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count farm owners: %w", err)
	}
	return count, nil
}

// GetActiveOwnerEmails returns the email addresses of a farm's ACTIVE owners
func (r *FarmRepository) GetActiveOwnerEmails(farmID int64) ([]string, error) {
	query := `
		SELECT u.email
		FROM farm_members fm
		INNER JOIN users u ON fm.user_id = u.id
		WHERE fm.farm_id = ? AND fm.role = ? AND fm.status = ?
	`
	rows, err := r.db.Query(query, farmID, models.RoleOwner, models.MemberActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan owner email: %w", err)
		}
		emails = append(emails, email)
	}

	return emails, nil
}
