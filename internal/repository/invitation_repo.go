package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/database"
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/security"
)

type InvitationRepository struct {
	db *database.DB
}

func NewInvitationRepository(db *database.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// CreateInvitation creates a new pending invitation with a random token
func (r *InvitationRepository) CreateInvitation(farmID int64, email string, role models.Role, invitedBy int64, expiresAt time.Time) (*models.FarmInvitation, error) {
	token, err := security.GenerateToken(16)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO farm_invitations (farm_id, token, email, role, status, invited_by, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, farmID, token, email, role, models.InvitationPending, invitedBy, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return &models.FarmInvitation{
		ID:        id,
		FarmID:    farmID,
		Token:     token,
		Email:     email,
		Role:      role,
		Status:    models.InvitationPending,
		InvitedBy: invitedBy,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

const invitationColumns = `
	i.id, i.farm_id, i.token, i.email, i.role, i.status, i.invited_by,
	i.created_at, i.expires_at, i.accepted_at, i.accepted_by, f.name, COALESCE(u.name, '')
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row rowScanner) (*models.FarmInvitation, error) {
	var inv models.FarmInvitation
	var acceptedAt sql.NullTime
	var acceptedBy sql.NullInt64

	err := row.Scan(
		&inv.ID, &inv.FarmID, &inv.Token, &inv.Email, &inv.Role, &inv.Status, &inv.InvitedBy,
		&inv.CreatedAt, &inv.ExpiresAt, &acceptedAt, &acceptedBy, &inv.FarmName, &inv.InviterName,
	)
	if err != nil {
		return nil, err
	}

	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	if acceptedBy.Valid {
		inv.AcceptedBy = &acceptedBy.Int64
	}

	return &inv, nil
}

// GetByToken retrieves an invitation by its token, joined with the farm
// and inviter names
func (r *InvitationRepository) GetByToken(token string) (*models.FarmInvitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM farm_invitations i
		INNER JOIN farms f ON i.farm_id = f.id
		LEFT JOIN users u ON i.invited_by = u.id
		WHERE i.token = ?
	`
	inv, err := scanInvitation(r.db.QueryRow(query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetByID retrieves an invitation scoped to a farm
func (r *InvitationRepository) GetByID(farmID, id int64) (*models.FarmInvitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM farm_invitations i
		INNER JOIN farms f ON i.farm_id = f.id
		LEFT JOIN users u ON i.invited_by = u.id
		WHERE i.id = ? AND i.farm_id = ?
	`
	inv, err := scanInvitation(r.db.QueryRow(query, id, farmID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetFarmInvitations retrieves all invitations for a farm, newest first
func (r *InvitationRepository) GetFarmInvitations(farmID int64) ([]models.FarmInvitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM farm_invitations i
		INNER JOIN farms f ON i.farm_id = f.id
		LEFT JOIN users u ON i.invited_by = u.id
		WHERE i.farm_id = ?
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.Query(query, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.FarmInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}

	return invitations, nil
}

// HasPendingInvitation checks for an existing PENDING invitation for the
// same farm and email
func (r *InvitationRepository) HasPendingInvitation(farmID int64, email string) (bool, error) {
	query := "SELECT COUNT(*) FROM farm_invitations WHERE farm_id = ? AND email = ? AND status = ?"
	var count int
	err := r.db.QueryRow(query, farmID, email, models.InvitationPending).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return count > 0, nil
}

// MarkExpired transitions a PENDING invitation to EXPIRED
func (r *InvitationRepository) MarkExpired(id int64) error {
	query := "UPDATE farm_invitations SET status = ? WHERE id = ? AND status = ?"
	_, err := r.db.Exec(query, models.InvitationExpired, id, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("failed to mark invitation expired: %w", err)
	}
	return nil
}

// Accept creates the membership and marks the invitation accepted in one
// transaction, so a failed membership insert never strands an ACCEPTED
// invitation without a member row
func (r *InvitationRepository) Accept(inv *models.FarmInvitation, userID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO farm_members (farm_id, user_id, role, status) VALUES (?, ?, ?, ?)"
	if _, err := tx.Exec(query, inv.FarmID, userID, inv.Role, models.MemberActive); err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	query = "UPDATE farm_invitations SET status = ?, accepted_at = ?, accepted_by = ? WHERE id = ? AND status = ?"
	result, err := tx.Exec(query, models.InvitationAccepted, time.Now(), userID, inv.ID, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read accept result: %w", err)
	}
	if rows == 0 {
		// Lost the race against another acceptance or an expiry sweep
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteInvitation deletes an invitation scoped to a farm
func (r *InvitationRepository) DeleteInvitation(farmID, id int64) error {
	query := "DELETE FROM farm_invitations WHERE id = ? AND farm_id = ?"
	result, err := r.db.Exec(query, id, farmID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
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

// ExpirePending marks every PENDING invitation past its expiry as
// EXPIRED and returns how many rows changed
func (r *InvitationRepository) ExpirePending(now time.Time) (int64, error) {
	query := "UPDATE farm_invitations SET status = ? WHERE status = ? AND expires_at < ?"
	result, err := r.db.Exec(query, models.InvitationExpired, models.InvitationPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read expire result: %w", err)
	}
	return rows, nil
}
