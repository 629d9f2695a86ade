package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/database"
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// AnimalRepository handles database operations for animals and lots
type AnimalRepository struct {
	db *database.DB
}

// NewAnimalRepository creates a new animal repository
func NewAnimalRepository(db *database.DB) *AnimalRepository {
	return &AnimalRepository{db: db}
}

// Create inserts a new animal and fills in its ID and timestamps
func (r *AnimalRepository) Create(a *models.Animal) error {
	query := `
		INSERT INTO animals (farm_id, tag, type, species, sex, status, lot_count, birth_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		a.FarmID, a.Tag, a.Type, a.Species, a.Sex, a.Status, a.LotCount, a.BirthDate, a.Notes)
	if err != nil {
		return fmt.Errorf("failed to create animal: %w", err)
	}

	a.ID = id
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	return nil
}

func scanAnimal(row rowScanner) (*models.Animal, error) {
	var a models.Animal
	var lotCount sql.NullInt64
	var birthDate sql.NullTime

	err := row.Scan(
		&a.ID, &a.FarmID, &a.Tag, &a.Type, &a.Species, &a.Sex, &a.Status,
		&lotCount, &birthDate, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lotCount.Valid {
		n := int(lotCount.Int64)
		a.LotCount = &n
	}
	if birthDate.Valid {
		a.BirthDate = &birthDate.Time
	}

	return &a, nil
}

const animalColumns = `
	id, farm_id, tag, type, species, sex, status, lot_count, birth_date, notes, created_at, updated_at
`

// GetByID retrieves an animal scoped to a farm
func (r *AnimalRepository) GetByID(farmID, id int64) (*models.Animal, error) {
	query := "SELECT " + animalColumns + " FROM animals WHERE id = ? AND farm_id = ?"
	a, err := scanAnimal(r.db.QueryRow(query, id, farmID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get animal: %w", err)
	}
	return a, nil
}

// List retrieves a farm's animals with optional filters
func (r *AnimalRepository) List(farmID int64, filter models.AnimalFilter) ([]models.Animal, error) {
	query := "SELECT " + animalColumns + " FROM animals WHERE farm_id = ?"
	args := []interface{}{farmID}

	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Species != "" {
		query += " AND species = ?"
		args = append(args, filter.Species)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query animals: %w", err)
	}
	defer rows.Close()

	var animals []models.Animal
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan animal: %w", err)
		}
		animals = append(animals, *a)
	}

	return animals, nil
}

// Update rewrites an animal's mutable fields
func (r *AnimalRepository) Update(a *models.Animal) error {
	query := `
		UPDATE animals
		SET tag = ?, species = ?, sex = ?, status = ?, lot_count = ?, birth_date = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND farm_id = ?
	`
	result, err := r.db.Exec(query,
		a.Tag, a.Species, a.Sex, a.Status, a.LotCount, a.BirthDate, a.Notes, a.ID, a.FarmID)
	if err != nil {
		return fmt.Errorf("failed to update animal: %w", err)
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

// Delete removes an animal; its events cascade at the schema level
func (r *AnimalRepository) Delete(farmID, id int64) error {
	query := "DELETE FROM animals WHERE id = ? AND farm_id = ?"
	result, err := r.db.Exec(query, id, farmID)
	if err != nil {
		return fmt.Errorf("failed to delete animal: %w", err)
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
