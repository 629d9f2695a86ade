package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

var ErrAnimalNotFound = errors.New("animal not found")

// AnimalStore is the animal persistence surface the animal service
// depends on.
type AnimalStore interface {
	Create(a *models.Animal) error
	GetByID(farmID, id int64) (*models.Animal, error)
	List(farmID int64, filter models.AnimalFilter) ([]models.Animal, error)
	Update(a *models.Animal) error
	Delete(farmID, id int64) error
}

// AnimalInput carries the caller-editable fields of an animal or lot.
type AnimalInput struct {
	Tag       string
	Type      models.AnimalType
	Species   string
	Sex       models.Sex
	Status    models.AnimalStatus
	LotCount  *int
	BirthDate *time.Time
	Notes     string
}

// AnimalService handles animal and lot business logic
type AnimalService struct {
	animals AnimalStore
}

// NewAnimalService creates a new animal service
func NewAnimalService(animals AnimalStore) *AnimalService {
	return &AnimalService{animals: animals}
}

// CreateAnimal registers an individual animal or a lot on a farm.
func (s *AnimalService) CreateAnimal(farmID int64, in AnimalInput) (*models.Animal, error) {
	if err := validateAnimalInput(&in); err != nil {
		return nil, err
	}

	animal := &models.Animal{
		FarmID:    farmID,
		Tag:       in.Tag,
		Type:      in.Type,
		Species:   in.Species,
		Sex:       in.Sex,
		Status:    in.Status,
		LotCount:  in.LotCount,
		BirthDate: in.BirthDate,
		Notes:     in.Notes,
	}
	if err := s.animals.Create(animal); err != nil {
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}

	return animal, nil
}

// GetAnimal retrieves an animal scoped to a farm.
func (s *AnimalService) GetAnimal(farmID, id int64) (*models.Animal, error) {
	animal, err := s.animals.GetByID(farmID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get animal: %w", err)
	}
	if animal == nil {
		return nil, ErrAnimalNotFound
	}
	return animal, nil
}

// ListAnimals retrieves a farm's animals, optionally filtered by type,
// status and species.
func (s *AnimalService) ListAnimals(farmID int64, filter models.AnimalFilter) ([]models.Animal, error) {
	animals, err := s.animals.List(farmID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	return animals, nil
}

// UpdateAnimal changes an animal's editable fields. The type is fixed
// at creation; the head-count rule is enforced against it.
func (s *AnimalService) UpdateAnimal(farmID, id int64, in AnimalInput) (*models.Animal, error) {
	animal, err := s.GetAnimal(farmID, id)
	if err != nil {
		return nil, err
	}

	in.Type = animal.Type
	if err := validateAnimalInput(&in); err != nil {
		return nil, err
	}

	animal.Tag = in.Tag
	animal.Species = in.Species
	animal.Sex = in.Sex
	animal.Status = in.Status
	animal.LotCount = in.LotCount
	animal.BirthDate = in.BirthDate
	animal.Notes = in.Notes

	if err := s.animals.Update(animal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnimalNotFound
		}
		return nil, fmt.Errorf("failed to update animal: %w", err)
	}

	return animal, nil
}

// DeleteAnimal removes an animal; its events cascade at the schema level.
func (s *AnimalService) DeleteAnimal(farmID, id int64) error {
	if err := s.animals.Delete(farmID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAnimalNotFound
		}
		return fmt.Errorf("failed to delete animal: %w", err)
	}
	return nil
}

func validateAnimalInput(in *AnimalInput) error {
	in.Tag = strings.TrimSpace(in.Tag)
	if in.Tag == "" {
		return &validation.Error{Field: "tag", Message: "tag is required"}
	}
	if len(in.Tag) > 50 {
		return &validation.Error{Field: "tag", Message: "tag must be at most 50 characters"}
	}
	in.Species = strings.TrimSpace(in.Species)
	if in.Species == "" {
		return &validation.Error{Field: "species", Message: "species is required"}
	}
	if err := validation.ValidateAnimalType(in.Type); err != nil {
		return err
	}
	if in.Sex == "" {
		in.Sex = models.SexUnknown
	}
	if err := validation.ValidateSex(in.Sex); err != nil {
		return err
	}
	if in.Status == "" {
		in.Status = models.AnimalActive
	}
	if err := validation.ValidateAnimalStatus(in.Status); err != nil {
		return err
	}

	if in.Type == models.AnimalLot {
		if in.LotCount == nil || *in.LotCount <= 0 {
			return &validation.Error{Field: "lot_count", Message: "lots need a head count above zero"}
		}
	} else if in.LotCount != nil {
		return &validation.Error{Field: "lot_count", Message: "head count only applies to lots"}
	}

	return nil
}
