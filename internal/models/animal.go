package models

import "time"

// AnimalType distinguishes individually tracked animals from lots
// managed as a single unit (e.g. a batch of chickens).
type AnimalType string

const (
	AnimalIndividual AnimalType = "INDIVIDUAL"
	AnimalLot        AnimalType = "LOT"
)

// Sex of an individual animal. Lots are always SexUnknown.
type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

// AnimalStatus tracks the animal's lifecycle on the farm.
type AnimalStatus string

const (
	AnimalActive AnimalStatus = "ACTIVE"
	AnimalSold   AnimalStatus = "SOLD"
	AnimalDead   AnimalStatus = "DEAD"
)

// Animal represents a single animal or a lot belonging to a farm
type Animal struct {
	ID        int64
	FarmID    int64
	Tag       string // display name or ear tag
	Type      AnimalType
	Species   string
	Sex       Sex
	Status    AnimalStatus
	LotCount  *int // head count, set only when Type is LOT
	BirthDate *time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TargetType returns the event target type matching the animal's kind.
// Events recorded against the animal must carry this value.
func (a *Animal) TargetType() TargetType {
	if a.Type == AnimalLot {
		return TargetLot
	}
	return TargetAnimal
}

// AnimalFilter narrows animal listings. Zero values mean "any".
type AnimalFilter struct {
	Type    AnimalType
	Status  AnimalStatus
	Species string
}
