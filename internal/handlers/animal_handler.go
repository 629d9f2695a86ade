package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
)

// AnimalHandler handles animal HTTP requests
type AnimalHandler struct {
	animalService *service.AnimalService
	logger        *zap.Logger
}

// NewAnimalHandler creates a new animal handler
func NewAnimalHandler(animalService *service.AnimalService, logger *zap.Logger) *AnimalHandler {
	return &AnimalHandler{animalService: animalService, logger: logger}
}

type animalRequest struct {
	Tag       string `json:"tag"`
	Type      string `json:"type"`
	Species   string `json:"species"`
	Sex       string `json:"sex"`
	Status    string `json:"status"`
	LotCount  *int   `json:"lot_count"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	Notes     string `json:"notes"`
}

func (req *animalRequest) toInput() (service.AnimalInput, error) {
	in := service.AnimalInput{
		Tag:      req.Tag,
		Type:     models.AnimalType(req.Type),
		Species:  req.Species,
		Sex:      models.Sex(req.Sex),
		Status:   models.AnimalStatus(req.Status),
		LotCount: req.LotCount,
		Notes:    req.Notes,
	}
	if req.BirthDate != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return in, err
		}
		in.BirthDate = &t
	}
	return in, nil
}

// Create registers an animal or lot.
func (h *AnimalHandler) Create(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req animalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "birth_date must be YYYY-MM-DD",
			fieldError{Field: "birth_date", Message: "must be YYYY-MM-DD"})
		return
	}

	animal, err := h.animalService.CreateAnimal(farmID, in)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toAnimalResponse(animal))
}

// List answers a farm's animals, optionally filtered by type, status
// or species.
func (h *AnimalHandler) List(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	filter := models.AnimalFilter{
		Type:    models.AnimalType(r.URL.Query().Get("type")),
		Status:  models.AnimalStatus(r.URL.Query().Get("status")),
		Species: r.URL.Query().Get("species"),
	}

	animals, err := h.animalService.ListAnimals(farmID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	out := make([]animalResponse, 0, len(animals))
	for i := range animals {
		out = append(out, toAnimalResponse(&animals[i]))
	}

	respondJSON(w, http.StatusOK, out)
}

// Get answers a single animal.
func (h *AnimalHandler) Get(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	animalID, err := parseIDParam(r, "animalID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	animal, err := h.animalService.GetAnimal(farmID, animalID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toAnimalResponse(animal))
}

// Update changes an animal's details. The individual/lot kind is
// fixed at creation and silently preserved.
func (h *AnimalHandler) Update(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	animalID, err := parseIDParam(r, "animalID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req animalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "birth_date must be YYYY-MM-DD",
			fieldError{Field: "birth_date", Message: "must be YYYY-MM-DD"})
		return
	}

	animal, err := h.animalService.UpdateAnimal(farmID, animalID, in)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toAnimalResponse(animal))
}

// Delete removes an animal and its events.
func (h *AnimalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	animalID, err := parseIDParam(r, "animalID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.animalService.DeleteAnimal(farmID, animalID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "animal deleted"})
}
