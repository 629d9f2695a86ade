package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService *service.EventService
	logger       *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, logger: logger}
}

type eventRequest struct {
	AnimalID      int64    `json:"animal_id"`
	TargetType    string   `json:"target_type"`
	Type          string   `json:"type"`
	Date          string   `json:"date"` // RFC3339
	Cost          *float64 `json:"cost"`
	NextDue       string   `json:"next_due"` // RFC3339
	Notes         string   `json:"notes"`
	AttachmentKey string   `json:"attachment_key"`
	Category      string   `json:"category"`
}

func (req *eventRequest) toInput() (service.EventInput, error) {
	in := service.EventInput{
		AnimalID:      req.AnimalID,
		TargetType:    models.TargetType(req.TargetType),
		Type:          models.EventType(req.Type),
		Cost:          req.Cost,
		Notes:         req.Notes,
		AttachmentKey: req.AttachmentKey,
		Category:      models.Category(req.Category),
	}
	if req.Date != "" {
		t, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return in, errors.New("date must be RFC3339")
		}
		in.Date = t
	}
	if req.NextDue != "" {
		t, err := time.Parse(time.RFC3339, req.NextDue)
		if err != nil {
			return in, errors.New("next_due must be RFC3339")
		}
		in.NextDue = &t
	}
	return in, nil
}

// Create records an event against an animal or lot. An event carrying
// a cost also books a cashbox expense.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(farmID, claims.UserID, in)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toEventResponse(event))
}

// List answers a farm's events, newest first, with optional filters.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	filter, err := parseEventFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	events, err := h.eventService.ListEvents(farmID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// Get answers a single event.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	eventID, err := parseIDParam(r, "eventID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	event, err := h.eventService.GetEvent(farmID, eventID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toEventResponse(event))
}

// Update rewrites an event's details. The cashbox entry recorded at
// creation is never adjusted retroactively.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	eventID, err := parseIDParam(r, "eventID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(farmID, eventID, in)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toEventResponse(event))
}

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	eventID, err := parseIDParam(r, "eventID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.eventService.DeleteEvent(farmID, eventID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// Upcoming answers events with a follow-up due in the next N days
// (default 7), soonest first.
func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, CodeValidation, "days must be a positive number")
			return
		}
		days = n
	}

	events, err := h.eventService.Upcoming(farmID, days)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// Statistics answers event counts and costs, optionally bounded by a
// date window.
func (h *EventHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	from, err := parseTimeParam(r, "from")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	stats, err := h.eventService.Statistics(farmID, from, to)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, statisticsResponse{
		Total:       stats.Total,
		TotalCost:   stats.TotalCost,
		CountByType: stats.CountByType,
		CostByType:  stats.CostByType,
	})
}

func parseEventFilter(r *http.Request) (models.EventFilter, error) {
	filter := models.EventFilter{}

	// types=VACCINATION,TREATMENT
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]models.EventType, 0, len(parts))
		for _, p := range parts {
			t := models.EventType(strings.TrimSpace(p))
			if t == "" {
				continue
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	if v := r.URL.Query().Get("animal_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return models.EventFilter{}, errors.New("animal_id must be a positive number")
		}
		filter.AnimalID = id
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return models.EventFilter{}, errors.New("limit must be a positive number")
		}
		filter.Limit = n
	}

	from, err := parseTimeParam(r, "from")
	if err != nil {
		return models.EventFilter{}, err
	}
	filter.From = from

	to, err := parseTimeParam(r, "to")
	if err != nil {
		return models.EventFilter{}, err
	}
	filter.To = to

	return filter, nil
}

// parseTimeParam reads an optional RFC3339 query parameter.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errors.New(name + " must be RFC3339")
	}
	return &t, nil
}
