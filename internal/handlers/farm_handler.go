package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/permissions"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
	"github.com/Teknovat/farm-tracker-sub001/internal/session"
)

// FarmHandler handles farm and membership HTTP requests
type FarmHandler struct {
	farmService *service.FarmService
	sessions    *session.Manager
	checker     *permissions.Checker
	logger      *zap.Logger
}

// NewFarmHandler creates a new farm handler
func NewFarmHandler(farmService *service.FarmService, sessions *session.Manager, checker *permissions.Checker, logger *zap.Logger) *FarmHandler {
	return &FarmHandler{
		farmService: farmService,
		sessions:    sessions,
		checker:     checker,
		logger:      logger,
	}
}

type farmRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

// Create makes a new farm with the caller as its owner and binds the
// session to it. Any authenticated user may create a farm.
func (h *FarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req farmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	farm, err := h.farmService.CreateFarm(claims.UserID, req.Name, req.Currency, req.Timezone)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if err := h.sessions.Create(w, r, claims.UserID, farm.ID, models.RoleOwner); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toFarmResponse(farm))
}

// List answers the caller's farms with their role in each.
func (h *FarmHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farms, err := h.farmService.ListUserFarms(claims.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	out := make([]farmWithRoleResponse, 0, len(farms))
	for i := range farms {
		out = append(out, farmWithRoleResponse{
			farmResponse: toFarmResponse(&farms[i].Farm),
			Role:         farms[i].Role,
		})
	}

	respondJSON(w, http.StatusOK, out)
}

// Get answers a single farm.
func (h *FarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	farm, err := h.farmService.GetFarm(farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toFarmResponse(farm))
}

// Update changes a farm's name, currency or timezone.
func (h *FarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req farmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	farm, err := h.farmService.UpdateFarm(farmID, req.Name, req.Currency, req.Timezone)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toFarmResponse(farm))
}

// Delete removes a farm and everything in it. The session is unbound
// if it pointed at the deleted farm.
func (h *FarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.farmService.DeleteFarm(farmID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if claims.FarmID == farmID {
		if err := h.sessions.Create(w, r, claims.UserID, 0, ""); err != nil {
			h.logger.Warn("failed to unbind session after farm delete", zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "farm deleted"})
}

// Select binds the caller's session to one of their farms.
func (h *FarmHandler) Select(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	member, err := h.farmService.SelectFarm(claims.UserID, farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	farm, err := h.farmService.GetFarm(farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if err := h.sessions.Create(w, r, claims.UserID, farmID, member.Role); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, farmWithRoleResponse{
		farmResponse: toFarmResponse(farm),
		Role:         member.Role,
	})
}

// Members answers a farm's member list with user details.
func (h *FarmHandler) Members(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	members, err := h.farmService.ListMembers(farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for i := range members {
		out = append(out, toMemberResponse(&members[i]))
	}

	respondJSON(w, http.StatusOK, out)
}

type memberUpdateRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UpdateMember changes a member's role or status. Fields left out keep
// their current value.
func (h *FarmHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req memberUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	current, err := h.farmService.GetMember(farmID, userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	role := current.Role
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	status := current.Status
	if req.Status != "" {
		status = models.MemberStatus(req.Status)
	}

	member, err := h.farmService.UpdateMember(farmID, userID, role, status)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toMemberResponse(member))
}

// RemoveMember takes a user out of a farm. Members may remove
// themselves (leave); removing anyone else needs the member-management
// capability.
func (h *FarmHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if userID != claims.UserID && !h.checker.CheckFarmAccess(claims.UserID, farmID, permissions.ActionManageMembers) {
		respondError(w, http.StatusForbidden, CodeForbidden, "insufficient permissions")
		return
	}

	if err := h.farmService.RemoveMember(farmID, userID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}
