package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
	"github.com/Teknovat/farm-tracker-sub001/internal/session"
)

// InvitationHandler handles invitation HTTP requests, both the
// farm-scoped management routes and the public token routes.
type InvitationHandler struct {
	invitationService *service.InvitationService
	emailService      *service.EmailService
	sessions          *session.Manager
	logger            *zap.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService *service.InvitationService, emailService *service.EmailService, sessions *session.Manager, logger *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		emailService:      emailService,
		sessions:          sessions,
		logger:            logger,
	}
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Create issues an invitation and emails the invitee when email
// sending is configured.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	inv, err := h.invitationService.Invite(r.Context(), h.emailService, farmID, claims.UserID, req.Email, models.Role(req.Role))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toInvitationResponse(inv))
}

// List answers a farm's invitations, newest first.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	invitations, err := h.invitationService.List(farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	out := make([]invitationResponse, 0, len(invitations))
	for i := range invitations {
		out = append(out, toInvitationResponse(&invitations[i]))
	}

	respondJSON(w, http.StatusOK, out)
}

// Revoke withdraws a pending invitation.
func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	invitationID, err := parseIDParam(r, "invitationID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.invitationService.Revoke(farmID, invitationID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "invitation revoked"})
}

// Show answers the public invitation view for an accept page. A
// pending invitation past its expiry is marked EXPIRED before
// answering.
func (h *InvitationHandler) Show(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	inv, err := h.invitationService.GetByToken(token)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toPublicInvitationResponse(inv))
}

type acceptRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Accept redeems an invitation: the account matching the invited email
// is reused or created, the membership is added and a session bound to
// the farm is issued.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var req acceptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	user, inv, err := h.invitationService.Accept(token, req.Name, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if err := h.sessions.Create(w, r, user.ID, inv.FarmID, inv.Role); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":    toUserResponse(user),
		"farm_id": inv.FarmID,
		"role":    inv.Role,
	})
}
