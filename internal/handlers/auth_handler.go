package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
	"github.com/Teknovat/farm-tracker-sub001/internal/session"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	farmService  *service.FarmService
	sessions     *session.Manager
	googleConfig *oauth2.Config
	appBaseURL   string
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler. googleConfig may carry an
// empty client ID, which disables the Google sign-in routes.
func NewAuthHandler(authService *service.AuthService, farmService *service.FarmService, sessions *session.Manager, googleConfig *oauth2.Config, appBaseURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		farmService:  farmService,
		sessions:     sessions,
		googleConfig: googleConfig,
		appBaseURL:   appBaseURL,
		logger:       logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates an account and signs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	// New accounts have no farm yet; the session is unbound.
	if err := h.sessions.Create(w, r, user.ID, 0, ""); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues a session. When the user belongs
// to exactly one farm the session is bound to it straight away.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	farmID, role := h.defaultFarm(user.ID)
	if err := h.sessions.Create(w, r, user.ID, farmID, role); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Session answers who the caller is and which farm the session is
// bound to.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
		return
	}

	user, err := h.authService.GetUser(claims.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	resp := sessionResponse{User: toUserResponse(user)}
	if claims.FarmID != 0 {
		farm, err := h.farmService.GetFarm(claims.FarmID)
		if err == nil {
			fr := toFarmResponse(farm)
			resp.Farm = &fr
			resp.Role = claims.Role
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// defaultFarm picks the farm a fresh session should be bound to: the
// user's only farm, or none when they have zero or several.
func (h *AuthHandler) defaultFarm(userID int64) (int64, models.Role) {
	farms, err := h.farmService.ListUserFarms(userID)
	if err != nil || len(farms) != 1 {
		return 0, ""
	}
	return farms[0].Farm.ID, farms[0].Role
}
