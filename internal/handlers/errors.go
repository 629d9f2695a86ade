package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/service"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

// respondServiceError translates a service error into the envelope.
// Validation errors carry field details; unknown errors become an
// opaque 500 and are logged with their cause.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *validation.Error
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, CodeValidation, "validation failed",
			fieldError{Field: ve.Field, Message: ve.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, CodeEmailTaken, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrNotMember):
		respondError(w, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, service.ErrLastOwner):
		respondError(w, http.StatusBadRequest, CodeLastOwner, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		respondError(w, http.StatusBadRequest, CodeAlreadyMember, err.Error())
	case errors.Is(err, service.ErrInvitationExists):
		respondError(w, http.StatusBadRequest, CodeInvitationExists, err.Error())
	case errors.Is(err, service.ErrInvitationInvalid):
		respondError(w, http.StatusBadRequest, CodeInvitationInvalid, err.Error())
	case errors.Is(err, service.ErrInvitationExpired):
		respondError(w, http.StatusBadRequest, CodeInvitationExpired, err.Error())
	case errors.Is(err, service.ErrTargetTypeMismatch):
		respondError(w, http.StatusBadRequest, CodeTargetTypeMismatch, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrFarmNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrAnimalNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrInvitationNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
