package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
)

// CashboxHandler handles cashbox HTTP requests
type CashboxHandler struct {
	cashboxService *service.CashboxService
	logger         *zap.Logger
}

// NewCashboxHandler creates a new cashbox handler
func NewCashboxHandler(cashboxService *service.CashboxService, logger *zap.Logger) *CashboxHandler {
	return &CashboxHandler{cashboxService: cashboxService, logger: logger}
}

// List answers a farm's cashbox entries, newest first, together with
// the ledger balance. The balance covers the whole ledger regardless
// of filters.
func (h *CashboxHandler) List(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	filter := models.CashboxFilter{
		EntryType: models.EntryType(r.URL.Query().Get("entry_type")),
		Category:  models.Category(r.URL.Query().Get("category")),
	}
	filter.From, err = parseTimeParam(r, "from")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	filter.To, err = parseTimeParam(r, "to")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	entries, balance, err := h.cashboxService.ListEntries(farmID, filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}

	respondJSON(w, http.StatusOK, cashboxListResponse{Entries: out, Balance: balance})
}

type entryRequest struct {
	EntryType   string  `json:"entry_type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// Create books a manual deposit or expense.
func (h *CashboxHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	entry, err := h.cashboxService.CreateEntry(farmID, claims.UserID,
		models.EntryType(req.EntryType), req.Amount, req.Description, models.Category(req.Category))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// Delete removes a cashbox entry.
func (h *CashboxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	entryID, err := parseIDParam(r, "entryID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.cashboxService.DeleteEntry(farmID, entryID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

// Summary answers the ledger totals per category and per entry type.
func (h *CashboxHandler) Summary(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	summary, err := h.cashboxService.Summary(farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summaryResponse{
		Balance:       summary.Balance,
		TotalDeposits: summary.TotalDeposits,
		TotalExpenses: summary.TotalExpenses,
		ByCategory:    summary.ByCategory,
	})
}
