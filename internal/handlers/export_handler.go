package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/service"
)

// ExportHandler streams farm data as CSV downloads.
type ExportHandler struct {
	eventService   *service.EventService
	cashboxService *service.CashboxService
	logger         *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(eventService *service.EventService, cashboxService *service.CashboxService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		eventService:   eventService,
		cashboxService: cashboxService,
		logger:         logger,
	}
}

// Events downloads a farm's full event history as CSV.
func (h *ExportHandler) Events(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	events, err := h.eventService.Export(farmID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	setCSVHeaders(w, exportFilename(farmID, "events"))
	if err := writeEventsCSV(w, events); err != nil {
		h.logger.Error("event export failed", zap.Int64("farm_id", farmID), zap.Error(err))
	}
}

// Cashbox downloads a farm's full ledger as CSV.
func (h *ExportHandler) Cashbox(w http.ResponseWriter, r *http.Request) {
	farmID, err := parseIDParam(r, "farmID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	entries, _, err := h.cashboxService.ListEntries(farmID, models.CashboxFilter{})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	setCSVHeaders(w, exportFilename(farmID, "cashbox"))
	if err := writeCashboxCSV(w, entries); err != nil {
		h.logger.Error("cashbox export failed", zap.Int64("farm_id", farmID), zap.Error(err))
	}
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
}

func exportFilename(farmID int64, kind string) string {
	return fmt.Sprintf("farm-%d-%s-%s.csv", farmID, kind, time.Now().Format("2006-01-02"))
}

func writeEventsCSV(w io.Writer, events []models.Event) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "date", "animal_tag", "target_type", "type", "cost", "next_due", "notes"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range events {
		e := &events[i]
		cost := ""
		if e.Cost != nil {
			cost = strconv.FormatFloat(*e.Cost, 'f', 2, 64)
		}
		nextDue := ""
		if e.NextDue != nil {
			nextDue = e.NextDue.Format("2006-01-02")
		}
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date.Format("2006-01-02"),
			e.AnimalTag,
			string(e.TargetType),
			string(e.Type),
			cost,
			nextDue,
			e.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeCashboxCSV(w io.Writer, entries []models.CashboxEntry) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "date", "entry_type", "category", "amount", "description", "event_id"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		eventID := ""
		if e.EventID != nil {
			eventID = strconv.FormatInt(*e.EventID, 10)
		}
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Format("2006-01-02"),
			string(e.EntryType),
			string(e.Category),
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Description,
			eventID,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
