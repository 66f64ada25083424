package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

// LogReader is the subset of internal/service/telemetry's read side this
// handler needs.
type LogReader interface {
	Daily(ctx context.Context, vehicleID, date string) (*model.DailyLog, error)
	Periodic(ctx context.Context, vehicleID, start, end string) (*model.PeriodicSummary, error)
	Overall(ctx context.Context, vehicleID string) (*model.PeriodicSummary, error)
}

type LogsHandler struct {
	logger *slog.Logger
	logs   LogReader
}

func NewLogsHandler(logger *slog.Logger, logs LogReader) *LogsHandler {
	return &LogsHandler{logger: logger, logs: logs}
}

// logQuery is the shared request body for the three /logs routes. Dates
// are D-M-YYYY strings, the same form the DailyLog documents carry.
type logQuery struct {
	VID   string `json:"vid"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func decodeLogQuery(w http.ResponseWriter, r *http.Request) (logQuery, bool) {
	var q logQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		Error(w, "request body is not valid JSON", apperr.Wrap(apperr.KindParse, "decode log query", err))
		return q, false
	}
	if q.VID == "" {
		Error(w, "vid is required", apperr.New(apperr.KindParse, "missing vid"))
		return q, false
	}
	return q, true
}

func (h *LogsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeLogQuery(w, r)
	if !ok {
		return
	}
	log, err := h.logs.Daily(r.Context(), q.VID, q.Date)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, log)
}

func (h *LogsHandler) Periodic(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeLogQuery(w, r)
	if !ok {
		return
	}
	if q.Start == "" || q.End == "" {
		Error(w, "start and end dates are required", apperr.New(apperr.KindParse, "missing period bounds"))
		return
	}
	summary, err := h.logs.Periodic(r.Context(), q.VID, q.Start, q.End)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, summary)
}

func (h *LogsHandler) Overall(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeLogQuery(w, r)
	if !ok {
		return
	}
	summary, err := h.logs.Overall(r.Context(), q.VID)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, summary)
}
