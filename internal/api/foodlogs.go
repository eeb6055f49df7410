package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/foodlog"
)

// foodLogError maps food log service errors onto HTTP responses.
func foodLogError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, foodlog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Food log entry not found")
	case errors.Is(err, foodlog.ErrInvalidDate), errors.Is(err, foodlog.ErrInvalidEntry):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logrus.Errorf("Failed to %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func (h *Handler) GetRecentFoodLogsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.foodLogService.Recent(r.Context(), userID, limit)
	if err != nil {
		foodLogError(w, err, "load recent foods")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) GetDayLogHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dayLog, err := h.foodLogService.DayLog(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		foodLogError(w, err, "load food log")
		return
	}
	writeJSON(w, http.StatusOK, dayLog)
}

func (h *Handler) GetFoodLogHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entry, err := h.foodLogService.GetEntry(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		foodLogError(w, err, "load food log entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) UpdateFoodLogHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req foodlog.EntryUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.foodLogService.UpdateEntry(r.Context(), userID, r.PathValue("id"), req)
	if err != nil {
		foodLogError(w, err, "update food log entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteFoodLogHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.foodLogService.DeleteEntry(r.Context(), userID, r.PathValue("id")); err != nil {
		foodLogError(w, err, "delete food log entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDailySummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.foodLogService.DailySummary(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		foodLogError(w, err, "build daily summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetWeeklySummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.foodLogService.WeeklySummary(r.Context(), userID, r.URL.Query().Get("end"))
	if err != nil {
		foodLogError(w, err, "build weekly summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
