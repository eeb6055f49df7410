package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/profile"
)

func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	form, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		logrus.Errorf("Failed to load profile for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *Handler) SaveProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var form profile.Form
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.profileService.Save(r.Context(), userID, form)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidProfile) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logrus.Errorf("Failed to save profile for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) SuggestGoalsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var in profile.GoalInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	suggestion, err := h.profileService.SuggestGoals(in)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidProfile) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to calculate goals")
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
