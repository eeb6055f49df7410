package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/assistant"
)

// msgMessageRequired is the relay's wire text for a blank message; web
// clients match on it.
const msgMessageRequired = "Message is required"

// NutritionAssistantHandler serves the classification relay used by the web
// client. The userId in the body must be the authenticated caller.
func (h *Handler) NutritionAssistantHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	callerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req assistant.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID != "" && req.UserID != callerID {
		logrus.Warnf("Relay request for user %s rejected for caller %s", req.UserID, callerID)
		writeError(w, http.StatusForbidden, "userId does not match the authenticated user")
		return
	}

	result, err := h.relay.Classify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, msgMessageRequired)
		case errors.Is(err, assistant.ErrMissingUserID),
			errors.Is(err, assistant.ErrInvalidUserID):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logrus.WithField("user_id", req.UserID).Errorf("Nutrition assistant failed: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
