package api

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type GenerateTelegramLinkResponse struct {
	Link string `json:"link"`
}

func (h *Handler) GenerateTelegramLinkHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if h.telegramLinks == nil {
		writeError(w, http.StatusServiceUnavailable, "Telegram linking is not available")
		return
	}

	token, err := h.linkingService.GenerateLinkToken(userID)
	if err != nil {
		logrus.Errorf("Failed to generate link token for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate Telegram link")
		return
	}

	writeJSON(w, http.StatusOK, GenerateTelegramLinkResponse{Link: h.telegramLinks.LinkURL(token)})
}
