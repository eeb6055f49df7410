package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/chat"
)

type SubmitMessageRequest struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SubmitMessageResponse carries the turn and, when the turn was answered but
// not fully saved, a warning the client should surface.
type SubmitMessageResponse struct {
	*chat.Turn
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	messages, err := h.chatService.History(r.Context(), userID)
	if err != nil {
		logrus.Errorf("Failed to load chat history for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) SubmitChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SubmitMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	turn, err := h.chatService.Submit(r.Context(), userID, req.Message, req.Timestamp)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, msgMessageRequired)
		return
	case errors.Is(err, chat.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "A previous message is still being processed")
		return
	case err != nil && turn == nil:
		logrus.Errorf("Chat submission failed for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	resp := SubmitMessageResponse{Turn: turn}
	if err != nil {
		resp.Warning = "Your message was answered but could not be saved."
	}
	writeJSON(w, http.StatusCreated, resp)
}
