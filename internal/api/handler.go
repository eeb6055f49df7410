package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/assistant"
	"github.com/katrohit/nutrifolio/internal/auth"
	"github.com/katrohit/nutrifolio/internal/chat"
	"github.com/katrohit/nutrifolio/internal/foodlog"
	"github.com/katrohit/nutrifolio/internal/messagestore/models"
	"github.com/katrohit/nutrifolio/internal/profile"
)

type Relay interface {
	Classify(ctx context.Context, req assistant.Request) (*assistant.Result, error)
}

type ChatService interface {
	History(ctx context.Context, userID string) ([]models.ChatMessage, error)
	Submit(ctx context.Context, userID, message, timestamp string) (*chat.Turn, error)
}

type FoodLogService interface {
	Recent(ctx context.Context, userID string, limit int) ([]foodlog.Entry, error)
	GetEntry(ctx context.Context, userID, id string) (*foodlog.Entry, error)
	DayLog(ctx context.Context, userID, date string) (*foodlog.DayLog, error)
	DailySummary(ctx context.Context, userID, date string) (*foodlog.DailySummary, error)
	WeeklySummary(ctx context.Context, userID, endDate string) (*foodlog.WeeklySummary, error)
	UpdateEntry(ctx context.Context, userID, id string, u foodlog.EntryUpdate) (*foodlog.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (profile.Form, error)
	Save(ctx context.Context, userID string, f profile.Form) (profile.Form, error)
	SuggestGoals(in profile.GoalInput) (profile.GoalSuggestion, error)
}

type LinkTokenIssuer interface {
	GenerateLinkToken(userID string) (string, error)
}

// LinkURLBuilder turns a link token into a Telegram deep link.
type LinkURLBuilder interface {
	LinkURL(token string) string
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	relay          Relay
	chatService    ChatService
	foodLogService FoodLogService
	profileService ProfileService
	linkingService LinkTokenIssuer
	telegramLinks  LinkURLBuilder
	db             Pinger
}

// NewHandler wires the HTTP handlers. telegramLinks may be nil when the
// Telegram bot is disabled.
func NewHandler(
	relay Relay,
	chatService ChatService,
	foodLogService FoodLogService,
	profileService ProfileService,
	linkingService LinkTokenIssuer,
	telegramLinks LinkURLBuilder,
	database Pinger,
) *Handler {
	return &Handler{
		relay:          relay,
		chatService:    chatService,
		foodLogService: foodLogService,
		profileService: profileService,
		linkingService: linkingService,
		telegramLinks:  telegramLinks,
		db:             database,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		logrus.Error("Authenticated route reached without a user id in context")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}
