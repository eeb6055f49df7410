package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/chat"
	"github.com/katrohit/nutrifolio/internal/foodlog"
	"github.com/katrohit/nutrifolio/internal/linking"
	"github.com/katrohit/nutrifolio/internal/users"
	"github.com/katrohit/nutrifolio/pkg/config"
)

const (
	msgNotLinked      = "This Telegram account is not linked yet. Open the NutriFolio web app, go to your profile and choose \"Connect Telegram\"."
	msgBusy           = "Still working on your previous message, give me a moment."
	msgGenericFailure = "Something went wrong while processing your message. Please try again later."
	msgVoiceFailure   = "I couldn't understand that voice message. Please try again or type it out."
	msgWelcome        = "Hi! Tell me what you ate, for example \"2 eggs and toast\", and I'll log it. Send /today for today's totals."
)

// Bot is the part of tgbotapi.BotAPI the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type ChatService interface {
	Submit(ctx context.Context, userID, message, timestamp string) (*chat.Turn, error)
}

type SummaryService interface {
	DailySummary(ctx context.Context, userID, date string) (*foodlog.DailySummary, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type UserService interface {
	LinkTelegramAccount(ctx context.Context, userID string, telegramID int64) error
	FindUserByTelegramID(ctx context.Context, telegramID int64) (string, error)
}

type LinkService interface {
	ValidateAndUseLinkToken(token string) (string, error)
}

type Handler struct {
	bot         Bot
	botUserName string
	cfg         *config.Config
	httpClient  *http.Client

	chatService    ChatService
	summaryService SummaryService
	transcriber    Transcriber
	userService    UserService
	linkingService LinkService
}

func NewHandler(
	cfg *config.Config,
	chatService ChatService,
	summaryService SummaryService,
	transcriber Transcriber,
	userService UserService,
	linkingService LinkService,
) (*Handler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	logrus.Infof("Telegram bot started: %s", bot.Self.UserName)

	return newHandler(bot, bot.Self.UserName, cfg, chatService, summaryService, transcriber, userService, linkingService), nil
}

func newHandler(
	bot Bot,
	botUserName string,
	cfg *config.Config,
	chatService ChatService,
	summaryService SummaryService,
	transcriber Transcriber,
	userService UserService,
	linkingService LinkService,
) *Handler {
	return &Handler{
		bot:            bot,
		botUserName:    botUserName,
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		chatService:    chatService,
		summaryService: summaryService,
		transcriber:    transcriber,
		userService:    userService,
		linkingService: linkingService,
	}
}

func (h *Handler) SetupWebhook() error {
	webhookURL := h.cfg.TelegramWebhookURL
	if webhookURL == "" {
		webhookURL = fmt.Sprintf("https://%s:%s/webhook", h.cfg.ServerHost, h.cfg.ServerPort)
	}

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}

	if _, err := h.bot.Request(webhookConfig); err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}

	logrus.Infof("Telegram webhook registered at %s", webhookURL)
	return nil
}

// LinkURL is the deep link that starts the bot with a link token.
func (h *Handler) LinkURL(token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", h.botUserName, token)
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logrus.Errorf("Failed to decode Telegram update: %v", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	h.handleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (h *Handler) reply(chatID int64, text string) {
	if err := h.SendMessage(chatID, text); err != nil {
		logrus.Errorf("Failed to reply in chat %d: %v", chatID, err)
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	command, args := parseCommand(msg.Text)
	if command == "start" && args != "" {
		h.handleLinkTokenStart(ctx, chatID, msg.From.ID, args)
		return
	}

	userID, err := h.userService.FindUserByTelegramID(ctx, msg.From.ID)
	if errors.Is(err, users.ErrUserNotFound) {
		h.reply(chatID, msgNotLinked)
		return
	}
	if err != nil {
		h.reply(chatID, msgGenericFailure)
		return
	}

	switch command {
	case "start", "help":
		h.reply(chatID, msgWelcome)
		return
	case "today":
		h.handleToday(ctx, chatID, userID)
		return
	}

	timestamp := time.Unix(int64(msg.Date), 0).Format(time.RFC3339)

	if msg.Voice != nil {
		h.handleVoiceMessage(ctx, chatID, userID, msg.Voice.FileID, timestamp)
		return
	}

	if text := strings.TrimSpace(msg.Text); text != "" {
		h.submit(ctx, chatID, userID, text, timestamp)
	}
}

func (h *Handler) submit(ctx context.Context, chatID int64, userID, text, timestamp string) {
	turn, err := h.chatService.Submit(ctx, userID, text, timestamp)
	switch {
	case errors.Is(err, chat.ErrSubmissionInFlight):
		h.reply(chatID, msgBusy)
		return
	case err != nil && turn == nil:
		logrus.Errorf("Chat submission from Telegram failed for user %s: %v", userID, err)
		h.reply(chatID, msgGenericFailure)
		return
	case err != nil:
		logrus.Warnf("Chat turn for user %s was not fully saved: %v", userID, err)
	}

	h.reply(chatID, turn.AssistantMessage.Message)
}

func (h *Handler) handleVoiceMessage(ctx context.Context, chatID int64, userID, fileID, timestamp string) {
	text, err := h.transcribeVoice(ctx, fileID)
	if err != nil || text == "" {
		logrus.Errorf("Failed to transcribe voice message for user %s: %v", userID, err)
		h.reply(chatID, msgVoiceFailure)
		return
	}

	h.reply(chatID, "🎧 "+text)
	h.submit(ctx, chatID, userID, text, timestamp)
}

func (h *Handler) transcribeVoice(ctx context.Context, fileID string) (string, error) {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download voice file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download voice file: status %d", resp.StatusCode)
	}

	return h.transcriber.Transcribe(ctx, resp.Body, "voice.ogg")
}

func (h *Handler) handleToday(ctx context.Context, chatID int64, userID string) {
	summary, err := h.summaryService.DailySummary(ctx, userID, "")
	if err != nil {
		logrus.Errorf("Failed to build daily summary for user %s: %v", userID, err)
		h.reply(chatID, msgGenericFailure)
		return
	}
	h.reply(chatID, formatSummary(summary))
}

func formatSummary(s *foodlog.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today (%s)\n", s.Date)
	fmt.Fprintf(&b, "Calories: %.0f / %.0f kcal\n", s.Consumed.Calories, s.Goals.Calories)
	fmt.Fprintf(&b, "Protein: %.1f / %.0f g\n", s.Consumed.Protein, s.Goals.Protein)
	fmt.Fprintf(&b, "Carbs: %.1f / %.0f g\n", s.Consumed.Carbs, s.Goals.Carbs)
	fmt.Fprintf(&b, "Fat: %.1f / %.0f g", s.Consumed.Fat, s.Goals.Fat)
	return b.String()
}

func (h *Handler) handleLinkTokenStart(ctx context.Context, chatID int64, telegramUserID int64, token string) {
	userID, err := h.linkingService.ValidateAndUseLinkToken(token)
	if err != nil {
		logrus.Warnf("Link token rejected for telegram_user_id %d: %v", telegramUserID, err)
		var errMsg string
		switch {
		case errors.Is(err, linking.ErrTokenNotFound):
			errMsg = "This link is invalid or has expired. Please create a new one in the web app."
		case errors.Is(err, linking.ErrTokenAlreadyUsed):
			errMsg = "This link has already been used."
		default:
			errMsg = "Could not process the link. Please try again later."
		}
		h.reply(chatID, errMsg)
		return
	}

	err = h.userService.LinkTelegramAccount(ctx, userID, telegramUserID)
	if err != nil {
		var errMsg string
		switch {
		case errors.Is(err, users.ErrTelegramIDAlreadyLinkedToOtherUser):
			errMsg = "This Telegram account is already linked to another NutriFolio profile."
		case errors.Is(err, users.ErrTelegramIDAlreadyLinkedToThisUser):
			errMsg = "This Telegram account is already linked to your profile."
		default:
			errMsg = "Something went wrong while linking your account. Please try again later."
		}
		h.reply(chatID, errMsg)
		return
	}

	h.reply(chatID, "Your Telegram account is now linked. "+msgWelcome)
	logrus.Infof("Telegram account %d linked to user %s", telegramUserID, userID)
}

// parseCommand splits "/cmd@bot args" into "cmd" and "args". Text that is
// not a command yields an empty command.
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(args)
}
