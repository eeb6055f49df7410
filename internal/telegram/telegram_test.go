package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katrohit/nutrifolio/internal/chat"
	"github.com/katrohit/nutrifolio/internal/foodlog"
	"github.com/katrohit/nutrifolio/internal/linking"
	"github.com/katrohit/nutrifolio/internal/messagestore/models"
	"github.com/katrohit/nutrifolio/internal/users"
	"github.com/katrohit/nutrifolio/pkg/config"
)

const (
	linkedUserID   = "0b7f9a52-3c1d-4e6f-8a9b-1c2d3e4f5a6b"
	telegramUserID = int64(4242)
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []string
	requests []tgbotapi.Chattable
	fileURL  string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	return b.fileURL, nil
}

func (b *fakeBot) messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sent...)
}

type fakeChat struct {
	submitted []string
	timestamp string
	reply     string
	err       error
}

func (f *fakeChat) Submit(_ context.Context, userID, message, timestamp string) (*chat.Turn, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, message)
	f.timestamp = timestamp
	return &chat.Turn{
		UserMessage:      &models.ChatMessage{UserID: userID, Message: message, IsUser: true},
		AssistantMessage: &models.ChatMessage{UserID: userID, Message: f.reply},
	}, nil
}

type fakeSummaries struct{}

func (fakeSummaries) DailySummary(_ context.Context, _ string, _ string) (*foodlog.DailySummary, error) {
	return &foodlog.DailySummary{
		Date:     "2025-03-01",
		Consumed: foodlog.Totals{Calories: 1250, Protein: 60, Carbs: 140.5, Fat: 40},
		Goals:    foodlog.DefaultGoals,
	}, nil
}

type fakeTranscriber struct {
	audio string
	text  string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	f.audio = string(data)
	return f.text, nil
}

type fakeUsers struct {
	links   map[int64]string
	linkErr error
}

func (f *fakeUsers) LinkTelegramAccount(_ context.Context, userID string, telegramID int64) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.links[telegramID] = userID
	return nil
}

func (f *fakeUsers) FindUserByTelegramID(_ context.Context, telegramID int64) (string, error) {
	userID, ok := f.links[telegramID]
	if !ok {
		return "", users.ErrUserNotFound
	}
	return userID, nil
}

type fakeLinks struct {
	tokens map[string]string
	used   map[string]bool
}

func (f *fakeLinks) ValidateAndUseLinkToken(token string) (string, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return "", linking.ErrTokenNotFound
	}
	if f.used[token] {
		return "", linking.ErrTokenAlreadyUsed
	}
	f.used[token] = true
	return userID, nil
}

type fixture struct {
	handler     *Handler
	bot         *fakeBot
	chat        *fakeChat
	users       *fakeUsers
	transcriber *fakeTranscriber
}

func newFixture(t *testing.T, linked bool) *fixture {
	t.Helper()
	f := &fixture{
		bot:         &fakeBot{},
		chat:        &fakeChat{reply: "Logged Banana (105 cal) for Breakfast"},
		users:       &fakeUsers{links: map[int64]string{}},
		transcriber: &fakeTranscriber{},
	}
	if linked {
		f.users.links[telegramUserID] = linkedUserID
	}
	links := &fakeLinks{tokens: map[string]string{"tok123": linkedUserID}, used: map[string]bool{}}
	cfg := &config.Config{ServerHost: "example.com", ServerPort: "8443"}
	f.handler = newHandler(f.bot, "nutrifolio_bot", cfg, f.chat, fakeSummaries{}, f.transcriber, f.users, links)
	return f
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 7,
			Date:      1740816000,
			From:      &tgbotapi.User{ID: telegramUserID, FirstName: "Ada"},
			Chat:      &tgbotapi.Chat{ID: 99, Type: "private"},
			Text:      text,
		},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text, cmd, args string
	}{
		{"/start abc", "start", "abc"},
		{"/Today@nutrifolio_bot", "today", ""},
		{"  /start   tok  ", "start", "tok"},
		{"a banana", "", ""},
	}
	for _, tt := range tests {
		cmd, args := parseCommand(tt.text)
		assert.Equal(t, tt.cmd, cmd, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestStartWithTokenLinksAccount(t *testing.T) {
	f := newFixture(t, false)

	f.handler.handleUpdate(context.Background(), textUpdate("/start tok123"))
	assert.Equal(t, linkedUserID, f.users.links[telegramUserID])

	f.handler.handleUpdate(context.Background(), textUpdate("/start tok123"))
	f.handler.handleUpdate(context.Background(), textUpdate("/start nope"))

	sent := f.bot.messages()
	require.Len(t, sent, 3)
	assert.Contains(t, sent[0], "now linked")
	assert.Equal(t, "This link has already been used.", sent[1])
	assert.Contains(t, sent[2], "invalid or has expired")
}

func TestStartLinkConflict(t *testing.T) {
	f := newFixture(t, false)
	f.users.linkErr = users.ErrTelegramIDAlreadyLinkedToOtherUser

	f.handler.handleUpdate(context.Background(), textUpdate("/start tok123"))

	sent := f.bot.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "already linked to another")
}

func TestUnlinkedUserGetsHint(t *testing.T) {
	f := newFixture(t, false)

	f.handler.handleUpdate(context.Background(), textUpdate("a banana"))

	assert.Equal(t, []string{msgNotLinked}, f.bot.messages())
	assert.Empty(t, f.chat.submitted)
}

func TestTextMessageIsSubmitted(t *testing.T) {
	f := newFixture(t, true)

	f.handler.handleUpdate(context.Background(), textUpdate("  a banana "))

	assert.Equal(t, []string{"a banana"}, f.chat.submitted)
	assert.NotEmpty(t, f.chat.timestamp)
	assert.Equal(t, []string{"Logged Banana (105 cal) for Breakfast"}, f.bot.messages())
}

func TestSubmissionInFlight(t *testing.T) {
	f := newFixture(t, true)
	f.chat.err = chat.ErrSubmissionInFlight

	f.handler.handleUpdate(context.Background(), textUpdate("an apple"))

	assert.Equal(t, []string{msgBusy}, f.bot.messages())
}

func TestSubmissionFailure(t *testing.T) {
	f := newFixture(t, true)
	f.chat.err = errors.New("db down")

	f.handler.handleUpdate(context.Background(), textUpdate("an apple"))

	assert.Equal(t, []string{msgGenericFailure}, f.bot.messages())
}

func TestTodayCommand(t *testing.T) {
	f := newFixture(t, true)

	f.handler.handleUpdate(context.Background(), textUpdate("/today"))

	sent := f.bot.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Today (2025-03-01)")
	assert.Contains(t, sent[0], "Calories: 1250 / 2000 kcal")
	assert.Contains(t, sent[0], "Carbs: 140.5 / 200 g")
	assert.Empty(t, f.chat.submitted)
}

func TestVoiceMessageIsTranscribedAndSubmitted(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OGGDATA"))
	}))
	defer fileServer.Close()

	f := newFixture(t, true)
	f.bot.fileURL = fileServer.URL + "/voice.ogg"
	f.transcriber.text = "two boiled eggs"

	update := textUpdate("")
	update.Message.Voice = &tgbotapi.Voice{FileID: "voice-1", Duration: 2}
	f.handler.handleUpdate(context.Background(), update)

	assert.Equal(t, "OGGDATA", f.transcriber.audio)
	assert.Equal(t, []string{"two boiled eggs"}, f.chat.submitted)
	sent := f.bot.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "🎧 two boiled eggs", sent[0])
}

func TestVoiceDownloadFailure(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer fileServer.Close()

	f := newFixture(t, true)
	f.bot.fileURL = fileServer.URL

	update := textUpdate("")
	update.Message.Voice = &tgbotapi.Voice{FileID: "voice-1"}
	f.handler.handleUpdate(context.Background(), update)

	assert.Equal(t, []string{msgVoiceFailure}, f.bot.messages())
	assert.Empty(t, f.chat.submitted)
}

func TestHandleWebhook(t *testing.T) {
	f := newFixture(t, true)

	body := `{"update_id":1,"message":{"message_id":1,"date":1740816000,` +
		`"chat":{"id":99,"type":"private"},"from":{"id":4242,"is_bot":false,"first_name":"Ada"},"text":"an apple"}}`
	rec := httptest.NewRecorder()
	f.handler.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"an apple"}, f.chat.submitted)

	rec = httptest.NewRecorder()
	f.handler.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.HandleWebhook(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSetupWebhookAndLinkURL(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.handler.SetupWebhook())
	require.Len(t, f.bot.requests, 1)
	wh, ok := f.bot.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, "https://example.com:8443/webhook", wh.URL.String())

	assert.Equal(t, "https://t.me/nutrifolio_bot?start=abc", f.handler.LinkURL("abc"))
}
