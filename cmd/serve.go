package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katrohit/nutrifolio/internal/api"
	"github.com/katrohit/nutrifolio/internal/assistant"
	"github.com/katrohit/nutrifolio/internal/auth"
	"github.com/katrohit/nutrifolio/internal/chat"
	"github.com/katrohit/nutrifolio/internal/chatgpt"
	"github.com/katrohit/nutrifolio/internal/foodlog"
	"github.com/katrohit/nutrifolio/internal/linking"
	"github.com/katrohit/nutrifolio/internal/messagestore"
	"github.com/katrohit/nutrifolio/internal/metrics"
	"github.com/katrohit/nutrifolio/internal/middleware"
	"github.com/katrohit/nutrifolio/internal/profile"
	"github.com/katrohit/nutrifolio/internal/realtime"
	"github.com/katrohit/nutrifolio/internal/telegram"
	"github.com/katrohit/nutrifolio/internal/users"
	"github.com/katrohit/nutrifolio/pkg/config"
	"github.com/katrohit/nutrifolio/pkg/db"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, realtime hub and Telegram webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cfg *config.Config) error {
	if cfg.JWTSigningKey == "" {
		logrus.Warn("JWT_SIGNING_KEY is not set, authenticated routes will reject every request")
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if cfg.MigrationsEnabled {
		if err := db.Migrate(database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := metrics.RegisterDB(database.DB, "nutrifolio"); err != nil {
		logrus.Warnf("Failed to register database metrics: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()

	chatgptService := chatgpt.NewService(cfg)
	foodLogRepo := foodlog.NewRepository(database)
	profileService := profile.NewService(profile.NewRepository(database))
	foodLogService := foodlog.NewService(foodLogRepo, profileService, hub)
	assistantService := assistant.NewService(chatgptService, foodLogRepo)

	messageStoreService := messagestore.NewService(messagestore.NewRepository(database))
	chatService := chat.NewService(assistantService, messageStoreService, hub)

	userService := users.NewService(users.NewRepository(database))
	linkingSvc := linking.NewService()
	go linkingSvc.Run(ctx)

	var telegramHandler *telegram.Handler
	var telegramLinks api.LinkURLBuilder
	if cfg.TelegramToken != "" {
		telegramHandler, err = telegram.NewHandler(cfg, chatService, foodLogService, chatgptService, userService, linkingSvc)
		if err != nil {
			return err
		}
		if cfg.TelegramWebhookURL != "" {
			if err := telegramHandler.SetupWebhook(); err != nil {
				logrus.Errorf("Failed to set up Telegram webhook: %v", err)
			}
		} else {
			logrus.Warn("TELEGRAM_WEBHOOK_URL is not set, skipping webhook registration")
		}
		telegramLinks = telegramHandler
	} else {
		logrus.Info("TELEGRAM_TOKEN is not set, Telegram bot disabled")
	}

	apiHandler := api.NewHandler(
		assistantService,
		chatService,
		foodLogService,
		profileService,
		linkingSvc,
		telegramLinks,
		database,
	)

	mux := http.NewServeMux()

	handleAuthed := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(route, middleware.CORSMiddleware(auth.JWTMiddleware(h, cfg.JWTSigningKey))))
	}

	handleAuthed("/functions/v1/nutrition-assistant", "/functions/v1/nutrition-assistant", apiHandler.NutritionAssistantHandler)

	handleAuthed("GET /api/chat/messages", "/api/chat/messages", apiHandler.GetChatHistoryHandler)
	handleAuthed("POST /api/chat/messages", "/api/chat/messages", apiHandler.SubmitChatMessageHandler)

	handleAuthed("GET /api/food-logs/recent", "/api/food-logs/recent", apiHandler.GetRecentFoodLogsHandler)
	handleAuthed("GET /api/food-logs", "/api/food-logs", apiHandler.GetDayLogHandler)
	handleAuthed("GET /api/food-logs/{id}", "/api/food-logs/{id}", apiHandler.GetFoodLogHandler)
	handleAuthed("PUT /api/food-logs/{id}", "/api/food-logs/{id}", apiHandler.UpdateFoodLogHandler)
	handleAuthed("DELETE /api/food-logs/{id}", "/api/food-logs/{id}", apiHandler.DeleteFoodLogHandler)
	handleAuthed("GET /api/summary/daily", "/api/summary/daily", apiHandler.GetDailySummaryHandler)
	handleAuthed("GET /api/summary/weekly", "/api/summary/weekly", apiHandler.GetWeeklySummaryHandler)

	handleAuthed("GET /api/profile", "/api/profile", apiHandler.GetProfileHandler)
	handleAuthed("PUT /api/profile", "/api/profile", apiHandler.SaveProfileHandler)
	handleAuthed("POST /api/profile/goals", "/api/profile/goals", apiHandler.SuggestGoalsHandler)

	handleAuthed("POST /api/users/me/link-telegram", "/api/users/me/link-telegram", apiHandler.GenerateTelegramLinkHandler)

	// Preflight requests carry no token.
	mux.Handle("OPTIONS /api/", middleware.CORSMiddleware(http.NotFoundHandler()))

	mux.Handle("GET /api/events", auth.JWTMiddleware(http.HandlerFunc(hub.ServeWS), cfg.JWTSigningKey))

	if telegramHandler != nil {
		mux.Handle("/webhook", middleware.Instrument("/webhook", http.HandlerFunc(telegramHandler.HandleWebhook)))
	}

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", apiHandler.HealthHandler)

	server := &http.Server{
		Addr:              cfg.ServerHost + ":" + cfg.ServerPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logrus.Info("Server stopped")
	return nil
}
