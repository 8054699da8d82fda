package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/bot"
	"github.com/pathakanu/chatmemo/internal/config"
	"github.com/pathakanu/chatmemo/internal/database"
	myopenai "github.com/pathakanu/chatmemo/internal/openai"
	"github.com/pathakanu/chatmemo/internal/push"
	"github.com/pathakanu/chatmemo/internal/twilio"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	ctx := context.Background()
	store, err := database.Shared(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("database init failed")
	}

	classifier := myopenai.New(cfg.OpenAIAPIKey, myopenai.Options{
		Model:     openai.ChatModel(cfg.OpenAIModel),
		MaxTokens: cfg.OpenAIMaxTokens,
		Timeout:   cfg.OpenAITimeout,
	})

	sender, err := newSender(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("push sender init failed")
	}

	reminderBot := bot.New(cfg, store, classifier, sender, logger)
	if err := reminderBot.StartScheduler(); err != nil {
		logger.WithError(err).Fatal("scheduler start")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           reminderBot.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	waitForShutdown(server, reminderBot, store, logger)
}

func newSender(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (push.Sender, error) {
	switch cfg.PushProvider {
	case config.PushFCM:
		logger.WithField("project", cfg.FirebaseProjectID).Info("push: using Firebase Cloud Messaging")
		return push.NewFCMSender(ctx, cfg.FirebaseProjectID, cfg.FirebaseClientEmail, cfg.FirebasePrivateKey)
	case config.PushWhatsApp:
		logger.WithField("from", cfg.TwilioWhatsAppNumber).Info("push: using Twilio WhatsApp")
		return twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber), nil
	default:
		logger.Warn("push: no provider configured, notifications are only logged")
		return push.NewLogSender(logger), nil
	}
}

func waitForShutdown(server *http.Server, reminderBot *bot.Bot, store database.Store, logger *logrus.Entry) {
	stopCtx := make(chan os.Signal, 1)
	signal.Notify(stopCtx, syscall.SIGINT, syscall.SIGTERM)
	<-stopCtx
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}
	reminderBot.StopScheduler()
	if err := store.Close(ctx); err != nil {
		logger.WithError(err).Error("store close error")
	}
}
