// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package main is the meeting webhook service: it receives call platform
// webhook events over HTTP, maintains meeting lifecycle state in NATS KV,
// runs the transcript summarization pipeline, and answers meeting chat
// messages.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/converge-ai/converge-meeting-service/internal/handlers"
	"github.com/converge-ai/converge-meeting-service/internal/infrastructure/completion"
	"github.com/converge-ai/converge-meeting-service/internal/infrastructure/messaging"
	"github.com/converge-ai/converge-meeting-service/internal/infrastructure/platform"
	"github.com/converge-ai/converge-meeting-service/internal/infrastructure/webhook"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/internal/pipeline"
	"github.com/converge-ai/converge-meeting-service/internal/service"
)

const transcriptFetchTimeout = 2 * time.Minute

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize the call platform client and the other external providers.
	platformClient := platform.NewClient(platform.Config{
		BaseURL:      env.Platform.BaseURL,
		AuthURL:      env.Platform.AuthURL,
		ClientID:     env.Platform.ClientID,
		ClientSecret: env.Platform.ClientSecret,
	})
	transcriptFetcher := platform.NewTranscriptFetcher(transcriptFetchTimeout)
	openAIService := completion.NewOpenAIService(env.OpenAIAPIKey, env.OpenAIModel)
	webhookValidator := webhook.NewValidator(env.WebhookAPISecret)
	messageBuilder := messaging.NewMessageBuilder(natsConn)

	// Initialize services
	lifecycleService := service.NewMeetingLifecycleService(
		repos.Meeting,
		repos.Agent,
		platformClient,
		messageBuilder,
	)
	chatResponderService := service.NewChatResponderService(
		repos.Meeting,
		repos.Agent,
		platformClient,
		openAIService,
	)

	// Initialize the transcript pipeline
	engine := pipeline.NewEngine(repos.Step)
	transcriptProcessor := pipeline.NewTranscriptProcessor(
		engine,
		transcriptFetcher,
		repos.Agent,
		repos.User,
		openAIService,
		lifecycleService,
	)

	// Initialize handlers
	webhookHandler := handlers.NewCallWebhookHandler(
		lifecycleService,
		chatResponderService,
		webhookValidator,
	)
	processingHandler := handlers.NewProcessingMessageHandler(transcriptProcessor, repos.Ready)

	httpServer := setupHTTPServer(flags, webhookHandler, repos, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, processingHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
