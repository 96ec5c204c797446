// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"net/url"
	"os"

	"github.com/converge-ai/converge-meeting-service/internal/infrastructure/completion"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
)

// flags are the command line flags for the webhook service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the webhook service.
type environment struct {
	Port             string
	NatsURL          string
	WebhookAPISecret string
	Platform         platformConfig
	OpenAIAPIKey     string
	OpenAIModel      string
}

// platformConfig holds the call platform API configuration.
type platformConfig struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
}

// parseFlags parses command line flags for the webhook service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the webhook service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	webhookAPISecret := os.Getenv("WEBHOOK_API_SECRET")
	if webhookAPISecret == "" {
		slog.Error("WEBHOOK_API_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	openAIAPIKey := os.Getenv("OPENAI_API_KEY")
	if openAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	openAIModel := os.Getenv("OPENAI_MODEL")
	if openAIModel == "" {
		openAIModel = completion.DefaultModel
	}

	return environment{
		Port:             port,
		NatsURL:          natsURL,
		WebhookAPISecret: webhookAPISecret,
		Platform:         parsePlatformConfig(),
		OpenAIAPIKey:     openAIAPIKey,
		OpenAIModel:      openAIModel,
	}
}

// parsePlatformConfig parses call platform configuration from environment variables
func parsePlatformConfig() platformConfig {
	clientID := os.Getenv("PLATFORM_CLIENT_ID")
	if clientID == "" {
		slog.Error("PLATFORM_CLIENT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientSecret := os.Getenv("PLATFORM_CLIENT_SECRET")
	if clientSecret == "" {
		slog.Error("PLATFORM_CLIENT_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	baseURL := os.Getenv("PLATFORM_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.converge.dev"
	}
	if _, err := url.Parse(baseURL); err != nil {
		slog.With(logging.ErrKey, err, "url", baseURL).Error("invalid PLATFORM_BASE_URL provided")
		os.Exit(1)
	}

	authURL := os.Getenv("PLATFORM_AUTH_URL")
	if authURL == "" {
		authURL = baseURL + "/oauth/token"
	}

	return platformConfig{
		BaseURL:      baseURL,
		AuthURL:      authURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}
