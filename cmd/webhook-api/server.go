// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/converge-ai/converge-meeting-service/internal/handlers"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(
	flags flags,
	webhookHandler *handlers.CallWebhookHandler,
	repos *natsRepos,
	gracefulCloseWG *sync.WaitGroup,
) *http.Server {
	router := chi.NewRouter()

	// Order matters: the request ID must exist before the request is
	// logged, and the raw body must be captured before the webhook handler
	// verifies its signature.
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.WebhookBodyCaptureMiddleware())

	router.Post("/webhooks/call", webhookHandler.HandleWebhook)

	router.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		// This always returns as long as the service is still running. As
		// this endpoint is expected to be used as a Kubernetes liveness
		// check, this service must likewise self-detect non-recoverable
		// errors and self-terminate.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !webhookHandler.HandlerReady() || !repos.Ready() {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
	}()

	return httpServer
}
