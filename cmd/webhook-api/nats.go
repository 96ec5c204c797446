// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/infrastructure/store"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
)

const (
	natsConnectTimeout  = 10 * time.Second
	natsDrainTimeout    = 25 * time.Second
	natsShutdownTimeout = 30 * time.Second
)

// setupNATS connects to NATS. A closed connection signals the done channel
// so the process exits instead of running deaf.
func setupNATS(_ context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(natsDrainTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("reconnected to NATS", "url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				slog.With(logging.ErrKey, err, "subject", sub.Subject).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error")
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			slog.With(logging.ErrKey, conn.LastError()).Info("NATS connection closed")
			gracefulCloseWG.Done()
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	// Balanced by the ClosedHandler once draining finishes.
	gracefulCloseWG.Add(1)

	slog.Info("connected to NATS", "url", env.NatsURL)
	return natsConn, nil
}

// natsRepos holds the NATS KV backed repositories of the service.
type natsRepos struct {
	Meeting *store.NatsMeetingRepository
	Agent   *store.NatsAgentRepository
	User    *store.NatsUserRepository
	Step    *store.NatsStepRepository
}

// Ready reports whether all key-value stores are usable.
func (r *natsRepos) Ready() bool {
	return r.Meeting.IsReady() && r.Agent.IsReady() && r.User.IsReady() && r.Step.IsReady()
}

// getKeyValueStores binds the repositories to their JetStream KV buckets,
// creating any bucket that does not exist yet.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*natsRepos, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	buckets := map[string]jetstream.KeyValue{}
	for _, name := range []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameAgents,
		store.KVStoreNameUsers,
		store.KVStoreNamePipelineSteps,
	} {
		kv, err := js.KeyValue(ctx, name)
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: name})
		}
		if err != nil {
			return nil, err
		}
		buckets[name] = kv
	}

	return &natsRepos{
		Meeting: store.NewNatsMeetingRepository(buckets[store.KVStoreNameMeetings]),
		Agent:   store.NewNatsAgentRepository(buckets[store.KVStoreNameAgents]),
		User:    store.NewNatsUserRepository(buckets[store.KVStoreNameUsers]),
		Step:    store.NewNatsStepRepository(buckets[store.KVStoreNamePipelineSteps]),
	}, nil
}

// natsMessage adapts a [*nats.Msg] to [domain.Message].
type natsMessage struct {
	msg *nats.Msg
}

func (m natsMessage) Subject() string {
	return m.msg.Subject
}

func (m natsMessage) Data() []byte {
	return m.msg.Data
}

func (m natsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

func (m natsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// createNatsSubscriptions subscribes the processing handler to the
// transcript processing subject. The queue group spreads runs across
// replicas.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	_, err := natsConn.QueueSubscribe(
		models.MeetingProcessingSubject,
		models.MeetingProcessingQueue,
		func(msg *nats.Msg) {
			handler.HandleMessage(ctx, natsMessage{msg: msg})
		},
	)
	if err != nil {
		return err
	}

	slog.Info("subscribed to NATS subject",
		"subject", models.MeetingProcessingSubject,
		"queue", models.MeetingProcessingQueue,
	)
	return nil
}

// gracefulShutdown drains in-flight HTTP requests and NATS messages, then
// stops the process.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), natsShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			natsConn.Close()
		}
	}

	// Stop any handlers still running on the subscription context.
	cancel()

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
