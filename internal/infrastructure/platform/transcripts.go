// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxTranscriptSize caps transcript downloads at 64 MiB. Transcripts for
// multi-hour meetings stay well under this.
const maxTranscriptSize = 64 << 20

// TranscriptFetcher downloads transcript files from the signed storage URLs
// the platform delivers in transcription_ready events. The URLs are
// pre-authorized, so fetches bypass the OAuth transport.
type TranscriptFetcher struct {
	httpClient *http.Client
}

// NewTranscriptFetcher creates a new transcript fetcher.
func NewTranscriptFetcher(timeout time.Duration) *TranscriptFetcher {
	if timeout == 0 {
		timeout = DefaultClientTimeout
	}
	return &TranscriptFetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// FetchTranscript retrieves the raw transcript content from the given URL.
func (f *TranscriptFetcher) FetchTranscript(ctx context.Context, transcriptURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcript fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript body: %w", err)
	}

	return data, nil
}
