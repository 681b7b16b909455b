package alert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout    = 5 * time.Second
	defaultMaxRetries = 3
)

var httpClient = &http.Client{Timeout: requestTimeout}

// Send posts an escalation event to a webhook endpoint. Server errors and
// network failures are retried up to the channel's max_retries budget with a
// linearly growing pause; a client-error response is final on first sight.
func Send(ch ChannelConfig, event Event) error {
	body, err := FormatPayload(ch.Format, event)
	if err != nil {
		return fmt.Errorf("webhook %s: format payload: %w", channelLabel(ch), err)
	}

	budget := ch.retryBudget()
	var lastErr error
	for attempt := 1; attempt <= budget; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * time.Second)
		}

		status, err := post(ch, body)
		switch {
		case err != nil:
			lastErr = err
		case status >= 200 && status < 300:
			return nil
		case status >= 400 && status < 500:
			return fmt.Errorf("webhook %s: rejected: HTTP %d", channelLabel(ch), status)
		default:
			lastErr = fmt.Errorf("server error: HTTP %d", status)
		}
	}

	return fmt.Errorf("webhook %s: giving up after %d attempts: %w", channelLabel(ch), budget, lastErr)
}

func post(ch ChannelConfig, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ch.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range ch.Headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

func channelLabel(ch ChannelConfig) string {
	if ch.Name != "" {
		return ch.Name
	}
	return ch.URL
}
