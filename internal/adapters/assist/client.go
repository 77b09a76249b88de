// internal/adapters/assist/client.go
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swipess_api/internal/adapters/observability"
	"swipess_api/internal/domain"
)

// Client talks to the conversation orchestrator. One call per user turn;
// a failed turn is surfaced, never retried beyond one transient attempt.
type Client struct {
	base string
	hc   *http.Client
	key  string
}

var (
	ErrUnauthorized = errors.New("assist: unauthorized")
	ErrOverloaded   = errors.New("assist: overloaded")
)

func New(base, key string) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		key:  key,
	}, nil
}

type wireMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type replyRequest struct {
	SessionID string        `json:"session_id"`
	Messages  []wireMessage `json:"messages"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

func (c *Client) Reply(ctx context.Context, sessionID string, history []domain.DialogMessage) (string, error) {
	body := replyRequest{SessionID: sessionID, Messages: make([]wireMessage, 0, len(history))}
	for _, m := range history {
		body.Messages = append(body.Messages, wireMessage{Role: string(m.Role), Text: m.Text})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	var lastErr error
	lastStatus := 0
	start := time.Now()
	// one transient retry, nothing more
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/dialog", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.key != "" {
			req.Header.Set("Authorization", "Bearer "+c.key)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}

		lastStatus = resp.StatusCode
		switch resp.StatusCode {
		case http.StatusOK:
			var out replyResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			observability.ObserveExternal("assist", "dialog", lastStatus, time.Since(start))
			if err != nil {
				return "", err
			}
			if out.Reply == "" {
				return "", fmt.Errorf("assist: empty reply")
			}
			return out.Reply, nil

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			observability.ObserveExternal("assist", "dialog", lastStatus, time.Since(start))
			return "", ErrUnauthorized

		case http.StatusTooManyRequests:
			resp.Body.Close()
			observability.ObserveExternal("assist", "dialog", lastStatus, time.Since(start))
			return "", ErrOverloaded

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			lastErr = fmt.Errorf("assist: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
			if resp.StatusCode < 500 {
				observability.ObserveExternal("assist", "dialog", lastStatus, time.Since(start))
				return "", lastErr
			}
			// 5xx falls through to the retry
		}
	}
	observability.ObserveExternal("assist", "dialog", lastStatus, time.Since(start))
	return "", lastErr
}
