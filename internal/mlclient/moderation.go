package mlclient

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ModerationClient asks the toxicity service whether a message is toxic.
// Calls go through a circuit breaker so a dead classifier fails fast instead
// of costing every message the full timeout. A breaker-open error looks like
// any other call failure to the caller, which treats all failures as
// "not toxic" (fail-open).
type ModerationClient struct {
	url     string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[bool]
	log     *zerolog.Logger
}

type moderationRequest struct {
	Text string `json:"text"`
}

type moderationResponse struct {
	IsToxic bool `json:"is_toxic"`
}

// NewModerationClient builds a moderation client for the given base URL.
func NewModerationClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *ModerationClient {
	c := &ModerationClient{
		url:   baseURL + "/analyze",
		httpc: newHTTPClient(timeout),
		log:   logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        "moderation",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("moderation breaker state change")
		},
	})

	return c
}

// IsToxic classifies a message. The error is non-nil on timeout, transport
// failure, non-2xx status, or an open breaker.
func (c *ModerationClient) IsToxic(ctx context.Context, text string) (bool, error) {
	return c.breaker.Execute(func() (bool, error) {
		var resp moderationResponse
		if err := postJSON(ctx, c.httpc, c.url, moderationRequest{Text: text}, &resp); err != nil {
			return false, err
		}
		return resp.IsToxic, nil
	})
}
