package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/moodchat-server/internal/store"
)

// DecisionKind classifies the outcome of admitting one message.
type DecisionKind int

const (
	// DecisionAccept lets the message through; nothing was mutated.
	DecisionAccept DecisionKind = iota
	// DecisionRateLimited rejects without consulting mute state or moderation.
	DecisionRateLimited
	// DecisionMuted rejects a muted sender; no moderation call is made.
	DecisionMuted
	// DecisionToxic rejects a flagged message; the sender's warning count was
	// incremented and the mute flag possibly set.
	DecisionToxic
)

// Decision is the admission verdict for one message.
// WarningCount and Muted carry the sender's post-decision moderation state
// and are meaningful for DecisionToxic.
type Decision struct {
	Kind         DecisionKind
	WarningCount int
	Muted        bool
}

// ToxicityChecker is the external moderation collaborator.
type ToxicityChecker interface {
	IsToxic(ctx context.Context, text string) (bool, error)
}

// AdmissionFilter gates every inbound message: rate limit, mute state, then
// moderation. A moderation call that fails or times out counts as not toxic;
// keeping messages flowing matters more than catching every slur while the
// classifier is down.
type AdmissionFilter struct {
	users   store.UserStore
	checker ToxicityChecker
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewAdmissionFilter builds a filter enforcing limit messages per window.
func NewAdmissionFilter(users store.UserStore, checker ToxicityChecker, limit int, window time.Duration, logger *zerolog.Logger) *AdmissionFilter {
	return &AdmissionFilter{
		users:   users,
		checker: checker,
		limiter: newRateLimiter(limit, window),
		log:     logger,
	}
}

// Evaluate decides whether user may send text at now.
// On the toxic path user's in-memory moderation state is updated and
// persisted; on every other path user is left untouched.
func (f *AdmissionFilter) Evaluate(ctx context.Context, user *store.User, text string, now time.Time) Decision {
	if !f.limiter.allow(user.Username, now) {
		return Decision{Kind: DecisionRateLimited, WarningCount: user.WarningCount, Muted: user.IsMuted}
	}

	if user.IsMuted {
		return Decision{Kind: DecisionMuted, WarningCount: user.WarningCount, Muted: true}
	}

	toxic, err := f.checker.IsToxic(ctx, text)
	if err != nil {
		// Fail open: an unavailable classifier must not block the room.
		f.log.Warn().Err(err).Str("user", user.Username).Msg("moderation check failed, admitting message")
		return Decision{Kind: DecisionAccept, WarningCount: user.WarningCount, Muted: user.IsMuted}
	}

	if !toxic {
		return Decision{Kind: DecisionAccept, WarningCount: user.WarningCount, Muted: user.IsMuted}
	}

	user.WarningCount++
	if user.WarningCount >= store.MuteThreshold {
		user.IsMuted = true
	}
	if err := f.users.UpdateModeration(ctx, user.ID, user.WarningCount, user.IsMuted); err != nil {
		// The decision stands; the next message re-reads the user row.
		f.log.Error().Err(err).Str("user", user.Username).Msg("persist moderation state")
	}

	f.log.Info().
		Str("user", user.Username).
		Int("warnings", user.WarningCount).
		Bool("muted", user.IsMuted).
		Msg("message flagged as toxic")

	return Decision{Kind: DecisionToxic, WarningCount: user.WarningCount, Muted: user.IsMuted}
}
