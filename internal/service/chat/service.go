// Package chat ties the admission filter, message store, session registry,
// and enrichment pipeline into the per-message flow driven by each
// connection's read loop.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/core"
	"github.com/vovakirdan/moodchat-server/internal/proto"
	"github.com/vovakirdan/moodchat-server/internal/store"
)

// ErrStoreFailure is returned when an accepted message could not be
// persisted. No broadcast happens in that case.
var ErrStoreFailure = errors.New("message could not be stored")

// SystemUsername is the author shown on join/leave announcements.
const SystemUsername = "System"

// Service handles one inbound chat message end to end.
type Service struct {
	store    store.Store
	filter   *core.AdmissionFilter
	registry *core.Registry
	enricher *core.Enricher
	log      *zerolog.Logger
}

// New creates the chat service.
func New(st store.Store, filter *core.AdmissionFilter, registry *core.Registry, enricher *core.Enricher, logger *zerolog.Logger) *Service {
	return &Service{
		store:    st,
		filter:   filter,
		registry: registry,
		enricher: enricher,
		log:      logger,
	}
}

// HandleMessage admits, persists, and broadcasts one message, then kicks off
// enrichment in the background. Rejections notify the sender privately and
// return nil; only a persistence failure is an error, wrapped around
// ErrStoreFailure.
//
// The user row is re-read on every message so a mute issued while this
// connection was already open takes effect immediately.
func (s *Service) HandleMessage(ctx context.Context, userID int64, text string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load sender: %w", err)
	}

	decision := s.filter.Evaluate(ctx, user, text, time.Now())

	switch decision.Kind {
	case core.DecisionRateLimited:
		s.registry.Unicast(ctx, user.Username, proto.NewSystemAlert(
			"You are sending messages too quickly. Please slow down."))
		return nil

	case core.DecisionMuted:
		s.registry.Unicast(ctx, user.Username, proto.NewSystemAlert(
			"You are currently muted and cannot send messages."))
		return nil

	case core.DecisionToxic:
		alert := fmt.Sprintf("Message blocked. Warning %d.", decision.WarningCount)
		if decision.Muted {
			alert += " You have been muted."
		}
		s.registry.Unicast(ctx, user.Username, proto.NewSystemAlert(alert))
		return nil
	}

	msg, err := s.store.AppendMessage(ctx, user.ID, text)
	if err != nil {
		s.log.Error().Err(err).Str("user", user.Username).Msg("persist message")
		s.registry.Unicast(ctx, user.Username, proto.NewSystemAlert(
			"Your message could not be delivered. Please try again."))
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	// Peers see the message before the sender's read loop continues;
	// enrichment follows up with an emotion_update on its own schedule.
	s.registry.Broadcast(ctx, proto.NewChatMessage(
		msg.ID,
		user.Username,
		msg.Content,
		msg.CreatedAt.UTC().Format(time.RFC3339),
		msg.Emotion,
	))

	s.enricher.Enrich(msg.ID, msg.Content)
	return nil
}

// AnnounceJoin broadcasts a system message that username entered the chat.
func (s *Service) AnnounceJoin(ctx context.Context, username string) {
	s.announce(ctx, fmt.Sprintf("%s has joined the chat.", username))
}

// AnnounceLeave broadcasts a system message that username left the chat.
func (s *Service) AnnounceLeave(ctx context.Context, username string) {
	s.announce(ctx, fmt.Sprintf("%s has left the chat.", username))
}

func (s *Service) announce(ctx context.Context, content string) {
	s.registry.Broadcast(ctx, proto.NewChatMessage(
		"system-"+uuid.NewString(),
		SystemUsername,
		content,
		time.Now().UTC().Format(time.RFC3339),
		store.EmotionNeutral,
	))
}
