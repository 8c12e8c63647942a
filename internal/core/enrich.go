package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/moodchat-server/internal/proto"
	"github.com/vovakirdan/moodchat-server/internal/store"
)

// EmotionClassifier is the external emotion collaborator.
type EmotionClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Broadcaster is the slice of the session registry the enricher needs.
type Broadcaster interface {
	Broadcast(ctx context.Context, event any)
}

// Enricher runs one background task per accepted message: classify the text,
// write the label back, push an emotion_update to all sessions. Every failure
// is terminal for that task and never reaches the sender; the message simply
// keeps its "unknown" emotion.
//
// Tasks are tracked so shutdown can wait for in-flight work instead of
// leaking it. A started task is never cancelled; it runs to completion or to
// its first failed step.
type Enricher struct {
	classifier EmotionClassifier
	messages   store.MessageStore
	registry   Broadcaster
	timeout    time.Duration
	log        *zerolog.Logger

	wg sync.WaitGroup
}

// NewEnricher builds an enricher with the given per-call timeout.
func NewEnricher(classifier EmotionClassifier, messages store.MessageStore, registry Broadcaster, timeout time.Duration, logger *zerolog.Logger) *Enricher {
	return &Enricher{
		classifier: classifier,
		messages:   messages,
		registry:   registry,
		timeout:    timeout,
		log:        logger,
	}
}

// Enrich starts the background task for one accepted message and returns
// immediately. The sender is never awaited on any of its steps.
func (e *Enricher) Enrich(messageID int64, text string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(messageID, text)
	}()
}

func (e *Enricher) run(messageID int64, text string) {
	// Detached from the request that spawned us; only the call timeout bounds it.
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	emotion, err := e.classifier.Classify(ctx, text)
	if err != nil {
		e.log.Warn().Err(err).Int64("message_id", messageID).Msg("emotion classification failed")
		return
	}
	if emotion == "" {
		emotion = store.EmotionUnknown
	}

	ok, err := e.messages.SetEmotion(ctx, messageID, emotion)
	if err != nil {
		e.log.Error().Err(err).Int64("message_id", messageID).Msg("persist emotion")
		return
	}
	if !ok {
		e.log.Warn().Int64("message_id", messageID).Msg("message gone before enrichment landed")
		return
	}

	e.registry.Broadcast(ctx, proto.NewEmotionUpdate(messageID, emotion))
	e.log.Debug().Int64("message_id", messageID).Str("emotion", emotion).Msg("message enriched")
}

// Shutdown waits for in-flight enrichment tasks until ctx expires, after
// which the remaining tasks are deliberately abandoned.
func (e *Enricher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
