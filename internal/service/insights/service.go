// Package insights provides the aggregate views over recent history:
// the majority-vote room mood and the delegated transcript summary.
package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/store"
)

// Fixed user-facing strings for the summary view.
const (
	SummaryEmpty    = "There are no recent messages to summarize."
	SummaryFallback = "An error occurred while generating the summary."
)

// Summarizer is the external text-summarization collaborator.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Service computes mood and summary views over the message store.
type Service struct {
	messages      store.MessageStore
	summarizer    Summarizer
	moodWindow    int
	summaryWindow int
	log           *zerolog.Logger
}

// New creates the insights service. moodWindow and summaryWindow bound how
// many recent messages each view considers.
func New(messages store.MessageStore, summarizer Summarizer, moodWindow, summaryWindow int, logger *zerolog.Logger) *Service {
	return &Service{
		messages:      messages,
		summarizer:    summarizer,
		moodWindow:    moodWindow,
		summaryWindow: summaryWindow,
		log:           logger,
	}
}

// Mood returns the majority emotion over the recent window. Messages still
// "unknown" and explicitly "neutral" ones do not vote; a tie goes to the
// label encountered first in store order (newest first), which keeps the
// result deterministic for a fixed window. An empty vote is "neutral".
func (s *Service) Mood(ctx context.Context) (string, error) {
	messages, err := s.messages.RecentMessages(ctx, s.moodWindow)
	if err != nil {
		return "", fmt.Errorf("load recent messages: %w", err)
	}

	counts := make(map[string]int)
	var order []string
	for _, msg := range messages {
		if msg.Emotion == store.EmotionUnknown || msg.Emotion == store.EmotionNeutral {
			continue
		}
		if _, seen := counts[msg.Emotion]; !seen {
			order = append(order, msg.Emotion)
		}
		counts[msg.Emotion]++
	}

	mood := store.EmotionNeutral
	best := 0
	for _, label := range order {
		if counts[label] > best {
			best = counts[label]
			mood = label
		}
	}
	return mood, nil
}

// Summary delegates the recent transcript to the external summarizer.
// Collaborator failure degrades to a fixed fallback string; an empty history
// short-circuits to a fixed notice. Neither case is an error to the caller.
func (s *Service) Summary(ctx context.Context) (string, error) {
	messages, err := s.messages.RecentMessagesWithAuthors(ctx, s.summaryWindow)
	if err != nil {
		return "", fmt.Errorf("load recent messages: %w", err)
	}
	if len(messages) == 0 {
		return SummaryEmpty, nil
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.Username)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}

	summary, err := s.summarizer.Summarize(ctx, b.String())
	if err != nil {
		s.log.Warn().Err(err).Msg("summarizer call failed")
		return SummaryFallback, nil
	}
	return summary, nil
}
