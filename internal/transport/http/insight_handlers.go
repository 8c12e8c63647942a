package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/service/insights"
	"github.com/vovakirdan/moodchat-server/internal/store"
)

// InsightHandlers provides HTTP handlers for history, mood, and summary views.
type InsightHandlers struct {
	messages store.MessageStore
	insights *insights.Service
	log      *zerolog.Logger
}

// NewInsightHandlers creates a new insight handlers instance.
func NewInsightHandlers(messages store.MessageStore, insightsService *insights.Service, logger *zerolog.Logger) *InsightHandlers {
	return &InsightHandlers{
		messages: messages,
		insights: insightsService,
		log:      logger,
	}
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Emotion   string `json:"emotion"`
}

// MoodResponse represents the room mood in API responses.
type MoodResponse struct {
	Mood string `json:"mood"`
}

// SummaryResponse represents the chat summary in API responses.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// Messages returns the full chat history in chronological order.
// GET /api/messages
func (h *InsightHandlers) Messages(c *gin.Context) {
	history, err := h.messages.ListMessagesWithAuthors(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	result := make([]MessageResponse, 0, len(history))
	for _, msg := range history {
		result = append(result, MessageResponse{
			ID:        msg.ID,
			UserID:    msg.UserID,
			Username:  msg.Username,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
			Emotion:   msg.Emotion,
		})
	}

	c.JSON(http.StatusOK, result)
}

// Mood returns the majority emotion over the recent window.
// GET /api/mood
func (h *InsightHandlers) Mood(c *gin.Context) {
	mood, err := h.insights.Mood(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute mood")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, MoodResponse{Mood: mood})
}

// Summary returns a narrative summary of the recent conversation.
// GET /api/summary
func (h *InsightHandlers) Summary(c *gin.Context) {
	summary, err := h.insights.Summary(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build summary")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}
