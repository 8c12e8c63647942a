package store

import (
	"context"
	"time"
)

// EmotionUnknown is assigned to every message at insert time and stays put
// when enrichment fails.
const EmotionUnknown = "unknown"

// EmotionNeutral never wins a mood vote; it is also the mood of an empty window.
const EmotionNeutral = "neutral"

// MuteThreshold is the warning count at which a user is muted for good.
const MuteThreshold = 3

// User represents a user in the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	WarningCount int
	IsMuted      bool
	CreatedAt    time.Time
}

// Message represents a persisted chat message. Content is immutable once
// created; Emotion is the only field updated after insert.
type Message struct {
	ID        int64
	UserID    int64
	Content   string
	Emotion   string
	CreatedAt time.Time
}

// MessageWithAuthor joins a message with its author's username.
type MessageWithAuthor struct {
	Message
	Username string
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpdateModeration persists a user's warning count and mute flag together.
	UpdateModeration(ctx context.Context, userID int64, warningCount int, isMuted bool) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists a new message with emotion "unknown" and returns
	// the stored row. A returned message is durably stored.
	AppendMessage(ctx context.Context, userID int64, content string) (*Message, error)

	// SetEmotion updates a message's emotion label. Returns false when the
	// message no longer exists. The write is idempotent last-writer-wins.
	SetEmotion(ctx context.Context, messageID int64, emotion string) (bool, error)

	// RecentMessages returns up to limit messages, newest first.
	RecentMessages(ctx context.Context, limit int) ([]*Message, error)

	// RecentMessagesWithAuthors returns up to limit messages in chronological
	// order, joined with author usernames.
	RecentMessagesWithAuthors(ctx context.Context, limit int) ([]*MessageWithAuthor, error)

	// ListMessagesWithAuthors returns the full history in chronological order,
	// joined with author usernames.
	ListMessagesWithAuthors(ctx context.Context) ([]*MessageWithAuthor, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
