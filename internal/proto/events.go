package proto

const (
	EventTypeChatMessage   = "chat_message"
	EventTypeEmotionUpdate = "emotion_update"
	EventTypeSystemAlert   = "system_alert"
)

// ChatMessage is broadcast to every client when a message is accepted.
// ID is the store-assigned int64 for real messages; system announcements
// (joins, leaves) carry a synthetic "system-<uuid>" string instead.
type ChatMessage struct {
	Type      string `json:"type"`
	ID        any    `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Emotion   string `json:"emotion"`
}

// EmotionUpdate is broadcast after enrichment resolves a message's emotion.
// Clients match it to an earlier ChatMessage by MessageID, not by position.
type EmotionUpdate struct {
	Type      string `json:"type"`
	MessageID int64  `json:"message_id"`
	Emotion   string `json:"emotion"`
}

// SystemAlert is a private notice to a single client (mute, warnings, errors).
type SystemAlert struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NewChatMessage builds a chat_message event.
func NewChatMessage(id any, username, content, timestamp, emotion string) ChatMessage {
	return ChatMessage{
		Type:      EventTypeChatMessage,
		ID:        id,
		Username:  username,
		Content:   content,
		Timestamp: timestamp,
		Emotion:   emotion,
	}
}

// NewEmotionUpdate builds an emotion_update event.
func NewEmotionUpdate(messageID int64, emotion string) EmotionUpdate {
	return EmotionUpdate{
		Type:      EventTypeEmotionUpdate,
		MessageID: messageID,
		Emotion:   emotion,
	}
}

// NewSystemAlert builds a system_alert event.
func NewSystemAlert(content string) SystemAlert {
	return SystemAlert{
		Type:    EventTypeSystemAlert,
		Content: content,
	}
}
