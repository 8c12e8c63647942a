package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/store"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

// fakeSender records payloads and optionally fails every send.
type fakeSender struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (s *fakeSender) Send(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("send failed")
	}
	s.payloads = append(s.payloads, append([]byte(nil), payload...))
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func (s *fakeSender) decode(t *testing.T, i int, out any) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.payloads) {
		t.Fatalf("payload %d not received, have %d", i, len(s.payloads))
	}
	if err := json.Unmarshal(s.payloads[i], out); err != nil {
		t.Fatalf("decode payload %d: %v", i, err)
	}
}

// fakeChecker is a scripted toxicity collaborator.
type fakeChecker struct {
	mu    sync.Mutex
	toxic bool
	err   error
	calls int
}

func (c *fakeChecker) IsToxic(_ context.Context, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.toxic, c.err
}

func (c *fakeChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// fakeUserStore records moderation updates.
type fakeUserStore struct {
	mu      sync.Mutex
	updates int
	failErr error
}

func (s *fakeUserStore) CreateUser(context.Context, string, string) (*store.User, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeUserStore) GetUserByID(context.Context, int64) (*store.User, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeUserStore) GetUserByUsername(context.Context, string) (*store.User, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeUserStore) UpdateModeration(context.Context, int64, int, bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	return s.failErr
}

func (s *fakeUserStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// fakeClassifier is a scripted emotion collaborator.
type fakeClassifier struct {
	mu      sync.Mutex
	emotion string
	err     error
	calls   int
}

func (c *fakeClassifier) Classify(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.emotion, c.err
}

// fakeMessageStore implements store.MessageStore over a slice.
type fakeMessageStore struct {
	mu       sync.Mutex
	messages map[int64]*store.Message
	emotions int
	failSet  error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[int64]*store.Message)}
}

func (s *fakeMessageStore) AppendMessage(_ context.Context, userID int64, content string) (*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := int64(len(s.messages) + 1)
	msg := &store.Message{ID: id, UserID: userID, Content: content, Emotion: store.EmotionUnknown, CreatedAt: time.Now()}
	s.messages[id] = msg
	return msg, nil
}

func (s *fakeMessageStore) SetEmotion(_ context.Context, messageID int64, emotion string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return false, s.failSet
	}
	msg, ok := s.messages[messageID]
	if !ok {
		return false, nil
	}
	msg.Emotion = emotion
	s.emotions++
	return true, nil
}

func (s *fakeMessageStore) RecentMessages(context.Context, int) ([]*store.Message, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeMessageStore) RecentMessagesWithAuthors(context.Context, int) ([]*store.MessageWithAuthor, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeMessageStore) ListMessagesWithAuthors(context.Context) ([]*store.MessageWithAuthor, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeMessageStore) emotionOf(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.messages[id]; ok {
		return msg.Emotion
	}
	return ""
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
