package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func seedMessages(t *testing.T, env *testEnv, username string, contentAndEmotion map[string]string) {
	t.Helper()
	ctx := context.Background()

	user, err := env.store.GetUserByUsername(ctx, username)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	for content, emotion := range contentAndEmotion {
		msg, err := env.store.AppendMessage(ctx, user.ID, content)
		if err != nil {
			t.Fatalf("append message: %v", err)
		}
		if _, err := env.store.SetEmotion(ctx, msg.ID, emotion); err != nil {
			t.Fatalf("set emotion: %v", err)
		}
	}
}

func TestMessagesEndpoint(t *testing.T) {
	env := startTestServer(t)
	token := env.register(t, "alice")
	seedMessages(t, env, "alice", map[string]string{"hello": "joy"})

	resp := doJSON(t, env, http.MethodGet, "/api/messages", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var messages []MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Username != "alice" || messages[0].Content != "hello" || messages[0].Emotion != "joy" {
		t.Fatalf("unexpected message: %+v", messages[0])
	}

	resp = doJSON(t, env, http.MethodGet, "/api/messages", "", "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestMoodEndpoint(t *testing.T) {
	env := startTestServer(t)
	token := env.register(t, "alice")

	// No voting messages yet.
	resp := doJSON(t, env, http.MethodGet, "/api/mood", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var mood MoodResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &mood); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if mood.Mood != "neutral" {
		t.Fatalf("empty room should be neutral, got %q", mood.Mood)
	}

	seedMessages(t, env, "alice", map[string]string{
		"one":   "joy",
		"two":   "joy",
		"three": "anger",
		"four":  "unknown",
	})

	resp = doJSON(t, env, http.MethodGet, "/api/mood", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &mood); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if mood.Mood != "joy" {
		t.Fatalf("expected joy, got %q", mood.Mood)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	env := startTestServer(t)
	token := env.register(t, "alice")

	// Empty history short-circuits without calling the summarizer.
	resp := doJSON(t, env, http.MethodGet, "/api/summary", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var summary SummaryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if summary.Summary != "There are no recent messages to summarize." {
		t.Fatalf("unexpected empty-history summary: %q", summary.Summary)
	}

	seedMessages(t, env, "alice", map[string]string{"hello": "joy"})

	resp = doJSON(t, env, http.MethodGet, "/api/summary", token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if summary.Summary != "A short friendly exchange." {
		t.Fatalf("unexpected summary: %q", summary.Summary)
	}
}
