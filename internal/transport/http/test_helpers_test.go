package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/auth"
	"github.com/vovakirdan/moodchat-server/internal/config"
	"github.com/vovakirdan/moodchat-server/internal/core"
	"github.com/vovakirdan/moodchat-server/internal/mlclient"
	"github.com/vovakirdan/moodchat-server/internal/service/chat"
	"github.com/vovakirdan/moodchat-server/internal/service/insights"
	"github.com/vovakirdan/moodchat-server/internal/store/sqlite"
)

// mlStub scripts the three ML collaborators behind real HTTP servers.
type mlStub struct {
	mu      sync.Mutex
	toxic   bool
	emotion string
	summary string
}

func (s *mlStub) setToxic(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toxic = v
}

func (s *mlStub) serveToxicity(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]bool{"is_toxic": s.toxic})
}

func (s *mlStub) serveEmotion(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]string{"emotion": s.emotion})
}

func (s *mlStub) serveSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]string{"summary": s.summary})
}

type testEnv struct {
	ts    *httptest.Server
	store *sqlite.SQLiteStore
	auth  *auth.Service
	ml    *mlStub
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ml := &mlStub{emotion: "joy", summary: "A short friendly exchange."}

	toxicitySrv := httptest.NewServer(http.HandlerFunc(ml.serveToxicity))
	t.Cleanup(toxicitySrv.Close)
	emotionSrv := httptest.NewServer(http.HandlerFunc(ml.serveEmotion))
	t.Cleanup(emotionSrv.Close)
	summarySrv := httptest.NewServer(http.HandlerFunc(ml.serveSummary))
	t.Cleanup(summarySrv.Close)

	disabledLogger := zerolog.New(nil)

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.MessageLimit = 100

	moderation := mlclient.NewModerationClient(toxicitySrv.URL, time.Second, &disabledLogger)
	emotion := mlclient.NewEmotionClient(emotionSrv.URL, time.Second)
	summarizer := mlclient.NewSummarizerClient(summarySrv.URL, time.Second)

	registry := core.NewRegistry(&disabledLogger)
	filter := core.NewAdmissionFilter(st, moderation, cfg.MessageLimit, cfg.TimeWindow, &disabledLogger)
	enricher := core.NewEnricher(emotion, st, registry, time.Second, &disabledLogger)
	t.Cleanup(func() { _ = enricher.Shutdown(context.Background()) })

	chatService := chat.New(st, filter, registry, enricher, &disabledLogger)
	insightsService := insights.New(st, summarizer, cfg.MoodWindow, cfg.SummaryWindow, &disabledLogger)

	server := NewServer(authService, st, registry, chatService, insightsService, cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, auth: authService, ml: ml}
}

func (env *testEnv) register(t *testing.T, username string) string {
	t.Helper()

	token, err := env.auth.Register(context.Background(), username, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return token
}

func (env *testEnv) dial(t *testing.T, ctx context.Context, token string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(env.ts.URL, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

// awaitEvent reads frames until one matches; intervening events such as join
// announcements are skipped.
func awaitEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var event map[string]any
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decode frame %q: %v", data, err)
		}
		if match(event) {
			return event
		}
	}
}

func chatMessageWithContent(content string) func(map[string]any) bool {
	return func(event map[string]any) bool {
		return event["type"] == "chat_message" && event["content"] == content
	}
}
