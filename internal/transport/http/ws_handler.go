package http

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/auth"
	"github.com/vovakirdan/moodchat-server/internal/core"
	"github.com/vovakirdan/moodchat-server/internal/service/chat"
	"github.com/vovakirdan/moodchat-server/internal/store"
	"github.com/vovakirdan/moodchat-server/internal/utils"
)

// WSHandler upgrades HTTP connections and drives the per-connection read loop.
type WSHandler struct {
	authService *auth.Service
	users       store.UserStore
	registry    *core.Registry
	chat        *chat.Service
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(authService *auth.Service, users store.UserStore, registry *core.Registry, chatService *chat.Service, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		authService: authService,
		users:       users,
		registry:    registry,
		chat:        chatService,
		log:         logger,
	}
}

// wsSender adapts a websocket connection to core.Sender.
type wsSender struct {
	conn *websocket.Conn
}

func (s *wsSender) Send(ctx context.Context, payload []byte) error {
	return s.conn.Write(ctx, websocket.MessageText, payload)
}

// Handle serves GET /ws?token=...
// Identity is established before the channel admits any application message;
// a connection without a valid token is closed with a policy violation.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	connID := utils.NewID()
	logger := h.log.With().Str("conn_id", connID).Logger()

	var user *store.User
	claims, authErr := h.authService.ValidateToken(c.Query("token"))
	if authErr == nil {
		user, authErr = h.users.GetUserByID(ctx, claims.UserID)
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logger.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if authErr != nil {
		logger.Warn().Err(authErr).Msg("ws connection refused: bad token")
		conn.Close(websocket.StatusPolicyViolation, "authentication required")
		return
	}

	logger = logger.With().Str("user", user.Username).Logger()

	// Teardown must reach the registry on every exit path. Defers run in
	// reverse order: drop the session first, then announce the departure.
	sess := h.registry.Connect(user.Username, &wsSender{conn: conn})
	defer h.chat.AnnounceLeave(context.WithoutCancel(ctx), user.Username)
	defer h.registry.DisconnectSession(sess)

	h.chat.AnnounceJoin(ctx, user.Username)

	if err := h.readLoop(ctx, conn, user, &logger); err != nil {
		logger.Debug().Err(err).Msg("ws read loop ended")
	}

	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, user *store.User, logger *zerolog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		// Persist and broadcast happen synchronously here; only enrichment
		// runs past this call. A store failure was already reported to the
		// sender, so the loop keeps the connection alive.
		if err := h.chat.HandleMessage(ctx, user.ID, text); err != nil {
			logger.Error().Err(err).Msg("handle message")
		}
	}
}
