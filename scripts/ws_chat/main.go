package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"

	"github.com/vovakirdan/moodchat-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	apiAddr := flag.String("api", "http://localhost:8080", "HTTP API address")
	user := flag.String("user", "cli-user", "username")
	pass := flag.String("pass", "password123", "password")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	token, err := login(ctx, *apiAddr, *user, *pass)
	if err != nil {
		return err
	}

	wsURL := strings.Replace(*apiAddr, "http", "ws", 1) + "/ws?token=" + url.QueryEscape(token)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s as %s\n", *apiAddr, *user)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

// login tries /api/login first and falls back to /api/register for a
// first-time username.
func login(ctx context.Context, apiAddr, user, pass string) (string, error) {
	token, err := postCredentials(ctx, apiAddr+"/api/login", user, pass)
	if err == nil {
		return token, nil
	}
	return postCredentials(ctx, apiAddr+"/api/register", user, pass)
}

func postCredentials(ctx context.Context, endpoint, user, pass string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": user, "password": pass})
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode, msg)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	return auth.Token, nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		var header struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &header); err != nil {
			log.Printf("unmarshal event: %v", err)
			continue
		}

		switch header.Type {
		case proto.EventTypeChatMessage:
			var evt proto.ChatMessage
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("unmarshal chat_message: %v", err)
				continue
			}
			fmt.Printf("%s: %s (%s)\n", evt.Username, evt.Content, evt.Emotion)
		case proto.EventTypeEmotionUpdate:
			var evt proto.EmotionUpdate
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("unmarshal emotion_update: %v", err)
				continue
			}
			fmt.Printf("[message %d is %s]\n", evt.MessageID, evt.Emotion)
		case proto.EventTypeSystemAlert:
			var evt proto.SystemAlert
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("unmarshal system_alert: %v", err)
				continue
			}
			fmt.Printf("! %s\n", evt.Content)
		default:
			fmt.Printf("event=%s data=%s\n", header.Type, data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
