package mlclient

import (
	"context"
	"net/http"
	"time"
)

// EmotionClient asks the emotion service for a single emotion label.
type EmotionClient struct {
	url   string
	httpc *http.Client
}

type emotionRequest struct {
	Text string `json:"text"`
}

type emotionResponse struct {
	Emotion string `json:"emotion"`
}

// NewEmotionClient builds an emotion client for the given base URL.
func NewEmotionClient(baseURL string, timeout time.Duration) *EmotionClient {
	return &EmotionClient{
		url:   baseURL + "/analyze",
		httpc: newHTTPClient(timeout),
	}
}

// Classify returns the emotion label for a message text.
func (c *EmotionClient) Classify(ctx context.Context, text string) (string, error) {
	var resp emotionResponse
	if err := postJSON(ctx, c.httpc, c.url, emotionRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Emotion, nil
}
