package mlclient

import (
	"context"
	"net/http"
	"time"
)

// SummarizerClient delegates a chat transcript to the summarization service.
type SummarizerClient struct {
	url   string
	httpc *http.Client
}

type summaryRequest struct {
	Transcript string `json:"transcript"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// NewSummarizerClient builds a summarizer client for the given base URL.
func NewSummarizerClient(baseURL string, timeout time.Duration) *SummarizerClient {
	return &SummarizerClient{
		url:   baseURL + "/summarize",
		httpc: newHTTPClient(timeout),
	}
}

// Summarize returns a narrative summary of the transcript.
func (c *SummarizerClient) Summarize(ctx context.Context, transcript string) (string, error) {
	var resp summaryResponse
	if err := postJSON(ctx, c.httpc, c.url, summaryRequest{Transcript: transcript}, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}
