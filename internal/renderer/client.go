// internal/renderer/client.go
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"listingreel-workers/internal/common/http"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
)

// RenderRequest describes one movie render job.
type RenderRequest struct {
	Template  string             `json:"template"`
	Clips     []models.Clip      `json:"clips"`
	ImageURIs []string           `json:"imageUris"`
	Config    models.MovieConfig `json:"config"`
	OutputKey string             `json:"outputKey"`
}

// RenderResult is what the render service returns on success.
type RenderResult struct {
	VideoURI     string `json:"videoUri"`
	VoiceoverURI string `json:"voiceoverUri,omitempty"`
	CaptionsURI  string `json:"captionsUri,omitempty"`
	DurationSec  int    `json:"durationSec,omitempty"`
}

// Renderer submits render jobs to the movie render service.
type Renderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
}

// Client is an HTTP Renderer against the render service API.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    http.NewClient(timeout),
		log:     log.WithFields(map[string]interface{}{"component": "renderer"}),
	}
}

// Render submits the request and blocks until the service finishes.
func (c *Client) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}

	httpReq, err := nethttp.NewRequest(nethttp.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.DoWithContext(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("render service returned %d: %s", resp.StatusCode, string(raw))
	}

	var result RenderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}
	if result.VideoURI == "" {
		return nil, fmt.Errorf("render service returned no video uri")
	}

	c.log.Info("render finished", map[string]interface{}{
		"template":   req.Template,
		"videoUri":   result.VideoURI,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return &result, nil
}
