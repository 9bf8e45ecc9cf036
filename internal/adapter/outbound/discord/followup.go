package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

const DefaultAPIBaseURL = "https://discord.com/api/v10"

// Config holds configuration for the follow-up client.
type Config struct {
	APIBaseURL string
	Timeout    time.Duration
	UserAgent  string
}

// APIError is returned for any non-2xx answer from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api: unexpected status %d: %s", e.StatusCode, e.Body)
}

// FollowUpClient implements outbound.FollowUpSender against the interaction
// webhook endpoints. Requests are authorized by the interaction token in the
// path, so no bot credentials are sent.
type FollowUpClient struct {
	config     Config
	httpClient *http.Client
}

var _ outbound.FollowUpSender = (*FollowUpClient)(nil)

func NewFollowUpClient(cfg Config) *FollowUpClient {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &FollowUpClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *FollowUpClient) webhookURL(applicationID, token, messageID string) string {
	u := c.config.APIBaseURL + "/webhooks/" + url.PathEscape(applicationID) + "/" + url.PathEscape(token)
	if messageID != "" {
		u += "/messages/" + url.PathEscape(messageID)
	}
	return u
}

// Send posts a new follow-up when req.MessageID is empty and edits the
// addressed message otherwise.
func (c *FollowUpClient) Send(ctx context.Context, req outbound.FollowUpRequest) (model.Message, error) {
	encoded, err := json.Marshal(req.Data)
	if err != nil {
		return model.Message{}, fmt.Errorf("encoding follow-up: %w", err)
	}

	method := http.MethodPatch
	target := c.webhookURL(req.ApplicationID, req.Token, req.MessageID)
	if req.MessageID == "" {
		method = http.MethodPost
		target += "?wait=true"
	}

	respBody, err := c.do(ctx, method, target, encoded)
	if err != nil {
		return model.Message{}, err
	}

	var msg model.Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return model.Message{}, fmt.Errorf("decoding follow-up response: %w", err)
	}
	return msg, nil
}

func (c *FollowUpClient) Delete(ctx context.Context, applicationID, token, messageID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.webhookURL(applicationID, token, messageID), nil)
	return err
}

func (c *FollowUpClient) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling discord: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading discord response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
