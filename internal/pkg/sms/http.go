package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrBaseURLRequired is returned when the provider base URL is missing.
	ErrBaseURLRequired = errors.New("sms base url is required")
	// ErrRejected is returned when the provider accepts the request but
	// reports the message as not sent.
	ErrRejected = errors.New("sms rejected by provider")
)

// HTTP is an SMS implementation backed by a JSON-over-HTTP provider API.
type HTTP struct {
	baseURL string
	apiKey  string
	sender  string
	client  *http.Client
}

// HTTPConfig configures the HTTP implementation.
type HTTPConfig struct {
	// BaseURL is the provider endpoint, e.g. https://gate.example.com/v2/sms/send.
	BaseURL string
	// APIKey authenticates requests as a bearer token.
	APIKey string
	// Sender is the originator name shown to the recipient.
	Sender string
	// Timeout bounds a single send; defaults to 10s.
	Timeout time.Duration
}

// NewHTTP constructs an HTTP SMS sender.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTP{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type sendRequest struct {
	To     string `json:"to"`
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

type sendResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Send delivers a message through the provider API.
func (h *HTTP) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(sendRequest{To: msg.To, Text: msg.Text, Sender: h.sender})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, raw)
	}

	var result sendResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRejected, result.Error)
	}

	return result.ID, nil
}

// Close implements io.Closer for interface compatibility.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
