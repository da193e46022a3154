// Package messaging sends outbound chat messages through an HTTP JSON gateway.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
)

const (
	defaultTimeout              = 10 * time.Second
	sendPath                    = "messages"
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("messaging base url is required")

// DeliveryStatus is the gateway's view of a message after Send returns.
type DeliveryStatus string

const (
	StatusQueued    DeliveryStatus = "queued"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
)

// Channel delivers a text message to a phone number.
type Channel interface {
	Send(ctx context.Context, recipientPhone, message string) (DeliveryStatus, error)
}

// Client posts messages to the gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	senderID   string
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.MessagingConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   strings.TrimSpace(cfg.APIToken),
		senderID:   strings.TrimSpace(cfg.SenderID),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Body string `json:"body"`
}

// Send posts one message. Transport failures, 429 and 5xx responses come back
// as DEPENDENCY_ERROR; other non-2xx responses as VALIDATION_ERROR.
func (c *Client) Send(ctx context.Context, recipientPhone, message string) (DeliveryStatus, error) {
	if c == nil {
		return StatusFailed, pkgerrors.New(pkgerrors.CodeDependency, "messaging client not configured")
	}
	if strings.TrimSpace(recipientPhone) == "" {
		return StatusFailed, pkgerrors.New(pkgerrors.CodeValidation, "recipient phone is required")
	}
	if strings.TrimSpace(message) == "" {
		return StatusFailed, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}

	payload, err := json.Marshal(sendRequest{To: recipientPhone, From: c.senderID, Body: message})
	if err != nil {
		return StatusFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal message")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+sendPath, bytes.NewReader(payload))
	if err != nil {
		return StatusFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build message request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusFailed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send message")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		code := pkgerrors.CodeValidation
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			code = pkgerrors.CodeDependency
		}
		return StatusFailed, pkgerrors.Wrap(code, cause, "message rejected by gateway")
	}

	var apiResp struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return StatusQueued, nil
	}
	return normalizeStatus(apiResp.Status), nil
}

func normalizeStatus(raw string) DeliveryStatus {
	switch DeliveryStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusSent:
		return StatusSent
	case StatusDelivered:
		return StatusDelivered
	case StatusFailed:
		return StatusFailed
	default:
		return StatusQueued
	}
}

// IsRetryable reports whether a Send error may succeed on another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if pkgerrors.As(err) == nil {
		return true
	}
	return pkgerrors.CodeOf(err) == pkgerrors.CodeDependency
}
