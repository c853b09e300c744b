package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// Client talks to the external payment gateway. Retries are limited to
// transport-level failures; a delivered request is never re-sent with a new
// idempotence key, so a confirmation cannot be double-collected.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Request struct {
	UserID int64  `json:"user_id"`
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

type Confirmation struct {
	Confirmed bool   `json:"confirmed"`
	Reference string `json:"reference"`
}

func NewClient(baseURL string, timeout time.Duration, retryMax int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc.StandardClient(),
	}
}

// Collect requests payment for a donation and waits for the gateway verdict.
// The caller bounds the wait through ctx.
func (c *Client) Collect(ctx context.Context, req Request) (*Confirmation, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("payment client not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.New().String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var conf Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return nil, fmt.Errorf("failed to decode confirmation: %w", err)
	}
	return &conf, nil
}
