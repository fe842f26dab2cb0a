// Package profileapi submits completed USSD KYC records to the marketplace
// web application's user/profile API.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"lovtiti-ussd/internal/domain"
)

const kycPath = "/api/kyc/ussd"

// kycRequest is the body accepted by the profile API's USSD KYC endpoint.
type kycRequest struct {
	SubmissionID string            `json:"submissionId"`
	Role         string            `json:"role"`
	PhoneNumber  string            `json:"phoneNumber,omitempty"`
	SessionID    string            `json:"sessionId"`
	Fields       map[string]string `json:"kycData"`
	SubmittedAt  string            `json:"submittedAt"`
	Channel      string            `json:"channel"`
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("profileapi: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts KYC submissions to the web application.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getter     Getter
	tokenParam string

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenParameter makes the client authenticate with a bearer token read
// from the named SSM parameter on first use.
func WithTokenParameter(g Getter, name string) Option {
	return func(c *Client) {
		c.getter = g
		c.tokenParam = strings.TrimSpace(name)
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("profileapi: base url must not be empty")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokenParam != "" && c.getter == nil {
		return nil, errors.New("profileapi: token parameter set without a paramstore getter")
	}
	return c, nil
}

// resolveToken fetches the bearer token once per process. An unconfigured
// token parameter means unauthenticated requests.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	if c.tokenParam == "" {
		return "", nil
	}
	c.tokenOnce.Do(func() {
		c.token, c.tokenErr = fetchToken(ctx, c.getter, c.tokenParam)
	})
	return c.token, c.tokenErr
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// SubmitKYC posts one completed submission.
func (c *Client) SubmitKYC(ctx context.Context, sub domain.Submission) error {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(kycRequest{
		SubmissionID: sub.ID,
		Role:         string(sub.Role),
		PhoneNumber:  sub.PhoneNumber,
		SessionID:    sub.SessionID,
		Fields:       sub.Fields,
		SubmittedAt:  sub.SubmittedAt.UTC().Format(time.RFC3339),
		Channel:      "ussd",
	})
	if err != nil {
		return fmt.Errorf("profileapi: marshal request: %w", err)
	}

	url := c.baseURL + kycPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("profileapi: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", sub.ID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := c.do(req, url); err != nil {
		return fmt.Errorf("profileapi: request failed: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, url string) error {
	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<20))
	return nil
}

func fetchToken(ctx context.Context, getter Getter, name string) (string, error) {
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("profileapi: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("profileapi: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("profileapi: API token is empty")
	}
	return tp.Token, nil
}
