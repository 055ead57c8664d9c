package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Verifier checks a CAPTCHA token supplied by the client.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// ErrNotConfigured is returned when verification is requested without a secret.
var ErrNotConfigured = errors.New("captcha: secret is not configured")

const defaultVerifyURL = "https://hcaptcha.com/siteverify"

// Client verifies tokens against an hCaptcha/reCAPTCHA compatible siteverify endpoint.
type Client struct {
	httpClient *http.Client
	secret     string
	verifyURL  string
}

// NewClient constructs a siteverify client. An empty verifyURL selects hCaptcha.
func NewClient(httpClient *http.Client, secret, verifyURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	return &Client{httpClient: httpClient, secret: secret, verifyURL: verifyURL}
}

// Verify posts the token to the provider. A rejected token is (false, nil);
// transport and provider failures are returned as errors.
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	if c.secret == "" {
		return false, ErrNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("captcha: unexpected status %s", resp.Status)
	}

	var body struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("captcha: decode response: %w", err)
	}
	return body.Success, nil
}

// Static accepts or rejects every token. Used when verification is switched
// off for local development.
type Static bool

func (s Static) Verify(context.Context, string) (bool, error) {
	return bool(s), nil
}
