// captcha проверяет ответы капчи формы обратной связи через эндпоинт siteverify
// (у reCAPTCHA, hCaptcha и Turnstile один контракт form/JSON).
package captcha

//go:generate mockgen -source=captcha.go -destination=../../mocks/mock_captcha.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrRejected - провайдер ответил success=false.
	ErrRejected = errors.New("captcha rejected")
	// ErrMissingToken - клиент не прислал ответ капчи.
	ErrMissingToken = errors.New("captcha token missing")
)

// Verifier проверяет один ответ капчи.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Client клиент siteverify.
type Client struct {
	verifyURL string
	secret    string
	http      *http.Client
}

// New возвращает Client. С пустым секретом проходит любой токен.
func New(verifyURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		verifyURL: verifyURL,
		secret:    secret,
		http:      &http.Client{Timeout: timeout},
	}
}

// Enabled сообщает, задан ли секрет.
func (c *Client) Enabled() bool { return c.secret != "" }

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	const op = "captcha.Verify"

	if !c.Enabled() {
		return nil
	}

	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}

	if !out.Success {
		return fmt.Errorf("%s: %w %v", op, ErrRejected, out.ErrorCodes)
	}

	return nil
}

var _ Verifier = (*Client)(nil)
