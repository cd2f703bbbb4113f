package scanloop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"gymkiosk/internal/scan"
)

var errUnauthorized = errors.New("session rejected")

// HTTPChecker posts scans to the kiosk API, logging in as the admin on demand.
type HTTPChecker struct {
	base     string
	email    string
	password string
	client   *http.Client

	mu       sync.Mutex
	loggedIn bool
}

func NewHTTPChecker(baseURL, email, password string, timeout time.Duration) (*HTTPChecker, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		base:     strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		client:   &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Login opens a session; the cookie is kept in the client's jar.
func (h *HTTPChecker) Login(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loginLocked(ctx)
}

func (h *HTTPChecker) loginLocked(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{"email": h.email, "password": h.password})
	resp, err := h.post(ctx, "/login", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login: status %d", resp.StatusCode)
	}
	h.loggedIn = true
	return nil
}

// Check submits payload and decodes the outcome. An expired session is renewed once.
func (h *HTTPChecker) Check(ctx context.Context, payload string) (scan.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loggedIn {
		if err := h.loginLocked(ctx); err != nil {
			return scan.Outcome{}, err
		}
	}
	out, err := h.checkOnce(ctx, payload)
	if errors.Is(err, errUnauthorized) {
		h.loggedIn = false
		if err := h.loginLocked(ctx); err != nil {
			return scan.Outcome{}, err
		}
		out, err = h.checkOnce(ctx, payload)
	}
	return out, err
}

func (h *HTTPChecker) checkOnce(ctx context.Context, payload string) (scan.Outcome, error) {
	body, _ := json.Marshal(map[string]string{"payload": payload})
	resp, err := h.post(ctx, "/api/scan/check-in", body)
	if err != nil {
		return scan.Outcome{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return scan.Outcome{}, errUnauthorized
	}
	var out scan.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return scan.Outcome{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return out, nil
}

func (h *HTTPChecker) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return h.client.Do(req)
}
