// Package session talks to the server's wallet session endpoint.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// Envelope is the server's canonical response wrapper.
type Envelope struct {
	OK   bool  `json:"ok"`
	Data *Data `json:"data,omitempty"`
}

// Data carries the wallet address held by the session, if any.
type Data struct {
	Address *string `json:"address"`
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeAddress lowercases addr and verifies it is a 0x-prefixed
// 20 byte hex string, the only form the session store accepts.
func NormalizeAddress(addr string) (string, error) {
	if !addressPattern.MatchString(addr) {
		return "", fmt.Errorf("not a 0x-prefixed 20 byte hex address: %q", addr)
	}
	return strings.ToLower(addr), nil
}

// Client reads and writes the server-side wallet session. Persist and
// Clear are best effort: failures are logged and the UI keeps going.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	persisting atomic.Bool
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Current returns the address held by the server session, or "" when
// no session is stored.
func (c *Client) Current(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/authz/session", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("session lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected session status: %s", resp.Status)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode session: %w", err)
	}
	if !env.OK || env.Data == nil || env.Data.Address == nil {
		return "", nil
	}
	return *env.Data.Address, nil
}

// Persist stores addr server side. A persist already in flight makes
// this call a skip, not a queue; the newest state will be persisted by
// whatever transition comes next.
func (c *Client) Persist(ctx context.Context, addr string) error {
	if !c.persisting.CompareAndSwap(false, true) {
		c.logger.Debug("session persist already in flight, skipping")
		return nil
	}
	defer c.persisting.Store(false)

	normalized, err := NormalizeAddress(addr)
	if err != nil {
		c.logger.Warn("refusing to persist malformed address", zap.Error(err))
		return err
	}

	body, err := json.Marshal(map[string]string{"address": normalized})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authz/session", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("session persist failed", zap.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("session persist rejected: %s", resp.Status)
		c.logger.Warn("session persist failed", zap.Error(err))
		return err
	}

	c.logger.Debug("session persisted", zap.String("address", normalized))
	return nil
}

// Clear drops the server session. The local state is already gone by
// the time this runs, so a failed delete is logged only.
func (c *Client) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/authz/session", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("session clear failed", zap.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("session clear rejected: %s", resp.Status)
		c.logger.Warn("session clear failed", zap.Error(err))
		return err
	}
	return nil
}
