package monitor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// DefaultReconnectDelay is the fixed pause between reconnect attempts.
// The delay stays constant; the stream is expected to be down for
// seconds, not hours, and a growing backoff would only delay recovery.
const DefaultReconnectDelay = 1500 * time.Millisecond

// StreamClient consumes the SSE monitoring stream and hands every
// decoded snapshot to a handler. A dropped connection is reopened
// after a fixed delay, indefinitely, until the context is cancelled.
type StreamClient struct {
	baseURL string
	delay   time.Duration
	client  *http.Client
	logger  *zap.Logger

	// OnState, when set, is called with connectivity transitions:
	// true after a stream connects, false with the error when it drops.
	OnState func(connected bool, err error)
}

// NewStreamClient creates a client for the monitoring endpoints under
// baseURL. A non-positive delay falls back to the default.
func NewStreamClient(baseURL string, delay time.Duration, logger *zap.Logger) *StreamClient {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	return &StreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		delay:   delay,
		client:  &http.Client{},
		logger:  logger,
	}
}

func (c *StreamClient) notify(connected bool, err error) {
	if c.OnState != nil {
		c.OnState(connected, err)
	}
}

// Run blocks until ctx is cancelled, delivering snapshots to handle
// and reconnecting after the fixed delay whenever the stream drops.
func (c *StreamClient) Run(ctx context.Context, handle func(PositionSnapshot)) error {
	operation := func() (struct{}, error) {
		err := c.consume(ctx, handle)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		c.notify(false, err)
		c.logger.Warn("monitoring stream dropped, will reconnect",
			zap.Duration("delay", c.delay),
			zap.Error(err))
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.delay)),
	)
	return err
}

// consume opens the stream and decodes frames until the connection
// ends. It always returns a non-nil error so the retry loop reopens
// the stream even after a clean server-side close.
func (c *StreamClient) consume(ctx context.Context, handle func(PositionSnapshot)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/monitoring/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected stream status: %s", resp.Status)
	}

	c.logger.Info("monitoring stream connected")
	c.notify(true, nil)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var env Envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			// A bad frame is dropped, the stream itself stays up
			c.logger.Debug("discarding unparseable stream frame", zap.Error(err))
			continue
		}
		if !env.OK || env.Data == nil {
			continue
		}
		handle(*env.Data)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream closed by server")
}

// Snapshot fetches the last known snapshot for a single run, used for
// manual row refresh.
func (c *StreamClient) Snapshot(ctx context.Context, runID string) (*PositionSnapshot, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	endpoint := fmt.Sprintf("%s/monitoring/runs/%s/snapshot", c.baseURL, url.PathEscape(runID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected snapshot status: %s", resp.Status)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if !env.OK || env.Data == nil {
		return nil, fmt.Errorf("no snapshot available for run %s", runID)
	}
	return env.Data, nil
}
