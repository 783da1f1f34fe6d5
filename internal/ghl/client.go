// Package ghl wraps the GoHighLevel CRM tool endpoint behind typed
// operations with a capability gate and the shared error taxonomy.
//
// Every operation is a single POST of {"tool_name", "arguments"} to the
// configured endpoint. No retries are performed here: contact and
// appointment writes carry no idempotency key, so a retry could duplicate
// them. Writes are at-most-once-attempt — a call that reached the remote
// side before a timeout is not rolled back.
package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/braxlabs/facet/internal/logger"
	"github.com/braxlabs/facet/internal/remote"
	"github.com/braxlabs/facet/internal/utils"
	"github.com/braxlabs/facet/internal/version"
)

const integrationName = "ghl"

// maxResponseBytes bounds how much of an upstream payload is read.
const maxResponseBytes = 4 << 20

// Config is the immutable per-process configuration of the CRM client.
type Config struct {
	Enabled    bool
	BaseURL    string
	Token      string // Private Integration Token
	LocationID string
	CalendarID string // default calendar for appointment booking
	Timeout    time.Duration
}

// Client issues tool calls against the GHL endpoint. Safe for concurrent use.
type Client struct {
	cfg       Config
	http      *http.Client
	logger    logger.Logger
	userAgent string
}

// New builds a CRM client from cfg. The configuration is read once here and
// never mutated; flipping the gate requires a restart.
func New(cfg Config, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		// No Timeout on the http.Client itself: deadlines come from the
		// per-call context so caller cancellation aborts in-flight requests.
		http:      &http.Client{},
		logger:    log,
		userAgent: "facet/" + version.Version,
	}
}

// Enabled reports the capability gate. Read-only for the process lifetime.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

// Name identifies this integration in health reports and errors.
func (c *Client) Name() string { return integrationName }

// DefaultCalendarID returns the calendar used when a booking does not name one.
func (c *Client) DefaultCalendarID() string { return c.cfg.CalendarID }

// WithTimeout returns a copy of the client using d as the per-operation
// timeout. Non-positive d keeps the configured value.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d <= 0 {
		return c
	}
	cp := *c
	cp.cfg.Timeout = d
	return &cp
}

// envelope is the tool-call request body.
type envelope struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// responseEnvelope is the upstream response wrapper.
type responseEnvelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

// call runs one tool call and decodes its result into out (out may be nil).
// Failures map onto the shared taxonomy: gate off => ServiceDisabled,
// transport/timeout => Unreachable, upstream error => RemoteRejected with
// the upstream detail verbatim, undecodable payload => BadResponse.
func (c *Client) call(ctx context.Context, op, tool string, args map[string]any, out any) error {
	if !c.cfg.Enabled {
		c.logger.Debug("ghl gate off, skipping call", logger.String("op", op))
		return remote.Disabled(integrationName, op)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(envelope{ToolName: tool, Arguments: args})
	if err != nil {
		return fmt.Errorf("failed to marshal tool call %s: %w", tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", tool, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("locationId", c.cfg.LocationID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("ghl unreachable",
			logger.String("op", op),
			logger.String("request_id", requestID),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return remote.Unreachable(integrationName, op, err)
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("ghl response read failed",
			logger.String("op", op),
			logger.String("request_id", requestID),
			logger.Error(err))
		return remote.Unreachable(integrationName, op, err)
	}

	if resp.StatusCode >= 400 {
		detail := rejectionDetail(body)
		c.logger.Error("ghl rejected request",
			logger.String("op", op),
			logger.Int("status", resp.StatusCode),
			logger.String("detail", detail),
			logger.String("request_id", requestID))
		return remote.Rejected(integrationName, op, resp.StatusCode, detail)
	}

	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("ghl returned malformed payload",
			logger.String("op", op),
			logger.String("request_id", requestID),
			logger.Error(err))
		return remote.BadResponse(integrationName, op, err)
	}

	if !env.Success {
		detail := env.Error
		if detail == "" {
			detail = "unknown error"
		}
		c.logger.Error("ghl tool call failed",
			logger.String("op", op),
			logger.String("detail", detail),
			logger.String("request_id", requestID))
		return remote.Rejected(integrationName, op, resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			c.logger.Error("ghl result does not match contract",
				logger.String("op", op),
				logger.String("request_id", requestID),
				logger.Error(err))
			return remote.BadResponse(integrationName, op, err)
		}
	}

	c.logger.Debug("ghl call ok",
		logger.String("op", op),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// rejectionDetail extracts the upstream error message from an HTTP error
// body. Bodies that are not the usual envelope are kept verbatim.
func rejectionDetail(body []byte) string {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(body))
}
