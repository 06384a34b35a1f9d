// Package device talks to a TIMS/ETR control unit on the local network.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"timsbridge/internal/fiscal"

	"github.com/rs/zerolog"
)

// PostPath is the fixed endpoint that signs an invoice.
const PostPath = "/api/values/PostTims"

// DefaultTimeout bounds a single signing round-trip.
const DefaultTimeout = 60 * time.Second

// maxResponseBytes caps how much of a device answer is read.
const maxResponseBytes = 1 << 20

// ErrTransport wraps every failure to get an HTTP response from the device.
var ErrTransport = errors.New("device transport error")

// Client posts fiscal payloads to a control unit.
type Client interface {
	PostInvoice(ctx context.Context, addr string, payload fiscal.Payload) (*Response, error)
}

// HTTPClient is the Client used in production.
type HTTPClient struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPClient returns a client whose requests time out after timeout.
func NewHTTPClient(timeout time.Duration, logger zerolog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// PostInvoice sends payload to http://addr/api/values/PostTims. Network
// errors wrap ErrTransport; an unparseable body wraps ErrMalformedResponse.
// Any HTTP status is accepted as long as the body decodes.
func (c *HTTPClient) PostInvoice(ctx context.Context, addr string, payload fiscal.Payload) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	url := "http://" + addr + PostPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build device request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).
			Str("device_addr", addr).
			Str("invoice", payload.RctNo).
			Dur("elapsed", time.Since(start)).
			Msg("device request failed")
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	decoded, err := DecodeResponse(raw)
	if err != nil {
		c.logger.Error().Err(err).
			Str("device_addr", addr).
			Int("http_status", resp.StatusCode).
			Str("body", string(raw)).
			Msg("device returned an unreadable response")
		return nil, err
	}

	c.logger.Info().
		Str("device_addr", addr).
		Str("invoice", payload.RctNo).
		Str("response_code", decoded.ResponseCode).
		Dur("elapsed", time.Since(start)).
		Msg("device responded")

	return decoded, nil
}
