// Package remote implements the repository stores over the storefront's
// JSON REST API. Every response is wrapped in a {success, data, message}
// envelope.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httpclient"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/logger"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/middleware"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/tracing"
)

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback turns an open breaker into a TransportFailure so callers
// see the generic message instead of the raw breaker error.
func CircuitOpenFallback(_ context.Context, err error) (*http.Response, error) {
	return nil, apperrors.TransportFailed(fmt.Errorf("storefront api unavailable: %w", err))
}

// Client sends envelope requests to the storefront API.
type Client struct {
	http    HTTPDoer
	baseURL string
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewClient creates a client rooted at baseURL, e.g. "https://api.example.com/api".
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracing.Tracer("storefront/remote"),
		logger:  logger,
	}
}

// get issues a GET and decodes the envelope data into dst.
func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, dst)
}

// send issues a mutation with a JSON body and decodes the envelope data into dst.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	return c.do(ctx, method, path, query, body, dst)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	req.Header.Set(middleware.CorrelationHeader, correlationID)

	ctx, span := tracing.StartClientSpan(ctx, c.tracer, req, method+" "+path)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		err = classify(err)
		tracing.EndSpan(span, 0, err)
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "storefront api call failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return err
	}

	status := resp.StatusCode
	err = httpclient.DecodeEnvelope(resp, dst)
	tracing.EndSpan(span, status, err)
	if err != nil {
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "storefront api rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// classify maps a transport-level error onto the taxonomy, leaving errors that
// are already classified alone.
func classify(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return httpclient.ClassifyError(err)
}
