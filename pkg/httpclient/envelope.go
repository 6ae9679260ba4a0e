package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

const maxEnvelopeBytes = 4 << 20

// Envelope is the wrapper every storefront API response uses.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// DecodeEnvelope consumes and closes resp.Body. A non-2xx status or
// success=false becomes a RemoteRejection carrying the envelope message; an
// unreadable body becomes a TransportFailure. On success the data member is
// decoded into dst, which may be nil when the caller needs no payload.
func DecodeEnvelope(resp *http.Response, dst any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return apperrors.TransportFailed(fmt.Errorf("read response body: %w", err))
	}

	var env Envelope
	parseErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg string
		if parseErr == nil {
			msg = env.Message
		}
		return apperrors.RemoteRejected(msg, resp.StatusCode)
	}
	if parseErr != nil {
		return apperrors.TransportFailed(fmt.Errorf("decode envelope: %w", parseErr))
	}
	if !env.Success {
		return apperrors.RemoteRejected(env.Message, resp.StatusCode)
	}

	if dst == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return apperrors.TransportFailed(fmt.Errorf("decode envelope data: %w", err))
	}
	return nil
}

// ClassifyError maps an error returned by Do onto the error taxonomy. A 5xx
// StatusError keeps the server message when its body is an envelope.
func ClassifyError(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		var env Envelope
		var msg string
		if json.Unmarshal(statusErr.Body, &env) == nil {
			msg = env.Message
		}
		return apperrors.RemoteRejected(msg, statusErr.StatusCode)
	}
	return apperrors.TransportFailed(err)
}
