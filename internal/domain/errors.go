package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError is a non-success HTTP response from a provider, classified so
// retry policies can tell rate limits and transient outages from permanent
// failures. Plain transport errors (timeouts, resets) stay as-is and are
// treated as transient by the call sites.
type UpstreamError struct {
	Op     string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
}

// Transient reports whether the status is worth retrying at all.
func (e *UpstreamError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsRateLimited reports whether err is an HTTP 429 from an upstream.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Status == http.StatusTooManyRequests
}

// IsUpstreamStatus reports whether err carries an HTTP status (as opposed to a
// transport-level failure), returning the status when it does.
func IsUpstreamStatus(err error) (int, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status, true
	}
	return 0, false
}
