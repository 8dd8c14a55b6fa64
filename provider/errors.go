package provider

import (
	"errors"
	"fmt"
	"time"
)

// QuotaError reports that a backend refused a request because the account's
// quota or rate limit is exhausted. It is deliberately distinct from generic
// generation failures so the calling layer can switch providers or defer the
// request instead of showing a generic error.
type QuotaError struct {
	// Provider names the backend that rejected the request
	Provider string

	// Model is the model the request targeted, when known
	Model string

	// RetryAfter is the backend's suggested wait before retrying;
	// zero when the backend did not say
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: quota exhausted for model %q, retry after %s", e.Provider, e.Model, e.RetryAfter)
	}
	return fmt.Sprintf("%s: quota exhausted for model %q", e.Provider, e.Model)
}

// IsQuotaExhausted reports whether err is, or wraps, a QuotaError.
func IsQuotaExhausted(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}
