package opensky

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind int

const (
	// KindNetwork covers connection, timeout, and request construction errors
	KindNetwork ErrorKind = iota
	// KindStatus is a non-200 HTTP response
	KindStatus
	// KindDecode is a body that could not be read or parsed
	KindDecode
	// KindAuth is a failure to obtain an access token
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// FetchError is returned for every failed feed request.
type FetchError struct {
	Op         string
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("opensky %s: %s error (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("opensky %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err (or anything it wraps) is a feed failure.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// RateLimitError represents an HTTP 429 rate limit error with retry information.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
	Headers    RateLimitHeaders
}

// RateLimitHeaders contains rate limit information from response headers.
type RateLimitHeaders struct {
	Remaining int // X-Rate-Limit-Remaining: credits left for the day
	// RetryAfterSeconds mirrors X-Rate-Limit-Retry-After-Seconds
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// RetryAfterHint lets retry helpers honour the server's hint.
func (e *RateLimitError) RetryAfterHint() time.Duration { return e.RetryAfter }

// IsRateLimitError checks if an error is or wraps a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the wait duration from a 429 response.
// OpenSky sends X-Rate-Limit-Retry-After-Seconds; the standard Retry-After
// header (delay-seconds or HTTP-date) is accepted as well.
func parseRetryAfter(headers http.Header) time.Duration {
	if s := headers.Get("X-Rate-Limit-Retry-After-Seconds"); s != "" {
		if seconds, err := strconv.Atoi(s); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}
	return 0
}

func extractRateLimitHeaders(headers http.Header) RateLimitHeaders {
	rlh := RateLimitHeaders{Remaining: -1}
	if v := headers.Get("X-Rate-Limit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rlh.Remaining = n
		}
	}
	if v := headers.Get("X-Rate-Limit-Retry-After-Seconds"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rlh.RetryAfterSeconds = n
		}
	}
	return rlh
}
