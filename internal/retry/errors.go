package retry

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	ai "github.com/spetersoncode/warden"
)

// statusCoder is implemented by errors that carry an HTTP status code.
type statusCoder interface {
	StatusCode() int
}

// IsTransient determines if an error is transient and should be retried.
// Errors implementing ai.CategorizedError are trusted as-is. Otherwise the
// following are treated as transient:
//   - HTTP 429 and 5xx status codes
//   - network timeouts, connection resets and refusals
//   - temporary DNS failures
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce ai.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ai.ErrorTransient
	}

	var sc statusCoder
	if errors.As(err, &sc) && isTransientStatusCode(sc.StatusCode()) {
		return true
	}

	return isTransientNetworkError(err)
}

func isTransientStatusCode(code int) bool {
	return code == 429 || (code >= 500 && code < 600)
}

func isTransientNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && isTransientNetworkError(urlErr.Err) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ETIMEDOUT:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset",
		"connection refused",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"bad gateway",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
