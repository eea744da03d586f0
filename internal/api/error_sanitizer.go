package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/meta-audience-relay/internal/meta"
	"github.com/ignite/meta-audience-relay/internal/pkg/httputil"
	"github.com/ignite/meta-audience-relay/internal/pkg/logger"
)

// respondSafeError logs the full internal error and sends publicMsg to the
// client. Use it whenever a 5xx would otherwise expose err.Error().
func respondSafeError(w http.ResponseWriter, r *http.Request, code int, internalErr error, publicMsg string) {
	if internalErr != nil {
		logger.Error(publicMsg,
			"status", code,
			"path", r.URL.Path,
			"error", internalErr,
		)
	}
	httputil.Error(w, code, publicMsg)
}

// platformErrorMessage returns the message the platform attached to err, or
// a generic one when err did not come from the platform.
func platformErrorMessage(err error) string {
	var apiErr *meta.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return safeErrorMessage(http.StatusInternalServerError, err)
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
// 4xx messages describe caller input and are passed through.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "circuit breaker") ||
		strings.Contains(errStr, "too many requests"):
		return "Meta API temporarily unavailable"

	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "json") ||
		strings.Contains(errStr, "unmarshal") ||
		strings.Contains(errStr, "parse"):
		return "Unexpected response from Meta"

	default:
		return "An internal error occurred"
	}
}
