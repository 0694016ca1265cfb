package common

import (
	"errors"
	"net/http"

	pkgHTTP "github.com/civix-app/civix-backend/pkg/http"
)

// IsRetryable reports whether an upstream call failure is worth another
// attempt. Network failures and throttling/server-side statuses qualify;
// 4xx responses are the caller's fault and retried never.
func IsRetryable(err error) bool {
	var netErr *pkgHTTP.NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var httpErr *pkgHTTP.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	return false
}
