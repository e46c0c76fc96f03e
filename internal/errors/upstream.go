package errors

import (
	"strings"

	"github.com/tidwall/gjson"
)

// maxErrorBodyLength caps upstream error messages carried into logs and job records.
const maxErrorBodyLength = 2048

// upstreamErrorPaths lists known locations of error messages in provider
// response bodies, in priority order.
var upstreamErrorPaths = []string{
	"error.message",
	"error_msg",
	"error",
	"message",
}

// ParseUpstreamError extracts a clean, human-readable message from a provider
// error response body. Falls back to the raw body when no known shape matches.
func ParseUpstreamError(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	if gjson.ValidBytes(body) {
		for _, path := range upstreamErrorPaths {
			if result := gjson.GetBytes(body, path); result.Exists() && result.Type == gjson.String {
				if msg := strings.TrimSpace(result.String()); msg != "" {
					return truncateString(msg, maxErrorBodyLength)
				}
			}
		}
	}

	return truncateString(strings.TrimSpace(string(body)), maxErrorBodyLength)
}

// truncateString shortens s to at most max bytes.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
