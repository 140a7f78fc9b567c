package http

import (
	"net/url"
	"strings"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
)

// sensitiveParams are redacted from logged URLs. Matched case-insensitively.
var sensitiveParams = []string{
	"token",
	"password",
	"secret",
	"api_key",
	"apikey",
}

// sanitizeURL redacts credentials from raw before it is logged.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return constants.Redacted
	}

	q := u.Query()

	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, constants.Redacted)
		}
	}

	u.RawQuery = q.Encode()

	return u.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}

	return false
}
