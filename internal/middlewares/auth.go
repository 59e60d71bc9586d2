package middlewares

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/response"
)

const (
	APIKeyHeader = "x-sms-auth-key"
)

// parseKeys splits comma separated key lists so a key can be rotated by
// configuring the old and the new one side by side.
func parseKeys(raw []string) [][]byte {
	var keys [][]byte
	for _, r := range raw {
		for _, k := range strings.Split(r, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, []byte(k))
			}
		}
	}
	return keys
}

// matchesAny compares against every key so timing does not depend on which one matched.
func matchesAny(token string, keys [][]byte) bool {
	matched := 0
	for _, k := range keys {
		matched |= subtle.ConstantTimeCompare([]byte(token), k)
	}
	return matched == 1
}

func APIKeyAuth(apiKeys ...string) echo.MiddlewareFunc {
	keys := parseKeys(apiKeys)

	// No key configured is a server-side misconfiguration.
	if len(keys) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("API key is not configured for this endpoint group"),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// CORS preflight never carries the key.
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}

			token := c.Request().Header.Get(APIKeyHeader)
			if token == "" || !matchesAny(token, keys) {
				logger.Warnf("Rejected %s %s: invalid or missing %s", c.Request().Method, c.Request().URL.Path, APIKeyHeader)
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
