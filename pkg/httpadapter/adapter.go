package httpadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Request is one outbound call as a provider describes it.
// Form is form-encoded (or sent as query string on GET); Raw is sent as-is.
type Request struct {
	URL     string
	Method  string
	Headers []string
	Form    url.Values
	Raw     string
}

// Adapter performs a single blocking HTTP request and returns the raw body.
type Adapter interface {
	Fetch(ctx context.Context, req Request) (string, error)
	Name() string
}

// AdapterError is returned on transport failures and on non-success
// responses that carry no content.
type AdapterError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http request to %s failed (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("http request to %s failed with status %d", e.URL, e.StatusCode)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// splitHeader parses a literal "Name: value" header line.
func splitHeader(line string) (string, string, bool) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}

func normalizeMethod(m string) string {
	if m == "" {
		return "GET"
	}
	return strings.ToUpper(m)
}
