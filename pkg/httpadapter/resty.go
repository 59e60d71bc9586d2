package httpadapter

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/sms-sender/pkg/logger"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 10
)

type Option func(*RestyAdapter)

func WithTimeout(d time.Duration) Option {
	return func(a *RestyAdapter) {
		a.timeout = d
	}
}

// WithRetryCount enables resty retries on transport errors. Gateways bill per
// accepted request, so the default is zero.
func WithRetryCount(n int) Option {
	return func(a *RestyAdapter) {
		a.retryCount = n
	}
}

func WithMaxRedirects(n int) Option {
	return func(a *RestyAdapter) {
		a.maxRedirects = n
	}
}

// WithClient uses a preconfigured resty client; timeout and retry options
// are still applied on top of it.
func WithClient(c *resty.Client) Option {
	return func(a *RestyAdapter) {
		a.client = c
	}
}

// RestyAdapter is the resty backed Adapter. It follows redirects.
type RestyAdapter struct {
	client       *resty.Client
	timeout      time.Duration
	retryCount   int
	maxRedirects int

	mu   sync.Mutex
	last *Request
}

func New(opts ...Option) *RestyAdapter {
	a := &RestyAdapter{
		timeout:      defaultTimeout,
		maxRedirects: defaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.client == nil {
		a.client = resty.New()
	}

	a.client.
		SetTimeout(a.timeout).
		SetRetryCount(a.retryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(a.maxRedirects))

	return a
}

func (a *RestyAdapter) Name() string {
	return "resty"
}

func (a *RestyAdapter) Fetch(ctx context.Context, req Request) (string, error) {
	req.Method = normalizeMethod(req.Method)
	a.remember(req)

	r := a.client.R().SetContext(ctx)

	for _, line := range req.Headers {
		name, value, ok := splitHeader(line)
		if !ok {
			logger.Warnf("Ignoring malformed header line %q", line)
			continue
		}
		r.SetHeader(name, value)
	}

	switch {
	case req.Raw != "":
		r.SetBody(req.Raw)
	case len(req.Form) > 0 && req.Method == http.MethodGet:
		r.SetQueryParamsFromValues(req.Form)
	case len(req.Form) > 0:
		r.SetFormDataFromValues(req.Form)
	}

	startTime := time.Now()

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		ae := &AdapterError{URL: req.URL, Err: err}
		if resp != nil {
			ae.StatusCode = resp.StatusCode()
		}
		return "", ae
	}

	logger.Debugf("%s %s completed in %v (status: %d)", req.Method, req.URL, time.Since(startTime), resp.StatusCode())

	body := resp.String()
	if !resp.IsSuccess() && body == "" {
		return "", &AdapterError{URL: req.URL, StatusCode: resp.StatusCode()}
	}

	return body, nil
}

// LastRequest returns the last request issued through the adapter.
func (a *RestyAdapter) LastRequest() (Request, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last == nil {
		return Request{}, false
	}
	return *a.last, true
}

func (a *RestyAdapter) remember(req Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cp := req
	cp.Headers = append([]string(nil), req.Headers...)
	if req.Form != nil {
		cp.Form = make(map[string][]string, len(req.Form))
		for k, v := range req.Form {
			cp.Form[k] = append([]string(nil), v...)
		}
	}
	a.last = &cp
}
