package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

// Provider is one SMS gateway integration.
type Provider interface {
	Send(ctx context.Context, recipient, body, originator string) (sms.Result, error)
	Name() string
}

// StatusChecker is implemented by gateways exposing per-message status polling.
type StatusChecker interface {
	Status(ctx context.Context, messageID string) (sms.Result, error)
}

// CreditChecker is implemented by gateways exposing an account balance query.
type CreditChecker interface {
	Credit(ctx context.Context) (Credit, error)
}

// ReportPoller is implemented by gateways that queue delivery reports and
// incoming messages for the client to collect.
type ReportPoller interface {
	Reports(ctx context.Context) ([]Report, error)
}

type Credit struct {
	User  string `json:"user"`
	Limit int    `json:"limit"`
	Used  int    `json:"used"`
}

const (
	ReportTypeDelivery = "DELIVERY"
	ReportTypeIncoming = "INCOMING"
)

// Report is either a delivery receipt or an incoming message.
type Report struct {
	Type        string `json:"type"`
	MessageID   string `json:"messageId,omitempty"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Status      string `json:"status,omitempty"`
	ErrorCode   string `json:"errorCode,omitempty"`
	DateTime    string `json:"datetime,omitempty"`
	UserRef     string `json:"userRef,omitempty"`
	DataCoding  string `json:"dataCoding,omitempty"`
	UDH         string `json:"udh,omitempty"`
	Message     string `json:"message,omitempty"`
}

type options struct {
	endpoint            string
	statusEndpoint      string
	internationalPrefix string
}

type Option func(*options)

// WithEndpoint overrides the send URL (or URL template).
func WithEndpoint(u string) Option {
	return func(o *options) {
		o.endpoint = u
	}
}

// WithStatusEndpoint overrides the status / report / credit URL.
func WithStatusEndpoint(u string) Option {
	return func(o *options) {
		o.statusEndpoint = u
	}
}

// WithInternationalPrefix sets the prefix used to internationalize local numbers.
func WithInternationalPrefix(p string) Option {
	return func(o *options) {
		o.internationalPrefix = p
	}
}

func buildOptions(defaults options, opts []Option) options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

type base struct {
	name    string
	adapter httpadapter.Adapter
	opts    options
}

func (b *base) Name() string {
	return b.name
}

func (b *base) post(ctx context.Context, endpoint string, headers []string, form url.Values, raw string) (string, error) {
	content, err := b.adapter.Fetch(ctx, httpadapter.Request{
		URL:     endpoint,
		Method:  http.MethodPost,
		Headers: headers,
		Form:    form,
		Raw:     raw,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.name, err)
	}
	return content, nil
}

func credentialsError(name string) error {
	return fmt.Errorf("%s: %w", name, sms.ErrInvalidCredentials)
}

func originatorRequired(name string) error {
	return fmt.Errorf("%s: %w: the originator parameter is required for this provider", name, sms.ErrInvalidArgument)
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
