package sms

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusQueued    Status = "queued"
	StatusInfo      Status = "info"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusFailed, StatusQueued, StatusInfo:
		return true
	}
	return false
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: invalid status given: %q", ErrInvalidArgument, v)
	}
	return s, nil
}

// FromBool maps the boolean "sent" flag some gateways report onto the enum.
// Queued and info cannot be expressed by such gateways.
func FromBool(sent bool) Status {
	if sent {
		return StatusSent
	}
	return StatusFailed
}

// Result is the normalized outcome of one send, queue or status call.
type Result struct {
	ID         string         `json:"id,omitempty"`
	Recipient  string         `json:"recipient"`
	Body       string         `json:"body"`
	Originator string         `json:"originator"`
	Status     Status         `json:"status"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NewResult returns a FAILED result echoing the request.
func NewResult(recipient, body, originator string) Result {
	return Result{
		Recipient:  recipient,
		Body:       body,
		Originator: originator,
		Status:     StatusFailed,
	}
}

func (r Result) HasID() bool {
	return r.ID != ""
}

// IsSent reports whether the gateway accepted or delivered the message.
func (r Result) IsSent() bool {
	return r.Status == StatusSent || r.Status == StatusDelivered
}

// WithExtra returns a copy of r carrying an additional vendor field.
func (r Result) WithExtra(key string, value any) Result {
	extra := make(map[string]any, len(r.Extra)+1)
	for k, v := range r.Extra {
		extra[k] = v
	}
	extra[key] = value
	r.Extra = extra
	return r
}

// ExtraString returns an extra field as a string, or "" when absent.
func (r Result) ExtraString(key string) string {
	v, ok := r.Extra[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ToMap flattens the result into a map view, extras included.
func (r Result) ToMap() map[string]any {
	m := make(map[string]any, len(r.Extra)+6)
	for k, v := range r.Extra {
		m[k] = v
	}

	if r.HasID() {
		m["id"] = r.ID
	} else {
		m["id"] = nil
	}
	m["recipient"] = r.Recipient
	m["body"] = r.Body
	m["originator"] = r.Originator
	m["status"] = string(r.Status)
	m["sent"] = r.IsSent()

	return m
}

// FromMap builds a result from a map view. Keys and status values must match
// ToMap exactly; any other key becomes an extra and a missing status defaults
// to failed. An empty id stays unset and "sent" is recomputed from status.
func FromMap(m map[string]any) (Result, error) {
	r := Result{Status: StatusFailed}

	for k, v := range m {
		switch k {
		case "id":
			if s := toString(v); s != "" {
				r.ID = s
			}
		case "recipient":
			r.Recipient = toString(v)
		case "body":
			r.Body = toString(v)
		case "originator":
			r.Originator = toString(v)
		case "status":
			if v == nil {
				continue
			}
			s := Status(toString(v))
			if !s.Valid() {
				return Result{}, fmt.Errorf("%w: invalid status given: %q", ErrInvalidArgument, toString(v))
			}
			r.Status = s
		case "sent":
			// derived from status
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
		}
	}

	return r, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Status:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
