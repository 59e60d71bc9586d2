package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const (
	cardboardfishSendURL   = "http://sms1.cardboardfish.com:9001/HTTPSMS"
	cardboardfishReportURL = "http://sms1.cardboardfish.com:9001/ClientDR/ClientDR"
)

var cardboardfishErrors = map[string]string{
	"ERR -5":  "Not Enough Credit",
	"ERR -10": "Invalid Username or Password",
	"ERR -15": "Invalid destination or destination not covered",
	"ERR -20": "System error, please retry",
	"ERR -25": "Request Error, Do Not Retry",
}

type Cardboardfish struct {
	base
	username string
	password string
}

func NewCardboardfish(adapter httpadapter.Adapter, username, password string, opts ...Option) *Cardboardfish {
	return &Cardboardfish{
		base: base{
			name:    "cardboardfish",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:       cardboardfishSendURL,
				statusEndpoint: cardboardfishReportURL,
			}, opts),
		},
		username: username,
		password: password,
	}
}

func (p *Cardboardfish) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	return p.SendWithReference(ctx, recipient, body, originator, "")
}

// SendWithReference attaches a client reference the gateway echoes back in
// the acknowledgement and in delivery reports.
func (p *Cardboardfish) SendWithReference(ctx context.Context, recipient, body, originator, userRef string) (sms.Result, error) {
	if p.username == "" || p.password == "" {
		return sms.Result{}, credentialsError(p.name)
	}

	form := p.params()
	form.Set("DA", recipient)
	setIfNotEmpty(form, "SA", originator)
	setIfNotEmpty(form, "UR", userRef)
	form.Set("M", GSMEncode(body))

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, p.opts.endpoint, nil, form, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	return p.parseSend(content, result), nil
}

// Reports collects queued delivery receipts and incoming messages.
func (p *Cardboardfish) Reports(ctx context.Context) ([]Report, error) {
	if p.username == "" || p.password == "" {
		return nil, credentialsError(p.name)
	}

	content, err := p.post(ctx, p.opts.statusEndpoint, nil, p.params(), "")
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if msg, ok := cardboardfishError(content); ok {
		return nil, fmt.Errorf("%s: %s", p.name, msg)
	}

	reports, ok := parseReports(content)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", p.name, sms.ErrUnsupportedResponse, content)
	}
	return reports, nil
}

func (p *Cardboardfish) params() url.Values {
	return url.Values{
		"S":  {"H"},
		"UN": {p.username},
		"P":  {p.password},
		"DC": {"0"},
	}
}

// parseSend handles "OK <id>" and "OK <id> UR:<ref>" acknowledgements.
func (p *Cardboardfish) parseSend(content string, result sms.Result) sms.Result {
	content = strings.TrimSpace(content)

	if msg, ok := cardboardfishError(content); ok {
		return result.WithExtra("error", msg)
	}
	if !strings.HasPrefix(content, "OK") {
		return result.WithExtra("error", "Unknown Error")
	}

	result.Status = sms.StatusSent

	parts := strings.Split(content, " ")
	switch len(parts) {
	case 3:
		result.ID = parts[1]
		if _, ref, ok := strings.Cut(parts[2], ":"); ok {
			result = result.WithExtra("user_ref", ref)
		}
	case 2:
		result.ID = parts[1]
	}

	return result
}

func cardboardfishError(content string) (string, bool) {
	if !strings.HasPrefix(content, "ERR") {
		return "", false
	}
	if msg, ok := cardboardfishErrors[content]; ok {
		return msg, true
	}
	return "Unknown Error", true
}
