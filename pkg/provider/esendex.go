package provider

import (
	"context"
	"net/url"
	"strings"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const (
	esendexSendURL   = "http://www.esendex.com/secure/messenger/formpost/SendSMS.aspx"
	esendexStatusURL = "http://www.esendex.com/secure/messenger/formpost/QueryStatus.aspx"
)

// Esendex reports a boolean Result; OK maps to sent, anything else to failed.
type Esendex struct {
	base
	username   string
	password   string
	accountRef string
}

func NewEsendex(adapter httpadapter.Adapter, username, password, accountRef string, opts ...Option) *Esendex {
	return &Esendex{
		base: base{
			name:    "esendex",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:       esendexSendURL,
				statusEndpoint: esendexStatusURL,
			}, opts),
		},
		username:   username,
		password:   password,
		accountRef: accountRef,
	}
}

func (p *Esendex) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if err := p.checkCredentials(); err != nil {
		return sms.Result{}, err
	}

	form := p.params()
	form.Set("recipient", recipient)
	form.Set("body", body)
	form.Set("originator", originator)
	form.Set("type", "Text")

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, p.opts.endpoint, nil, form, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	return applyEsendexFields(parseEsendexLines(content), result), nil
}

// Status queries a message by id. A MessageStatus field refines the boolean
// Result when the gateway includes one.
func (p *Esendex) Status(ctx context.Context, messageID string) (sms.Result, error) {
	if err := p.checkCredentials(); err != nil {
		return sms.Result{}, err
	}

	form := p.params()
	form.Set("messageID", messageID)

	result := sms.Result{ID: messageID, Status: sms.StatusFailed}

	content, err := p.post(ctx, p.opts.statusEndpoint, nil, form, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	fields := parseEsendexLines(content)
	result = applyEsendexFields(fields, result)

	if result.IsSent() {
		switch strings.ToLower(fields["MessageStatus"]) {
		case "delivered":
			result.Status = sms.StatusDelivered
		case "queued", "submitted":
			result.Status = sms.StatusQueued
		case "failed", "rejected":
			result.Status = sms.StatusFailed
		}
	}

	return result, nil
}

func (p *Esendex) checkCredentials() error {
	if p.username == "" || p.password == "" || p.accountRef == "" {
		return credentialsError(p.name)
	}
	return nil
}

func (p *Esendex) params() url.Values {
	return url.Values{
		"username":  {p.username},
		"password":  {p.password},
		"account":   {p.accountRef},
		"plainText": {"1"},
	}
}

// parseEsendexLines reads the plain text "Key=value" response, one pair per line.
func parseEsendexLines(content string) map[string]string {
	fields := make(map[string]string)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			continue
		}

		value, err := url.QueryUnescape(parts[1])
		if err != nil {
			value = parts[1]
		}
		fields[parts[0]] = strings.TrimSpace(value)
	}

	return fields
}

func applyEsendexFields(fields map[string]string, result sms.Result) sms.Result {
	if r, ok := fields["Result"]; ok {
		result.Status = sms.FromBool(r == "OK")
	}
	if id := fields["MessageIDs"]; id != "" {
		result.ID = id
	}
	if msg := fields["Message"]; msg != "" && !result.IsSent() {
		result = result.WithExtra("error", msg)
	}
	return result
}
