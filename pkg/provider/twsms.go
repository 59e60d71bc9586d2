package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const (
	twsmsSendURL  = "https://api.twsms.com/smsSend.php"
	twsmsQueryURL = "https://api.twsms.com/smsQuery.php"

	twsmsSuccessCode = "00000"
)

type Twsms struct {
	base
	username string
	password string
}

func NewTwsms(adapter httpadapter.Adapter, username, password string, opts ...Option) *Twsms {
	return &Twsms{
		base: base{
			name:    "twsms",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:       twsmsSendURL,
				statusEndpoint: twsmsQueryURL,
			}, opts),
		},
		username: username,
		password: password,
	}
}

type twsmsResponse struct {
	Code  string `xml:"code"`
	Text  string `xml:"text"`
	MsgID string `xml:"msgid"`
}

// Send posts the message; the gateway has no originator field so it is only echoed.
func (p *Twsms) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	return p.SendAt(ctx, recipient, body, originator, "")
}

// SendAt schedules delivery at sendTime (gateway format YYYYMMDDhhmm).
func (p *Twsms) SendAt(ctx context.Context, recipient, body, originator, sendTime string) (sms.Result, error) {
	if p.username == "" || p.password == "" {
		return sms.Result{}, credentialsError(p.name)
	}

	form := p.params()
	form.Set("mobile", recipient)
	form.Set("message", body)
	setIfNotEmpty(form, "sendtime", sendTime)

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, p.opts.endpoint, nil, form, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	var resp twsmsResponse
	if err := xml.Unmarshal([]byte(strings.TrimSpace(content)), &resp); err != nil {
		return result.WithExtra("error", sms.ErrUnsupportedResponse.Error()), nil
	}

	if resp.Code != twsmsSuccessCode {
		result = result.WithExtra("error_code", resp.Code)
		if resp.Text != "" {
			result = result.WithExtra("error", resp.Text)
		}
		return result, nil
	}

	result.ID = resp.MsgID
	result.Status = sms.StatusSent
	return result.WithExtra("code", resp.Code), nil
}

// Reports collects delivery receipts queued by the gateway.
func (p *Twsms) Reports(ctx context.Context) ([]Report, error) {
	if p.username == "" || p.password == "" {
		return nil, credentialsError(p.name)
	}

	content, err := p.post(ctx, p.opts.statusEndpoint, nil, p.params(), "")
	if err != nil {
		return nil, err
	}

	reports, ok := parseReports(content)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", p.name, sms.ErrUnsupportedResponse, strings.TrimSpace(content))
	}
	return reports, nil
}

func (p *Twsms) params() url.Values {
	return url.Values{
		"username": {p.username},
		"password": {p.password},
	}
}
