package provider

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const nexmoSendURL = "https://rest.nexmo.com/sms/json"

type Nexmo struct {
	base
	apiKey    string
	apiSecret string
}

func NewNexmo(adapter httpadapter.Adapter, apiKey, apiSecret string, opts ...Option) *Nexmo {
	return &Nexmo{
		base: base{
			name:    "nexmo",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:            nexmoSendURL,
				internationalPrefix: "+33",
			}, opts),
		},
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

func (p *Nexmo) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if p.apiKey == "" || p.apiSecret == "" {
		return sms.Result{}, credentialsError(p.name)
	}
	if originator == "" {
		return sms.Result{}, originatorRequired(p.name)
	}

	originator = CleanOriginator(originator)

	msgType := "text"
	if ContainsUnicode(body) {
		msgType = "unicode"
	}

	form := url.Values{
		"username": {p.apiKey},
		"password": {p.apiSecret},
		"to":       {LocalToInternational(recipient, p.opts.internationalPrefix)},
		"text":     {body},
		"from":     {originator},
		"type":     {msgType},
	}

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, p.opts.endpoint, nil, form, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	return p.parse(content, result), nil
}

type nexmoResponse struct {
	MessageCount flexString `json:"message-count"`
	Messages     []struct {
		Status    flexString `json:"status"`
		MessageID string     `json:"message-id"`
		ErrorText string     `json:"error-text"`
	} `json:"messages"`
}

func (p *Nexmo) parse(content string, result sms.Result) sms.Result {
	var resp nexmoResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		logger.Warnf("nexmo: failed to decode response: %v", err)
		return result.WithExtra("error", sms.ErrUnsupportedResponse.Error())
	}

	if resp.MessageCount.Int() < 1 || len(resp.Messages) == 0 {
		return result
	}

	// only the first part is considered
	msg := resp.Messages[0]
	result.ID = msg.MessageID
	if msg.Status == "0" {
		result.Status = sms.StatusSent
	} else {
		result.Status = sms.StatusFailed
		if msg.ErrorText != "" {
			result = result.WithExtra("error", msg.ErrorText)
		}
		result = result.WithExtra("error_code", string(msg.Status))
	}

	return result
}
