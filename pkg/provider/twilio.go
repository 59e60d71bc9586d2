package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const twilioSendURL = "https://api.twilio.com/2010-04-01/Accounts/%s/SMS/Messages.json"

type Twilio struct {
	base
	accountSID string
	authToken  string
}

// NewTwilio builds the Twilio provider. A custom endpoint must keep the %s
// placeholder for the account SID.
func NewTwilio(adapter httpadapter.Adapter, accountSID, authToken string, opts ...Option) *Twilio {
	return &Twilio{
		base: base{
			name:    "twilio",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:            twilioSendURL,
				internationalPrefix: "+33",
			}, opts),
		},
		accountSID: accountSID,
		authToken:  authToken,
	}
}

func (p *Twilio) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if p.accountSID == "" || p.authToken == "" {
		return sms.Result{}, credentialsError(p.name)
	}
	if originator == "" {
		return sms.Result{}, originatorRequired(p.name)
	}

	originator = CleanOriginator(originator)

	form := url.Values{
		"To":   {LocalToInternational(recipient, p.opts.internationalPrefix)},
		"Body": {body},
		"From": {originator},
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(p.accountSID + ":" + p.authToken))
	headers := []string{"Authorization: Basic " + credentials}

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, fmt.Sprintf(p.opts.endpoint, p.accountSID), headers, form, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	return p.parse(content, result), nil
}

type twilioResponse struct {
	SID     string     `json:"sid"`
	Status  flexString `json:"status"`
	Message string     `json:"message"`
	Code    flexString `json:"code"`
}

func (p *Twilio) parse(content string, result sms.Result) sms.Result {
	var resp twilioResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		logger.Warnf("twilio: failed to decode response: %v", err)
		return result.WithExtra("error", sms.ErrUnsupportedResponse.Error())
	}

	if resp.SID == "" || resp.Message != "" {
		if resp.Message != "" {
			result = result.WithExtra("error", resp.Message)
		}
		if resp.Code != "" {
			result = result.WithExtra("error_code", string(resp.Code))
		}
		return result
	}

	result.ID = resp.SID
	switch string(resp.Status) {
	case "failed":
		result.Status = sms.StatusFailed
	case "received":
		result.Status = sms.StatusDelivered
	default:
		result.Status = sms.StatusSent
	}

	return result
}
