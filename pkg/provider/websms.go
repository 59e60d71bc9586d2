package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const websmsSendURL = "https://api.websms.com/rest/smsmessaging/text"

const (
	websmsStatusOK     = 2000
	websmsStatusQueued = 2001
)

type Websms struct {
	base
	accessToken string
}

func NewWebsms(adapter httpadapter.Adapter, accessToken string, opts ...Option) *Websms {
	return &Websms{
		base: base{
			name:    "websms",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:            websmsSendURL,
				internationalPrefix: "+43",
			}, opts),
		},
		accessToken: accessToken,
	}
}

type websmsRequest struct {
	MessageContent       string   `json:"messageContent"`
	RecipientAddressList []string `json:"recipientAddressList"`
}

type websmsResponse struct {
	TransferID    string     `json:"transferId"`
	StatusCode    flexString `json:"statusCode"`
	StatusMessage string     `json:"statusMessage"`
}

func (p *Websms) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if p.accessToken == "" {
		return sms.Result{}, credentialsError(p.name)
	}

	to := strings.TrimPrefix(LocalToInternational(recipient, p.opts.internationalPrefix), "+")

	payload, err := json.Marshal(websmsRequest{
		MessageContent:       body,
		RecipientAddressList: []string{to},
	})
	if err != nil {
		return sms.Result{}, fmt.Errorf("failed to marshal websms request: %w", err)
	}

	headers := []string{
		"Authorization: Bearer " + p.accessToken,
		"Content-Type: application/json",
		"Accept: application/json",
	}

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, p.opts.endpoint, headers, nil, string(payload))
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	var resp websmsResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		logger.Warnf("websms: failed to decode response: %v", err)
		return result.WithExtra("error", sms.ErrUnsupportedResponse.Error()), nil
	}

	if resp.TransferID == "" || resp.StatusCode == "" {
		if resp.StatusMessage != "" {
			result = result.WithExtra("error", resp.StatusMessage)
		}
		return result, nil
	}

	result.ID = resp.TransferID
	switch resp.StatusCode.Int() {
	case websmsStatusOK:
		result.Status = sms.StatusSent
	case websmsStatusQueued:
		result.Status = sms.StatusQueued
	default:
		result.Status = sms.StatusFailed
		result = result.WithExtra("error_code", string(resp.StatusCode))
	}

	return result, nil
}
