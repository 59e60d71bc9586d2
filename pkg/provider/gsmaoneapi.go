package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const swisscomSendURL = "https://api.swisscom.com/v1/messaging/sms/outbound/%s/requests"

// GSMAOneAPI speaks the GSMA OneAPI outbound SMS REST protocol. The endpoint
// is a URL template receiving the escaped "tel:" sender address.
type GSMAOneAPI struct {
	base
	clientID string
}

// NewGSMAOneAPI builds a generic OneAPI provider. The endpoint option is
// required; clientID is sent as a header when set.
func NewGSMAOneAPI(adapter httpadapter.Adapter, name, clientID string, opts ...Option) *GSMAOneAPI {
	return &GSMAOneAPI{
		base: base{
			name:    name,
			adapter: adapter,
			opts: buildOptions(options{
				internationalPrefix: "+41",
			}, opts),
		},
		clientID: clientID,
	}
}

// NewSwisscom is the Swisscom flavour of OneAPI; the client id is mandatory.
func NewSwisscom(adapter httpadapter.Adapter, clientID string, opts ...Option) *Swisscom {
	p := NewGSMAOneAPI(adapter, "swisscom", clientID, append([]Option{WithEndpoint(swisscomSendURL)}, opts...)...)
	return &Swisscom{GSMAOneAPI: p}
}

type Swisscom struct {
	*GSMAOneAPI
}

func (p *Swisscom) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if p.clientID == "" {
		return sms.Result{}, credentialsError(p.name)
	}
	return p.GSMAOneAPI.Send(ctx, recipient, body, originator)
}

type oneAPITextMessage struct {
	Message string `json:"message"`
}

type oneAPIRequest struct {
	OutboundSMSMessageRequest struct {
		Address                []string          `json:"address"`
		SenderAddress          string            `json:"senderAddress"`
		OutboundSMSTextMessage oneAPITextMessage `json:"outboundSMSTextMessage"`
	} `json:"outboundSMSMessageRequest"`
}

type oneAPIResponse struct {
	OutboundSMSMessageRequest struct {
		ClientCorrelator string `json:"clientCorrelator"`
		DeliveryInfoList struct {
			DeliveryInfo []struct {
				Address        string `json:"address"`
				DeliveryStatus string `json:"deliveryStatus"`
			} `json:"deliveryInfo"`
		} `json:"deliveryInfoList"`
	} `json:"outboundSMSMessageRequest"`
}

func (p *GSMAOneAPI) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if originator == "" {
		return sms.Result{}, originatorRequired(p.name)
	}
	if p.opts.endpoint == "" {
		return sms.Result{}, fmt.Errorf("%s: %w: no endpoint configured", p.name, sms.ErrInvalidArgument)
	}

	sender := LocalToInternational(originator, p.opts.internationalPrefix)
	endpoint := fmt.Sprintf(p.opts.endpoint, url.QueryEscape("tel:"+sender))

	var req oneAPIRequest
	req.OutboundSMSMessageRequest.Address = []string{"tel:" + LocalToInternational(recipient, p.opts.internationalPrefix)}
	req.OutboundSMSMessageRequest.SenderAddress = "tel:" + originator
	req.OutboundSMSMessageRequest.OutboundSMSTextMessage = oneAPITextMessage{Message: body}

	payload, err := json.Marshal(req)
	if err != nil {
		return sms.Result{}, fmt.Errorf("failed to marshal %s request: %w", p.name, err)
	}

	headers := []string{
		"Content-Type: application/json",
		"Accept: application/json",
	}
	if p.clientID != "" {
		headers = append(headers, "client_id: "+p.clientID)
	}

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, endpoint, headers, nil, string(payload))
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	var resp oneAPIResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		logger.Warnf("%s: failed to decode response: %v", p.name, err)
		return result.WithExtra("error", sms.ErrUnsupportedResponse.Error()), nil
	}

	result.ID = resp.OutboundSMSMessageRequest.ClientCorrelator
	if infos := resp.OutboundSMSMessageRequest.DeliveryInfoList.DeliveryInfo; len(infos) > 0 {
		switch infos[0].DeliveryStatus {
		case "DeliveredToNetwork":
			result.Status = sms.StatusSent
		case "DeliveredToTerminal":
			result.Status = sms.StatusDelivered
		case "MessageWaiting", "DeliveryUncertain":
			result.Status = sms.StatusQueued
		case "DeliveryImpossible":
			result.Status = sms.StatusFailed
		}
	}

	return result, nil
}
