package provider

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms-sender/pkg/sms"
)

const swisscomMockResponse = `{
  "outboundSMSMessageRequest": {
    "address": ["tel:+41791234567"],
    "senderAddress": "tel:+41791111111",
    "outboundSMSTextMessage": {"message": "foo"},
    "clientCorrelator": "0A130A1B",
    "deliveryInfoList": {
      "deliveryInfo": [{"address": "tel:+41791234567", "deliveryStatus": "DeliveredToNetwork"}]
    }
  }
}`

func TestSwisscom_PreNetworkValidation(t *testing.T) {
	adapter := &fakeAdapter{}

	_, err := NewSwisscom(adapter, "").Send(context.Background(), "0791234567", "foo", "0791111111")
	require.ErrorIs(t, err, sms.ErrInvalidCredentials)

	_, err = NewSwisscom(adapter, "client").Send(context.Background(), "0791234567", "foo", "")
	require.ErrorIs(t, err, sms.ErrInvalidArgument)

	assert.Empty(t, adapter.calls)
}

func TestSwisscom_SendWithMockData(t *testing.T) {
	adapter := &fakeAdapter{content: swisscomMockResponse}
	p := NewSwisscom(adapter, "client-123")

	r, err := p.Send(context.Background(), "0791234567", "foo", "0791111111")
	require.NoError(t, err)

	assert.Equal(t, "swisscom", p.Name())
	assert.Equal(t, "0A130A1B", r.ID)
	assert.Equal(t, sms.StatusSent, r.Status)
	assert.Equal(t, "0791234567", r.Recipient)

	require.Len(t, adapter.calls, 1)
	req := adapter.calls[0]
	assert.Equal(t, "https://api.swisscom.com/v1/messaging/sms/outbound/tel%3A%2B41791111111/requests", req.URL)
	assert.Contains(t, req.Headers, "client_id: client-123")
	assert.Contains(t, req.Headers, "Content-Type: application/json")

	var body oneAPIRequest
	require.NoError(t, json.Unmarshal([]byte(req.Raw), &body))
	assert.Equal(t, []string{"tel:+41791234567"}, body.OutboundSMSMessageRequest.Address)
	assert.Equal(t, "tel:0791111111", body.OutboundSMSMessageRequest.SenderAddress)
	assert.Equal(t, "foo", body.OutboundSMSMessageRequest.OutboundSMSTextMessage.Message)
}

func TestGSMAOneAPI_DeliveryStatuses(t *testing.T) {
	tests := []struct {
		status string
		want   sms.Status
	}{
		{"DeliveredToNetwork", sms.StatusSent},
		{"DeliveredToTerminal", sms.StatusDelivered},
		{"MessageWaiting", sms.StatusQueued},
		{"DeliveryUncertain", sms.StatusQueued},
		{"DeliveryImpossible", sms.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			content := `{"outboundSMSMessageRequest":{"clientCorrelator":"id-1","deliveryInfoList":{"deliveryInfo":[{"deliveryStatus":"` + tt.status + `"}]}}}`
			adapter := &fakeAdapter{content: content}
			p := NewGSMAOneAPI(adapter, "oneapi", "", WithEndpoint("https://oneapi.example.com/outbound/%s/requests"))

			r, err := p.Send(context.Background(), "0791234567", "foo", "+41791111111")
			require.NoError(t, err)

			assert.Equal(t, "id-1", r.ID)
			assert.Equal(t, tt.want, r.Status)
			require.Len(t, adapter.calls, 1)
			assert.NotContains(t, adapter.calls[0].Headers, "client_id: ")
		})
	}
}

func TestGSMAOneAPI_RequiresEndpoint(t *testing.T) {
	adapter := &fakeAdapter{}

	_, err := NewGSMAOneAPI(adapter, "oneapi", "").Send(context.Background(), "0791234567", "foo", "me")

	require.ErrorIs(t, err, sms.ErrInvalidArgument)
	assert.Empty(t, adapter.calls)
}
