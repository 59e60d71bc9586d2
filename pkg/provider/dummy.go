package provider

import (
	"context"

	"github.com/google/uuid"

	"github.com/onurcolak/sms-sender/pkg/sms"
)

// Dummy accepts every message without any network call.
type Dummy struct{}

func NewDummy() *Dummy {
	return &Dummy{}
}

func (p *Dummy) Name() string {
	return "dummy"
}

func (p *Dummy) Send(_ context.Context, recipient, body, originator string) (sms.Result, error) {
	result := sms.NewResult(recipient, body, originator)
	result.ID = uuid.NewString()
	result.Status = sms.StatusSent
	return result, nil
}
