package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
)

var (
	_ Provider = (*Nexmo)(nil)
	_ Provider = (*Twilio)(nil)
	_ Provider = (*Dummy)(nil)
	_ Provider = (*Cardboardfish)(nil)
	_ Provider = (*ValueFirst)(nil)
	_ Provider = (*Esendex)(nil)
	_ Provider = (*GSMAOneAPI)(nil)
	_ Provider = (*Swisscom)(nil)
	_ Provider = (*Websms)(nil)
	_ Provider = (*Twsms)(nil)

	_ StatusChecker = (*ValueFirst)(nil)
	_ StatusChecker = (*Esendex)(nil)
	_ CreditChecker = (*ValueFirst)(nil)
	_ ReportPoller  = (*Cardboardfish)(nil)
	_ ReportPoller  = (*Twsms)(nil)
)

// fakeAdapter records requests and replays a canned response.
type fakeAdapter struct {
	content string
	err     error
	calls   []httpadapter.Request
}

func (f *fakeAdapter) Fetch(_ context.Context, req httpadapter.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.content, f.err
}

func (f *fakeAdapter) Name() string {
	return "fake"
}

func TestLocalToInternational(t *testing.T) {
	tests := []struct {
		number string
		prefix string
		want   string
	}{
		{"0642424242", "+33", "+33642424242"},
		{"0642424242", "+44", "+44642424242"},
		{"+33642424242", "+44", "+33642424242"},
		{"", "+33", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LocalToInternational(tt.number, tt.prefix), "LocalToInternational(%q, %q)", tt.number, tt.prefix)
	}
}

func TestCleanOriginator(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ca$h-2day!", "Cah2day"},
		{"originator", "originator"},
		{"foo bar baz qux", "foobarbazqu"},
		{"0033642424242", "33642424242"},
		{"00123456789012345678", "123456789012345"},
		{"+33 6 42 42 42 42", "33642424242"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanOriginator(tt.in)
		assert.Equal(t, tt.want, got, "CleanOriginator(%q)", tt.in)
	}
}

func TestContainsUnicode(t *testing.T) {
	assert.False(t, ContainsUnicode("foo"))
	assert.False(t, ContainsUnicode(""))
	assert.True(t, ContainsUnicode("foo€"))
	assert.True(t, ContainsUnicode("café"))
}

func TestDummy_Send(t *testing.T) {
	p := NewDummy()

	r1, err := p.Send(context.Background(), "0642424242", "foo", "me")
	assert.NoError(t, err)
	r2, err := p.Send(context.Background(), "0642424242", "foo", "me")
	assert.NoError(t, err)

	assert.Equal(t, "dummy", p.Name())
	assert.True(t, r1.IsSent())
	assert.NotEmpty(t, r1.ID)
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Equal(t, "me", r1.Originator)
}
