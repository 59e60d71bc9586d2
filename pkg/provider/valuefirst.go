package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const (
	valueFirstURL = "http://api.myvaluefirst.com/psms/servlet/psms.Eservice2"

	valueFirstXMLHeader = `<?xml version="1.0" encoding="ISO-8859-1"?>` + "\n"

	valueFirstGUIDNotFound = -1
)

// Only Indian mobile numbers are accepted by the gateway.
var valueFirstPrefixes = []string{"9191", "9192", "9193", "9194", "9196", "9197", "9198", "9199"}

var valueFirstMessages = map[int]string{
	-1: "GUID not found",

	0:     "SMS submitted success NO",
	52992: "Username / Password incorrect",
	57089: "Contract expired",
	57090: "User Credit expired",
	57091: "User disabled",
	65280: "Service is temporarily unavailable",
	65535: "The specified message does not conform to DTD",

	28673: "Destination number not numeric",
	28674: "Destination number empty",
	28675: "Sender address empty",
	28676: "SMS over 160 character",
	28677: "UDH is invalid",
	28678: "Coding is invalid",
	28679: "SMS text is empty",
	28680: "Invalid sender ID",
	28681: "Invalid message. Submit failed",
	28682: "Invalid Receiver ID (will validate Indian mobile numbers only.)",
	28683: "Invalid Date time for message Schedule",

	8448: "Message delivered successfully",
	8449: "Message failed",
	8450: "Message ID is invalid",

	13568: "Command Completed Successfully",
	13569: "Cannot update/delete schedule since it has already been processed",
	13570: "Cannot update schedule since the new date-time parameter is incorrect.",
	13571: "Invalid SMS ID/GUID",
	13572: "Invalid Status type for schedule search query.",
	13573: "Invalid date time parameter for schedule search query",
	13574: "Invalid GUID for GUID search query",
	13575: "Invalid command action",
}

func valueFirstMessage(code int) string {
	if msg, ok := valueFirstMessages[code]; ok {
		return msg
	}
	return "Unknown error code " + strconv.Itoa(code)
}

type ValueFirst struct {
	base
	username string
	password string
}

func NewValueFirst(adapter httpadapter.Adapter, username, password string, opts ...Option) *ValueFirst {
	return &ValueFirst{
		base: base{
			name:    "valuefirst",
			adapter: adapter,
			opts: buildOptions(options{
				endpoint:       valueFirstURL,
				statusEndpoint: valueFirstURL,
			}, opts),
		},
		username: username,
		password: password,
	}
}

func (p *ValueFirst) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	return p.SendWithReference(ctx, recipient, body, originator, "")
}

// SendWithReference sets the ADDRESS TAG; a random one is used when empty.
func (p *ValueFirst) SendWithReference(ctx context.Context, recipient, body, originator, tag string) (sms.Result, error) {
	if err := p.checkCredentials(); err != nil {
		return sms.Result{}, err
	}
	if err := validateIndianRecipient(recipient); err != nil {
		return sms.Result{}, fmt.Errorf("%s: %w", p.name, err)
	}

	if tag == "" {
		tag = uuid.NewString()
	}

	payload, err := p.buildMessage(recipient, body, originator, tag)
	if err != nil {
		return sms.Result{}, err
	}

	result := sms.NewResult(recipient, body, originator)

	content, err := p.post(ctx, p.opts.endpoint, nil, url.Values{"action": {"send"}, "data": {payload}}, "")
	if err != nil {
		return result, err
	}
	if content == "" {
		return result, nil
	}

	return parseValueFirstAck(content, result), nil
}

// Status queries the delivery state of a message by GUID.
func (p *ValueFirst) Status(ctx context.Context, messageID string) (sms.Result, error) {
	if err := p.checkCredentials(); err != nil {
		return sms.Result{}, err
	}

	payload, err := marshalValueFirst(
		`<!DOCTYPE STATUSREQUEST SYSTEM "http://127.0.0.1:80/psms/dtd/requeststatusv12.dtd">`,
		valueFirstStatusRequest{
			Version: "1.2",
			User:    valueFirstUser{Username: p.username, Password: p.password},
			GUID:    valueFirstGUIDRef{GUID: messageID},
		},
	)
	if err != nil {
		return sms.Result{}, err
	}

	content, err := p.post(ctx, p.opts.statusEndpoint, nil, url.Values{"action": {"status"}, "data": {payload}}, "")
	if err != nil {
		return sms.Result{}, err
	}

	var ack valueFirstStatusAck
	if err := unmarshalValueFirst(content, &ack); err != nil {
		return sms.Result{}, fmt.Errorf("%s: %w: response is not a valid XML string", p.name, sms.ErrUnsupportedResponse)
	}
	if ack.GUID.Status == nil {
		return sms.Result{}, &sms.VendorError{Code: valueFirstGUIDNotFound, Message: valueFirstMessage(valueFirstGUIDNotFound)}
	}

	code, _ := strconv.Atoi(ack.GUID.Status.Err)

	result := sms.Result{ID: messageID, Status: sms.StatusFailed}
	switch code {
	case 8448:
		result.Status = sms.StatusDelivered
	case 13568:
		result.Status = sms.StatusSent
	}

	result = result.
		WithExtra("status_code", code).
		WithExtra("status_detail", valueFirstMessage(code))
	if ack.GUID.Status.DoneDate != "" {
		result = result.WithExtra("done_date", ack.GUID.Status.DoneDate)
	}

	return result, nil
}

// Credit returns the account credit limit and usage.
func (p *ValueFirst) Credit(ctx context.Context) (Credit, error) {
	if err := p.checkCredentials(); err != nil {
		return Credit{}, err
	}

	payload, err := marshalValueFirst(
		`<!DOCTYPE REQUESTCREDIT SYSTEM "http://127.0.0.1:80/psms/dtd/requestcredit.dtd">`,
		valueFirstCreditRequest{Username: p.username, Password: p.password},
	)
	if err != nil {
		return Credit{}, err
	}

	content, err := p.post(ctx, p.opts.statusEndpoint, nil, url.Values{"action": {"credits"}, "data": {payload}}, "")
	if err != nil {
		return Credit{}, err
	}

	var resp valueFirstCreditResponse
	if err := unmarshalValueFirst(content, &resp); err != nil {
		return Credit{}, fmt.Errorf("%s: %w: response is not a valid XML string", p.name, sms.ErrUnsupportedResponse)
	}
	if resp.Err != nil {
		code, _ := strconv.Atoi(resp.Err.Code)
		return Credit{}, &sms.VendorError{Code: code, Message: valueFirstMessage(code)}
	}

	credit := Credit{User: resp.User}
	if resp.Credit != nil {
		credit.Limit = atoiLoose(resp.Credit.Limit)
		credit.Used = atoiLoose(resp.Credit.Used)
	}

	return credit, nil
}

func (p *ValueFirst) checkCredentials() error {
	if p.username == "" || p.password == "" {
		return credentialsError(p.name)
	}
	return nil
}

func (p *ValueFirst) buildMessage(recipient, body, originator, tag string) (string, error) {
	return marshalValueFirst(
		`<!DOCTYPE MESSAGE SYSTEM "http://127.0.0.1:80/psms/dtd/messagev12.dtd">`,
		valueFirstMessageRequest{
			Version: "1.2",
			User:    valueFirstUser{Username: p.username, Password: p.password},
			SMS: valueFirstSMS{
				UDH:      "0",
				Coding:   "1",
				Property: "0",
				ID:       "1",
				Text:     encodeValueFirstText(body),
				Address: valueFirstAddress{
					From: originator,
					To:   recipient,
					Seq:  "1",
					Tag:  tag,
				},
			},
		},
	)
}

func validateIndianRecipient(recipient string) error {
	for _, prefix := range valueFirstPrefixes {
		if strings.HasPrefix(recipient, prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not a valid number", sms.ErrInvalidPhoneNumber, recipient)
}

// encodeValueFirstText applies the gateway's text escaping: whitespace and
// quotes become numeric or named entities, control, 8-bit and a handful of
// reserved characters are percent-encoded.
func encodeValueFirstText(msg string) string {
	var b strings.Builder

	for i := 0; i < len(msg); i++ {
		c := msg[i]
		switch {
		case c == '\t':
			b.WriteString("&#009;")
		case c == '\n':
			b.WriteString("&#010;")
		case c == '\r':
			b.WriteString("&#013;")
		case c == ' ':
			b.WriteString("&#032;")
		case c == '"':
			b.WriteString("&quot;")
		case c == '\'':
			b.WriteString("&apos;")
		case c >= 128 || c < 32 || strings.IndexByte("*#%<>+", c) >= 0:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func parseValueFirstAck(content string, result sms.Result) sms.Result {
	content = strings.TrimSpace(content)

	if content == "0#" {
		result.Status = sms.StatusInfo
		return result.WithExtra("status_info", "no message in queue")
	}

	var ack valueFirstAck
	if err := unmarshalValueFirst(content, &ack); err != nil {
		return result.WithExtra("error", "response is not a valid XML string")
	}

	var codeAttr string
	switch {
	case ack.Err != nil:
		codeAttr = ack.Err.Code
	case ack.GUID != nil && ack.GUID.Error != nil:
		codeAttr = ack.GUID.Error.Code
	}
	if codeAttr != "" {
		code, _ := strconv.Atoi(codeAttr)
		return result.
			WithExtra("error", valueFirstMessage(code)).
			WithExtra("error_code", code)
	}

	if ack.GUID == nil || ack.GUID.GUID == "" {
		return result.WithExtra("error", sms.ErrUnsupportedResponse.Error())
	}

	result.ID = ack.GUID.GUID
	result.Status = sms.StatusSent
	return result
}

func marshalValueFirst(doctype string, v any) (string, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to build valuefirst payload: %w", err)
	}
	return valueFirstXMLHeader + doctype + "\n" + string(out) + "\n", nil
}

// unmarshalValueFirst decodes a gateway response; they are declared ISO-8859-1.
func unmarshalValueFirst(content string, v any) error {
	dec := xml.NewDecoder(strings.NewReader(strings.TrimSpace(content)))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(label) {
		case "iso-8859-1", "latin1", "latin-1":
			return charmap.ISO8859_1.NewDecoder().Reader(input), nil
		case "utf-8", "us-ascii":
			return input, nil
		}
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return dec.Decode(v)
}

// Used="4007.00" style attributes.
func atoiLoose(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

type valueFirstUser struct {
	Username string `xml:"USERNAME,attr"`
	Password string `xml:"PASSWORD,attr"`
}

type valueFirstAddress struct {
	From string `xml:"FROM,attr"`
	To   string `xml:"TO,attr"`
	Seq  string `xml:"SEQ,attr"`
	Tag  string `xml:"TAG,attr,omitempty"`
}

type valueFirstSMS struct {
	UDH      string            `xml:"UDH,attr"`
	Coding   string            `xml:"CODING,attr"`
	Property string            `xml:"PROPERTY,attr"`
	ID       string            `xml:"ID,attr"`
	Text     string            `xml:"TEXT,attr"`
	DLR      string            `xml:"DLR,attr,omitempty"`
	Validity string            `xml:"VALIDITY,attr,omitempty"`
	SendOn   string            `xml:"SEND_ON,attr,omitempty"`
	Address  valueFirstAddress `xml:"ADDRESS"`
}

type valueFirstMessageRequest struct {
	XMLName xml.Name       `xml:"MESSAGE"`
	Version string         `xml:"VER,attr"`
	User    valueFirstUser `xml:"USER"`
	SMS     valueFirstSMS  `xml:"SMS"`
}

type valueFirstGUIDRef struct {
	GUID string `xml:"GUID,attr"`
}

type valueFirstStatusRequest struct {
	XMLName xml.Name          `xml:"STATUSREQUEST"`
	Version string            `xml:"VER,attr"`
	User    valueFirstUser    `xml:"USER"`
	GUID    valueFirstGUIDRef `xml:"GUID"`
}

type valueFirstCreditRequest struct {
	XMLName  xml.Name `xml:"REQUESTCREDIT"`
	Username string   `xml:"USERNAME,attr"`
	Password string   `xml:"PASSWORD,attr"`
}

type valueFirstCode struct {
	Code string `xml:"Code,attr"`
}

type valueFirstAck struct {
	Err  *valueFirstCode `xml:"Err"`
	GUID *struct {
		GUID  string `xml:"GUID,attr"`
		Error *struct {
			Code string `xml:"CODE,attr"`
		} `xml:"ERROR"`
	} `xml:"GUID"`
}

type valueFirstStatusAck struct {
	GUID struct {
		Status *struct {
			Err      string `xml:"ERR,attr"`
			DoneDate string `xml:"DONEDATE,attr"`
		} `xml:"STATUS"`
	} `xml:"GUID"`
}

type valueFirstCreditResponse struct {
	User   string          `xml:"User,attr"`
	Err    *valueFirstCode `xml:"Err"`
	Credit *struct {
		Limit string `xml:"Limit,attr"`
		Used  string `xml:"Used,attr"`
	} `xml:"Credit"`
}
