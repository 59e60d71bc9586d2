package sms

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("no API credentials provided")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidPhoneNumber  = errors.New("invalid phone number")
	ErrUnsupportedResponse = errors.New("unsupported response")
	ErrNoProvider          = errors.New("no provider registered")
)

// VendorError is a documented error code returned in-band by a gateway.
type VendorError struct {
	Code    int
	Message string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("vendor error %d: %s", e.Code, e.Message)
}
