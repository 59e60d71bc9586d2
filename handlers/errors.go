package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-sender/internal/service"
	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/response"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

// writeError maps service and library errors onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	var (
		adapterErr *httpadapter.AdapterError
		vendorErr  *sms.VendorError
	)

	switch {
	case errors.Is(err, service.ErrBodyTooLong),
		errors.Is(err, sms.ErrInvalidArgument),
		errors.Is(err, sms.ErrInvalidPhoneNumber):
		return response.BadRequest(c, err)

	// The caller cannot fix a provider missing its credentials.
	case errors.Is(err, sms.ErrInvalidCredentials):
		return response.InternalServerError(c, err)

	case errors.Is(err, service.ErrUnknownProvider),
		errors.Is(err, sms.ErrNoProvider):
		return response.NotFound(c, err.Error())

	case errors.Is(err, service.ErrNotSupported):
		return response.NotImplemented(c, err)

	case errors.Is(err, service.ErrQueueDisabled),
		errors.Is(err, service.ErrCacheDisabled):
		return response.ServiceUnavailable(c, err)

	case errors.As(err, &adapterErr),
		errors.As(err, &vendorErr),
		errors.Is(err, sms.ErrUnsupportedResponse):
		return response.BadGateway(c, err)

	default:
		return response.InternalServerError(c, err)
	}
}
