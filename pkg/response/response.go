package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse carries the id set by the RequestID middleware so a client
// report can be matched with the server log.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type PaginatedResponse struct {
	Success    bool  `json:"success"`
	Data       any   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail writes an error envelope with the given status.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Success:   false,
		Error:     message,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	})
}

func Ok(c echo.Context, data any) error {
	return success(c, http.StatusOK, "", data)
}

func OkWithMessage(c echo.Context, message string, data any) error {
	return success(c, http.StatusOK, message, data)
}

func Created(c echo.Context, message string, data any) error {
	return success(c, http.StatusCreated, message, data)
}

func Accepted(c echo.Context, message string, data any) error {
	return success(c, http.StatusAccepted, message, data)
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func BadRequest(c echo.Context, err error) error {
	return Fail(c, http.StatusBadRequest, err.Error())
}

func Unauthorized(c echo.Context) error {
	return Fail(c, http.StatusUnauthorized, "Invalid or missing API key")
}

func NotFound(c echo.Context, message string) error {
	return Fail(c, http.StatusNotFound, message)
}

func UnprocessableEntity(c echo.Context, err error) error {
	return Fail(c, http.StatusUnprocessableEntity, err.Error())
}

func InternalServerError(c echo.Context, err error) error {
	return Fail(c, http.StatusInternalServerError, err.Error())
}

func NotImplemented(c echo.Context, err error) error {
	return Fail(c, http.StatusNotImplemented, err.Error())
}

// BadGateway reports a failure on the provider side of the request.
func BadGateway(c echo.Context, err error) error {
	return Fail(c, http.StatusBadGateway, err.Error())
}

func ServiceUnavailable(c echo.Context, err error) error {
	return Fail(c, http.StatusServiceUnavailable, err.Error())
}

func Paginated(c echo.Context, data any, page, pageSize int, totalCount int64) error {
	if pageSize <= 0 {
		pageSize = 1
	}

	return c.JSON(http.StatusOK, PaginatedResponse{
		Success:    true,
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: int((totalCount + int64(pageSize) - 1) / int64(pageSize)),
	})
}
