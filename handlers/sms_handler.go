package handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-sender/internal/service"
	"github.com/onurcolak/sms-sender/pkg/response"
	"github.com/onurcolak/sms-sender/pkg/sms"
	"github.com/onurcolak/sms-sender/pkg/validator"
)

type SMSHandler struct {
	service *service.SMSService
}

func NewSMSHandler(service *service.SMSService) *SMSHandler {
	return &SMSHandler{service: service}
}

type SendSMSRequest struct {
	Recipient  string `json:"recipient" validate:"required,phone"`
	Body       string `json:"body" validate:"required"`
	Originator string `json:"originator" validate:"omitempty,originator"`
}

// SendSMS godoc
// @Summary Send an SMS now
// @Description Sends the message through the active provider and records the result
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param message body SendSMSRequest true "Message to send"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/sms [post]
func (h *SMSHandler) SendSMS(c echo.Context) error {
	var req SendSMSRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Send(c.Request().Context(), req.Recipient, req.Body, req.Originator)
	if err != nil {
		return writeError(c, err)
	}

	if !result.IsSent() {
		return response.OkWithMessage(c, "SMS was not accepted by the provider", result)
	}

	return response.OkWithMessage(c, "SMS sent successfully", result)
}

// QueueSMS godoc
// @Summary Queue an SMS
// @Description Stores the message in the delayed sender until the next flush
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param message body SendSMSRequest true "Message to queue"
// @Success 202 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/sms/queue [post]
func (h *SMSHandler) QueueSMS(c echo.Context) error {
	var req SendSMSRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Queue(c.Request().Context(), req.Recipient, req.Body, req.Originator)
	if err != nil {
		return writeError(c, err)
	}

	return response.Accepted(c, "SMS queued", result)
}

// FlushQueue godoc
// @Summary Flush the delayed queue
// @Description Sends every queued message now and returns the outcome of each
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Success 200 {object} response.SuccessResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/sms/flush [post]
func (h *SMSHandler) FlushQueue(c echo.Context) error {
	report, err := h.service.Flush(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return response.OkWithMessage(c, fmt.Sprintf("Flushed %d messages", report.Sent+report.Failed), report)
}

// GetLogs godoc
// @Summary Get the send log
// @Description Retrieves a paginated list of send results with optional status filter
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status (sent, delivered, failed, queued, info)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/sms [get]
func (h *SMSHandler) GetLogs(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	var status *sms.Status
	if raw := c.QueryParam("status"); raw != "" {
		parsed, err := sms.ParseStatus(raw)
		if err != nil {
			return response.BadRequest(c, err)
		}
		status = &parsed
	}

	logs, totalCount, err := h.service.Logs(c.Request().Context(), status, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, logs, page, pageSize, totalCount)
}

// GetStats godoc
// @Summary Get send statistics
// @Description Returns the count of logged results by status and the queue length
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/sms/stats [get]
func (h *SMSHandler) GetStats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, stats)
}

// GetCachedResult godoc
// @Summary Get a cached result
// @Description Returns the cached result for a provider message id
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param id path string true "Provider message id"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/sms/cached/{id} [get]
func (h *SMSHandler) GetCachedResult(c echo.Context) error {
	id := c.Param("id")

	cached, err := h.service.CachedResult(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if cached == nil {
		return response.NotFound(c, fmt.Sprintf("no cached result for %q", id))
	}

	return response.Ok(c, cached)
}

// GetCachedResults godoc
// @Summary Get all cached results
// @Description Returns every result still held in the cache
// @Tags sms
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Success 200 {object} response.SuccessResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/sms/cached [get]
func (h *SMSHandler) GetCachedResults(c echo.Context) error {
	cached, err := h.service.CachedResults(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return response.Ok(c, cached)
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	pageStr := c.QueryParam("page")
	pageSizeStr := c.QueryParam("pageSize")

	page := defaultPage
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	pageSize := defaultPageSize
	if pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}
