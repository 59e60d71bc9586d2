package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-sender/internal/service"
	"github.com/onurcolak/sms-sender/pkg/response"
	"github.com/onurcolak/sms-sender/pkg/validator"
)

type ProviderHandler struct {
	service *service.SMSService
}

func NewProviderHandler(service *service.SMSService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

type SetActiveProviderRequest struct {
	Name string `json:"name" validate:"required"`
}

// ListProviders godoc
// @Summary List providers
// @Description Returns the registered providers, the active one and what each supports
// @Tags providers
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/providers [get]
func (h *ProviderHandler) ListProviders(c echo.Context) error {
	return response.Ok(c, h.service.Providers())
}

// SetActiveProvider godoc
// @Summary Switch the active provider
// @Tags providers
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param request body SetActiveProviderRequest true "Provider name"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/providers/active [put]
func (h *ProviderHandler) SetActiveProvider(c echo.Context) error {
	var req SetActiveProviderRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.service.SetActiveProvider(req.Name); err != nil {
		return writeError(c, err)
	}

	return response.OkWithMessage(c, "Active provider switched", h.service.Providers())
}

// GetMessageStatus godoc
// @Summary Query message status
// @Description Asks the provider for the current status of a message and updates the send log
// @Tags providers
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param name path string true "Provider name"
// @Param id path string true "Provider message id"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 501 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/providers/{name}/messages/{id} [get]
func (h *ProviderHandler) GetMessageStatus(c echo.Context) error {
	result, err := h.service.Status(c.Request().Context(), c.Param("name"), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return response.Ok(c, result)
}

// GetCredit godoc
// @Summary Query account credit
// @Tags providers
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param name path string true "Provider name"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 501 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/providers/{name}/credit [get]
func (h *ProviderHandler) GetCredit(c echo.Context) error {
	credit, err := h.service.Credit(c.Request().Context(), c.Param("name"))
	if err != nil {
		return writeError(c, err)
	}

	return response.Ok(c, credit)
}

// GetReports godoc
// @Summary Poll delivery reports
// @Description Fetches pending delivery reports and applies them to the send log
// @Tags providers
// @Produce json
// @Param x-sms-auth-key header string true "API key for sms"
// @Param name path string true "Provider name"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 501 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/providers/{name}/reports [get]
func (h *ProviderHandler) GetReports(c echo.Context) error {
	reports, err := h.service.Reports(c.Request().Context(), c.Param("name"))
	if err != nil {
		return writeError(c, err)
	}

	return response.Ok(c, reports)
}
