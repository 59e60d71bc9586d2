package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/internal/scheduler"
	"github.com/onurcolak/sms-sender/internal/service"
	"github.com/onurcolak/sms-sender/pkg/response"
	"github.com/onurcolak/sms-sender/pkg/validator"
)

type queueLength interface {
	Pending() int
}

type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	queue     queueLength
	ctx       context.Context
	config    *environments.Config
}

type StartSchedulerRequest struct {
	// Interval between flushes in seconds.
	Interval *int `json:"interval,omitempty" validate:"omitempty,min=1"`
}

// SchedulerState is the scheduler status plus the number of queued messages.
type SchedulerState struct {
	scheduler.SchedulerStatus
	Pending int `json:"pending"`
}

// NewSchedulerHandler takes the context the scheduler runs under; it must
// outlive single requests.
func NewSchedulerHandler(
	sched *scheduler.Scheduler,
	queue queueLength,
	ctx context.Context,
	cfg *environments.Config,
) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
		queue:     queue,
		ctx:       ctx,
		config:    cfg,
	}
}

func (h *SchedulerHandler) state() SchedulerState {
	st := SchedulerState{SchedulerStatus: h.scheduler.GetStatus()}
	if h.queue != nil {
		st.Pending = h.queue.Pending()
	}
	return st
}

// StartScheduler godoc
// @Summary Start the flush scheduler
// @Description Starts periodic flushing of the delayed queue. The interval defaults to SMS_FLUSH_INTERVAL.
// @Tags scheduler
// @Accept json
// @Produce json
// @Param x-sms-auth-key header string true "API key for scheduler"
// @Param request body StartSchedulerRequest false "Scheduler parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/scheduler/start [post]
func (h *SchedulerHandler) StartScheduler(c echo.Context) error {
	if !h.config.Sender.Delayed {
		return response.ServiceUnavailable(c, service.ErrQueueDisabled)
	}
	if h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already running", h.state())
	}

	var req StartSchedulerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	interval := h.config.Sender.FlushInterval
	if req.Interval != nil {
		interval = time.Duration(*req.Interval) * time.Second
	}

	err := h.scheduler.StartWithParams(h.ctx, interval, h.config.Alert.WebhookURL, h.config.Alert.IterationCount)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler started successfully", h.state())
}

// StopScheduler godoc
// @Summary Stop the flush scheduler
// @Description Stops periodic flushing. Queued messages stay queued until the next flush.
// @Tags scheduler
// @Produce json
// @Param x-sms-auth-key header string true "API key for scheduler"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/stop [post]
func (h *SchedulerHandler) StopScheduler(c echo.Context) error {
	if !h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already stopped", h.state())
	}

	if err := h.scheduler.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler stopped successfully", h.state())
}

// GetSchedulerStatus godoc
// @Summary Get scheduler status
// @Tags scheduler
// @Produce json
// @Param x-sms-auth-key header string true "API key for scheduler"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/scheduler/status [get]
func (h *SchedulerHandler) GetSchedulerStatus(c echo.Context) error {
	return response.Ok(c, h.state())
}
