package controller

import (
	"time"

	"github.com/labstack/echo/v4"

	"syncme/core/constants"
	"syncme/core/controller"
	"syncme/core/errors"
	"syncme/core/utils"
	"syncme/modules/reminder/dto"
	"syncme/modules/reminder/service"
)

type ReminderController struct {
	controller.BaseController
	service service.ReminderServiceInterface
}

func NewReminderController(svc service.ReminderServiceInterface) *ReminderController {
	return &ReminderController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func getUserIDFromContext(c echo.Context) (string, *errors.AppError) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return "", errors.NewAppError(errors.ErrUnauthorized, "missing token data", nil)
	}
	return claims.UserID.String(), nil
}

// Create schedules a reminder.
// @Summary Create a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Param request body dto.CreateReminderRequest true "Reminder details"
// @Success 200 {object} controller.SuccessResponse{data=dto.ReminderResponse}
// @Security BearerAuth
// @Router /private/reminders [post]
func (ctl *ReminderController) Create(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.CreateReminderRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	remindAt, err := time.Parse(time.RFC3339, req.RemindAt)
	if err != nil {
		return ctl.BadRequest(errors.ErrInvalidInput, "remind_at must be RFC3339")
	}

	resp, appErr := ctl.service.Create(c.Request().Context(), userID, req.Message, remindAt)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, resp, "reminder created")
}

// List returns the caller's pending reminders.
// @Summary List pending reminders
// @Tags reminders
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=[]dto.ReminderResponse}
// @Security BearerAuth
// @Router /private/reminders [get]
func (ctl *ReminderController) List(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	reminders, appErr := ctl.service.ListPending(c.Request().Context(), userID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, reminders, "pending reminders")
}

// Cancel cancels a pending reminder.
// @Summary Cancel a reminder
// @Tags reminders
// @Param id path string true "Reminder ID"
// @Success 200 {object} controller.SuccessResponse
// @Security BearerAuth
// @Router /private/reminders/{id} [delete]
func (ctl *ReminderController) Cancel(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	if appErr := ctl.service.Cancel(c.Request().Context(), userID, c.Param("id")); appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, nil, "reminder cancelled")
}
