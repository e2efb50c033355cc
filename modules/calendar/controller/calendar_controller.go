package controller

import (
	"github.com/labstack/echo/v4"

	"syncme/core/constants"
	"syncme/core/controller"
	"syncme/core/errors"
	"syncme/core/utils"
	"syncme/modules/calendar/dto"
	"syncme/modules/calendar/service"
)

type CalendarController struct {
	controller.BaseController
	service service.CalendarServiceInterface
}

func NewCalendarController(svc service.CalendarServiceInterface) *CalendarController {
	return &CalendarController{
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

// GetConnections lists the caller's active calendar connections.
// @Summary List calendar connections
// @Tags calendar
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=[]dto.ConnectionResponse}
// @Security BearerAuth
// @Router /private/calendar/connections [get]
func (ctl *CalendarController) GetConnections(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	conns, appErr := ctl.service.ListConnections(c.Request().Context(), userID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, conns, "calendar connections")
}

// Disconnect deactivates one provider connection.
// @Summary Disconnect a calendar provider
// @Tags calendar
// @Param provider path string true "Provider name"
// @Success 200 {object} controller.SuccessResponse
// @Security BearerAuth
// @Router /private/calendar/connections/{provider} [delete]
func (ctl *CalendarController) Disconnect(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	if appErr := ctl.service.Disconnect(c.Request().Context(), userID, c.Param("provider")); appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, nil, "calendar disconnected")
}

// Sync queues background sync tasks for the caller's calendars.
// @Summary Queue a calendar sync
// @Tags calendar
// @Accept json
// @Produce json
// @Param request body dto.SyncRequest true "Providers to sync"
// @Success 200 {object} controller.SuccessResponse{data=dto.SyncResponse}
// @Security BearerAuth
// @Router /private/calendar/sync [post]
func (ctl *CalendarController) Sync(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.SyncRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	queued, appErr := ctl.service.EnqueueSync(c.Request().Context(), userID, req.Providers, req.Days)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, dto.SyncResponse{Queued: queued}, "sync queued")
}
