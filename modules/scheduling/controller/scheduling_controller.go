package controller

import (
	"time"

	"github.com/labstack/echo/v4"

	"syncme/core/constants"
	"syncme/core/controller"
	"syncme/core/errors"
	"syncme/core/utils"
	"syncme/modules/scheduling/dto"
	"syncme/modules/scheduling/entity"
	"syncme/modules/scheduling/service"
)

type SchedulingController struct {
	controller.BaseController
	service service.SchedulerInterface
}

func NewSchedulingController(svc service.SchedulerInterface) *SchedulingController {
	return &SchedulingController{
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

// Schedule books the best slot for a new meeting, or returns ranked
// suggestions when suggest_only is set.
// @Summary Schedule a meeting
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.ScheduleRequest true "Meeting details"
// @Success 200 {object} controller.SuccessResponse{data=dto.ScheduleResponse}
// @Security BearerAuth
// @Router /private/schedule [post]
func (ctl *SchedulingController) Schedule(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	preferred, appErr := parseOptionalTime(req.PreferredTime)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	outcome, appErr := ctl.service.Schedule(c.Request().Context(), userID, &service.ScheduleInput{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Attendees:       req.Attendees,
		DurationMinutes: req.DurationMinutes,
		PreferredTime:   preferred,
		Provider:        req.Provider,
		SuggestOnly:     req.SuggestOnly,
	})
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	resp := dto.ScheduleResponse{
		Booked:      outcome.Booked,
		Event:       outcome.Event,
		Suggestions: dto.NewTimeSlotResponses(outcome.Suggestions),
	}
	return ctl.SuccessResponse(c, resp, "schedule processed")
}

// FindSlots returns ranked free slots for the given window.
// @Summary Find available slots
// @Tags scheduling
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=[]dto.TimeSlotResponse}
// @Security BearerAuth
// @Router /private/availability [get]
func (ctl *SchedulingController) FindSlots(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.FindSlotsRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid query parameters")
	}

	startDate, appErr := parseOptionalDate(req.StartDate)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	endDate, appErr := parseOptionalDate(req.EndDate)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	preferred, appErr := parseOptionalTime(req.PreferredTime)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	slots, appErr := ctl.service.FindAvailableSlots(c.Request().Context(), userID, &service.FindSlotsInput{
		DurationMinutes: req.DurationMinutes,
		StartDate:       startDate,
		EndDate:         endDate,
		PreferredTime:   preferred,
		IncludeWeekends: req.IncludeWeekends,
	})
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, dto.NewTimeSlotResponses(slots), "available slots")
}

// GetSchedule lists the caller's upcoming booked events.
// @Summary List upcoming events
// @Tags scheduling
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=[]entity.Event}
// @Security BearerAuth
// @Router /private/schedule [get]
func (ctl *SchedulingController) GetSchedule(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	events, appErr := ctl.service.ListScheduledEvents(c.Request().Context(), userID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, events, "upcoming events")
}

// CheckAvailability reports whether a specific window is free.
// @Summary Check a specific window
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.CheckAvailabilityRequest true "Window to check"
// @Success 200 {object} controller.SuccessResponse{data=dto.AvailabilityResponse}
// @Security BearerAuth
// @Router /private/availability/check [post]
func (ctl *SchedulingController) CheckAvailability(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.CheckAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return ctl.BadRequest(errors.ErrInvalidInput, "start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return ctl.BadRequest(errors.ErrInvalidInput, "end must be RFC3339")
	}

	available, appErr := ctl.service.CheckAvailability(c.Request().Context(), userID, start, end)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, dto.AvailabilityResponse{Available: available, Start: start, End: end}, "availability checked")
}

// RescheduleOptions suggests new slots for an existing event.
// @Summary Reschedule options for an event
// @Tags scheduling
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.TimeSlotResponse}
// @Security BearerAuth
// @Router /private/schedule/{id}/reschedule-options [post]
func (ctl *SchedulingController) RescheduleOptions(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	eventID := c.Param("id")
	if eventID == "" {
		return ctl.BadRequest(errors.ErrInvalidInput, "event id is required")
	}

	var req dto.RescheduleOptionsRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	slots, appErr := ctl.service.SuggestRescheduleOptions(c.Request().Context(), userID, req.Provider, eventID, req.NewDurationMinutes)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, dto.NewTimeSlotResponses(slots), "reschedule options")
}

// CancelEvent cancels an event on its provider calendar.
// @Summary Cancel an event
// @Tags scheduling
// @Param id path string true "Event ID"
// @Success 200 {object} controller.SuccessResponse
// @Security BearerAuth
// @Router /private/schedule/{id} [delete]
func (ctl *SchedulingController) CancelEvent(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	eventID := c.Param("id")
	if eventID == "" {
		return ctl.BadRequest(errors.ErrInvalidInput, "event id is required")
	}

	if appErr := ctl.service.CancelEvent(c.Request().Context(), userID, c.QueryParam("provider"), eventID); appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, nil, "event cancelled")
}

// OptimalDuration suggests a meeting length for a meeting type.
// @Summary Suggest meeting duration
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.OptimalDurationRequest true "Meeting type and headcount"
// @Success 200 {object} controller.SuccessResponse{data=dto.OptimalDurationResponse}
// @Security BearerAuth
// @Router /private/schedule/optimal-duration [post]
func (ctl *SchedulingController) OptimalDuration(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.OptimalDurationRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	prefs, appErr := ctl.service.GetPreferences(c.Request().Context(), userID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	minutes := ctl.service.OptimalDuration(req.MeetingType, req.AttendeeCount, prefs)
	return ctl.SuccessResponse(c, dto.OptimalDurationResponse{
		MeetingType:     req.MeetingType,
		AttendeeCount:   req.AttendeeCount,
		DurationMinutes: minutes,
	}, "optimal duration")
}

// GetPreferences returns the caller's scheduling preferences.
// @Summary Get scheduling preferences
// @Tags scheduling
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.PreferencesResponse}
// @Security BearerAuth
// @Router /private/preferences [get]
func (ctl *SchedulingController) GetPreferences(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	prefs, appErr := ctl.service.GetPreferences(c.Request().Context(), userID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, dto.NewPreferencesResponse(*prefs), "preferences")
}

// UpdatePreferences saves the caller's scheduling preferences.
// @Summary Update scheduling preferences
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body dto.PreferencesRequest true "Preference fields"
// @Success 200 {object} controller.SuccessResponse{data=dto.PreferencesResponse}
// @Security BearerAuth
// @Router /private/preferences [put]
func (ctl *SchedulingController) UpdatePreferences(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	var req dto.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	current, appErr := ctl.service.GetPreferences(c.Request().Context(), userID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	prefs, appErr := applyPreferencesRequest(*current, &req)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	updated, appErr := ctl.service.UpdatePreferences(c.Request().Context(), userID, prefs)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, dto.NewPreferencesResponse(*updated), "preferences updated")
}

func applyPreferencesRequest(base entity.UserPreferences, req *dto.PreferencesRequest) (entity.UserPreferences, *errors.AppError) {
	out := base
	if req.PreferredDurationMinutes != nil {
		out.PreferredDurationMinutes = *req.PreferredDurationMinutes
	}
	if req.WorkStart != nil {
		t, err := entity.ParseTimeOfDay(*req.WorkStart)
		if err != nil {
			return out, errors.NewAppError(errors.ErrInvalidInput, "invalid work_start", err)
		}
		out.WorkStart = t
	}
	if req.WorkEnd != nil {
		t, err := entity.ParseTimeOfDay(*req.WorkEnd)
		if err != nil {
			return out, errors.NewAppError(errors.ErrInvalidInput, "invalid work_end", err)
		}
		out.WorkEnd = t
	}
	if req.Timezone != nil {
		out.Timezone = *req.Timezone
	}
	if req.BufferMinutes != nil {
		out.BufferMinutes = *req.BufferMinutes
	}
	if req.MaxMeetingsPerDay != nil {
		out.MaxMeetingsPerDay = *req.MaxMeetingsPerDay
	}
	if req.PreferredProvider != nil {
		out.PreferredProvider = *req.PreferredProvider
	}
	return out, nil
}

func parseOptionalTime(v string) (*time.Time, *errors.AppError) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "time must be RFC3339", err)
	}
	return &t, nil
}

func parseOptionalDate(v string) (*time.Time, *errors.AppError) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "date must be YYYY-MM-DD", err)
	}
	return &t, nil
}
