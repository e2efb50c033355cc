package controller

import (
	"github.com/labstack/echo/v4"

	"syncme/core/controller"
	"syncme/core/errors"
	"syncme/modules/intent/dto"
	"syncme/modules/intent/service"
)

type IntentController struct {
	controller.BaseController
	service service.IntentParserInterface
}

func NewIntentController(svc service.IntentParserInterface) *IntentController {
	return &IntentController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// ParseIntent classifies free text into a scheduling intent.
// @Summary Parse a natural language command
// @Tags nlp
// @Accept json
// @Produce json
// @Param request body dto.ParseIntentRequest true "Command text"
// @Success 200 {object} controller.SuccessResponse{data=dto.IntentResponse}
// @Security BearerAuth
// @Router /private/nlp/parse-intent [post]
func (ctl *IntentController) ParseIntent(c echo.Context) error {
	var req dto.ParseIntentRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	resp, appErr := ctl.service.ParseIntent(c.Request().Context(), req.Text)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, resp, "intent parsed")
}
