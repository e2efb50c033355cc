package controller

import (
	"io"

	"github.com/labstack/echo/v4"

	"syncme/core/constants"
	"syncme/core/controller"
	"syncme/core/errors"
	"syncme/core/utils"
	"syncme/modules/voice/dto"
	"syncme/modules/voice/service"
)

type VoiceController struct {
	controller.BaseController
	voice       service.VoiceServiceInterface
	transcriber service.TranscriberInterface
	tts         service.TTSInterface
}

func NewVoiceController(voice service.VoiceServiceInterface, transcriber service.TranscriberInterface, tts service.TTSInterface) *VoiceController {
	return &VoiceController{
		BaseController: controller.NewBaseController(),
		voice:          voice,
		transcriber:    transcriber,
		tts:            tts,
	}
}

func getUserIDFromContext(c echo.Context) (string, *errors.AppError) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return "", errors.NewAppError(errors.ErrUnauthorized, "missing token data", nil)
	}
	return claims.UserID.String(), nil
}

func readAudioUpload(c echo.Context) ([]byte, string, *errors.AppError) {
	file, err := c.FormFile("audio")
	if err != nil {
		return nil, "", errors.NewAppError(errors.ErrInvalidRequestData, "audio file is required", err)
	}
	if file.Size > constants.MaxAudioUploadBytes {
		return nil, "", errors.NewAppError(errors.ErrInvalidInput, "audio exceeds the 25MB limit", nil)
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", errors.NewAppError(errors.ErrInternalServer, "failed to read upload", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", errors.NewAppError(errors.ErrInternalServer, "failed to read upload", err)
	}
	return data, file.Filename, nil
}

// Transcribe converts uploaded audio to text.
// @Summary Transcribe audio
// @Tags voice
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file"
// @Success 200 {object} controller.SuccessResponse{data=dto.TranscriptionResult}
// @Security BearerAuth
// @Router /private/voice/transcribe [post]
func (ctl *VoiceController) Transcribe(c echo.Context) error {
	audio, filename, appErr := readAudioUpload(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	result, appErr := ctl.transcriber.Transcribe(c.Request().Context(), audio, filename)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, result, "audio transcribed")
}

// Process runs the full voice command pipeline.
// @Summary Process a voice command
// @Tags voice
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file"
// @Success 200 {object} controller.SuccessResponse{data=dto.ProcessResponse}
// @Security BearerAuth
// @Router /private/voice/process [post]
func (ctl *VoiceController) Process(c echo.Context) error {
	userID, appErr := getUserIDFromContext(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	audio, filename, appErr := readAudioUpload(c)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	result, appErr := ctl.voice.ProcessCommand(c.Request().Context(), userID, audio, filename)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, result, "voice command processed")
}

// GenerateSpeech synthesizes speech from text.
// @Summary Generate speech
// @Tags voice
// @Accept json
// @Produce json
// @Param request body dto.GenerateSpeechRequest true "Text to speak"
// @Success 200 {object} controller.SuccessResponse{data=dto.SpeechResult}
// @Security BearerAuth
// @Router /private/tts/generate [post]
func (ctl *VoiceController) GenerateSpeech(c echo.Context) error {
	var req dto.GenerateSpeechRequest
	if err := c.Bind(&req); err != nil {
		return ctl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	result, appErr := ctl.tts.GenerateSpeech(c.Request().Context(), req.Text, req.VoiceID)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, result, "speech generated")
}

// GetVoices lists the available synthesis voices.
// @Summary List voices
// @Tags voice
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=[]dto.Voice}
// @Security BearerAuth
// @Router /private/tts/voices [get]
func (ctl *VoiceController) GetVoices(c echo.Context) error {
	voices, appErr := ctl.tts.GetVoices(c.Request().Context())
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}

	return ctl.SuccessResponse(c, voices, "available voices")
}
