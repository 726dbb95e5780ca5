package http

import (
	"github.com/gin-gonic/gin"

	"transcription-service/ddd/application/app"
	"transcription-service/ddd/application/dto"
	"transcription-service/pkg/restapi"
)

// MediaController handles the media/transcription endpoints.
type MediaController struct {
	transcriptionApp app.TranscriptionApp
}

func NewMediaController(transcriptionApp app.TranscriptionApp) *MediaController {
	return &MediaController{
		transcriptionApp: transcriptionApp,
	}
}

// CreateMedia registers an uploaded recording.
func (c *MediaController) CreateMedia(ctx *gin.Context) {
	var req dto.CreateMediaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	resp, err := c.transcriptionApp.CreateMediaItem(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// SubmitTranscription starts a transcription job for a media item.
func (c *MediaController) SubmitTranscription(ctx *gin.Context) {
	mediaUUID := ctx.Param("media_uuid")

	var req dto.SubmitTranscriptionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			restapi.Failed(ctx, err)
			return
		}
	}

	resp, err := c.transcriptionApp.SubmitTranscription(ctx.Request.Context(), mediaUUID, &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// GetMedia returns status/progress/transcript for polling.
func (c *MediaController) GetMedia(ctx *gin.Context) {
	resp, err := c.transcriptionApp.GetMediaItem(ctx.Request.Context(), ctx.Param("media_uuid"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
