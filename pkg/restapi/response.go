package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transcription-service/pkg/errno"
)

// Response is the uniform HTTP envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope with the payload.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed writes the error envelope, mapping business codes onto HTTP status.
func Failed(ctx *gin.Context, err error) {
	var e *errno.Errno
	if !errors.As(err, &e) {
		ctx.JSON(http.StatusInternalServerError, Response{
			Code:    errno.ErrInternalServer.Code,
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(httpStatusFor(e.Code), Response{
		Code:    e.Code,
		Message: e.Message,
	})
}

func httpStatusFor(code int) int {
	switch {
	case code == errno.ErrNotFound.Code, code == errno.ErrMediaNotFound.Code:
		return http.StatusNotFound
	case code == errno.ErrJobAlreadyActive.Code, code == errno.ErrMediaNotResubmittable.Code:
		return http.StatusConflict
	case code == errno.ErrQueueFull.Code:
		return http.StatusTooManyRequests
	case code >= 400 && code < 500:
		return code
	case code >= 500 && code < 600:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
