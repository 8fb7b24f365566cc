package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/routekit/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondWithError sends err as JSON. AppErrors keep their code and
// details; anything else is reported as INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Internal(err)
	}
	c.JSON(StatusFor(appErr.Code), gin.H{"error": appErr})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeConfiguration:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeLifecycle:
		return http.StatusConflict
	case errors.ErrCodeFetch:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout, errors.ErrCodeShutdownTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
