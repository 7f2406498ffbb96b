package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitemate/internal/errors"
)

type errorBody struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Type      errors.Type `json:"type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Partial   interface{} `json:"partial,omitempty"`
}

// statusFor maps an error type to the HTTP status returned to clients
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeParsing, errors.TypeUnresolvedMaterial, errors.TypeLandTooSmall:
		return http.StatusUnprocessableEntity
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeConflict:
		return http.StatusConflict
	case errors.TypeTimeout:
		return http.StatusGatewayTimeout
	case errors.TypeNetwork:
		return http.StatusBadGateway
	case errors.TypeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *Adapter) writeError(c *gin.Context, err error) {
	a.writeErrorWithPartial(c, err, nil)
}

// writeErrorWithPartial reports err and carries whatever was computed before it
func (a *Adapter) writeErrorWithPartial(c *gin.Context, err error, partial interface{}) {
	status := statusFor(err)
	body := errorBody{
		Error:     err.Error(),
		Type:      errors.TypeOf(err),
		RequestID: c.GetString(requestIDKey),
		Partial:   partial,
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", zap.Error(err), zap.String("request_id", body.RequestID))
		body.Error = "internal server error"
	}
	c.JSON(status, body)
}

func (a *Adapter) badRequest(c *gin.Context, err error) {
	a.writeError(c, errors.Wrap(errors.TypeInput, "invalid request body", err))
}
