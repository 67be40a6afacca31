package server

import (
	"errors"
	"net/http"

	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError is the JSON error envelope every handler answers with.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

var errForbidden = errors.New("forbidden")

// statusFor maps domain sentinel errors onto HTTP status codes. Unknown
// errors are internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, blockdomain.ErrNotFound),
		errors.Is(err, linedomain.ErrNotFound),
		errors.Is(err, topupdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrNotFound),
		errors.Is(err, devicedomain.ErrNotFound),
		errors.Is(err, devicedomain.ErrUnknownLine),
		errors.Is(err, telemetrydomain.ErrUnknownLine),
		errors.Is(err, controldomain.ErrUnknownLine),
		errors.Is(err, topupdomain.ErrUnknownLine),
		errors.Is(err, predictiondomain.ErrUnknownLine):
		return http.StatusNotFound

	case errors.Is(err, blockdomain.ErrBlockExists),
		errors.Is(err, linedomain.ErrLineExists),
		errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, topupdomain.ErrAlreadyProcessed),
		errors.Is(err, topupdomain.ErrPaymentFailed):
		return http.StatusConflict

	case errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, devicedomain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, errForbidden),
		errors.Is(err, devicedomain.ErrLineNotPaired):
		return http.StatusForbidden

	case errors.Is(err, blockdomain.ErrInvalidName),
		errors.Is(err, blockdomain.ErrInvalidQuota),
		errors.Is(err, blockdomain.ErrInvalidID),
		errors.Is(err, linedomain.ErrInvalidBlock),
		errors.Is(err, linedomain.ErrInvalidLineNumber),
		errors.Is(err, linedomain.ErrInvalidQuota),
		errors.Is(err, linedomain.ErrInvalidThreshold),
		errors.Is(err, linedomain.ErrInvalidID),
		errors.Is(err, telemetrydomain.ErrInvalidLine),
		errors.Is(err, telemetrydomain.ErrInvalidReading),
		errors.Is(err, controldomain.ErrInvalidLine),
		errors.Is(err, controldomain.ErrInvalidCommand),
		errors.Is(err, topupdomain.ErrInvalidLine),
		errors.Is(err, topupdomain.ErrInvalidAmount),
		errors.Is(err, topupdomain.ErrInvalidUnits),
		errors.Is(err, topupdomain.ErrInvalidReference),
		errors.Is(err, alertdomain.ErrInvalidLine),
		errors.Is(err, alertdomain.ErrInvalidType),
		errors.Is(err, predictiondomain.ErrInvalidLine),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, authdomain.ErrInvalidID),
		errors.Is(err, authdomain.ErrInvalidAssignment),
		errors.Is(err, devicedomain.ErrInvalidBlock),
		errors.Is(err, devicedomain.ErrInvalidName),
		errors.Is(err, devicedomain.ErrInvalidID),
		errors.Is(err, devicedomain.ErrInvalidLine):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError ends the request with the mapped status and envelope.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	body := APIError{Code: err.Error()}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		body = APIError{Code: "internal_error"}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func (s *Server) abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": APIError{Code: "bad_request", Message: message},
	})
}
