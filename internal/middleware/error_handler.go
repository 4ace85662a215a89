package middleware

import (
	"log"
	"net/http"

	"github.com/eventhub/booking-platform/internal/dto"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as the platform's JSON error shape and
// keeps internal error details out of 5xx responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Request().RequestURI, err)
		msg = "internal server error"
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
