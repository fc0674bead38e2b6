package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"cryptolend-backend/internal/domain/fault"
)

// writeDomainErr translates the core's error taxonomy into HTTP. Anything not
// in the taxonomy is an internal error and deliberately opaque to the client.
func writeDomainErr(c echo.Context, err error) error {
	retry := fault.Retryable(err)
	switch {
	case errors.Is(err, fault.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, fault.ErrCurrencyNotSupported):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "currency not supported", Retryable: retry})
	case errors.Is(err, fault.ErrRateOutOfPolicyBounds):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, fault.ErrInsufficientAvailability):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "insufficient offer availability", Retryable: retry})
	case errors.Is(err, fault.ErrIllegalStateTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "illegal state transition"})
	case errors.Is(err, fault.ErrPreconditionNotAcknowledged):
		return c.JSON(http.StatusPreconditionRequired, ErrorResponse{Error: "risk acknowledgment required"})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// queryLimit parses ?limit= with a sane default and cap.
func queryLimit(c echo.Context, def, max int) int {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
