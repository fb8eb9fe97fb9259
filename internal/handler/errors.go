package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/engine"
)

// engineError translates a lifecycle error into the HTTP response the
// client sees. Rule violations are 422, lifecycle conflicts 409,
// missing entities 404, lock contention 503 so clients know a retry
// may succeed.
func engineError(c echo.Context, err error) error {
    switch engine.KindOf(err) {
    case engine.KindInvariant:
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case engine.KindStateConflict:
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case engine.KindNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case engine.KindContention:
        c.Response().Header().Set("Retry-After", "1")
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "turn is busy, retry shortly"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
