package router

import (
    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/handler"
    "github.com/padelhub/turn-booking/internal/middleware"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1.  All
// routes require a valid JWT and the OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, t *handler.TurnHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("OWNER"),
    )

    // ---- Clubs ----
    g.POST("/clubs", o.CreateClub)
    g.GET("/owner/clubs", o.ListClubs)
    g.PUT("/clubs/:club_id", o.UpdateClub)
    g.PATCH("/clubs/:club_id", o.UpdateClub)

    // ---- Courts ----
    g.POST("/clubs/:club_id/courts", o.CreateCourt)
    g.GET("/owner/clubs/:club_id/courts", o.ListCourts)
    g.PUT("/courts/:court_id", o.UpdateCourt)
    g.PATCH("/courts/:court_id", o.UpdateCourt)
    g.DELETE("/courts/:court_id", o.DeleteCourt)

    // ---- Scheduling ----
    g.POST("/clubs/:club_id/schedule", t.GenerateSchedule)
    g.GET("/courts/:court_id/turns", t.ListCourtTurns)
}
