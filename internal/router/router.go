package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/handler"
    "github.com/padelhub/turn-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth, while the protected profile and
// logout endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)

    auth := e.Group("/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("OWNER", "PLAYER"),
    )
    auth.GET("/me", a.Me)
    auth.POST("/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints: club and
// court listings plus the open-turn search. Guests can explore the
// offer before creating an account.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler) {
    e.GET("/v1/clubs", b.ListClubs)
    e.GET("/v1/clubs/:club_id/courts", b.ListClubCourts)
    e.GET("/v1/search/turns", b.SearchTurns)
}
