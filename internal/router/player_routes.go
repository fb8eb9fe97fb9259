package router

import (
    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/handler"
    "github.com/padelhub/turn-booking/internal/middleware"
)

// RegisterTurns registers the turn lifecycle endpoints under /v1.
// Creating, joining and leaving turns is open to both roles: owners
// may organize turns on their own courts and play in others.
func RegisterTurns(e *echo.Echo, t *handler.TurnHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("OWNER", "PLAYER"),
    )

    g.POST("/turns", t.CreateTurn)
    g.GET("/turns/:turn_id", t.GetTurn)
    g.PATCH("/turns/:turn_id", t.UpdateTurn)
    g.DELETE("/turns/:turn_id", t.CancelTurn)

    g.POST("/turns/:turn_id/join", t.JoinTurn)
    g.DELETE("/turns/:turn_id/join", t.LeaveTurn)
    g.GET("/turns/:turn_id/match", t.GetTurnMatch)

    g.GET("/my-turns", t.MyTurns)
    g.GET("/my-created-turns", t.MyCreatedTurns)
    g.GET("/my-matches", t.MyMatches)
}

// RegisterInvitations registers invitation endpoints under /v1.
func RegisterInvitations(e *echo.Echo, i *handler.InvitationHandler, b *handler.BrowseHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("OWNER", "PLAYER"),
    )

    g.POST("/turns/:turn_id/invitations", i.Invite)
    g.GET("/turns/:turn_id/invitations", i.TurnInvitations)
    g.GET("/my-invitations", i.MyInvitations)
    g.POST("/invitations/:reference/accept", i.Accept)
    g.POST("/invitations/:reference/decline", i.Decline)
    g.DELETE("/invitations/:reference", i.Cancel)

    g.GET("/search/players", b.SearchPlayers)
}
