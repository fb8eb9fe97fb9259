package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/model"
    "github.com/padelhub/turn-booking/internal/repository"
)

// JoinTurn books the authenticated player into an open turn. When the
// join fills the last seat the response carries the derived match.
func (h *TurnHandler) JoinTurn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    turnID, ok := pathID(c, "turn_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid turn id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turn, match, err := h.Engine.JoinTurn(ctx, turnID, uid)
    if err != nil {
        return engineError(c, err)
    }
    resp := echo.Map{"turn": turn}
    if match != nil {
        resp["match"] = match
        // A locked turn has no open seats left; expire whatever
        // invitations are still pending.
        if err := h.Invitations.CancelPendingForTurn(ctx, turnID, model.InvitationExpired, time.Now().UTC()); err != nil {
            log.Printf("join turn %d: expire invitations: %v", turnID, err)
        }
    }
    return c.JSON(http.StatusOK, resp)
}

// LeaveTurn removes the authenticated player from an open turn.
func (h *TurnHandler) LeaveTurn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    turnID, ok := pathID(c, "turn_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid turn id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Engine.LeaveTurn(ctx, turnID, uid); err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "left turn"})
}

// GetTurn returns one turn with its current roster.
func (h *TurnHandler) GetTurn(c echo.Context) error {
    turnID, ok := pathID(c, "turn_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid turn id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turn, err := h.Turns.GetByID(ctx, turnID)
    if err != nil {
        return engineError(c, err)
    }
    players, err := h.Turns.ListPlayers(ctx, turnID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"turn": turn, "players": players})
}

// MyTurns lists the upcoming turns the player has joined.
func (h *TurnHandler) MyTurns(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turns, err := h.Turns.ListJoinedByUser(ctx, uid, time.Now().UTC())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"turns": turns})
}

// MyCreatedTurns lists the turns the player organized.
func (h *TurnHandler) MyCreatedTurns(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turns, err := h.Turns.ListCreatedBy(ctx, uid, queryInt(c, "limit", 50))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"turns": turns})
}

// MyMatches lists the player's composed matches, newest first.
func (h *TurnHandler) MyMatches(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    matches, err := h.Matches.ListByUser(ctx, uid, queryInt(c, "limit", 50))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"matches": matches})
}

// GetTurnMatch returns the match derived from a turn together with its
// frozen roster.
func (h *TurnHandler) GetTurnMatch(c echo.Context) error {
    turnID, ok := pathID(c, "turn_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid turn id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    match, err := h.Matches.GetByTurn(ctx, turnID)
    if err != nil {
        if errors.Is(err, repository.ErrMatchNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no match for this turn"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    players, err := h.Matches.ListPlayers(ctx, match.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"match": match, "players": players})
}
