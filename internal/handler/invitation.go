package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
    "github.com/padelhub/turn-booking/internal/repository"
)

// InvitationHandler manages turn invitations. Accepting an invitation
// runs the regular join flow, so every composition rule still applies
// at accept time.
type InvitationHandler struct {
    Engine      *engine.Engine
    Invitations *repository.InvitationRepo
    Turns       *repository.TurnRepo
    Users       *repository.UserRepo
}

func NewInvitationHandler(eng *engine.Engine, invs *repository.InvitationRepo, turns *repository.TurnRepo, users *repository.UserRepo) *InvitationHandler {
    if eng == nil || invs == nil || turns == nil || users == nil {
        panic("nil dependency passed to NewInvitationHandler")
    }
    return &InvitationHandler{Engine: eng, Invitations: invs, Turns: turns, Users: users}
}

type inviteReq struct {
    PlayerID uint64  `json:"player_id"`
    Message  *string `json:"message"`
}

// Invite creates a pending invitation from a turn participant or the
// turn's creator to another player.
func (h *InvitationHandler) Invite(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    turnID, ok := pathID(c, "turn_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid turn id"})
    }
    var req inviteReq
    if err := c.Bind(&req); err != nil || req.PlayerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "player_id required"})
    }
    if req.PlayerID == uid {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot invite yourself"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turn, err := h.Turns.GetByID(ctx, turnID)
    if err != nil {
        return engineError(c, err)
    }
    if engine.Status(turn.Status) != engine.StatusOpen {
        return c.JSON(http.StatusConflict, echo.Map{"error": "turn is not open"})
    }

    // Inviter must be involved: the creator or an already-joined player.
    if turn.CreatorID != uid {
        players, err := h.Turns.ListPlayers(ctx, turnID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        joined := false
        for _, p := range players {
            if p.UserID == uid {
                joined = true
                break
            }
        }
        if !joined {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "join the turn before inviting"})
        }
    }

    invited, err := h.Users.GetUser(ctx, req.PlayerID)
    if err != nil {
        return engineError(c, err)
    }
    if !invited.IsActive {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "player is inactive"})
    }

    if pending, err := h.Invitations.HasPending(ctx, turnID, req.PlayerID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    } else if pending {
        return c.JSON(http.StatusConflict, echo.Map{"error": "player already invited"})
    }

    // A pending invitation reserves intent: refuse inviting into a
    // composition the invited player's gender could never fit once the
    // outstanding invitations resolve.
    if turn.GenderMode == model.GenderModeMixed {
        players, err := h.Turns.ListPlayers(ctx, turnID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        pendM, pendF, err := h.Invitations.PendingGenderCounts(ctx, turnID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        counts := engine.CountGenders(players)
        counts.Male += pendM
        counts.Female += pendF
        if !engine.MixedJoinFeasible(turn.Capacity, counts, invited.Gender) {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "gender composition would not allow this player"})
        }
    }

    inv := &model.Invitation{
        Reference:       uuid.NewString(),
        TurnID:          turnID,
        InviterID:       uid,
        InvitedPlayerID: req.PlayerID,
        Status:          model.InvitationPending,
        Message:         req.Message,
    }
    if err := h.Invitations.Create(ctx, inv); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "player already invited"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create invitation failed"})
    }
    return c.JSON(http.StatusCreated, inv)
}

// Accept joins the invited player into the turn and marks the
// invitation accepted. The join can still fail on any lifecycle rule.
func (h *InvitationHandler) Accept(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    inv, done, err := h.loadOwnInvitation(c, uid)
    if done {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turn, match, err := h.Engine.JoinTurn(ctx, inv.TurnID, uid)
    if err != nil {
        return engineError(c, err)
    }
    if err := h.Invitations.UpdateStatus(ctx, inv.ID, model.InvitationAccepted, time.Now().UTC()); err != nil {
        // The join already happened; a raced status update is not
        // worth failing the request over.
        if !errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update invitation failed"})
        }
    }
    resp := echo.Map{"turn": turn}
    if match != nil {
        resp["match"] = match
        // This accept filled the last seat; remaining pending
        // invitations can no longer be honored.
        _ = h.Invitations.CancelPendingForTurn(ctx, inv.TurnID, model.InvitationExpired, time.Now().UTC())
    }
    return c.JSON(http.StatusOK, resp)
}

// Decline marks the invitation declined.
func (h *InvitationHandler) Decline(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    inv, done, err := h.loadOwnInvitation(c, uid)
    if done {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Invitations.UpdateStatus(ctx, inv.ID, model.InvitationDeclined, time.Now().UTC()); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "invitation already resolved"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update invitation failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "invitation declined"})
}

// Cancel withdraws a pending invitation. Only the inviter may cancel.
func (h *InvitationHandler) Cancel(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ref := c.Param("reference")
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    inv, err := h.Invitations.GetByReference(ctx, ref)
    if err != nil {
        if errors.Is(err, repository.ErrInvitationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if inv.InviterID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your invitation"})
    }
    if err := h.Invitations.UpdateStatus(ctx, inv.ID, model.InvitationCancelled, time.Now().UTC()); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "invitation already resolved"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update invitation failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "invitation cancelled"})
}

// MyInvitations lists invitations addressed to the caller.
func (h *InvitationHandler) MyInvitations(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    onlyPending := c.QueryParam("status") == "pending"
    invs, err := h.Invitations.ListForPlayer(ctx, uid, onlyPending, queryInt(c, "limit", 50))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"invitations": invs})
}

// TurnInvitations lists a turn's invitations for its creator.
func (h *InvitationHandler) TurnInvitations(c echo.Context) error {
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

    turn, err := h.Turns.GetByID(ctx, turnID)
    if err != nil {
        return engineError(c, err)
    }
    if turn.CreatorID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your turn"})
    }
    invs, err := h.Invitations.ListForTurn(ctx, turnID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"invitations": invs})
}

// loadOwnInvitation fetches the invitation behind :reference and
// checks the caller is the invited player. When done is true the
// response has already been written and the returned error is what
// the handler should return.
func (h *InvitationHandler) loadOwnInvitation(c echo.Context, uid uint64) (inv *model.Invitation, done bool, err error) {
    ref := c.Param("reference")
    if ref == "" {
        return nil, true, c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    inv, err = h.Invitations.GetByReference(ctx, ref)
    if err != nil {
        if errors.Is(err, repository.ErrInvitationNotFound) {
            return nil, true, c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
        }
        return nil, true, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if inv.InvitedPlayerID != uid {
        return nil, true, c.JSON(http.StatusForbidden, echo.Map{"error": "not your invitation"})
    }
    if inv.Status != model.InvitationPending {
        return nil, true, c.JSON(http.StatusConflict, echo.Map{"error": "invitation already resolved"})
    }
    return inv, false, nil
}
