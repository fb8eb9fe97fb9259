package handler

import (
    "context"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
    "github.com/padelhub/turn-booking/internal/queue"
    "github.com/padelhub/turn-booking/internal/repository"
    "github.com/padelhub/turn-booking/internal/scheduler"
    queuepublisher "github.com/padelhub/turn-booking/internal/service"
)

// TurnHandler exposes the turn lifecycle over HTTP.  Mutations go
// through the engine; listings read the repositories directly.
type TurnHandler struct {
    Engine      *engine.Engine
    Turns       *repository.TurnRepo
    Courts      *repository.CourtRepo
    Clubs       *repository.ClubRepo
    Matches     *repository.MatchRepo
    Invitations *repository.InvitationRepo
    Generator   *scheduler.Generator
}

func NewTurnHandler(eng *engine.Engine, turns *repository.TurnRepo, courts *repository.CourtRepo, clubs *repository.ClubRepo, matches *repository.MatchRepo, invs *repository.InvitationRepo, gen *scheduler.Generator) *TurnHandler {
    if eng == nil || turns == nil || courts == nil || clubs == nil || matches == nil || invs == nil {
        panic("nil dependency passed to NewTurnHandler")
    }
    return &TurnHandler{Engine: eng, Turns: turns, Courts: courts, Clubs: clubs, Matches: matches, Invitations: invs, Generator: gen}
}

type createTurnReq struct {
    CourtID             uint64   `json:"court_id"`
    StartsAt            string   `json:"starts_at"` // RFC 3339
    EndsAt              string   `json:"ends_at"`
    Capacity            int      `json:"capacity"`
    GenderMode          string   `json:"gender_mode"`
    MinRating           *float64 `json:"min_rating"`
    MaxRating           *float64 `json:"max_rating"`
    CategoryRestriction string   `json:"category_restriction"`
    OrganizerCategory   *string  `json:"organizer_category"`
    PriceCents          uint32   `json:"price_cents"`
}

// CreateTurn opens a new bookable slot on a court.
func (h *TurnHandler) CreateTurn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createTurnReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC 3339"})
    }
    endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC 3339"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    turn, err := h.Engine.CreateTurn(ctx, engine.CreateTurnParams{
        CourtID:             req.CourtID,
        CreatorID:           uid,
        StartsAt:            startsAt.UTC(),
        EndsAt:              endsAt.UTC(),
        Capacity:            req.Capacity,
        GenderMode:          strings.ToUpper(strings.TrimSpace(req.GenderMode)),
        MinRating:           req.MinRating,
        MaxRating:           req.MaxRating,
        CategoryRestriction: strings.ToUpper(strings.TrimSpace(req.CategoryRestriction)),
        OrganizerCategory:   req.OrganizerCategory,
        PriceCents:          req.PriceCents,
    })
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, turn)
}

type updateTurnReq struct {
    CourtID             *uint64  `json:"court_id"`
    StartsAt            *string  `json:"starts_at"`
    EndsAt              *string  `json:"ends_at"`
    Capacity            *int     `json:"capacity"`
    GenderMode          *string  `json:"gender_mode"`
    MinRating           *float64 `json:"min_rating"`
    MaxRating           *float64 `json:"max_rating"`
    CategoryRestriction *string  `json:"category_restriction"`
    OrganizerCategory   *string  `json:"organizer_category"`
    PriceCents          *uint32  `json:"price_cents"`
}

// UpdateTurn patches an open, still-empty turn's parameters. The
// creator is the only caller allowed.
func (h *TurnHandler) UpdateTurn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    turnID, ok := pathID(c, "turn_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid turn id"})
    }
    var req updateTurnReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    existing, err := h.Turns.GetByID(ctx, turnID)
    if err != nil {
        return engineError(c, err)
    }
    if existing.CreatorID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your turn"})
    }

    patch := engine.TurnPatch{
        CourtID:           req.CourtID,
        Capacity:          req.Capacity,
        MinRating:         req.MinRating,
        MaxRating:         req.MaxRating,
        OrganizerCategory: req.OrganizerCategory,
        PriceCents:        req.PriceCents,
    }
    if req.StartsAt != nil {
        t, err := time.Parse(time.RFC3339, *req.StartsAt)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC 3339"})
        }
        u := t.UTC()
        patch.StartsAt = &u
    }
    if req.EndsAt != nil {
        t, err := time.Parse(time.RFC3339, *req.EndsAt)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC 3339"})
        }
        u := t.UTC()
        patch.EndsAt = &u
    }
    if req.GenderMode != nil {
        m := strings.ToUpper(strings.TrimSpace(*req.GenderMode))
        patch.GenderMode = &m
    }
    if req.CategoryRestriction != nil {
        r := strings.ToUpper(strings.TrimSpace(*req.CategoryRestriction))
        patch.CategoryRestriction = &r
    }

    turn, err := h.Engine.UpdateTurnParameters(ctx, turnID, patch)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, turn)
}

// CancelTurn cancels a turn. The creator or the club owner may
// cancel.
func (h *TurnHandler) CancelTurn(c echo.Context) error {
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

    existing, err := h.Turns.GetByID(ctx, turnID)
    if err != nil {
        return engineError(c, err)
    }
    if existing.CreatorID != uid {
        ownerID, err := h.Courts.GetOwnerID(ctx, existing.CourtID)
        if err != nil || ownerID != uid {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to cancel this turn"})
        }
    }

    wasLocked := engine.Status(existing.Status) == engine.StatusLocked
    turn, err := h.Engine.CancelTurn(ctx, turnID, uid)
    if err != nil {
        return engineError(c, err)
    }

    // The turn is gone, so outstanding invitations can never be
    // accepted anymore.
    if err := h.Invitations.CancelPendingForTurn(ctx, turnID, model.InvitationExpired, time.Now().UTC()); err != nil {
        log.Printf("cancel turn %d: expire invitations: %v", turnID, err)
    }

    // Fire-and-forget notification; a broker outage never blocks the
    // cancellation itself.
    ev := queue.TurnCancelledEvent{
        EventID:     uuid.NewString(),
        TurnID:      turn.ID,
        CourtID:     turn.CourtID,
        CancelledBy: uid,
        WasLocked:   wasLocked,
        CancelledAt: time.Now().UTC().Format(time.RFC3339),
    }
    go func() {
        pubCtx, pubCancel := context.WithTimeout(context.Background(), dbTimeout)
        defer pubCancel()
        _ = queuepublisher.PublishTurnCancelled(pubCtx, ev)
    }()

    return c.JSON(http.StatusOK, turn)
}

type generateReq struct {
    From       string `json:"from"` // YYYY-MM-DD
    Days       int    `json:"days"`
    Capacity   int    `json:"capacity"`
    GenderMode string `json:"gender_mode"`
    PriceCents uint32 `json:"price_cents"`
}

// GenerateSchedule pre-creates open turns across a club's courts from
// its weekly opening hours.
func (h *TurnHandler) GenerateSchedule(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    clubID, ok := pathID(c, "club_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
    }
    var req generateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    from, err := time.Parse("2006-01-02", req.From)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
    }
    if req.Days < 1 || req.Days > 31 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "days must be 1..31"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    club, err := h.Clubs.GetByIDAndOwner(ctx, clubID, uid)
    if err != nil {
        return clubError(c, err)
    }

    defaults := scheduler.DefaultTurnDefaults
    if req.Capacity > 0 {
        defaults.Capacity = req.Capacity
    }
    if req.GenderMode != "" {
        defaults.GenderMode = strings.ToUpper(strings.TrimSpace(req.GenderMode))
    }
    defaults.PriceCents = req.PriceCents

    created, err := h.Generator.GenerateForClub(ctx, club, from, from.AddDate(0, 0, req.Days), defaults)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"created": created})
}

// ListCourtTurns returns a court's turns in a date window for the
// club owner.
func (h *TurnHandler) ListCourtTurns(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    courtID, ok := pathID(c, "court_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    ownerID, err := h.Courts.GetOwnerID(ctx, courtID)
    if err != nil {
        return courtError(c, err)
    }
    if ownerID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your court"})
    }

    from := time.Now().UTC()
    if s := c.QueryParam("from"); s != "" {
        t, err := time.Parse("2006-01-02", s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
        }
        from = t
    }
    days := queryInt(c, "days", 7)
    turns, err := h.Turns.ListByCourt(ctx, courtID, from, from.AddDate(0, 0, days))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"turns": turns})
}
