package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/repository"
)

// BrowseHandler serves the public read side: club listings, open-turn
// search and player lookup for invitations.
type BrowseHandler struct {
    Clubs  *repository.ClubRepo
    Courts *repository.CourtRepo
    Turns  *repository.TurnRepo
    Users  *repository.UserRepo
}

func NewBrowseHandler(clubs *repository.ClubRepo, courts *repository.CourtRepo, turns *repository.TurnRepo, users *repository.UserRepo) *BrowseHandler {
    if clubs == nil || courts == nil || turns == nil || users == nil {
        panic("nil repository passed to NewBrowseHandler")
    }
    return &BrowseHandler{Clubs: clubs, Courts: courts, Turns: turns, Users: users}
}

// ListClubs returns every registered club.
func (h *BrowseHandler) ListClubs(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    clubs, err := h.Clubs.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"clubs": clubs})
}

// ListClubCourts returns a club's courts.
func (h *BrowseHandler) ListClubCourts(c echo.Context) error {
    clubID, ok := pathID(c, "club_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if _, err := h.Clubs.GetByID(ctx, clubID); err != nil {
        return clubError(c, err)
    }
    courts, err := h.Courts.ListByClub(ctx, clubID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"courts": courts})
}

// SearchTurns searches upcoming turns with optional filters:
// club, gender_mode, category, date, status=open, page, page_size.
func (h *BrowseHandler) SearchTurns(c echo.Context) error {
    q := repository.TurnSearchQuery{
        Club:       strings.TrimSpace(c.QueryParam("club")),
        GenderMode: strings.TrimSpace(c.QueryParam("gender_mode")),
        Category:   strings.TrimSpace(c.QueryParam("category")),
        Date:       strings.TrimSpace(c.QueryParam("date")),
        OnlyOpen:   strings.EqualFold(c.QueryParam("status"), "open"),
        Page:       queryInt(c, "page", 1),
        PageSize:   queryInt(c, "page_size", 20),
    }
    if q.PageSize > 100 {
        q.PageSize = 100
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rows, total, err := h.Turns.SearchUpcoming(ctx, q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "turns":     rows,
        "total":     total,
        "page":      q.Page,
        "page_size": q.PageSize,
    })
}

// SearchPlayers finds players by name or email fragment, for building
// invitations. Requires authentication; the caller is excluded from
// the results.
func (h *BrowseHandler) SearchPlayers(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    query := strings.TrimSpace(c.QueryParam("q"))
    if len(query) < 2 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "query must be at least 2 characters"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    users, err := h.Users.SearchPlayers(ctx, query, uid, queryInt(c, "limit", 20))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]userPart, 0, len(users))
    for _, u := range users {
        out = append(out, userToPart(u))
    }
    return c.JSON(http.StatusOK, echo.Map{"players": out})
}
