package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/padelhub/turn-booking/internal/model"
    "github.com/padelhub/turn-booking/internal/repository"
)

// OwnerHandler bundles repositories for club owners to manage their
// venues and courts.
type OwnerHandler struct {
    Clubs  *repository.ClubRepo
    Courts *repository.CourtRepo
}

func NewOwnerHandler(clubs *repository.ClubRepo, courts *repository.CourtRepo) *OwnerHandler {
    if clubs == nil || courts == nil {
        panic("nil repository passed to NewOwnerHandler")
    }
    return &OwnerHandler{Clubs: clubs, Courts: courts}
}

type clubReq struct {
    Name                string  `json:"name"`
    Address             string  `json:"address"`
    Phone               *string `json:"phone"`
    Email               *string `json:"email"`
    OpeningTime         string  `json:"opening_time"` // HH:MM
    ClosingTime         string  `json:"closing_time"` // HH:MM
    TurnDurationMinutes int     `json:"turn_duration_minutes"`
    OpenDays            []int   `json:"open_days"` // 0=Monday..6=Sunday
}

func (r clubReq) validate() string {
    if strings.TrimSpace(r.Name) == "" {
        return "name required"
    }
    if strings.TrimSpace(r.Address) == "" {
        return "address required"
    }
    if !validClock(r.OpeningTime) || !validClock(r.ClosingTime) {
        return "opening_time/closing_time must be HH:MM"
    }
    if r.TurnDurationMinutes < 30 || r.TurnDurationMinutes > 240 {
        return "turn_duration_minutes must be between 30 and 240"
    }
    for _, d := range r.OpenDays {
        if d < 0 || d > 6 {
            return "open_days values must be 0..6"
        }
    }
    return ""
}

func validClock(s string) bool {
    if len(s) != 5 || s[2] != ':' {
        return false
    }
    h := int(s[0]-'0')*10 + int(s[1]-'0')
    m := int(s[3]-'0')*10 + int(s[4]-'0')
    for _, i := range []int{0, 1, 3, 4} {
        if s[i] < '0' || s[i] > '9' {
            return false
        }
    }
    return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

func (r clubReq) apply(c *model.Club) {
    c.Name = strings.TrimSpace(r.Name)
    c.Address = strings.TrimSpace(r.Address)
    c.Phone = r.Phone
    c.Email = r.Email
    c.OpeningTime = r.OpeningTime
    c.ClosingTime = r.ClosingTime
    c.TurnDurationMinutes = r.TurnDurationMinutes
    c.OpenDays = [7]bool{}
    for _, d := range r.OpenDays {
        c.OpenDays[d] = true
    }
}

// CreateClub registers a new club for the authenticated owner.
func (h *OwnerHandler) CreateClub(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req clubReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    club := &model.Club{OwnerID: uid}
    req.apply(club)
    if err := h.Clubs.Create(ctx, club); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create club failed"})
    }
    return c.JSON(http.StatusCreated, club)
}

// ListClubs returns the owner's clubs.
func (h *OwnerHandler) ListClubs(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    clubs, err := h.Clubs.ListByOwner(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"clubs": clubs})
}

// UpdateClub modifies a club owned by the caller.
func (h *OwnerHandler) UpdateClub(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    clubID, ok := pathID(c, "club_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
    }
    var req clubReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    club, err := h.Clubs.GetByIDAndOwner(ctx, clubID, uid)
    if err != nil {
        return clubError(c, err)
    }
    req.apply(club)
    if err := h.Clubs.Update(ctx, club, uid); err != nil {
        return clubError(c, err)
    }
    return c.JSON(http.StatusOK, club)
}

func clubError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrClubNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "club not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your club"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
}
