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

type courtReq struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
    Surface     string  `json:"surface"`
    IsIndoor    bool    `json:"is_indoor"`
    HasLighting bool    `json:"has_lighting"`
    IsAvailable *bool   `json:"is_available"`
}

func validSurface(s string) bool {
    switch s {
    case model.SurfaceArtificialGrass, model.SurfaceCement, model.SurfaceCarpet:
        return true
    }
    return false
}

// CreateCourt adds a court to one of the owner's clubs.
func (h *OwnerHandler) CreateCourt(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    clubID, ok := pathID(c, "club_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
    }
    var req courtReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    req.Surface = strings.ToUpper(strings.TrimSpace(req.Surface))
    if !validSurface(req.Surface) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown surface"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    // Ownership check before touching the court table.
    if _, err := h.Clubs.GetByIDAndOwner(ctx, clubID, uid); err != nil {
        return clubError(c, err)
    }

    available := true
    if req.IsAvailable != nil {
        available = *req.IsAvailable
    }
    court := &model.Court{
        ClubID:      clubID,
        Name:        req.Name,
        Description: req.Description,
        Surface:     req.Surface,
        IsIndoor:    req.IsIndoor,
        HasLighting: req.HasLighting,
        IsAvailable: available,
    }
    if err := h.Courts.Create(ctx, court); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create court failed"})
    }
    return c.JSON(http.StatusCreated, court)
}

// ListCourts returns the courts of one of the owner's clubs.
func (h *OwnerHandler) ListCourts(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    clubID, ok := pathID(c, "club_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if _, err := h.Clubs.GetByIDAndOwner(ctx, clubID, uid); err != nil {
        return clubError(c, err)
    }
    courts, err := h.Courts.ListByClub(ctx, clubID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"courts": courts})
}

// UpdateCourt modifies a court after verifying ownership through its
// club.
func (h *OwnerHandler) UpdateCourt(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    courtID, ok := pathID(c, "court_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
    }
    var req courtReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Surface = strings.ToUpper(strings.TrimSpace(req.Surface))

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    ownerID, err := h.Courts.GetOwnerID(ctx, courtID)
    if err != nil {
        return courtError(c, err)
    }
    if ownerID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not your court"})
    }

    court, err := h.Courts.GetByID(ctx, courtID)
    if err != nil {
        return courtError(c, err)
    }
    if req.Name != "" {
        court.Name = req.Name
    }
    if req.Description != nil {
        court.Description = req.Description
    }
    if req.Surface != "" {
        if !validSurface(req.Surface) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown surface"})
        }
        court.Surface = req.Surface
    }
    court.IsIndoor = req.IsIndoor
    court.HasLighting = req.HasLighting
    if req.IsAvailable != nil {
        court.IsAvailable = *req.IsAvailable
    }
    if err := h.Courts.Update(ctx, court); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update court failed"})
    }
    return c.JSON(http.StatusOK, court)
}

// DeleteCourt removes a court with no active turns.
func (h *OwnerHandler) DeleteCourt(c echo.Context) error {
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
    if err := h.Courts.Delete(ctx, courtID); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "court has active turns"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete court failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

func courtError(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrCourtNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "court not found"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}
