// This file defines repository methods for courts.  A court belongs
// to exactly one club and is the unit a turn is scheduled against.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
)

// CourtRepo encapsulates database queries related to courts.  It
// doubles as the engine's CourtCatalog: GetCourt translates a missing
// row into engine.ErrCourtNotFound.
type CourtRepo struct {
    db *sql.DB
}

// NewCourtRepo constructs a CourtRepo with the provided DB handle.
func NewCourtRepo(db *sql.DB) *CourtRepo {
    return &CourtRepo{db: db}
}

const courtColumns = "id, club_id, name, description, surface, is_indoor, has_lighting, is_available, created_at, updated_at"

func scanCourt(scan func(dest ...any) error) (*model.Court, error) {
    var c model.Court
    var desc sql.NullString
    err := scan(&c.ID, &c.ClubID, &c.Name, &desc, &c.Surface,
        &c.IsIndoor, &c.HasLighting, &c.IsAvailable, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if desc.Valid {
        d := desc.String
        c.Description = &d
    }
    return &c, nil
}

// Create inserts a new court and populates its generated fields.
func (r *CourtRepo) Create(ctx context.Context, c *model.Court) error {
    const q = `INSERT INTO courts (club_id, name, description, surface, is_indoor, has_lighting, is_available)
        VALUES (?,?,?,?,?,?,?)`
    res, err := r.db.ExecContext(ctx, q, c.ClubID, c.Name, c.Description, c.Surface,
        c.IsIndoor, c.HasLighting, c.IsAvailable)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    stored, err := r.GetByID(ctx, c.ID)
    if err != nil {
        return err
    }
    *c = *stored
    return nil
}

// GetByID fetches a court by its ID.  Returns ErrCourtNotFound when
// no row matches.
func (r *CourtRepo) GetByID(ctx context.Context, id uint64) (*model.Court, error) {
    row := r.db.QueryRowContext(ctx, "SELECT "+courtColumns+" FROM courts WHERE id = ?", id)
    c, err := scanCourt(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrCourtNotFound
        }
        return nil, err
    }
    return c, nil
}

// GetCourt implements engine.CourtCatalog.
func (r *CourtRepo) GetCourt(ctx context.Context, id uint64) (*model.Court, error) {
    c, err := r.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, ErrCourtNotFound) {
            return nil, engine.ErrCourtNotFound
        }
        return nil, err
    }
    return c, nil
}

// GetOwnerID returns the owning user of the court's club.  Used by
// handlers to authorize owner-only operations on a court's turns.
func (r *CourtRepo) GetOwnerID(ctx context.Context, courtID uint64) (uint64, error) {
    const q = `SELECT cl.owner_id FROM courts co JOIN clubs cl ON cl.id = co.club_id WHERE co.id = ?`
    var ownerID uint64
    if err := r.db.QueryRowContext(ctx, q, courtID).Scan(&ownerID); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return 0, ErrCourtNotFound
        }
        return 0, err
    }
    return ownerID, nil
}

// ListByClub returns all courts of a club ordered by name.
func (r *CourtRepo) ListByClub(ctx context.Context, clubID uint64) ([]*model.Court, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+courtColumns+" FROM courts WHERE club_id = ? ORDER BY name", clubID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var courts []*model.Court
    for rows.Next() {
        c, err := scanCourt(rows.Scan)
        if err != nil {
            return nil, err
        }
        courts = append(courts, c)
    }
    return courts, rows.Err()
}

// Update modifies a court's editable fields.
func (r *CourtRepo) Update(ctx context.Context, c *model.Court) error {
    const q = `UPDATE courts SET name=?, description=?, surface=?, is_indoor=?, has_lighting=?, is_available=? WHERE id=?`
    _, err := r.db.ExecContext(ctx, q, c.Name, c.Description, c.Surface,
        c.IsIndoor, c.HasLighting, c.IsAvailable, c.ID)
    return err
}

// Delete removes a court.  It refuses with ErrConflict when the
// court still has non-cancelled turns, preserving booking history.
func (r *CourtRepo) Delete(ctx context.Context, courtID uint64) error {
    var active int
    const check = `SELECT COUNT(*) FROM turns WHERE court_id = ? AND status IN ('OPEN','LOCKED')`
    if err := r.db.QueryRowContext(ctx, check, courtID).Scan(&active); err != nil {
        return err
    }
    if active > 0 {
        return ErrConflict
    }
    _, err := r.db.ExecContext(ctx, "DELETE FROM courts WHERE id = ?", courtID)
    return err
}
