// This file defines repository methods for clubs.  A club groups one
// or more courts, belongs to a single owner and carries the weekly
// opening schedule consumed by the turn generator.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/padelhub/turn-booking/internal/model"
)

// ClubRepo encapsulates all database queries related to clubs.
type ClubRepo struct {
    db *sql.DB
}

// NewClubRepo constructs a ClubRepo with the provided DB handle.
func NewClubRepo(db *sql.DB) *ClubRepo {
    return &ClubRepo{db: db}
}

const clubColumns = `id, owner_id, name, address, phone, email, opening_time, closing_time,
    turn_duration_minutes, monday_open, tuesday_open, wednesday_open, thursday_open,
    friday_open, saturday_open, sunday_open, created_at, updated_at`

func scanClub(scan func(dest ...any) error) (*model.Club, error) {
    var c model.Club
    var phone, email sql.NullString
    err := scan(&c.ID, &c.OwnerID, &c.Name, &c.Address, &phone, &email,
        &c.OpeningTime, &c.ClosingTime, &c.TurnDurationMinutes,
        &c.OpenDays[0], &c.OpenDays[1], &c.OpenDays[2], &c.OpenDays[3],
        &c.OpenDays[4], &c.OpenDays[5], &c.OpenDays[6],
        &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if phone.Valid {
        p := phone.String
        c.Phone = &p
    }
    if email.Valid {
        e := email.String
        c.Email = &e
    }
    return &c, nil
}

// Create inserts a new club.  On success the club's ID and timestamp
// fields are populated.
func (r *ClubRepo) Create(ctx context.Context, c *model.Club) error {
    const q = `INSERT INTO clubs (owner_id, name, address, phone, email, opening_time, closing_time,
        turn_duration_minutes, monday_open, tuesday_open, wednesday_open, thursday_open,
        friday_open, saturday_open, sunday_open)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
    res, err := r.db.ExecContext(ctx, q, c.OwnerID, c.Name, c.Address, c.Phone, c.Email,
        c.OpeningTime, c.ClosingTime, c.TurnDurationMinutes,
        c.OpenDays[0], c.OpenDays[1], c.OpenDays[2], c.OpenDays[3],
        c.OpenDays[4], c.OpenDays[5], c.OpenDays[6])
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

// GetByID fetches a club by its ID regardless of owner.  It returns
// ErrClubNotFound if no row is found.
func (r *ClubRepo) GetByID(ctx context.Context, id uint64) (*model.Club, error) {
    row := r.db.QueryRowContext(ctx, "SELECT "+clubColumns+" FROM clubs WHERE id = ?", id)
    c, err := scanClub(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrClubNotFound
        }
        return nil, err
    }
    return c, nil
}

// GetByIDAndOwner fetches a club by id but only if it belongs to the
// specified owner.  If the club does not exist ErrClubNotFound is
// returned; if it is owned by someone else, ErrForbidden.
func (r *ClubRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Club, error) {
    c, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if c.OwnerID != ownerID {
        return nil, ErrForbidden
    }
    return c, nil
}

// ListByOwner returns all clubs for a specific owner ordered by id.
func (r *ClubRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Club, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+clubColumns+" FROM clubs WHERE owner_id = ? ORDER BY id", ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var clubs []*model.Club
    for rows.Next() {
        c, err := scanClub(rows.Scan)
        if err != nil {
            return nil, err
        }
        clubs = append(clubs, c)
    }
    return clubs, rows.Err()
}

// ListAll returns every club ordered by name.  Used by the public
// browse endpoints; callers should strip owner details before
// responding.
func (r *ClubRepo) ListAll(ctx context.Context) ([]*model.Club, error) {
    rows, err := r.db.QueryContext(ctx, "SELECT "+clubColumns+" FROM clubs ORDER BY name")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var clubs []*model.Club
    for rows.Next() {
        c, err := scanClub(rows.Scan)
        if err != nil {
            return nil, err
        }
        clubs = append(clubs, c)
    }
    return clubs, rows.Err()
}

// Update modifies a club's editable fields.  Only the owner may
// update; ErrClubNotFound / ErrForbidden follow GetByIDAndOwner.
func (r *ClubRepo) Update(ctx context.Context, c *model.Club, ownerID uint64) error {
    if _, err := r.GetByIDAndOwner(ctx, c.ID, ownerID); err != nil {
        return err
    }
    const q = `UPDATE clubs SET name=?, address=?, phone=?, email=?, opening_time=?, closing_time=?,
        turn_duration_minutes=?, monday_open=?, tuesday_open=?, wednesday_open=?, thursday_open=?,
        friday_open=?, saturday_open=?, sunday_open=? WHERE id=?`
    _, err := r.db.ExecContext(ctx, q, c.Name, c.Address, c.Phone, c.Email,
        c.OpeningTime, c.ClosingTime, c.TurnDurationMinutes,
        c.OpenDays[0], c.OpenDays[1], c.OpenDays[2], c.OpenDays[3],
        c.OpenDays[4], c.OpenDays[5], c.OpenDays[6], c.ID)
    return err
}
