// This file defines repository methods for turn invitations.  An
// invitation reserves intent, not a slot: pending invitations count
// toward gender feasibility checks in the service layer but a seat is
// only taken when the invited player actually joins.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/padelhub/turn-booking/internal/model"
)

// InvitationRepo encapsulates database queries related to invitations.
type InvitationRepo struct {
    db *sql.DB
}

// NewInvitationRepo constructs an InvitationRepo with the provided DB
// handle.
func NewInvitationRepo(db *sql.DB) *InvitationRepo {
    return &InvitationRepo{db: db}
}

const invitationColumns = "id, reference, turn_id, inviter_id, invited_player_id, status, message, created_at, responded_at"

func scanInvitation(scan func(dest ...any) error) (*model.Invitation, error) {
    var inv model.Invitation
    var msg sql.NullString
    var responded sql.NullTime
    err := scan(&inv.ID, &inv.Reference, &inv.TurnID, &inv.InviterID,
        &inv.InvitedPlayerID, &inv.Status, &msg, &inv.CreatedAt, &responded)
    if err != nil {
        return nil, err
    }
    if msg.Valid {
        v := msg.String
        inv.Message = &v
    }
    if responded.Valid {
        v := responded.Time
        inv.RespondedAt = &v
    }
    return &inv, nil
}

// Create inserts a new invitation.  A duplicate pending invitation for
// the same turn and player surfaces as ErrConflict.
func (r *InvitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
    const q = `INSERT INTO invitations (reference, turn_id, inviter_id, invited_player_id, status, message)
        VALUES (?,?,?,?,?,?)`
    res, err := r.db.ExecContext(ctx, q, inv.Reference, inv.TurnID, inv.InviterID,
        inv.InvitedPlayerID, inv.Status, inv.Message)
    if err != nil {
        if isDuplicateEntry(err) {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    inv.ID = uint64(id)
    return nil
}

// GetByReference fetches an invitation by its opaque reference.
func (r *InvitationRepo) GetByReference(ctx context.Context, reference string) (*model.Invitation, error) {
    row := r.db.QueryRowContext(ctx,
        "SELECT "+invitationColumns+" FROM invitations WHERE reference = ?", reference)
    inv, err := scanInvitation(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrInvitationNotFound
        }
        return nil, err
    }
    return inv, nil
}

// HasPending reports whether the player already has a pending
// invitation to the turn.
func (r *InvitationRepo) HasPending(ctx context.Context, turnID, playerID uint64) (bool, error) {
    const q = `SELECT COUNT(*) FROM invitations
        WHERE turn_id = ? AND invited_player_id = ? AND status = 'PENDING'`
    var n int
    if err := r.db.QueryRowContext(ctx, q, turnID, playerID).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// PendingGenderCounts returns how many pending invitations a turn has
// per invited player's gender.  Used to keep mixed-mode feasibility
// honest when invitations are outstanding.
func (r *InvitationRepo) PendingGenderCounts(ctx context.Context, turnID uint64) (male, female int, err error) {
    const q = `SELECT u.gender, COUNT(*) FROM invitations i
        JOIN users u ON u.id = i.invited_player_id
        WHERE i.turn_id = ? AND i.status = 'PENDING'
        GROUP BY u.gender`
    rows, err := r.db.QueryContext(ctx, q, turnID)
    if err != nil {
        return 0, 0, err
    }
    defer rows.Close()
    for rows.Next() {
        var gender string
        var n int
        if err := rows.Scan(&gender, &n); err != nil {
            return 0, 0, err
        }
        switch gender {
        case model.GenderMale:
            male = n
        case model.GenderFemale:
            female = n
        }
    }
    return male, female, rows.Err()
}

// UpdateStatus transitions an invitation out of PENDING.  Returns
// ErrConflict when the invitation was already responded to, so
// concurrent accept/decline cannot both win.
func (r *InvitationRepo) UpdateStatus(ctx context.Context, id uint64, status string, respondedAt time.Time) error {
    const q = `UPDATE invitations SET status = ?, responded_at = ? WHERE id = ? AND status = 'PENDING'`
    res, err := r.db.ExecContext(ctx, q, status, respondedAt, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// CancelPendingForTurn expires every pending invitation of a turn.
// Called when the turn locks or is cancelled.
func (r *InvitationRepo) CancelPendingForTurn(ctx context.Context, turnID uint64, status string, at time.Time) error {
    const q = `UPDATE invitations SET status = ?, responded_at = ? WHERE turn_id = ? AND status = 'PENDING'`
    _, err := r.db.ExecContext(ctx, q, status, at, turnID)
    return err
}

// ListForPlayer returns invitations addressed to the player, newest
// first.
func (r *InvitationRepo) ListForPlayer(ctx context.Context, playerID uint64, onlyPending bool, limit int) ([]*model.Invitation, error) {
    q := "SELECT " + invitationColumns + " FROM invitations WHERE invited_player_id = ?"
    args := []any{playerID}
    if onlyPending {
        q += " AND status = 'PENDING'"
    }
    q += " ORDER BY created_at DESC LIMIT ?"
    args = append(args, limit)
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectInvitations(rows)
}

// ListForTurn returns a turn's invitations, newest first.
func (r *InvitationRepo) ListForTurn(ctx context.Context, turnID uint64) ([]*model.Invitation, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+invitationColumns+" FROM invitations WHERE turn_id = ? ORDER BY created_at DESC", turnID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectInvitations(rows)
}

func collectInvitations(rows *sql.Rows) ([]*model.Invitation, error) {
    var invs []*model.Invitation
    for rows.Next() {
        inv, err := scanInvitation(rows.Scan)
        if err != nil {
            return nil, err
        }
        invs = append(invs, inv)
    }
    return invs, rows.Err()
}
