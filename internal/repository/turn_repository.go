// This file implements turn persistence.  All lifecycle mutations go
// through Begin, which opens a transaction and takes a row lock on the
// turn so only one writer at a time can act on it.  Read-side listing
// queries run outside transactions.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
)

// lockWaitSeconds bounds how long a writer waits for a contended turn
// row before the database gives up with a lock wait timeout, which we
// surface as engine.ErrContention.
const lockWaitSeconds = 2

// TurnRepo encapsulates database queries related to turns.  It
// implements engine.TurnStore.
type TurnRepo struct {
    db *sql.DB
}

// NewTurnRepo constructs a TurnRepo with the provided DB handle.
func NewTurnRepo(db *sql.DB) *TurnRepo {
    return &TurnRepo{db: db}
}

const turnColumns = "id, court_id, club_id, creator_id, starts_at, ends_at, capacity, gender_mode, min_rating, max_rating, category_restriction, organizer_category, price_cents, status, created_at, updated_at, cancelled_at"

func scanTurn(scan func(dest ...any) error) (*model.Turn, error) {
    var t model.Turn
    var minR, maxR sql.NullFloat64
    var catRestr sql.NullString
    var orgCat sql.NullString
    var cancelled sql.NullTime
    err := scan(&t.ID, &t.CourtID, &t.ClubID, &t.CreatorID, &t.StartsAt, &t.EndsAt,
        &t.Capacity, &t.GenderMode, &minR, &maxR, &catRestr, &orgCat,
        &t.PriceCents, &t.Status, &t.CreatedAt, &t.UpdatedAt, &cancelled)
    if err != nil {
        return nil, err
    }
    if minR.Valid {
        v := minR.Float64
        t.MinRating = &v
    }
    if maxR.Valid {
        v := maxR.Float64
        t.MaxRating = &v
    }
    if catRestr.Valid {
        t.CategoryRestriction = catRestr.String
    } else {
        t.CategoryRestriction = model.CategoryRestrictionNone
    }
    if orgCat.Valid {
        v := orgCat.String
        t.OrganizerCategory = &v
    }
    if cancelled.Valid {
        v := cancelled.Time
        t.CancelledAt = &v
    }
    return &t, nil
}

// hasOverlap reports whether a non-cancelled turn on the court
// intersects the half-open window [startsAt, endsAt).  excludeID
// skips the turn being updated so it does not collide with itself.
func hasOverlap(ctx context.Context, q interface {
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, courtID uint64, startsAt, endsAt time.Time, excludeID uint64) (bool, error) {
    const query = `SELECT COUNT(*) FROM turns
        WHERE court_id = ? AND status <> 'CANCELLED' AND id <> ?
          AND starts_at < ? AND ends_at > ?`
    var n int
    if err := q.QueryRowContext(ctx, query, courtID, excludeID, endsAt, startsAt).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// CreateTurn inserts a new turn after verifying its slot does not
// collide with an existing non-cancelled turn on the same court.
// Implements part of engine.TurnStore.
func (r *TurnRepo) CreateTurn(ctx context.Context, t *model.Turn) error {
    overlap, err := hasOverlap(ctx, r.db, t.CourtID, t.StartsAt, t.EndsAt, 0)
    if err != nil {
        return err
    }
    if overlap {
        return engine.ErrSlotOverlap
    }

    const q = `INSERT INTO turns (court_id, club_id, creator_id, starts_at, ends_at, capacity,
            gender_mode, min_rating, max_rating, category_restriction, organizer_category,
            price_cents, status)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`
    res, err := r.db.ExecContext(ctx, q, t.CourtID, t.ClubID, t.CreatorID,
        t.StartsAt, t.EndsAt, t.Capacity, t.GenderMode, t.MinRating, t.MaxRating,
        t.CategoryRestriction, t.OrganizerCategory, t.PriceCents, t.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    return nil
}

// Begin opens a transaction and locks the turn row FOR UPDATE.  A
// concurrent writer holding the lock past the bounded wait surfaces as
// engine.ErrContention; a missing row as engine.ErrTurnNotFound.
// Implements engine.TurnStore.
func (r *TurnRepo) Begin(ctx context.Context, turnID uint64) (engine.TurnTx, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    if _, err := tx.ExecContext(ctx, "SET innodb_lock_wait_timeout = ?", lockWaitSeconds); err != nil {
        tx.Rollback()
        return nil, err
    }

    row := tx.QueryRowContext(ctx, "SELECT "+turnColumns+" FROM turns WHERE id = ? FOR UPDATE", turnID)
    t, err := scanTurn(row.Scan)
    if err != nil {
        tx.Rollback()
        if errors.Is(err, sql.ErrNoRows) {
            return nil, engine.ErrTurnNotFound
        }
        if isLockWaitTimeout(err) {
            return nil, engine.ErrContention
        }
        return nil, err
    }

    players, err := loadPlayersTx(ctx, tx, turnID)
    if err != nil {
        tx.Rollback()
        return nil, err
    }

    return &turnTx{
        tx:           tx,
        turn:         t,
        players:      players,
        origCourtID:  t.CourtID,
        origStartsAt: t.StartsAt,
        origEndsAt:   t.EndsAt,
    }, nil
}

func loadPlayersTx(ctx context.Context, tx *sql.Tx, turnID uint64) ([]model.TurnPlayer, error) {
    rows, err := tx.QueryContext(ctx,
        "SELECT turn_id, user_id, gender, joined_at FROM turn_players WHERE turn_id = ? ORDER BY joined_at, user_id", turnID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var players []model.TurnPlayer
    for rows.Next() {
        var p model.TurnPlayer
        if err := rows.Scan(&p.TurnID, &p.UserID, &p.Gender, &p.JoinedAt); err != nil {
            return nil, err
        }
        players = append(players, p)
    }
    return players, rows.Err()
}

// turnTx is the write handle for a single locked turn.  The original
// court and window are kept so UpdateTurn only re-checks overlap when
// the slot actually moved.
type turnTx struct {
    tx           *sql.Tx
    turn         *model.Turn
    players      []model.TurnPlayer
    origCourtID  uint64
    origStartsAt time.Time
    origEndsAt   time.Time
    done         bool
}

func (t *turnTx) Turn() *model.Turn { return t.turn }

func (t *turnTx) Players() []model.TurnPlayer { return t.players }

func (t *turnTx) AddPlayer(ctx context.Context, p model.TurnPlayer) error {
    const q = `INSERT INTO turn_players (turn_id, user_id, gender, joined_at) VALUES (?,?,?,?)`
    if _, err := t.tx.ExecContext(ctx, q, p.TurnID, p.UserID, p.Gender, p.JoinedAt); err != nil {
        if isDuplicateEntry(err) {
            return engine.ErrAlreadyJoined
        }
        return err
    }
    t.players = append(t.players, p)
    return nil
}

func (t *turnTx) RemovePlayer(ctx context.Context, userID uint64) error {
    res, err := t.tx.ExecContext(ctx,
        "DELETE FROM turn_players WHERE turn_id = ? AND user_id = ?", t.turn.ID, userID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return engine.ErrNotJoined
    }
    kept := t.players[:0]
    for _, p := range t.players {
        if p.UserID != userID {
            kept = append(kept, p)
        }
    }
    t.players = kept
    return nil
}

func (t *turnTx) UpdateTurn(ctx context.Context, turn *model.Turn) error {
    moved := turn.CourtID != t.origCourtID ||
        !turn.StartsAt.Equal(t.origStartsAt) || !turn.EndsAt.Equal(t.origEndsAt)
    if moved {
        overlap, err := hasOverlap(ctx, t.tx, turn.CourtID, turn.StartsAt, turn.EndsAt, turn.ID)
        if err != nil {
            return err
        }
        if overlap {
            return engine.ErrSlotOverlap
        }
    }

    const q = `UPDATE turns SET court_id=?, starts_at=?, ends_at=?, capacity=?, gender_mode=?,
            min_rating=?, max_rating=?, category_restriction=?, organizer_category=?,
            price_cents=?, status=?, cancelled_at=?
        WHERE id=?`
    _, err := t.tx.ExecContext(ctx, q, turn.CourtID, turn.StartsAt, turn.EndsAt,
        turn.Capacity, turn.GenderMode, turn.MinRating, turn.MaxRating,
        turn.CategoryRestriction, turn.OrganizerCategory, turn.PriceCents,
        turn.Status, turn.CancelledAt, turn.ID)
    if err != nil {
        return err
    }
    t.turn = turn
    return nil
}

func (t *turnTx) CreateMatch(ctx context.Context, m *model.Match, players []model.MatchPlayer) error {
    const q = `INSERT INTO matches (turn_id, court_id, starts_at, ends_at, gender_mode, status)
        VALUES (?,?,?,?,?,?)`
    res, err := t.tx.ExecContext(ctx, q, m.TurnID, m.CourtID, m.StartsAt, m.EndsAt, m.GenderMode, m.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)

    if len(players) == 0 {
        return nil
    }
    var sb strings.Builder
    sb.WriteString("INSERT INTO match_players (match_id, user_id, gender) VALUES ")
    args := make([]any, 0, len(players)*3)
    for i, p := range players {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?,?,?)")
        args = append(args, m.ID, p.UserID, p.Gender)
    }
    _, err = t.tx.ExecContext(ctx, sb.String(), args...)
    return err
}

func (t *turnTx) VoidMatch(ctx context.Context) error {
    _, err := t.tx.ExecContext(ctx,
        "UPDATE matches SET status = 'VOID' WHERE turn_id = ? AND status = 'PENDING'", t.turn.ID)
    return err
}

func (t *turnTx) Commit() error {
    if t.done {
        return nil
    }
    t.done = true
    return t.tx.Commit()
}

func (t *turnTx) Rollback() error {
    if t.done {
        return nil
    }
    t.done = true
    return t.tx.Rollback()
}

// GetByID fetches a turn without locking it.  Read-side helper for
// handlers.
func (r *TurnRepo) GetByID(ctx context.Context, id uint64) (*model.Turn, error) {
    row := r.db.QueryRowContext(ctx, "SELECT "+turnColumns+" FROM turns WHERE id = ?", id)
    t, err := scanTurn(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, engine.ErrTurnNotFound
        }
        return nil, err
    }
    return t, nil
}

// ListPlayers returns the current roster of a turn ordered by join
// time.
func (r *TurnRepo) ListPlayers(ctx context.Context, turnID uint64) ([]model.TurnPlayer, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT turn_id, user_id, gender, joined_at FROM turn_players WHERE turn_id = ? ORDER BY joined_at, user_id", turnID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var players []model.TurnPlayer
    for rows.Next() {
        var p model.TurnPlayer
        if err := rows.Scan(&p.TurnID, &p.UserID, &p.Gender, &p.JoinedAt); err != nil {
            return nil, err
        }
        players = append(players, p)
    }
    return players, rows.Err()
}

// ListByCourt returns a court's turns inside a window, newest first.
func (r *TurnRepo) ListByCourt(ctx context.Context, courtID uint64, from, to time.Time) ([]*model.Turn, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+turnColumns+" FROM turns WHERE court_id = ? AND starts_at >= ? AND starts_at < ? ORDER BY starts_at",
        courtID, from, to)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectTurns(rows)
}

// ListJoinedByUser returns upcoming turns the user currently belongs
// to.
func (r *TurnRepo) ListJoinedByUser(ctx context.Context, userID uint64, after time.Time) ([]*model.Turn, error) {
    const q = `SELECT ` + turnColumns + ` FROM turns t
        WHERE t.ends_at > ? AND t.status IN ('OPEN','LOCKED')
          AND EXISTS (SELECT 1 FROM turn_players tp WHERE tp.turn_id = t.id AND tp.user_id = ?)
        ORDER BY t.starts_at`
    rows, err := r.db.QueryContext(ctx, q, after, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectTurns(rows)
}

// ListCreatedBy returns turns created by the user, newest first.
func (r *TurnRepo) ListCreatedBy(ctx context.Context, creatorID uint64, limit int) ([]*model.Turn, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+turnColumns+" FROM turns WHERE creator_id = ? ORDER BY starts_at DESC LIMIT ?",
        creatorID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectTurns(rows)
}

// ListDueForCompletion returns IDs of locked turns whose window has
// fully passed.  The sweeper completes them through the engine.
func (r *TurnRepo) ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id FROM turns WHERE status = 'LOCKED' AND ends_at <= ? ORDER BY ends_at LIMIT ?",
        now, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}

func collectTurns(rows *sql.Rows) ([]*model.Turn, error) {
    var turns []*model.Turn
    for rows.Next() {
        t, err := scanTurn(rows.Scan)
        if err != nil {
            return nil, err
        }
        turns = append(turns, t)
    }
    return turns, rows.Err()
}
