// Read-side queries over derived matches.  Matches are written only
// inside the turn lock transaction; this repo never mutates them
// except through the lifecycle.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/padelhub/turn-booking/internal/model"
)

// ErrMatchNotFound is returned when no match row exists for the query.
var ErrMatchNotFound = errors.New("match not found")

// MatchRepo encapsulates database queries related to matches.
type MatchRepo struct {
    db *sql.DB
}

// NewMatchRepo constructs a MatchRepo with the provided DB handle.
func NewMatchRepo(db *sql.DB) *MatchRepo {
    return &MatchRepo{db: db}
}

const matchColumns = "id, turn_id, court_id, starts_at, ends_at, gender_mode, status, created_at"

func scanMatch(scan func(dest ...any) error) (*model.Match, error) {
    var m model.Match
    err := scan(&m.ID, &m.TurnID, &m.CourtID, &m.StartsAt, &m.EndsAt,
        &m.GenderMode, &m.Status, &m.CreatedAt)
    if err != nil {
        return nil, err
    }
    return &m, nil
}

// GetByTurn returns the match derived from a turn, if any.
func (r *MatchRepo) GetByTurn(ctx context.Context, turnID uint64) (*model.Match, error) {
    row := r.db.QueryRowContext(ctx,
        "SELECT "+matchColumns+" FROM matches WHERE turn_id = ? ORDER BY id DESC LIMIT 1", turnID)
    m, err := scanMatch(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrMatchNotFound
        }
        return nil, err
    }
    return m, nil
}

// ListPlayers returns the frozen roster of a match.
func (r *MatchRepo) ListPlayers(ctx context.Context, matchID uint64) ([]model.MatchPlayer, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT match_id, user_id, gender FROM match_players WHERE match_id = ? ORDER BY user_id", matchID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var players []model.MatchPlayer
    for rows.Next() {
        var p model.MatchPlayer
        if err := rows.Scan(&p.MatchID, &p.UserID, &p.Gender); err != nil {
            return nil, err
        }
        players = append(players, p)
    }
    return players, rows.Err()
}

// ListByUser returns a player's matches, most recent first.
func (r *MatchRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Match, error) {
    const q = `SELECT ` + matchColumns + ` FROM matches m
        WHERE EXISTS (SELECT 1 FROM match_players mp WHERE mp.match_id = m.id AND mp.user_id = ?)
        ORDER BY m.starts_at DESC LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, userID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var matches []*model.Match
    for rows.Next() {
        m, err := scanMatch(rows.Scan)
        if err != nil {
            return nil, err
        }
        matches = append(matches, m)
    }
    return matches, rows.Err()
}
