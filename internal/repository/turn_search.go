package repository

import (
    "context"
    "strings"
)

// TurnSearchQuery defines filters & pagination for browsing open
// turns.
type TurnSearchQuery struct {
    Club       string
    GenderMode string
    Category   string
    Date       string // YYYY-MM-DD, empty for any
    OnlyOpen   bool
    Page       int
    PageSize   int
}

type PublicTurnRow struct {
    ID                  uint64   `json:"id"`
    CourtID             uint64   `json:"court_id"`
    CourtName           string   `json:"court_name"`
    ClubID              uint64   `json:"club_id"`
    Club                string   `json:"club"`
    StartsAt            string   `json:"starts_at"`
    EndsAt              string   `json:"ends_at"`
    Capacity            int      `json:"capacity"`
    PlayersJoined       int      `json:"players_joined"`
    GenderMode          string   `json:"gender_mode"`
    MinRating           *float64 `json:"min_rating,omitempty"`
    MaxRating           *float64 `json:"max_rating,omitempty"`
    CategoryRestriction string   `json:"category_restriction"`
    PriceCents          uint32   `json:"price_cents"`
    Price               float64  `json:"price"`
    Status              string   `json:"status"`
}

func (r *TurnRepo) SearchUpcoming(ctx context.Context, q TurnSearchQuery) ([]PublicTurnRow, int64, error) {
    where := []string{"t.starts_at >= NOW()", "t.status <> 'CANCELLED'"}
    args := []any{}

    if q.OnlyOpen {
        where = append(where, "t.status = 'OPEN'")
    }
    if q.Club != "" {
        where = append(where, "LOWER(cl.name) LIKE ?")
        args = append(args, "%"+strings.ToLower(q.Club)+"%")
    }
    if q.GenderMode != "" {
        where = append(where, "t.gender_mode = ?")
        args = append(args, strings.ToUpper(q.GenderMode))
    }
    if q.Category != "" {
        where = append(where, "(t.category_restriction = 'NONE' OR t.organizer_category = ?)")
        args = append(args, strings.ToLower(q.Category))
    }
    if q.Date != "" {
        where = append(where, "DATE(t.starts_at) = ?")
        args = append(args, q.Date)
    }

    cond := strings.Join(where, " AND ")

    var total int64
    countSQL := `SELECT COUNT(*)
        FROM turns t
        JOIN courts co ON co.id = t.court_id
        JOIN clubs cl  ON cl.id = co.club_id
        WHERE ` + cond
    if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    limit := q.PageSize
    offset := (q.Page - 1) * q.PageSize

    dataSQL := `SELECT
            t.id,
            t.court_id,
            co.name AS court_name,
            cl.id   AS club_id,
            cl.name AS club_name,
            DATE_FORMAT(t.starts_at, '%Y-%m-%d %T') AS starts_at,
            DATE_FORMAT(t.ends_at,   '%Y-%m-%d %T') AS ends_at,
            t.capacity,
            (SELECT COUNT(*) FROM turn_players tp WHERE tp.turn_id = t.id) AS players_joined,
            t.gender_mode,
            t.min_rating,
            t.max_rating,
            t.category_restriction,
            t.price_cents,
            t.status
        FROM turns t
        JOIN courts co ON co.id = t.court_id
        JOIN clubs cl  ON cl.id = co.club_id
        WHERE ` + cond + `
        ORDER BY t.starts_at ASC
        LIMIT ? OFFSET ?`

    argsData := append(append([]any{}, args...), limit, offset)

    rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    out := make([]PublicTurnRow, 0, limit)
    for rows.Next() {
        var d PublicTurnRow
        if err := rows.Scan(
            &d.ID,
            &d.CourtID,
            &d.CourtName,
            &d.ClubID,
            &d.Club,
            &d.StartsAt,
            &d.EndsAt,
            &d.Capacity,
            &d.PlayersJoined,
            &d.GenderMode,
            &d.MinRating,
            &d.MaxRating,
            &d.CategoryRestriction,
            &d.PriceCents,
            &d.Status,
        ); err != nil {
            return nil, 0, err
        }
        d.Price = float64(d.PriceCents) / 100.0
        out = append(out, d)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}
