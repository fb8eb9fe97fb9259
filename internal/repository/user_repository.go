package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
    "github.com/padelhub/turn-booking/internal/utils"
)

// UserRepo persists users.  It doubles as the engine's read-only
// UserDirectory: GetUser returns engine.ErrUserNotFound for unknown
// IDs so the engine can classify the failure without knowing about
// database/sql.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id, name, email, phone, password_hash, role, gender, category, overall_rating, is_active, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
    var u model.User
    var phone sql.NullString
    err := row.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.PasswordHash, &u.Role,
        &u.Gender, &u.Category, &u.OverallRating, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return model.User{}, err
    }
    if phone.Valid {
        p := phone.String
        u.Phone = &p
    }
    return u, nil
}

// Create inserts a user and returns its ID.  The password is hashed
// with bcrypt at the given cost before it touches the database.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
    u.Email = strings.ToLower(strings.TrimSpace(u.Email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (name, email, phone, password_hash, role, gender, category) VALUES (?,?,?,?,?,?,?)",
        u.Name, u.Email, u.Phone, hash, u.Role, u.Gender, u.Category)
    if err != nil {
        if isDuplicateEntry(err) {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    u.ID = uint64(id)
    return u.ID, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return scanUser(r.DB.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return scanUser(r.DB.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetUser implements engine.UserDirectory.
func (r *UserRepo) GetUser(ctx context.Context, id uint64) (*model.User, error) {
    u, err := r.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, engine.ErrUserNotFound
        }
        return nil, err
    }
    return &u, nil
}

// SearchPlayers returns active players whose name or email matches
// the query, excluding the requesting user.  Used by the invitation
// flow to find people to invite.
func (r *UserRepo) SearchPlayers(ctx context.Context, query string, excludeID uint64, limit int) ([]model.User, error) {
    if limit <= 0 || limit > 50 {
        limit = 20
    }
    like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
    rows, err := r.DB.QueryContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE is_active = 1 AND id <> ? AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?) ORDER BY name LIMIT ?",
        excludeID, like, like, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var users []model.User
    for rows.Next() {
        var u model.User
        var phone sql.NullString
        if err := rows.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.PasswordHash, &u.Role,
            &u.Gender, &u.Category, &u.OverallRating, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
            return nil, err
        }
        if phone.Valid {
            p := phone.String
            u.Phone = &p
        }
        users = append(users, u)
    }
    return users, rows.Err()
}
