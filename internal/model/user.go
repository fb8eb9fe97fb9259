package model

import "time"

// Gender values stored on users and snapshotted onto turn players.
const (
    GenderMale   = "MALE"   // users.gender value for male players
    GenderFemale = "FEMALE" // users.gender value for female players
)

// Role names accepted by the API.  Owners manage clubs, courts and
// turn schedules; players join turns and respond to invitations.
const (
    RolePlayer = "PLAYER"
    RoleOwner  = "OWNER"
)

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Name          – display name of the player.
//  Email         – unique email address.
//  Phone         – contact phone number (optional).
//  PasswordHash  – bcrypt hashed password.
//  Role          – role name (PLAYER or OWNER).
//  Gender        – MALE or FEMALE; drives mixed-mode composition checks.
//  Category      – padel playing category ("9na" .. "1ra").
//  OverallRating – aggregate rating received from other players.
//  IsActive      – whether the account is active.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
    ID            uint64    // users.id
    Name          string    // users.name
    Email         string    // users.email
    Phone         *string   // users.phone (nullable)
    PasswordHash  string    // users.password_hash
    Role          string    // users.role
    Gender        string    // users.gender
    Category      string    // users.category
    OverallRating float64   // users.overall_rating
    IsActive      bool      // users.is_active
    CreatedAt     time.Time // users.created_at
    UpdatedAt     time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
