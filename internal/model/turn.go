package model

import "time"

// Gender modes a turn may be configured with.  OPEN places no
// composition constraint; MIXED requires an even gender split at
// capacity; SAME_GENDER requires every player to match the first
// joined player's gender.
const (
    GenderModeOpen       = "OPEN"
    GenderModeMixed      = "MIXED"
    GenderModeSameGender = "SAME_GENDER"
)

// Category restriction types a turn may declare.  NONE accepts any
// category; SAME_CATEGORY requires the joining player's category to
// equal the organizer's; NEARBY_CATEGORIES accepts categories within
// two numeric steps of the organizer's.
const (
    CategoryRestrictionNone   = "NONE"
    CategoryRestrictionSame   = "SAME_CATEGORY"
    CategoryRestrictionNearby = "NEARBY_CATEGORIES"
)

// Turn represents a bookable time slot on one court.  Players join a
// turn until its capacity is reached, at which point the turn locks
// and a match is derived.  This struct corresponds to a row in the
// `turns` table.
//
// Fields:
//  ID                  – primary key identifier.
//  CourtID             – court the turn is scheduled on.
//  ClubID              – club owning the court (denormalized for listing).
//  CreatorID           – user who created the turn (club owner or organizer).
//  StartsAt            – scheduled start, UTC.
//  EndsAt              – scheduled end, UTC.
//  Capacity            – number of players required to lock (typically 4).
//  GenderMode          – OPEN, MIXED or SAME_GENDER.
//  MinRating           – optional lower rating bound for joiners.
//  MaxRating           – optional upper rating bound for joiners.
//  CategoryRestriction – NONE, SAME_CATEGORY or NEARBY_CATEGORIES.
//  OrganizerCategory   – category the restriction is evaluated against.
//  PriceCents          – price of the slot in cents.
//  Status              – lifecycle status (engine.Status string form).
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
//  CancelledAt         – when the turn was cancelled (null unless cancelled).
type Turn struct {
    ID                  uint64     // turns.id
    CourtID             uint64     // turns.court_id
    ClubID              uint64     // turns.club_id
    CreatorID           uint64     // turns.creator_id
    StartsAt            time.Time  // turns.starts_at
    EndsAt              time.Time  // turns.ends_at
    Capacity            int        // turns.capacity
    GenderMode          string     // turns.gender_mode
    MinRating           *float64   // turns.min_rating (nullable)
    MaxRating           *float64   // turns.max_rating (nullable)
    CategoryRestriction string     // turns.category_restriction
    OrganizerCategory   *string    // turns.organizer_category (nullable)
    PriceCents          uint32     // turns.price_cents
    Status              string     // turns.status
    CreatedAt           time.Time  // turns.created_at
    UpdatedAt           time.Time  // turns.updated_at
    CancelledAt         *time.Time // turns.cancelled_at (nullable)
}

// TurnPlayer associates a user with a turn they joined.  The gender
// is copied from the user profile at join time so later profile
// edits cannot retroactively change a locked composition.  Rows are
// removed only while the turn is still open and the player leaves;
// cancellation keeps them for audit.
//
// Fields:
//  TurnID   – turn being joined.
//  UserID   – joining user.
//  Gender   – gender snapshot taken when the join was accepted.
//  JoinedAt – when the join was accepted.
type TurnPlayer struct {
    TurnID   uint64    // turn_players.turn_id
    UserID   uint64    // turn_players.user_id
    Gender   string    // turn_players.gender
    JoinedAt time.Time // turn_players.joined_at
}
