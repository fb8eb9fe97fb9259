package model

import "time"

// Match statuses.  A match is created PENDING when its turn locks; it
// becomes VOID if the turn is cancelled afterwards.  Matches are
// never deleted.
const (
    MatchPending = "PENDING"
    MatchVoid    = "VOID"
)

// Match is the committed outcome of a turn reaching capacity.  It
// snapshots the composition (court, window, gender mode) at the
// moment the turn locked so downstream consumers do not depend on
// the turn row staying unchanged.  This struct corresponds to a row
// in the `matches` table; the player list lives in `match_players`.
//
// Fields:
//  ID         – primary key identifier.
//  TurnID     – turn the match was derived from (unique).
//  CourtID    – court snapshot.
//  StartsAt   – start snapshot, UTC.
//  EndsAt     – end snapshot, UTC.
//  GenderMode – gender mode snapshot.
//  Status     – PENDING or VOID.
//  CreatedAt  – when the turn locked and the match was derived.
type Match struct {
    ID         uint64    // matches.id
    TurnID     uint64    // matches.turn_id
    CourtID    uint64    // matches.court_id
    StartsAt   time.Time // matches.starts_at
    EndsAt     time.Time // matches.ends_at
    GenderMode string    // matches.gender_mode
    Status     string    // matches.status
    CreatedAt  time.Time // matches.created_at
}

// MatchPlayer is one finalized participant of a match.  The gender
// snapshot is carried over from the turn player record.
//
// Fields:
//  MatchID – match the player belongs to.
//  UserID  – participating user.
//  Gender  – gender snapshot at lock time.
type MatchPlayer struct {
    MatchID uint64 // match_players.match_id
    UserID  uint64 // match_players.user_id
    Gender  string // match_players.gender
}
