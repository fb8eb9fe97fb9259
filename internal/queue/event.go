// Package queue defines message payloads exchanged over the message broker.
package queue

// EventPlayer is one member of a locked composition as carried on the
// wire.
type EventPlayer struct {
    UserID uint64 `json:"user_id"`
    Gender string `json:"gender"`
}

// TurnLockedEvent is published when a turn reaches capacity and locks.
// It carries the full frozen composition so downstream consumers can
// log, notify, or feed analytics without querying the primary
// database.
type TurnLockedEvent struct {
    EventID    string        `json:"event_id"`
    MatchID    uint64        `json:"match_id"`
    TurnID     uint64        `json:"turn_id"`
    CourtID    uint64        `json:"court_id"`
    StartsAt   string        `json:"starts_at"`
    EndsAt     string        `json:"ends_at"`
    GenderMode string        `json:"gender_mode"`
    Players    []EventPlayer `json:"players"`
    LockedAt   string        `json:"locked_at"`
}

// TurnCancelledEvent is published when a turn is cancelled, whether it
// was still filling or already locked.
type TurnCancelledEvent struct {
    EventID     string `json:"event_id"`
    TurnID      uint64 `json:"turn_id"`
    CourtID     uint64 `json:"court_id"`
    CancelledBy uint64 `json:"cancelled_by"`
    WasLocked   bool   `json:"was_locked"`
    CancelledAt string `json:"cancelled_at"`
}
