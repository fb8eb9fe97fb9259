// Package engine implements the turn lifecycle core: the status
// machine, the composition rules and the operations that mutate a
// turn.  Persistence, identity and the court catalog are consumed
// through small interfaces so the rule set can be exercised without
// a database.
package engine

// Status enumerates the lifecycle states of a turn.  The string
// values are what the repository stores in turns.status.
type Status string

const (
    StatusOpen      Status = "OPEN"      // accepting joins
    StatusLocked    Status = "LOCKED"    // capacity reached; parameters frozen
    StatusCancelled Status = "CANCELLED" // terminal; players kept for audit
    StatusCompleted Status = "COMPLETED" // terminal; play occurred
)

// transitions is the single source of truth for which status changes
// are legal.  Every mutating operation validates against this table
// instead of checking ad hoc flags, so the parameter-lock and
// cancellation-blocking invariants stay enforceable in one place.
var transitions = map[Status][]Status{
    StatusOpen:      {StatusLocked, StatusCancelled},
    StatusLocked:    {StatusCompleted, StatusCancelled},
    StatusCancelled: {},
    StatusCompleted: {},
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.  No state re-enters OPEN.
func (s Status) CanTransitionTo(next Status) bool {
    for _, allowed := range transitions[s] {
        if allowed == next {
            return true
        }
    }
    return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
    return len(transitions[s]) == 0
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
    _, ok := transitions[s]
    return ok
}
