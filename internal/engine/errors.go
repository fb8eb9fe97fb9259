package engine

import "errors"

// Kind groups engine errors into the categories callers act on.
// Handlers translate kinds into HTTP status codes; only Contention
// is safe to retry without refreshing state first.
type Kind int

const (
    KindUnknown       Kind = iota
    KindInvariant          // rule violated; rejected before any mutation
    KindStateConflict      // wrong status for the operation; refresh and retry
    KindNotFound           // unknown turn, user or court
    KindContention         // per-turn lock not acquired in time; retry with backoff
)

// Sentinel errors surfaced by engine operations.  Repositories
// implementing the engine interfaces return these (or wrap them) so
// callers can classify failures with KindOf.
var (
    // ErrTurnNotJoinable is returned when joining a turn that is not OPEN.
    ErrTurnNotJoinable = errors.New("turn is not accepting joins")
    // ErrTurnFull is returned when the turn already has capacity players.
    ErrTurnFull = errors.New("turn is full")
    // ErrAlreadyJoined is returned when the user already has a player slot.
    ErrAlreadyJoined = errors.New("user already joined this turn")
    // ErrNotJoined is returned when leaving a turn the user never joined.
    ErrNotJoined = errors.New("user has not joined this turn")
    // ErrGenderComposition is returned when a join would break the
    // mixed-mode feasibility rule or the same-gender rule.
    ErrGenderComposition = errors.New("join would violate the gender composition rule")
    // ErrParametersLocked is returned when updating turn parameters
    // after at least one player joined, regardless of status.
    ErrParametersLocked = errors.New("turn parameters are locked once a player has joined")
    // ErrTurnNotModifiable is returned when a membership or parameter
    // change targets a turn that is no longer OPEN.
    ErrTurnNotModifiable = errors.New("turn is not modifiable in its current status")
    // ErrAlreadyTerminal is returned when cancelling a turn that is
    // already CANCELLED or COMPLETED.
    ErrAlreadyTerminal = errors.New("turn is already in a terminal status")
    // ErrTurnNotCompletable is returned when completing a turn that is not LOCKED.
    ErrTurnNotCompletable = errors.New("only locked turns can be completed")
    // ErrTurnNotDue is returned when completing a locked turn before its end time.
    ErrTurnNotDue = errors.New("turn has not finished yet")
    // ErrInvalidCapacityForMixed is returned when a mixed turn is
    // created or patched with an odd capacity.
    ErrInvalidCapacityForMixed = errors.New("mixed mode requires an even capacity")
    // ErrInvalidCapacity is returned for capacities below two players.
    ErrInvalidCapacity = errors.New("capacity must be at least two players")
    // ErrInvalidTimeWindow is returned when a turn's end does not follow its start.
    ErrInvalidTimeWindow = errors.New("turn end time must be after its start time")
    // ErrInvalidGenderMode is returned for unknown gender modes.
    ErrInvalidGenderMode = errors.New("unknown gender mode")
    // ErrInvalidCategoryRestriction is returned for unknown restriction
    // types or a restriction declared without an organizer category.
    ErrInvalidCategoryRestriction = errors.New("invalid category restriction")
    // ErrRatingOutOfRange is returned when the joining user's rating
    // falls outside the turn's declared rating bounds.
    ErrRatingOutOfRange = errors.New("user rating is outside the turn's rating bounds")
    // ErrCategoryNotAllowed is returned when the joining user's
    // category fails the turn's category restriction.
    ErrCategoryNotAllowed = errors.New("user category is not allowed on this turn")
    // ErrUserInactive is returned when a deactivated account tries to join.
    ErrUserInactive = errors.New("user account is inactive")
    // ErrCourtUnavailable is returned when scheduling on a court that
    // is not accepting turns.
    ErrCourtUnavailable = errors.New("court is not available for scheduling")
    // ErrSlotOverlap is returned when the turn's window overlaps a
    // non-cancelled turn on the same court.
    ErrSlotOverlap = errors.New("time window overlaps an existing turn on this court")

    // ErrTurnNotFound, ErrUserNotFound and ErrCourtNotFound identify
    // missing aggregates referenced by an operation.
    ErrTurnNotFound  = errors.New("turn not found")
    ErrUserNotFound  = errors.New("user not found")
    ErrCourtNotFound = errors.New("court not found")

    // ErrContention is returned when the per-turn lock could not be
    // acquired within the repository's bounded wait.
    ErrContention = errors.New("turn is busy, retry")
)

// KindOf classifies err into a Kind.  Unknown errors (driver
// failures, context cancellation) map to KindUnknown and are treated
// as internal by callers.
func KindOf(err error) Kind {
    switch {
    case err == nil:
        return KindUnknown
    case errors.Is(err, ErrTurnFull),
        errors.Is(err, ErrAlreadyJoined),
        errors.Is(err, ErrGenderComposition),
        errors.Is(err, ErrParametersLocked),
        errors.Is(err, ErrInvalidCapacityForMixed),
        errors.Is(err, ErrInvalidCapacity),
        errors.Is(err, ErrInvalidTimeWindow),
        errors.Is(err, ErrInvalidGenderMode),
        errors.Is(err, ErrInvalidCategoryRestriction),
        errors.Is(err, ErrRatingOutOfRange),
        errors.Is(err, ErrCategoryNotAllowed),
        errors.Is(err, ErrUserInactive),
        errors.Is(err, ErrCourtUnavailable),
        errors.Is(err, ErrSlotOverlap):
        return KindInvariant
    case errors.Is(err, ErrTurnNotJoinable),
        errors.Is(err, ErrTurnNotModifiable),
        errors.Is(err, ErrAlreadyTerminal),
        errors.Is(err, ErrTurnNotCompletable),
        errors.Is(err, ErrTurnNotDue):
        return KindStateConflict
    case errors.Is(err, ErrTurnNotFound),
        errors.Is(err, ErrUserNotFound),
        errors.Is(err, ErrCourtNotFound),
        errors.Is(err, ErrNotJoined):
        return KindNotFound
    case errors.Is(err, ErrContention):
        return KindContention
    default:
        return KindUnknown
    }
}
