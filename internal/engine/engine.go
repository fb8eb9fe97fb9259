package engine

import (
    "context"
    "log"
    "time"

    "github.com/padelhub/turn-booking/internal/model"
)

// TurnStore is the engine's persistence boundary for turns.  Begin
// must acquire exclusive, per-turn ownership (a row lock or keyed
// mutex) with a bounded wait, returning ErrTurnNotFound or
// ErrContention as appropriate.  Operations on different turns must
// proceed independently.
type TurnStore interface {
    // CreateTurn persists a new turn.  It returns ErrSlotOverlap when
    // the window overlaps a non-cancelled turn on the same court.
    CreateTurn(ctx context.Context, t *model.Turn) error
    // Begin loads the turn and its player set under an exclusive
    // per-turn lock.  The caller must Commit or Rollback the returned Tx.
    Begin(ctx context.Context, turnID uint64) (TurnTx, error)
}

// TurnTx is a single read-modify-write scope over one turn.  All
// mutations become visible atomically on Commit; Rollback after
// Commit is a no-op.
type TurnTx interface {
    Turn() *model.Turn
    Players() []model.TurnPlayer
    AddPlayer(ctx context.Context, p model.TurnPlayer) error
    RemovePlayer(ctx context.Context, userID uint64) error
    UpdateTurn(ctx context.Context, t *model.Turn) error
    // CreateMatch derives the match row and its player list in the
    // same atomic scope as the lock transition.
    CreateMatch(ctx context.Context, m *model.Match, players []model.MatchPlayer) error
    // VoidMatch marks the turn's derived match VOID if one exists.
    VoidMatch(ctx context.Context) error
    Commit() error
    Rollback() error
}

// UserDirectory is the read-only identity and rating store.
// Implementations return ErrUserNotFound for unknown IDs.
type UserDirectory interface {
    GetUser(ctx context.Context, userID uint64) (*model.User, error)
}

// CourtCatalog supplies court records at creation time.
// Implementations return ErrCourtNotFound for unknown IDs.
type CourtCatalog interface {
    GetCourt(ctx context.Context, courtID uint64) (*model.Court, error)
}

// MatchSink receives the committed composition once a turn locks.
// The handoff is fire-and-forget: a sink failure is logged and never
// rolls back the lock transition.
type MatchSink interface {
    RecordMatch(ctx context.Context, m model.Match, players []model.MatchPlayer) error
}

// Engine coordinates the turn lifecycle.  It owns no state of its
// own; every operation is a locked read-modify-write through the
// TurnStore validated against the transition table and rule set.
type Engine struct {
    turns  TurnStore
    users  UserDirectory
    courts CourtCatalog
    sink   MatchSink
    now    func() time.Time
}

// New constructs an Engine.  sink may be nil when no projection is
// wired (tests, offline tooling).
func New(turns TurnStore, users UserDirectory, courts CourtCatalog, sink MatchSink) *Engine {
    return &Engine{
        turns:  turns,
        users:  users,
        courts: courts,
        sink:   sink,
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// WithClock overrides the engine's time source.  Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
    e.now = now
    return e
}

// CreateTurnParams carries the inputs of CreateTurn.
type CreateTurnParams struct {
    CourtID             uint64
    CreatorID           uint64
    StartsAt            time.Time
    EndsAt              time.Time
    Capacity            int
    GenderMode          string
    MinRating           *float64
    MaxRating           *float64
    CategoryRestriction string
    OrganizerCategory   *string
    PriceCents          uint32
}

// CreateTurn validates the parameters, resolves the court and
// persists a new OPEN turn.  Mixed mode rejects odd capacities at
// creation so the half-and-half composition is reachable.
func (e *Engine) CreateTurn(ctx context.Context, p CreateTurnParams) (*model.Turn, error) {
    if p.Capacity < 2 {
        return nil, ErrInvalidCapacity
    }
    if !ValidGenderMode(p.GenderMode) {
        return nil, ErrInvalidGenderMode
    }
    if p.GenderMode == model.GenderModeMixed && p.Capacity%2 != 0 {
        return nil, ErrInvalidCapacityForMixed
    }
    if !p.EndsAt.After(p.StartsAt) {
        return nil, ErrInvalidTimeWindow
    }
    if p.CategoryRestriction == "" {
        p.CategoryRestriction = model.CategoryRestrictionNone
    }
    if !ValidCategoryRestriction(p.CategoryRestriction) {
        return nil, ErrInvalidCategoryRestriction
    }
    if p.CategoryRestriction != model.CategoryRestrictionNone {
        if p.OrganizerCategory == nil || !ValidCategory(*p.OrganizerCategory) {
            return nil, ErrInvalidCategoryRestriction
        }
    }
    court, err := e.courts.GetCourt(ctx, p.CourtID)
    if err != nil {
        return nil, err
    }
    if !court.IsAvailable {
        return nil, ErrCourtUnavailable
    }
    now := e.now()
    t := &model.Turn{
        CourtID:             court.ID,
        ClubID:              court.ClubID,
        CreatorID:           p.CreatorID,
        StartsAt:            p.StartsAt.UTC(),
        EndsAt:              p.EndsAt.UTC(),
        Capacity:            p.Capacity,
        GenderMode:          p.GenderMode,
        MinRating:           p.MinRating,
        MaxRating:           p.MaxRating,
        CategoryRestriction: p.CategoryRestriction,
        OrganizerCategory:   p.OrganizerCategory,
        PriceCents:          p.PriceCents,
        Status:              string(StatusOpen),
        CreatedAt:           now,
        UpdatedAt:           now,
    }
    if err := e.turns.CreateTurn(ctx, t); err != nil {
        return nil, err
    }
    return t, nil
}

// JoinTurn adds a user to an open turn after checking every
// eligibility rule.  When the join brings the player count to
// capacity, the turn transitions to LOCKED and its match is derived
// in the same transaction; the composition is then handed to the
// match sink outside the transaction.
func (e *Engine) JoinTurn(ctx context.Context, turnID, userID uint64) (*model.Turn, *model.Match, error) {
    user, err := e.users.GetUser(ctx, userID)
    if err != nil {
        return nil, nil, err
    }
    if !user.IsActive {
        return nil, nil, ErrUserInactive
    }

    tx, err := e.turns.Begin(ctx, turnID)
    if err != nil {
        return nil, nil, err
    }
    defer func() { _ = tx.Rollback() }()

    t := tx.Turn()
    if Status(t.Status) != StatusOpen {
        return nil, nil, ErrTurnNotJoinable
    }
    players := tx.Players()
    for _, p := range players {
        if p.UserID == userID {
            return nil, nil, ErrAlreadyJoined
        }
    }
    if len(players) >= t.Capacity {
        return nil, nil, ErrTurnFull
    }
    // Rating bounds are enforced at join time (fail-fast).  The source
    // system never settled whether this belongs at creation or join;
    // join-time is assumed here pending clarification.
    if !RatingWithinBounds(t, user.OverallRating) {
        return nil, nil, ErrRatingOutOfRange
    }
    if t.CategoryRestriction != model.CategoryRestrictionNone {
        organizer := ""
        if t.OrganizerCategory != nil {
            organizer = *t.OrganizerCategory
        }
        if !CategoryAllowed(user.Category, organizer, t.CategoryRestriction) {
            return nil, nil, ErrCategoryNotAllowed
        }
    }
    switch t.GenderMode {
    case model.GenderModeMixed:
        if !MixedJoinFeasible(t.Capacity, CountGenders(players), user.Gender) {
            return nil, nil, ErrGenderComposition
        }
    case model.GenderModeSameGender:
        if !SameGenderJoinAllowed(players, user.Gender) {
            return nil, nil, ErrGenderComposition
        }
    }

    now := e.now()
    joined := model.TurnPlayer{
        TurnID:   t.ID,
        UserID:   userID,
        Gender:   user.Gender, // snapshot; later profile edits must not corrupt a locked composition
        JoinedAt: now,
    }
    if err := tx.AddPlayer(ctx, joined); err != nil {
        return nil, nil, err
    }

    var match *model.Match
    if len(players)+1 == t.Capacity {
        if !Status(t.Status).CanTransitionTo(StatusLocked) {
            return nil, nil, ErrTurnNotJoinable
        }
        t.Status = string(StatusLocked)
        t.UpdatedAt = now
        if err := tx.UpdateTurn(ctx, t); err != nil {
            return nil, nil, err
        }
        match = &model.Match{
            TurnID:     t.ID,
            CourtID:    t.CourtID,
            StartsAt:   t.StartsAt,
            EndsAt:     t.EndsAt,
            GenderMode: t.GenderMode,
            Status:     model.MatchPending,
            CreatedAt:  now,
        }
        matchPlayers := make([]model.MatchPlayer, 0, t.Capacity)
        for _, p := range append(players, joined) {
            matchPlayers = append(matchPlayers, model.MatchPlayer{UserID: p.UserID, Gender: p.Gender})
        }
        if err := tx.CreateMatch(ctx, match, matchPlayers); err != nil {
            return nil, nil, err
        }
        if err := tx.Commit(); err != nil {
            return nil, nil, err
        }
        if e.sink != nil {
            // Sink failures must not undo the lock; log for replay.
            if err := e.sink.RecordMatch(ctx, *match, matchPlayers); err != nil {
                log.Printf("engine: match sink failed for turn %d: %v", t.ID, err)
            }
        }
        return t, match, nil
    }

    if err := tx.Commit(); err != nil {
        return nil, nil, err
    }
    return t, nil, nil
}

// LeaveTurn removes a user from a turn.  A player may only leave
// while the turn is still OPEN; once locked, cancelled or completed
// the membership is frozen.
func (e *Engine) LeaveTurn(ctx context.Context, turnID, userID uint64) error {
    tx, err := e.turns.Begin(ctx, turnID)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    t := tx.Turn()
    if Status(t.Status) != StatusOpen {
        return ErrTurnNotModifiable
    }
    found := false
    for _, p := range tx.Players() {
        if p.UserID == userID {
            found = true
            break
        }
    }
    if !found {
        return ErrNotJoined
    }
    if err := tx.RemovePlayer(ctx, userID); err != nil {
        return err
    }
    t.UpdatedAt = e.now()
    if err := tx.UpdateTurn(ctx, t); err != nil {
        return err
    }
    return tx.Commit()
}

// TurnPatch carries the optional parameter updates of
// UpdateTurnParameters.  Nil fields are left unchanged.
type TurnPatch struct {
    CourtID             *uint64
    StartsAt            *time.Time
    EndsAt              *time.Time
    Capacity            *int
    GenderMode          *string
    MinRating           *float64
    MaxRating           *float64
    CategoryRestriction *string
    OrganizerCategory   *string
    PriceCents          *uint32
}

// UpdateTurnParameters patches a turn's parameters in place.  The
// central rule: the instant a turn has any participant, its
// parameters are immutable — independent of status and of whatever
// happens to the turn later.  Empty turns can only be patched while
// still OPEN.
func (e *Engine) UpdateTurnParameters(ctx context.Context, turnID uint64, patch TurnPatch) (*model.Turn, error) {
    tx, err := e.turns.Begin(ctx, turnID)
    if err != nil {
        return nil, err
    }
    defer func() { _ = tx.Rollback() }()

    // Participant check comes first: ParametersLocked wins over any
    // status-based conflict.
    if len(tx.Players()) > 0 {
        return nil, ErrParametersLocked
    }
    t := tx.Turn()
    if Status(t.Status) != StatusOpen {
        return nil, ErrTurnNotModifiable
    }

    if patch.CourtID != nil && *patch.CourtID != t.CourtID {
        court, err := e.courts.GetCourt(ctx, *patch.CourtID)
        if err != nil {
            return nil, err
        }
        if !court.IsAvailable {
            return nil, ErrCourtUnavailable
        }
        t.CourtID = court.ID
        t.ClubID = court.ClubID
    }
    if patch.StartsAt != nil {
        t.StartsAt = patch.StartsAt.UTC()
    }
    if patch.EndsAt != nil {
        t.EndsAt = patch.EndsAt.UTC()
    }
    if patch.Capacity != nil {
        t.Capacity = *patch.Capacity
    }
    if patch.GenderMode != nil {
        t.GenderMode = *patch.GenderMode
    }
    if patch.MinRating != nil {
        t.MinRating = patch.MinRating
    }
    if patch.MaxRating != nil {
        t.MaxRating = patch.MaxRating
    }
    if patch.CategoryRestriction != nil {
        t.CategoryRestriction = *patch.CategoryRestriction
    }
    if patch.OrganizerCategory != nil {
        t.OrganizerCategory = patch.OrganizerCategory
    }
    if patch.PriceCents != nil {
        t.PriceCents = *patch.PriceCents
    }

    if t.Capacity < 2 {
        return nil, ErrInvalidCapacity
    }
    if !ValidGenderMode(t.GenderMode) {
        return nil, ErrInvalidGenderMode
    }
    if t.GenderMode == model.GenderModeMixed && t.Capacity%2 != 0 {
        return nil, ErrInvalidCapacityForMixed
    }
    if !t.EndsAt.After(t.StartsAt) {
        return nil, ErrInvalidTimeWindow
    }
    if !ValidCategoryRestriction(t.CategoryRestriction) {
        return nil, ErrInvalidCategoryRestriction
    }
    if t.CategoryRestriction != model.CategoryRestrictionNone {
        if t.OrganizerCategory == nil || !ValidCategory(*t.OrganizerCategory) {
            return nil, ErrInvalidCategoryRestriction
        }
    }

    t.UpdatedAt = e.now()
    if err := tx.UpdateTurn(ctx, t); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    return t, nil
}

// CancelTurn moves an OPEN or LOCKED turn to CANCELLED.  Player rows
// are kept for audit and a derived match, if any, is voided — never
// deleted.  Who may cancel is the caller's concern; the engine only
// guards the state machine.
func (e *Engine) CancelTurn(ctx context.Context, turnID, actorID uint64) (*model.Turn, error) {
    tx, err := e.turns.Begin(ctx, turnID)
    if err != nil {
        return nil, err
    }
    defer func() { _ = tx.Rollback() }()

    t := tx.Turn()
    st := Status(t.Status)
    if st.Terminal() {
        return nil, ErrAlreadyTerminal
    }
    if !st.CanTransitionTo(StatusCancelled) {
        return nil, ErrAlreadyTerminal
    }
    wasLocked := st == StatusLocked

    now := e.now()
    t.Status = string(StatusCancelled)
    t.CancelledAt = &now
    t.UpdatedAt = now
    if err := tx.UpdateTurn(ctx, t); err != nil {
        return nil, err
    }
    if wasLocked {
        if err := tx.VoidMatch(ctx); err != nil {
            return nil, err
        }
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    return t, nil
}

// CompleteTurn moves a LOCKED turn whose scheduled end has passed to
// COMPLETED.  Invoked by the completion sweep, not by user action.
func (e *Engine) CompleteTurn(ctx context.Context, turnID uint64) (*model.Turn, error) {
    tx, err := e.turns.Begin(ctx, turnID)
    if err != nil {
        return nil, err
    }
    defer func() { _ = tx.Rollback() }()

    t := tx.Turn()
    st := Status(t.Status)
    if st != StatusLocked {
        return nil, ErrTurnNotCompletable
    }
    now := e.now()
    if now.Before(t.EndsAt) {
        return nil, ErrTurnNotDue
    }
    if !st.CanTransitionTo(StatusCompleted) {
        return nil, ErrTurnNotCompletable
    }
    t.Status = string(StatusCompleted)
    t.UpdatedAt = now
    if err := tx.UpdateTurn(ctx, t); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    return t, nil
}
