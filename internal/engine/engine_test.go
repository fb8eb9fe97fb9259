package engine_test

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
)

// memStore is an in-memory TurnStore with a keyed mutex per turn,
// the in-process variant of the single-writer-per-turn contract.
type memStore struct {
    mu           sync.Mutex
    locks        map[uint64]*sync.Mutex
    turns        map[uint64]*model.Turn
    players      map[uint64][]model.TurnPlayer
    matches      map[uint64]*model.Match
    matchPlayers map[uint64][]model.MatchPlayer
    nextTurnID   uint64
    nextMatchID  uint64
}

func newMemStore() *memStore {
    return &memStore{
        locks:        map[uint64]*sync.Mutex{},
        turns:        map[uint64]*model.Turn{},
        players:      map[uint64][]model.TurnPlayer{},
        matches:      map[uint64]*model.Match{},
        matchPlayers: map[uint64][]model.MatchPlayer{},
    }
}

func (s *memStore) CreateTurn(_ context.Context, t *model.Turn) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, other := range s.turns {
        if other.CourtID != t.CourtID || other.Status == string(engine.StatusCancelled) {
            continue
        }
        if t.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(t.EndsAt) {
            return engine.ErrSlotOverlap
        }
    }
    s.nextTurnID++
    t.ID = s.nextTurnID
    cp := *t
    s.turns[t.ID] = &cp
    s.locks[t.ID] = &sync.Mutex{}
    return nil
}

func (s *memStore) Begin(_ context.Context, turnID uint64) (engine.TurnTx, error) {
    s.mu.Lock()
    t, ok := s.turns[turnID]
    if !ok {
        s.mu.Unlock()
        return nil, engine.ErrTurnNotFound
    }
    lock := s.locks[turnID]
    s.mu.Unlock()
    if !lock.TryLock() {
        return nil, engine.ErrContention
    }
    cp := *t
    players := make([]model.TurnPlayer, len(s.players[turnID]))
    copy(players, s.players[turnID])
    return &memTx{store: s, lock: lock, turn: &cp, players: players}, nil
}

type memTx struct {
    store     *memStore
    lock      *sync.Mutex
    turn      *model.Turn
    players   []model.TurnPlayer
    match     *model.Match
    matchPl   []model.MatchPlayer
    voidMatch bool
    done      bool
}

func (tx *memTx) Turn() *model.Turn            { return tx.turn }
func (tx *memTx) Players() []model.TurnPlayer { return tx.players }

func (tx *memTx) AddPlayer(_ context.Context, p model.TurnPlayer) error {
    tx.players = append(tx.players, p)
    return nil
}

func (tx *memTx) RemovePlayer(_ context.Context, userID uint64) error {
    kept := tx.players[:0]
    for _, p := range tx.players {
        if p.UserID != userID {
            kept = append(kept, p)
        }
    }
    tx.players = kept
    return nil
}

func (tx *memTx) UpdateTurn(_ context.Context, t *model.Turn) error {
    tx.turn = t
    return nil
}

func (tx *memTx) CreateMatch(_ context.Context, m *model.Match, players []model.MatchPlayer) error {
    tx.match = m
    tx.matchPl = players
    return nil
}

func (tx *memTx) VoidMatch(_ context.Context) error {
    tx.voidMatch = true
    return nil
}

func (tx *memTx) Commit() error {
    if tx.done {
        return nil
    }
    tx.done = true
    s := tx.store
    s.mu.Lock()
    cp := *tx.turn
    s.turns[tx.turn.ID] = &cp
    s.players[tx.turn.ID] = tx.players
    if tx.match != nil {
        s.nextMatchID++
        tx.match.ID = s.nextMatchID
        mcp := *tx.match
        s.matches[tx.turn.ID] = &mcp
        s.matchPlayers[tx.turn.ID] = tx.matchPl
    }
    if tx.voidMatch {
        if m, ok := s.matches[tx.turn.ID]; ok {
            m.Status = model.MatchVoid
        }
    }
    s.mu.Unlock()
    tx.lock.Unlock()
    return nil
}

func (tx *memTx) Rollback() error {
    if tx.done {
        return nil
    }
    tx.done = true
    tx.lock.Unlock()
    return nil
}

type memDirectory struct{ users map[uint64]*model.User }

func (d *memDirectory) GetUser(_ context.Context, id uint64) (*model.User, error) {
    u, ok := d.users[id]
    if !ok {
        return nil, engine.ErrUserNotFound
    }
    cp := *u
    return &cp, nil
}

type memCatalog struct{ courts map[uint64]*model.Court }

func (c *memCatalog) GetCourt(_ context.Context, id uint64) (*model.Court, error) {
    ct, ok := c.courts[id]
    if !ok {
        return nil, engine.ErrCourtNotFound
    }
    cp := *ct
    return &cp, nil
}

type recordingSink struct {
    mu      sync.Mutex
    records []model.Match
    fail    bool
}

func (s *recordingSink) RecordMatch(_ context.Context, m model.Match, _ []model.MatchPlayer) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail {
        return errors.New("sink down")
    }
    s.records = append(s.records, m)
    return nil
}

// fixture wires an engine over in-memory collaborators with four
// players (two per gender) and one available court.
type fixture struct {
    store *memStore
    sink  *recordingSink
    eng   *engine.Engine
}

const (
    userF1 = uint64(1)
    userF2 = uint64(2)
    userM1 = uint64(3)
    userM2 = uint64(4)
    userF3 = uint64(5)
)

func newFixture(t *testing.T) *fixture {
    t.Helper()
    cat := "5ta"
    dir := &memDirectory{users: map[uint64]*model.User{
        userF1: {ID: userF1, Gender: model.GenderFemale, Category: cat, OverallRating: 4.0, IsActive: true},
        userF2: {ID: userF2, Gender: model.GenderFemale, Category: cat, OverallRating: 5.0, IsActive: true},
        userM1: {ID: userM1, Gender: model.GenderMale, Category: cat, OverallRating: 6.0, IsActive: true},
        userM2: {ID: userM2, Gender: model.GenderMale, Category: cat, OverallRating: 7.0, IsActive: true},
        userF3: {ID: userF3, Gender: model.GenderFemale, Category: cat, OverallRating: 5.5, IsActive: true},
    }}
    catalog := &memCatalog{courts: map[uint64]*model.Court{
        10: {ID: 10, ClubID: 100, Name: "Court 1", IsAvailable: true},
        11: {ID: 11, ClubID: 100, Name: "Court 2", IsAvailable: true},
        12: {ID: 12, ClubID: 100, Name: "Closed court", IsAvailable: false},
    }}
    store := newMemStore()
    sink := &recordingSink{}
    return &fixture{store: store, sink: sink, eng: engine.New(store, dir, catalog, sink)}
}

func (f *fixture) createTurn(t *testing.T, mode string, capacity int) *model.Turn {
    t.Helper()
    start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
    turn, err := f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:    10,
        CreatorID:  userF1,
        StartsAt:   start,
        EndsAt:     start.Add(90 * time.Minute),
        Capacity:   capacity,
        GenderMode: mode,
        PriceCents: 120000,
    })
    require.NoError(t, err)
    return turn
}

func TestCreateTurnMixedOddCapacityRejected(t *testing.T) {
    f := newFixture(t)
    start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
    _, err := f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:    10,
        CreatorID:  userF1,
        StartsAt:   start,
        EndsAt:     start.Add(90 * time.Minute),
        Capacity:   3,
        GenderMode: model.GenderModeMixed,
    })
    require.ErrorIs(t, err, engine.ErrInvalidCapacityForMixed)
    assert.Equal(t, engine.KindInvariant, engine.KindOf(err))
}

func TestCreateTurnOverlappingWindowRejected(t *testing.T) {
    f := newFixture(t)
    f.createTurn(t, model.GenderModeOpen, 4)
    start := time.Date(2026, 9, 12, 18, 30, 0, 0, time.UTC)
    _, err := f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:    10,
        CreatorID:  userF1,
        StartsAt:   start,
        EndsAt:     start.Add(90 * time.Minute),
        Capacity:   4,
        GenderMode: model.GenderModeOpen,
    })
    require.ErrorIs(t, err, engine.ErrSlotOverlap)

    // Same window on another court is fine.
    _, err = f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:    11,
        CreatorID:  userF1,
        StartsAt:   start,
        EndsAt:     start.Add(90 * time.Minute),
        Capacity:   4,
        GenderMode: model.GenderModeOpen,
    })
    assert.NoError(t, err)
}

func TestCreateTurnOnUnavailableCourt(t *testing.T) {
    f := newFixture(t)
    start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
    _, err := f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:    12,
        CreatorID:  userF1,
        StartsAt:   start,
        EndsAt:     start.Add(90 * time.Minute),
        Capacity:   4,
        GenderMode: model.GenderModeOpen,
    })
    require.ErrorIs(t, err, engine.ErrCourtUnavailable)
}

func TestMixedTurnFillsToLockedWithEvenSplit(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeMixed, 4)
    ctx := context.Background()

    for _, uid := range []uint64{userF1, userM1, userF2} {
        got, match, err := f.eng.JoinTurn(ctx, turn.ID, uid)
        require.NoError(t, err)
        assert.Nil(t, match)
        assert.Equal(t, string(engine.StatusOpen), got.Status)
    }

    got, match, err := f.eng.JoinTurn(ctx, turn.ID, userM2)
    require.NoError(t, err)
    require.NotNil(t, match)
    assert.Equal(t, string(engine.StatusLocked), got.Status)
    assert.Equal(t, model.MatchPending, match.Status)

    players := f.store.matchPlayers[turn.ID]
    require.Len(t, players, 4)
    counts := map[string]int{}
    for _, p := range players {
        counts[p.Gender]++
    }
    assert.Equal(t, 2, counts[model.GenderFemale])
    assert.Equal(t, 2, counts[model.GenderMale])

    f.sink.mu.Lock()
    defer f.sink.mu.Unlock()
    require.Len(t, f.sink.records, 1)
    assert.Equal(t, turn.ID, f.sink.records[0].TurnID)
}

func TestMixedTurnThirdSameGenderRejected(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeMixed, 4)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF2)
    require.NoError(t, err)

    // A third female would make a 2-2 split unreachable.
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF3)
    require.ErrorIs(t, err, engine.ErrGenderComposition)
    assert.Len(t, f.store.players[turn.ID], 2)
}

func TestSameGenderModeFollowsFirstPlayer(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeSameGender, 4)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.NoError(t, err)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrGenderComposition)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM2)
    assert.NoError(t, err)
}

func TestJoinTwiceRejected(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrAlreadyJoined)
}

func TestPlayerCountNeverExceedsCapacity(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 2)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, match, err := f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.NoError(t, err)
    require.NotNil(t, match)

    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM2)
    require.ErrorIs(t, err, engine.ErrTurnNotJoinable)
    assert.Len(t, f.store.players[turn.ID], 2)
}

func TestRatingBoundsEnforcedAtJoin(t *testing.T) {
    f := newFixture(t)
    min, max := 5.0, 6.5
    start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
    turn, err := f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:    10,
        CreatorID:  userM1,
        StartsAt:   start,
        EndsAt:     start.Add(90 * time.Minute),
        Capacity:   4,
        GenderMode: model.GenderModeOpen,
        MinRating:  &min,
        MaxRating:  &max,
    })
    require.NoError(t, err)
    ctx := context.Background()

    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF1) // rating 4.0
    require.ErrorIs(t, err, engine.ErrRatingOutOfRange)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM2) // rating 7.0
    require.ErrorIs(t, err, engine.ErrRatingOutOfRange)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM1) // rating 6.0
    assert.NoError(t, err)
}

func TestCategoryRestrictionEnforcedAtJoin(t *testing.T) {
    f := newFixture(t)
    organizer := "2da"
    start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
    turn, err := f.eng.CreateTurn(context.Background(), engine.CreateTurnParams{
        CourtID:             10,
        CreatorID:           userM1,
        StartsAt:            start,
        EndsAt:              start.Add(90 * time.Minute),
        Capacity:            4,
        GenderMode:          model.GenderModeOpen,
        CategoryRestriction: model.CategoryRestrictionNearby,
        OrganizerCategory:   &organizer,
    })
    require.NoError(t, err)

    // Fixture users are "5ta": three steps from "2da".
    _, _, err = f.eng.JoinTurn(context.Background(), turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrCategoryNotAllowed)
}

func TestParametersLockedOnceJoined(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)

    bigger := 6
    _, err = f.eng.UpdateTurnParameters(ctx, turn.ID, engine.TurnPatch{Capacity: &bigger})
    require.ErrorIs(t, err, engine.ErrParametersLocked)
    assert.Equal(t, engine.KindInvariant, engine.KindOf(err))

    // Read back: original capacity untouched.
    assert.Equal(t, 4, f.store.turns[turn.ID].Capacity)

    // The lock outlives later status changes: cancel, then retry.
    _, err = f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, err = f.eng.UpdateTurnParameters(ctx, turn.ID, engine.TurnPatch{Capacity: &bigger})
    require.ErrorIs(t, err, engine.ErrParametersLocked)
}

func TestUpdateParametersOnEmptyOpenTurn(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    mixed := model.GenderModeMixed
    capacity := 6
    updated, err := f.eng.UpdateTurnParameters(ctx, turn.ID, engine.TurnPatch{
        GenderMode: &mixed,
        Capacity:   &capacity,
    })
    require.NoError(t, err)
    assert.Equal(t, model.GenderModeMixed, updated.GenderMode)
    assert.Equal(t, 6, updated.Capacity)

    // Patching into a mixed/odd combination is rejected.
    odd := 5
    _, err = f.eng.UpdateTurnParameters(ctx, turn.ID, engine.TurnPatch{Capacity: &odd})
    require.ErrorIs(t, err, engine.ErrInvalidCapacityForMixed)
}

func TestUpdateParametersOnCancelledEmptyTurn(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    _, err := f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)

    capacity := 6
    _, err = f.eng.UpdateTurnParameters(ctx, turn.ID, engine.TurnPatch{Capacity: &capacity})
    require.ErrorIs(t, err, engine.ErrTurnNotModifiable)
    assert.Equal(t, engine.KindStateConflict, engine.KindOf(err))
}

func TestCancelledTurnIsInert(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, err = f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)

    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.ErrorIs(t, err, engine.ErrTurnNotJoinable)

    err = f.eng.LeaveTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrTurnNotModifiable)

    // The join record survives cancellation for audit.
    require.Len(t, f.store.players[turn.ID], 1)
    assert.Equal(t, userF1, f.store.players[turn.ID][0].UserID)

    // No match was ever derived for a turn cancelled while open.
    _, hasMatch := f.store.matches[turn.ID]
    assert.False(t, hasMatch)
}

func TestCancelLockedTurnVoidsMatch(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 2)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, match, err := f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.NoError(t, err)
    require.NotNil(t, match)

    _, err = f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)

    stored := f.store.matches[turn.ID]
    require.NotNil(t, stored)
    assert.Equal(t, model.MatchVoid, stored.Status)
}

func TestCancelTerminalTurnRejected(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    _, err := f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, err = f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrAlreadyTerminal)
}

func TestLeaveTurnWhileOpen(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    require.NoError(t, f.eng.LeaveTurn(ctx, turn.ID, userF1))
    assert.Empty(t, f.store.players[turn.ID])

    err = f.eng.LeaveTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrNotJoined)
}

func TestLeaveLockedTurnRejected(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 2)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.NoError(t, err)

    err = f.eng.LeaveTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrTurnNotModifiable)
}

func TestCompleteTurn(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 2)
    ctx := context.Background()

    // Not locked yet.
    _, err := f.eng.CompleteTurn(ctx, turn.ID)
    require.ErrorIs(t, err, engine.ErrTurnNotCompletable)

    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.NoError(t, err)

    // Locked, but the scheduled end has not passed.
    _, err = f.eng.CompleteTurn(ctx, turn.ID)
    require.ErrorIs(t, err, engine.ErrTurnNotDue)

    f.eng.WithClock(func() time.Time { return turn.EndsAt.Add(time.Minute) })
    done, err := f.eng.CompleteTurn(ctx, turn.ID)
    require.NoError(t, err)
    assert.Equal(t, string(engine.StatusCompleted), done.Status)

    // Completed is terminal.
    _, err = f.eng.CancelTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrAlreadyTerminal)
}

func TestJoinContention(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)
    ctx := context.Background()

    // Hold the per-turn lock as a concurrent writer would.
    tx, err := f.store.Begin(ctx, turn.ID)
    require.NoError(t, err)

    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.ErrorIs(t, err, engine.ErrContention)
    assert.Equal(t, engine.KindContention, engine.KindOf(err))

    require.NoError(t, tx.Rollback())
    _, _, err = f.eng.JoinTurn(ctx, turn.ID, userF1)
    assert.NoError(t, err)
}

func TestMatchSinkFailureKeepsLock(t *testing.T) {
    f := newFixture(t)
    f.sink.fail = true
    turn := f.createTurn(t, model.GenderModeOpen, 2)
    ctx := context.Background()

    _, _, err := f.eng.JoinTurn(ctx, turn.ID, userF1)
    require.NoError(t, err)
    got, match, err := f.eng.JoinTurn(ctx, turn.ID, userM1)
    require.NoError(t, err)
    require.NotNil(t, match)
    assert.Equal(t, string(engine.StatusLocked), got.Status)
    assert.Equal(t, string(engine.StatusLocked), f.store.turns[turn.ID].Status)
}

func TestInactiveUserCannotJoin(t *testing.T) {
    f := newFixture(t)
    turn := f.createTurn(t, model.GenderModeOpen, 4)

    dir := &memDirectory{users: map[uint64]*model.User{
        99: {ID: 99, Gender: model.GenderMale, Category: "5ta", IsActive: false},
    }}
    eng := engine.New(f.store, dir, &memCatalog{courts: map[uint64]*model.Court{}}, nil)

    _, _, err := eng.JoinTurn(context.Background(), turn.ID, 99)
    require.ErrorIs(t, err, engine.ErrUserInactive)
}
