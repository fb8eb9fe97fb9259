package engine_test

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/padelhub/turn-booking/internal/engine"
)

func TestStatusTransitions(t *testing.T) {
    cases := []struct {
        from, to engine.Status
        allowed  bool
    }{
        {engine.StatusOpen, engine.StatusLocked, true},
        {engine.StatusOpen, engine.StatusCancelled, true},
        {engine.StatusOpen, engine.StatusCompleted, false},
        {engine.StatusLocked, engine.StatusCompleted, true},
        {engine.StatusLocked, engine.StatusCancelled, true},
        {engine.StatusLocked, engine.StatusOpen, false},
        {engine.StatusCancelled, engine.StatusOpen, false},
        {engine.StatusCancelled, engine.StatusLocked, false},
        {engine.StatusCompleted, engine.StatusOpen, false},
        {engine.StatusCompleted, engine.StatusCancelled, false},
    }
    for _, tc := range cases {
        assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
            "%s -> %s", tc.from, tc.to)
    }
}

func TestTerminalStatuses(t *testing.T) {
    assert.False(t, engine.StatusOpen.Terminal())
    assert.False(t, engine.StatusLocked.Terminal())
    assert.True(t, engine.StatusCancelled.Terminal())
    assert.True(t, engine.StatusCompleted.Terminal())
}

func TestStatusValid(t *testing.T) {
    assert.True(t, engine.StatusOpen.Valid())
    assert.False(t, engine.Status("BOOKED").Valid())
}
