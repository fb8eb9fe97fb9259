package scheduler

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/padelhub/turn-booking/internal/model"
)

func testClub() *model.Club {
    return &model.Club{
        ID:                  1,
        OwnerID:             7,
        Name:                "Centro Padel",
        OpeningTime:         "09:00",
        ClosingTime:         "21:00",
        TurnDurationMinutes: 90,
        OpenDays:            [7]bool{true, true, true, true, true, true, false}, // Monday first, closed Sundays
    }
}

func TestSlotsForDayFillsOpeningHours(t *testing.T) {
    club := testClub()
    day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

    slots, err := SlotsForDay(club, 10, day)
    require.NoError(t, err)
    // 09:00..21:00 is 12h, 8 slots of 90m.
    require.Len(t, slots, 8)
    assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), slots[0].StartsAt)
    assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), slots[0].EndsAt)
    last := slots[len(slots)-1]
    assert.Equal(t, time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC), last.EndsAt)
    for _, s := range slots {
        assert.Equal(t, uint64(10), s.CourtID)
    }
}

func TestSlotsForDayClosedWeekday(t *testing.T) {
    club := testClub()
    day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) // a Sunday

    slots, err := SlotsForDay(club, 10, day)
    require.NoError(t, err)
    assert.Empty(t, slots)
}

func TestSlotsForDayDropsShortTail(t *testing.T) {
    club := testClub()
    club.ClosingTime = "20:00" // 11h open, 90m slots leave a 30m tail
    day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

    slots, err := SlotsForDay(club, 10, day)
    require.NoError(t, err)
    require.Len(t, slots, 7)
    assert.Equal(t, time.Date(2026, 3, 3, 19, 30, 0, 0, time.UTC), slots[len(slots)-1].EndsAt)
}

func TestSlotsForDayPastMidnightClosing(t *testing.T) {
    club := testClub()
    club.OpeningTime = "22:00"
    club.ClosingTime = "01:00"
    club.TurnDurationMinutes = 60
    day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

    slots, err := SlotsForDay(club, 10, day)
    require.NoError(t, err)
    require.Len(t, slots, 3)
    assert.Equal(t, time.Date(2026, 3, 4, 1, 0, 0, 0, time.UTC), slots[len(slots)-1].EndsAt)
}

func TestSlotsForDayRejectsBadClock(t *testing.T) {
    club := testClub()
    club.OpeningTime = "25:00"
    day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

    _, err := SlotsForDay(club, 10, day)
    assert.Error(t, err)
}
