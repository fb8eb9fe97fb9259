package engine_test

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
)

func TestMixedJoinFeasible(t *testing.T) {
    // Capacity 4: per-gender cap is 2, evaluated before the join lands.
    empty := engine.GenderCounts{}
    assert.True(t, engine.MixedJoinFeasible(4, empty, model.GenderFemale))

    twoF := engine.GenderCounts{Female: 2}
    assert.False(t, engine.MixedJoinFeasible(4, twoF, model.GenderFemale))
    assert.True(t, engine.MixedJoinFeasible(4, twoF, model.GenderMale))

    oneEach := engine.GenderCounts{Male: 1, Female: 1}
    assert.True(t, engine.MixedJoinFeasible(4, oneEach, model.GenderMale))
    assert.True(t, engine.MixedJoinFeasible(4, oneEach, model.GenderFemale))

    // Capacity 6: cap of 3 per gender.
    threeM := engine.GenderCounts{Male: 3}
    assert.False(t, engine.MixedJoinFeasible(6, threeM, model.GenderMale))
    assert.True(t, engine.MixedJoinFeasible(6, threeM, model.GenderFemale))
}

func TestSameGenderJoinAllowedFollowsEarliestJoiner(t *testing.T) {
    base := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
    players := []model.TurnPlayer{
        {UserID: 2, Gender: model.GenderFemale, JoinedAt: base.Add(time.Minute)},
        {UserID: 1, Gender: model.GenderMale, JoinedAt: base},
    }
    // The earliest joiner (male) fixes the turn's gender even when
    // the slice is not ordered by join time.
    assert.True(t, engine.SameGenderJoinAllowed(players, model.GenderMale))
    assert.False(t, engine.SameGenderJoinAllowed(players, model.GenderFemale))

    assert.True(t, engine.SameGenderJoinAllowed(nil, model.GenderFemale))
}

func TestCategoryAllowed(t *testing.T) {
    assert.True(t, engine.CategoryAllowed("9na", "1ra", model.CategoryRestrictionNone))

    assert.True(t, engine.CategoryAllowed("4ta", "4ta", model.CategoryRestrictionSame))
    assert.False(t, engine.CategoryAllowed("5ta", "4ta", model.CategoryRestrictionSame))

    assert.True(t, engine.CategoryAllowed("6ta", "4ta", model.CategoryRestrictionNearby))
    assert.True(t, engine.CategoryAllowed("2da", "4ta", model.CategoryRestrictionNearby))
    assert.False(t, engine.CategoryAllowed("7ma", "4ta", model.CategoryRestrictionNearby))
    assert.False(t, engine.CategoryAllowed("bogus", "4ta", model.CategoryRestrictionNearby))
}

func TestCategoryDistance(t *testing.T) {
    assert.Equal(t, 0, engine.CategoryDistance("5ta", "5ta"))
    assert.Equal(t, 4, engine.CategoryDistance("1ra", "5ta"))
    assert.Equal(t, -1, engine.CategoryDistance("5ta", "unknown"))
}

func TestRatingWithinBounds(t *testing.T) {
    min, max := 4.0, 6.0
    turn := &model.Turn{MinRating: &min, MaxRating: &max}
    assert.True(t, engine.RatingWithinBounds(turn, 5.0))
    assert.True(t, engine.RatingWithinBounds(turn, 4.0))
    assert.True(t, engine.RatingWithinBounds(turn, 6.0))
    assert.False(t, engine.RatingWithinBounds(turn, 3.9))
    assert.False(t, engine.RatingWithinBounds(turn, 6.1))

    unbounded := &model.Turn{}
    assert.True(t, engine.RatingWithinBounds(unbounded, 0))
}
