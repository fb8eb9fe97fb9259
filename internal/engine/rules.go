package engine

import "github.com/padelhub/turn-booking/internal/model"

// categoryNumbers maps padel playing categories to their numeric
// rank.  Lower numbers are stronger players ("1ra" is the top
// category).
var categoryNumbers = map[string]int{
    "9na": 9,
    "8va": 8,
    "7ma": 7,
    "6ta": 6,
    "5ta": 5,
    "4ta": 4,
    "3ra": 3,
    "2da": 2,
    "1ra": 1,
}

// ValidCategory reports whether cat is a known playing category.
func ValidCategory(cat string) bool {
    _, ok := categoryNumbers[cat]
    return ok
}

// CategoryDistance returns the absolute numeric distance between two
// categories, or -1 when either is unknown.
func CategoryDistance(a, b string) int {
    na, okA := categoryNumbers[a]
    nb, okB := categoryNumbers[b]
    if !okA || !okB {
        return -1
    }
    if na > nb {
        return na - nb
    }
    return nb - na
}

// CategoryAllowed reports whether a player of playerCat may join a
// turn organized by organizerCat under the given restriction type.
// NEARBY_CATEGORIES accepts categories within two steps of the
// organizer's.
func CategoryAllowed(playerCat, organizerCat, restriction string) bool {
    switch restriction {
    case model.CategoryRestrictionNone:
        return true
    case model.CategoryRestrictionSame:
        return playerCat == organizerCat
    case model.CategoryRestrictionNearby:
        d := CategoryDistance(playerCat, organizerCat)
        return d >= 0 && d <= 2
    }
    return false
}

// ValidCategoryRestriction reports whether r is a known restriction type.
func ValidCategoryRestriction(r string) bool {
    switch r {
    case model.CategoryRestrictionNone, model.CategoryRestrictionSame, model.CategoryRestrictionNearby:
        return true
    }
    return false
}

// ValidGenderMode reports whether m is a known gender mode.
func ValidGenderMode(m string) bool {
    switch m {
    case model.GenderModeOpen, model.GenderModeMixed, model.GenderModeSameGender:
        return true
    }
    return false
}

// GenderCounts tallies committed slots per gender.
type GenderCounts struct {
    Male   int
    Female int
}

// Add registers one more slot of the given gender.
func (g *GenderCounts) Add(gender string) {
    switch gender {
    case model.GenderMale:
        g.Male++
    case model.GenderFemale:
        g.Female++
    }
}

// Total returns the number of counted slots.
func (g GenderCounts) Total() int { return g.Male + g.Female }

// CountGenders tallies the gender snapshots of the given players.
func CountGenders(players []model.TurnPlayer) GenderCounts {
    var counts GenderCounts
    for _, p := range players {
        counts.Add(p.Gender)
    }
    return counts
}

// MixedJoinFeasible evaluates the mixed-mode composition rule as a
// running feasibility check: after hypothetically adding one player
// of the given gender, it must still be possible to fill the
// remaining capacity while keeping each gender at or below
// capacity/2.  With two genders that reduces to capping the joining
// gender at half capacity; a tie at exactly capacity/2 per gender is
// the only valid full composition.
func MixedJoinFeasible(capacity int, counts GenderCounts, joining string) bool {
    half := capacity / 2
    after := counts
    after.Add(joining)
    return after.Male <= half && after.Female <= half && after.Total() <= capacity
}

// SameGenderJoinAllowed enforces SAME_GENDER mode: the joining
// player's gender must match the first joined player's.  The first
// player fixes the turn's gender.
func SameGenderJoinAllowed(players []model.TurnPlayer, joining string) bool {
    if len(players) == 0 {
        return true
    }
    first := players[0]
    for _, p := range players[1:] {
        if p.JoinedAt.Before(first.JoinedAt) {
            first = p
        }
    }
    return first.Gender == joining
}

// RatingWithinBounds checks a turn's optional rating range against a
// user's aggregate rating.
func RatingWithinBounds(t *model.Turn, rating float64) bool {
    if t.MinRating != nil && rating < *t.MinRating {
        return false
    }
    if t.MaxRating != nil && rating > *t.MaxRating {
        return false
    }
    return true
}
