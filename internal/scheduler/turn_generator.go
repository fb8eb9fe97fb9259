// Package scheduler contains background planning jobs: the slot
// generator that pre-creates open turns from a club's weekly schedule,
// and the sweeper that completes locked turns whose window has passed.
package scheduler

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/model"
)

// Slot is one generated turn window on a court.
type Slot struct {
    CourtID  uint64
    StartsAt time.Time
    EndsAt   time.Time
}

// clockTime parses a club's "HH:MM" opening or closing value.
func clockTime(s string) (hour, minute int, err error) {
    if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
        return 0, 0, fmt.Errorf("bad clock value %q: %w", s, err)
    }
    if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
        return 0, 0, fmt.Errorf("bad clock value %q", s)
    }
    return hour, minute, nil
}

// SlotsForDay computes the turn windows a club offers on one calendar
// day for a single court. Returns nil when the club is closed that
// weekday. The last slot is dropped when the closing time cuts it
// short.
func SlotsForDay(club *model.Club, courtID uint64, day time.Time) ([]Slot, error) {
    // OpenDays is Monday-first; time.Weekday counts from Sunday.
    if !club.OpenDays[(int(day.Weekday())+6)%7] {
        return nil, nil
    }
    oh, om, err := clockTime(club.OpeningTime)
    if err != nil {
        return nil, err
    }
    ch, cm, err := clockTime(club.ClosingTime)
    if err != nil {
        return nil, err
    }
    dur := time.Duration(club.TurnDurationMinutes) * time.Minute
    if dur <= 0 {
        return nil, fmt.Errorf("club %d has no turn duration", club.ID)
    }

    open := time.Date(day.Year(), day.Month(), day.Day(), oh, om, 0, 0, day.Location())
    closing := time.Date(day.Year(), day.Month(), day.Day(), ch, cm, 0, 0, day.Location())
    if !closing.After(open) {
        // Past-midnight closing, treat as next day.
        closing = closing.Add(24 * time.Hour)
    }

    var slots []Slot
    for start := open; !start.Add(dur).After(closing); start = start.Add(dur) {
        slots = append(slots, Slot{CourtID: courtID, StartsAt: start, EndsAt: start.Add(dur)})
    }
    return slots, nil
}

// CourtLister exposes the courts the generator plans over.
type CourtLister interface {
    ListByClub(ctx context.Context, clubID uint64) ([]*model.Court, error)
}

// Generator pre-creates open turns for a club's courts.  Creation
// goes through the engine so overlap and validation rules hold; slots
// that collide with existing turns are skipped silently.
type Generator struct {
    engine *engine.Engine
    courts CourtLister
}

// NewGenerator constructs a Generator.
func NewGenerator(eng *engine.Engine, courts CourtLister) *Generator {
    return &Generator{engine: eng, courts: courts}
}

// GenerateForClub creates open turns for every available court of the
// club across [from, to) days. Defaults records the turn parameters
// applied to each generated slot. Returns how many turns were
// created.
func (g *Generator) GenerateForClub(ctx context.Context, club *model.Club, from, to time.Time, defaults TurnDefaults) (int, error) {
    courts, err := g.courts.ListByClub(ctx, club.ID)
    if err != nil {
        return 0, err
    }

    created := 0
    for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
        for _, court := range courts {
            if !court.IsAvailable {
                continue
            }
            slots, err := SlotsForDay(club, court.ID, day)
            if err != nil {
                return created, err
            }
            for _, s := range slots {
                _, err := g.engine.CreateTurn(ctx, engine.CreateTurnParams{
                    CourtID:             s.CourtID,
                    CreatorID:           club.OwnerID,
                    StartsAt:            s.StartsAt,
                    EndsAt:              s.EndsAt,
                    Capacity:            defaults.Capacity,
                    GenderMode:          defaults.GenderMode,
                    CategoryRestriction: model.CategoryRestrictionNone,
                    PriceCents:          defaults.PriceCents,
                })
                if err != nil {
                    if errors.Is(err, engine.ErrSlotOverlap) {
                        continue
                    }
                    return created, err
                }
                created++
            }
        }
    }
    if created > 0 {
        log.Printf("scheduler: generated %d turns for club %d", created, club.ID)
    }
    return created, nil
}

// TurnDefaults are the parameters applied to generated turns.
type TurnDefaults struct {
    Capacity   int
    GenderMode string
    PriceCents uint32
}

// DefaultTurnDefaults is a four-player open turn with no price.
var DefaultTurnDefaults = TurnDefaults{Capacity: 4, GenderMode: model.GenderModeOpen}
