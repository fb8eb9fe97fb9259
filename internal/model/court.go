package model

import "time"

// Court surface types stored in courts.surface.
const (
    SurfaceArtificialGrass = "ARTIFICIAL_GRASS"
    SurfaceCement          = "CEMENT"
    SurfaceCarpet          = "CARPET"
)

// Court represents a single padel court inside a club.  Turns are
// scheduled against one court; a court is booked whole, there is no
// per-position seating.  This struct corresponds to a row in the
// `courts` table.
//
// Fields:
//  ID          – primary key identifier.
//  ClubID      – club the court belongs to.
//  Name        – unique court name within the club.
//  Description – optional free-form description.
//  Surface     – playing surface (see Surface* constants).
//  IsIndoor    – whether the court is covered.
//  HasLighting – whether the court has artificial lighting.
//  IsAvailable – whether new turns may be scheduled on the court.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Court struct {
    ID          uint64    // courts.id
    ClubID      uint64    // courts.club_id
    Name        string    // courts.name
    Description *string   // courts.description (nullable)
    Surface     string    // courts.surface
    IsIndoor    bool      // courts.is_indoor
    HasLighting bool      // courts.has_lighting
    IsAvailable bool      // courts.is_available
    CreatedAt   time.Time // courts.created_at
    UpdatedAt   time.Time // courts.updated_at
}
