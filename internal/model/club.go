package model

import "time"

// Club represents a padel club owned by a user.  A club groups one
// or more courts and defines the weekly opening schedule used by the
// turn generator.  This struct corresponds to a row in the `clubs`
// table.
//
// Fields:
//  ID                  – primary key identifier.
//  OwnerID             – user ID of the club owner.
//  Name                – unique club name per owner.
//  Address             – street address of the club.
//  Phone               – contact phone (optional).
//  Email               – contact email (optional).
//  OpeningTime         – time of day the club opens, "HH:MM".
//  ClosingTime         – time of day the club closes, "HH:MM".
//  TurnDurationMinutes – length of a generated turn in minutes.
//  OpenDays            – seven flags, Monday first, true when open.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Club struct {
    ID                  uint64    // clubs.id
    OwnerID             uint64    // clubs.owner_id
    Name                string    // clubs.name
    Address             string    // clubs.address
    Phone               *string   // clubs.phone (nullable)
    Email               *string   // clubs.email (nullable)
    OpeningTime         string    // clubs.opening_time ("HH:MM")
    ClosingTime         string    // clubs.closing_time ("HH:MM")
    TurnDurationMinutes int       // clubs.turn_duration_minutes
    OpenDays            [7]bool   // clubs.monday_open .. clubs.sunday_open
    CreatedAt           time.Time // clubs.created_at
    UpdatedAt           time.Time // clubs.updated_at
}
