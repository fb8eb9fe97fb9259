package model

import "time"

// Invitation statuses.
const (
    InvitationPending   = "PENDING"
    InvitationAccepted  = "ACCEPTED"
    InvitationDeclined  = "DECLINED"
    InvitationCancelled = "CANCELLED"
    InvitationExpired   = "EXPIRED"
)

// Invitation asks a player to join a specific turn.  Pending
// invitations to a mixed turn count toward the per-gender quota so
// a slot promised to one player cannot be raced away by another.
// This struct corresponds to a row in the `invitations` table.
//
// Fields:
//  ID              – primary key identifier.
//  Reference       – public UUID handed to clients.
//  TurnID          – turn the invitation is for.
//  InviterID       – user who sent the invitation.
//  InvitedPlayerID – user being invited.
//  Status          – see Invitation* constants.
//  Message         – optional free-form message from the inviter.
//  CreatedAt       – creation timestamp.
//  RespondedAt     – when the invited player accepted or declined.
type Invitation struct {
    ID              uint64     // invitations.id
    Reference       string     // invitations.reference (UUID)
    TurnID          uint64     // invitations.turn_id
    InviterID       uint64     // invitations.inviter_id
    InvitedPlayerID uint64     // invitations.invited_player_id
    Status          string     // invitations.status
    Message         *string    // invitations.message (nullable)
    CreatedAt       time.Time  // invitations.created_at
    RespondedAt     *time.Time // invitations.responded_at (nullable)
}
