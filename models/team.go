package models

import "time"

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRolePlayer TeamRole = "player"
)

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Tag       string    `json:"tag" db:"tag"`
	OwnerID   int       `json:"owner_id" db:"owner_id"`
	Region    *string   `json:"region,omitempty" db:"region"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	TeamID   int       `json:"team_id" db:"team_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	Role     TeamRole  `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
)

type TeamInvite struct {
	ID        int          `json:"id" db:"id"`
	TeamID    int          `json:"team_id" db:"team_id"`
	InviterID int          `json:"inviter_id" db:"inviter_id"`
	InviteeID int          `json:"invitee_id" db:"invitee_id"`
	Status    InviteStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
