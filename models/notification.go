package models

import "time"

const (
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_request_accepted"
	NotificationTeamInvite     = "team_invite"
	NotificationTournament     = "tournament"
	NotificationSystem         = "system"
)

type Notification struct {
	ID      int    `json:"id" db:"id"`
	UserID  int    `json:"user_id" db:"user_id"`
	Type    string `json:"type" db:"type"`
	Title   string `json:"title" db:"title"`
	Message string `json:"message" db:"message"`
	// Data is an optional serialized payload (JSON text).
	Data      *string   `json:"data,omitempty" db:"data"`
	Read      bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
