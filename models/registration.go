package models

import "time"

// Registration is a participant's entry into a tournament. Exactly one of
// TeamID (team tournaments) or UserID (solo tournaments) is set.
type Registration struct {
	ID           int  `json:"id" db:"id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	TeamID       *int `json:"team_id,omitempty" db:"team_id"`
	UserID       *int `json:"user_id,omitempty" db:"user_id"`
	// SelectedPlayers is the serialized squad sub-roster (JSON array of user IDs).
	SelectedPlayers *string   `json:"selected_players,omitempty" db:"selected_players"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
	User *User `json:"user,omitempty" db:"-"`
}

// ParticipantID returns the team or user identifier behind this entry.
func (r *Registration) ParticipantID() int {
	if r.TeamID != nil {
		return *r.TeamID
	}
	if r.UserID != nil {
		return *r.UserID
	}
	return 0
}
