package models

import "time"

// TournamentStatus represents the tournament lifecycle, matching the ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusUpcoming     TournamentStatus = "upcoming"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusOngoing      TournamentStatus = "ongoing"
	TournamentStatusCompleted    TournamentStatus = "completed"
)

// TournamentType determines who registers: individual players (solo) or teams (duo/squad).
type TournamentType string

const (
	TournamentTypeSolo  TournamentType = "solo"
	TournamentTypeDuo   TournamentType = "duo"
	TournamentTypeSquad TournamentType = "squad"
)

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Game        string           `json:"game" db:"game"`
	Description *string          `json:"description,omitempty" db:"description"`
	Rules       *string          `json:"rules,omitempty" db:"rules"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	MaxTeams    int              `json:"max_teams" db:"max_teams"`
	PrizePool   float64          `json:"prize_pool" db:"prize_pool"`
	EntryFee    float64          `json:"entry_fee" db:"entry_fee"`
	Status      TournamentStatus `json:"status" db:"status"`
	Type        TournamentType   `json:"type" db:"type"`
	Approved    bool             `json:"is_approved" db:"is_approved"`
	ApprovedBy  *int             `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  *time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	CreatedBy   int              `json:"created_by" db:"created_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	ImageKey *string `json:"-" db:"image_key"`
	ImageURL *string `json:"image_url,omitempty" db:"-"`

	Registrations []Registration `json:"registrations,omitempty" db:"-"`
	Matches       []Match        `json:"matches,omitempty" db:"-"`
}

// Solo reports whether participants are individual users rather than teams.
func (t *Tournament) Solo() bool {
	return t.Type == TournamentTypeSolo
}
