package models

import "time"

// UserRole represents user roles matching the ENUM in the database.
type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "tournament_organizer"
)

type User struct {
	ID            int      `json:"id" db:"id"`
	Email         string   `json:"email" db:"email"`
	PasswordHash  string   `json:"-" db:"password_hash"`
	Role          UserRole `json:"role" db:"role"`
	DisplayName   string   `json:"display_name" db:"display_name"`
	Username      string   `json:"username" db:"username"`
	EmailVerified bool     `json:"email_verified" db:"email_verified"`
	// Approved is the admin moderation gate for organizer accounts.
	Approved  bool      `json:"is_approved" db:"is_approved"`
	Banned    bool      `json:"banned" db:"banned"`
	Public    bool      `json:"is_public" db:"is_public"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	Profile *PlayerProfile `json:"profile,omitempty" db:"-"`
}

// PlayerProfile holds the player's game data, one-to-one with User.
type PlayerProfile struct {
	UserID int     `json:"user_id" db:"user_id"`
	Bio    *string `json:"bio,omitempty" db:"bio"`
	GameID *string `json:"game_id,omitempty" db:"game_id"`
	Region *string `json:"region,omitempty" db:"region"`
	Rank   *string `json:"rank,omitempty" db:"rank"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
