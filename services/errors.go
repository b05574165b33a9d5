package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	// Generic not-found (entity-specific variants below add context).
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
	ErrEmailRequired            = errors.New("email is required")
	ErrTeamNameRequired         = errors.New("team name is required")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTournamentInvalidDates   = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidSize    = errors.New("tournament max teams must be at least 2")
	ErrTournamentInvalidType    = errors.New("invalid tournament type")
	ErrPostTitleRequired        = errors.New("post title is required")
	ErrPostContentRequired      = errors.New("post content is required")
	ErrSelfFriendRequest        = errors.New("cannot send a friend request to yourself")
	ErrInvalidFriendAction      = errors.New("invalid friend request action")
	ErrRosterPlayerNotInTeam    = errors.New("selected player is not a member of the team")
	ErrEmptyUpdate              = errors.New("no updatable fields provided")
	ErrInsufficientParticipants = errors.New("not enough registrations to generate a bracket (minimum 2)")
	ErrWinnerNotInMatch         = errors.New("winner must be one of the match participants")

	// Conflicts
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserUsernameConflict   = errors.New("username is already in use")
	ErrUserAlreadyInTeam      = errors.New("user is already in a team")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRegistrationConflict   = errors.New("participant is already registered for this tournament")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrBracketAlreadyExists   = errors.New("bracket has already been generated for this tournament")
	ErrInviteConflict         = errors.New("a pending invite already exists for this player")
	ErrFriendRequestConflict  = errors.New("a friend request already exists between these users")
	ErrMatchAlreadyCompleted  = errors.New("match result has already been recorded")

	// Authentication and authorization
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountBanned        = errors.New("account is banned")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrEmailNotVerified     = errors.New("email address is not verified")
	ErrOrganizerNotApproved = errors.New("organizer account is pending admin approval")
	ErrNotTeamOwner         = errors.New("only the team owner can perform this action")
	ErrOwnerCannotLeave     = errors.New("the team owner cannot leave the team")
	ErrRegistrationClosed   = errors.New("tournament registration is not open")
	ErrNotRegistered        = errors.New("participant is not registered for this tournament")

	// Entity-specific not-found
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrInviteNotFound       = errors.New("invite not found")
	ErrFriendNotFound       = errors.New("friend request not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrProfilePrivate       = errors.New("this profile is private")
)
