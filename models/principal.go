package models

// Principal is the authenticated caller as resolved from a verified token.
// Handlers pass it down so services never reach into ambient request state.
type Principal struct {
	ID            int      `json:"id"`
	Role          UserRole `json:"role"`
	EmailVerified bool     `json:"email_verified"`
	Approved      bool     `json:"is_approved"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsOrganizer() bool {
	return p.Role == RoleOrganizer
}
