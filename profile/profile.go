package profile

// Role represents a user role as issued by the portal API (role_id).
type Role int64

const (
	RoleAdmin        Role = 1 // Practice administrator
	RoleCareProvider Role = 2 // Licensed care provider
	RoleClient       Role = 3 // Client receiving care
)

// Profile is the authenticated user's record as returned by GET /auth/me.
// It is never persisted durably; it is re-fetched from the server on each load.
type Profile struct {
	UserID   int64   `json:"user_id"`             // Unique identifier for the user
	Email    string  `json:"email"`               // User's email address
	Name     string  `json:"name"`                // Display name
	RoleID   Role    `json:"role_id"`             // Role within the practice
	OfficeID *int64  `json:"office_id,omitempty"` // Office the user belongs to, if any
	JoinCode *string `json:"join_code,omitempty"` // Invite code for clients joining a provider
}

func (p *Profile) IsCareProvider() bool {
	return p.RoleID == RoleCareProvider
}

func (p *Profile) IsClient() bool {
	return p.RoleID == RoleClient
}

func (p *Profile) IsAdmin() bool {
	return p.RoleID == RoleAdmin
}

// HasOffice reports whether the user is attached to an office.
func (p *Profile) HasOffice() bool {
	return p.OfficeID != nil && *p.OfficeID != 0
}
