// Package model defines the data structures used throughout the application.
package model

import "time"

// Role controls what a user may do. Regular users submit and react;
// admins additionally work the moderation queue.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account in the museum.
//
// Identity is delegated to a third-party OAuth provider — we never see a
// password. Provider + ProviderID together identify the external account,
// and the UNIQUE constraint on that pair in the DB ensures one external
// account maps to exactly one row here. We still generate our own internal
// string ID (xid) so primary keys don't depend on a third party's numbering
// scheme.
//
// Banned users keep their rows and their content; the flag only blocks
// future session establishment and new submissions.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"` // may be empty if the provider hides it
	Provider    string    `json:"provider"`  // e.g. "github", "dev"
	ProviderID  string    `json:"-"`         // the provider's own identifier, never exposed
	Role        Role      `json:"role"`
	Banned      bool      `json:"banned"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may perform moderation actions.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
