package models

import (
	"time"

	"github.com/google/uuid"
)

// Permission is the access level a non-owner holds on a container.
type Permission string

const (
	PermissionView    Permission = "view"
	PermissionComment Permission = "comment"
	PermissionEdit    Permission = "edit"
)

// IsValid reports whether p is one of the known levels.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionView, PermissionComment, PermissionEdit:
		return true
	}
	return false
}

// InvitationStatus is the stored state of a share invitation. Expiry is
// derived from ExpiresAt on read, never stored.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// PermissionGrant is the durable record of a non-owner's access to a
// container. At most one active grant exists per (container, user) pair; the
// owner implicitly holds edit and never has a stored grant.
type PermissionGrant struct {
	ContainerID uuid.UUID  `json:"container_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Permission  Permission `json:"permission"`
	GrantedBy   uuid.UUID  `json:"granted_by"`
	GrantedAt   time.Time  `json:"granted_at"`
}

// ShareInvitation is a pending, email-addressed offer of access that has not
// yet been converted into a grant. At most one pending invitation exists per
// (container, email) pair.
type ShareInvitation struct {
	ID          uuid.UUID        `json:"id"`
	ContainerID uuid.UUID        `json:"container_id"`
	Email       string           `json:"email"`
	Permission  Permission       `json:"permission"`
	InvitedBy   uuid.UUID        `json:"invited_by"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   time.Time        `json:"expires_at"`
}

// IsExpired reports whether the invitation is past its validity window. Every
// read path treats an expired invitation as invalid regardless of its stored
// status.
func (i *ShareInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsPending reports whether the invitation is still actionable.
func (i *ShareInvitation) IsPending() bool {
	return i.Status == InvitationPending && !i.IsExpired()
}

// ShareLink is a token-based, ownerless access mechanism with optional expiry
// and use-count limits.
type ShareLink struct {
	ID          uuid.UUID  `json:"id"`
	ContainerID uuid.UUID  `json:"container_id"`
	Token       string     `json:"token"`
	Permission  Permission `json:"permission"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // nil = never expires
	MaxUses     *int       `json:"max_uses,omitempty"`   // nil = unlimited
	CurrentUses int        `json:"current_uses"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsValid checks if the share link is currently usable for access.
func (s *ShareLink) IsValid() bool {
	if !s.IsActive {
		return false
	}
	if s.IsExpired() {
		return false
	}
	if s.IsUseLimitReached() {
		return false
	}
	return true
}

// IsExpired checks if the link has expired.
func (s *ShareLink) IsExpired() bool {
	return s.ExpiresAt != nil && time.Now().After(*s.ExpiresAt)
}

// IsUseLimitReached checks if max uses has been reached.
func (s *ShareLink) IsUseLimitReached() bool {
	return s.MaxUses != nil && s.CurrentUses >= *s.MaxUses
}
