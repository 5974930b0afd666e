package store

import (
	"context"
	"strings"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"

	"github.com/google/uuid"
)

// DefaultInvitationTTL is how long an invitation stays acceptable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Collaborator pairs a grant with a resolved display name for listing UIs.
type Collaborator struct {
	UserID      uuid.UUID         `json:"user_id"`
	DisplayName string            `json:"display_name"`
	Permission  models.Permission `json:"permission"`
}

// ShareContainer sends an email invitation at the requested permission level.
// Inviting an address that already holds a pending invitation replaces it.
func (s *Store) ShareContainer(ctx context.Context, containerID uuid.UUID, email string, permission models.Permission) (*models.ShareInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, s.fail(gateway.NewValidationError("a valid email address is required"))
	}
	if !permission.IsValid() {
		return nil, s.fail(gateway.NewValidationError("unknown permission level %q", permission))
	}
	s.mu.Lock()
	if s.indexLocked(containerID) < 0 {
		s.mu.Unlock()
		return nil, s.fail(gateway.NewNotFoundError("container " + containerID.String()))
	}
	userID := s.userID
	s.mu.Unlock()

	now := time.Now().UTC()
	inv := &models.ShareInvitation{
		ID:          uuid.New(),
		ContainerID: containerID,
		Email:       email,
		Permission:  permission,
		InvitedBy:   userID,
		Status:      models.InvitationPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(DefaultInvitationTTL),
	}
	if err := s.sharing.SendInvitation(ctx, inv); err != nil {
		return nil, s.fail(err)
	}
	return inv, nil
}

// PendingInvitations lists the still-actionable invitations for a container.
// Expired invitations are filtered even when the backend has not deleted them.
func (s *Store) PendingInvitations(ctx context.Context, containerID uuid.UUID) ([]models.ShareInvitation, error) {
	all, err := s.sharing.GetInvitationsForContainer(ctx, containerID)
	if err != nil {
		return nil, s.fail(err)
	}
	pending := make([]models.ShareInvitation, 0, len(all))
	for _, inv := range all {
		if inv.IsPending() {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

// InvitationsForMe lists the active user's own pending invitations by email.
func (s *Store) InvitationsForMe(ctx context.Context, email string) ([]models.ShareInvitation, error) {
	all, err := s.sharing.GetInvitationsForEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, s.fail(err)
	}
	pending := make([]models.ShareInvitation, 0, len(all))
	for _, inv := range all {
		if inv.IsPending() {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

// AcceptInvitation converts an invitation into a grant for the active user
// and refetches so the newly shared container appears in the mirror. The
// gateway grants access before marking the invitation accepted, so a partial
// failure leaves it pending and retryable.
func (s *Store) AcceptInvitation(ctx context.Context, invitationID uuid.UUID) error {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	if err := s.sharing.AcceptInvitation(ctx, invitationID, userID); err != nil {
		return s.fail(err)
	}
	return s.Refresh(ctx)
}

// DeclineInvitation marks an invitation declined.
func (s *Store) DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error {
	if err := s.sharing.DeclineInvitation(ctx, invitationID); err != nil {
		return s.fail(err)
	}
	return nil
}

// CancelInvitation is the sender withdrawing a pending invitation.
func (s *Store) CancelInvitation(ctx context.Context, invitationID uuid.UUID) error {
	if err := s.sharing.CancelInvitation(ctx, invitationID); err != nil {
		return s.fail(err)
	}
	return nil
}

// SetPermission changes an existing collaborator's level.
func (s *Store) SetPermission(ctx context.Context, containerID, userID uuid.UUID, permission models.Permission) error {
	if !permission.IsValid() {
		return s.fail(gateway.NewValidationError("unknown permission level %q", permission))
	}
	s.mu.Lock()
	grantedBy := s.userID
	s.mu.Unlock()

	grant := &models.PermissionGrant{
		ContainerID: containerID,
		UserID:      userID,
		Permission:  permission,
		GrantedBy:   grantedBy,
		GrantedAt:   time.Now().UTC(),
	}
	if err := s.sharing.SetPermission(ctx, grant); err != nil {
		return s.fail(err)
	}
	return nil
}

// RemoveUser revokes a collaborator's access and drops them from the mirror's
// authorized set.
func (s *Store) RemoveUser(ctx context.Context, containerID, userID uuid.UUID) error {
	if err := s.sharing.RemoveUser(ctx, containerID, userID); err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.bumpLocked()
	if i := s.indexLocked(containerID); i >= 0 {
		s.containers[i].RemoveAuthorizedUser(userID)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Collaborators lists the container's grant holders with display names
// resolved through the user directory. Directory lookups are best-effort and
// degrade to a placeholder.
func (s *Store) Collaborators(ctx context.Context, containerID uuid.UUID) ([]Collaborator, error) {
	grants, err := s.sharing.GetAllPermissions(ctx, containerID)
	if err != nil {
		return nil, s.fail(err)
	}
	out := make([]Collaborator, 0, len(grants))
	for _, g := range grants {
		out = append(out, Collaborator{
			UserID:      g.UserID,
			DisplayName: s.users.DisplayName(ctx, g.UserID),
			Permission:  g.Permission,
		})
	}
	return out, nil
}

// CreateShareLink mints a token-based share link for a container.
func (s *Store) CreateShareLink(ctx context.Context, containerID uuid.UUID, permission models.Permission, expiresAt *time.Time, maxUses *int) (*models.ShareLink, error) {
	if !permission.IsValid() {
		return nil, s.fail(gateway.NewValidationError("unknown permission level %q", permission))
	}
	link, err := s.shareLinks.Create(ctx, containerID, permission, expiresAt, maxUses)
	if err != nil {
		return nil, s.fail(err)
	}
	return link, nil
}

// ShareLinksFor lists a container's share links.
func (s *Store) ShareLinksFor(ctx context.Context, containerID uuid.UUID) ([]models.ShareLink, error) {
	links, err := s.shareLinks.ListForContainer(ctx, containerID)
	if err != nil {
		return nil, s.fail(err)
	}
	return links, nil
}

// RedeemShareLink consumes one use of a token and returns the link, which
// names the container and permission the token grants. Dead tokens come back
// as expired errors, unknown ones as not found.
func (s *Store) RedeemShareLink(ctx context.Context, token string) (*models.ShareLink, error) {
	if token == "" {
		return nil, s.fail(gateway.NewValidationError("share token is required"))
	}
	link, err := s.shareLinks.Use(ctx, token)
	if err != nil {
		return nil, s.fail(err)
	}
	return link, nil
}

// DeactivateShareLink explicitly disables a share link.
func (s *Store) DeactivateShareLink(ctx context.Context, containerID, id uuid.UUID) error {
	if err := s.shareLinks.Deactivate(ctx, containerID, id); err != nil {
		return s.fail(err)
	}
	return nil
}
