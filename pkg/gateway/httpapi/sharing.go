package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"linkvault/pkg/models"

	"github.com/google/uuid"
)

// Sharing implements gateway.SharingGateway.
type Sharing struct {
	c *Client
}

// SendInvitation creates a pending invitation for an email address.
func (g *Sharing) SendInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	path := fmt.Sprintf("/api/v1/containers/%s/invitations", inv.ContainerID)
	payload := struct {
		Email      string            `json:"email"`
		Permission models.Permission `json:"permission"`
		ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
	}{inv.Email, inv.Permission, &inv.ExpiresAt}
	return g.c.doJSONRequest(ctx, http.MethodPost, path, payload, inv)
}

// GetInvitationsForContainer lists a container's pending invitations.
func (g *Sharing) GetInvitationsForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareInvitation, error) {
	var invitations []models.ShareInvitation
	path := fmt.Sprintf("/api/v1/containers/%s/invitations", containerID)
	if err := g.c.doGetRequest(ctx, path, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// GetInvitationsForEmail lists the authenticated user's pending invitations.
// The server resolves the email from the API key, so it is not sent.
func (g *Sharing) GetInvitationsForEmail(ctx context.Context, email string) ([]models.ShareInvitation, error) {
	var invitations []models.ShareInvitation
	if err := g.c.doGetRequest(ctx, "/api/v1/invitations", &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// AcceptInvitation accepts an invitation on behalf of the authenticated user.
// The userID argument is resolved server-side from the API key.
func (g *Sharing) AcceptInvitation(ctx context.Context, invitationID uuid.UUID, userID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/invitations/%s/accept", invitationID)
	return g.c.doJSONRequest(ctx, http.MethodPost, path, nil, nil)
}

// DeclineInvitation marks a pending invitation declined.
func (g *Sharing) DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/invitations/%s/decline", invitationID)
	return g.c.doJSONRequest(ctx, http.MethodPost, path, nil, nil)
}

// CancelInvitation withdraws a pending invitation the user sent.
func (g *Sharing) CancelInvitation(ctx context.Context, invitationID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/invitations/%s", invitationID)
	return g.c.doDeleteRequest(ctx, path)
}

// SetPermission changes a collaborator's permission level.
func (g *Sharing) SetPermission(ctx context.Context, grant *models.PermissionGrant) error {
	path := fmt.Sprintf("/api/v1/containers/%s/permissions", grant.ContainerID)
	payload := struct {
		UserID     uuid.UUID         `json:"user_id"`
		Permission models.Permission `json:"permission"`
	}{grant.UserID, grant.Permission}
	return g.c.doJSONRequest(ctx, http.MethodPut, path, payload, grant)
}

// GetPermission returns the grant for one user, or nil when none exists. The
// API has no single-grant endpoint, so this filters the container listing.
func (g *Sharing) GetPermission(ctx context.Context, containerID, userID uuid.UUID) (*models.PermissionGrant, error) {
	grants, err := g.GetAllPermissions(ctx, containerID)
	if err != nil {
		return nil, err
	}
	for i := range grants {
		if grants[i].UserID == userID {
			return &grants[i], nil
		}
	}
	return nil, nil
}

// GetAllPermissions lists a container's grants.
func (g *Sharing) GetAllPermissions(ctx context.Context, containerID uuid.UUID) ([]models.PermissionGrant, error) {
	var grants []models.PermissionGrant
	path := fmt.Sprintf("/api/v1/containers/%s/permissions", containerID)
	if err := g.c.doGetRequest(ctx, path, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// RemoveUser revokes a collaborator's access.
func (g *Sharing) RemoveUser(ctx context.Context, containerID, userID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/containers/%s/permissions/%s", containerID, userID)
	return g.c.doDeleteRequest(ctx, path)
}

// ShareLinks implements gateway.ShareLinkGateway.
type ShareLinks struct {
	c *Client
}

// Create mints a token-based share link.
func (g *ShareLinks) Create(ctx context.Context, containerID uuid.UUID, permission models.Permission, expiresAt *time.Time, maxUses *int) (*models.ShareLink, error) {
	path := fmt.Sprintf("/api/v1/containers/%s/share-links", containerID)
	payload := struct {
		Permission models.Permission `json:"permission"`
		ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
		MaxUses    *int              `json:"max_uses,omitempty"`
	}{permission, expiresAt, maxUses}
	var link models.ShareLink
	if err := g.c.doJSONRequest(ctx, http.MethodPost, path, payload, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByToken resolves a token without consuming a use.
func (g *ShareLinks) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var resp struct {
		ShareLink models.ShareLink `json:"share_link"`
		Valid     bool             `json:"valid"`
	}
	path := fmt.Sprintf("/api/v1/share/%s", token)
	if err := g.c.doGetRequest(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp.ShareLink, nil
}

// Use consumes one use of a token.
func (g *ShareLinks) Use(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	path := fmt.Sprintf("/api/v1/share/%s/use", token)
	if err := g.c.doJSONRequest(ctx, http.MethodPost, path, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListForContainer lists a container's share links.
func (g *ShareLinks) ListForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareLink, error) {
	var links []models.ShareLink
	path := fmt.Sprintf("/api/v1/containers/%s/share-links", containerID)
	if err := g.c.doGetRequest(ctx, path, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Deactivate disables a share link.
func (g *ShareLinks) Deactivate(ctx context.Context, containerID, id uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/containers/%s/share-links/%s", containerID, id)
	return g.c.doDeleteRequest(ctx, path)
}

// Directory implements gateway.UserDirectory over the API.
type Directory struct {
	c *Client
}

// DisplayName resolves a user's display name, degrading to a placeholder when
// the lookup fails.
func (g *Directory) DisplayName(ctx context.Context, userID uuid.UUID) string {
	var resp struct {
		DisplayName string `json:"display_name"`
	}
	path := fmt.Sprintf("/api/v1/users/%s/display-name", userID)
	if err := g.c.doGetRequest(ctx, path, &resp); err != nil || resp.DisplayName == "" {
		return "Unknown user"
	}
	return resp.DisplayName
}
