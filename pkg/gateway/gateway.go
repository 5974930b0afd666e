package gateway

import (
	"context"
	"time"

	"linkvault/pkg/models"

	"github.com/google/uuid"
)

// RemoteCollectionGateway defines the document-store operations for containers
// and their embedded links. Every call is all-or-nothing: it either fully
// applies or fails with a described error, never partially.
type RemoteCollectionGateway interface {
	Create(ctx context.Context, container *models.Container) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Container, error)
	Update(ctx context.Context, id uuid.UUID, update models.ContainerUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListForUser returns both owned and shared-with-user containers,
	// de-duplicated with owned taking precedence.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Container, error)

	// Link-scoped sub-mutations against a single container document.
	AddLink(ctx context.Context, containerID uuid.UUID, link models.Link) error
	UpdateLink(ctx context.Context, containerID uuid.UUID, linkID string, update models.LinkUpdate) error
	DeleteLink(ctx context.Context, containerID uuid.UUID, linkID string) error
	DeleteLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error
	// ReorderLinks persists the entire new ordering; the caller computes the
	// permutation, the gateway does not diff.
	ReorderLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error
	// MoveLink removes the link from the source document and appends it to the
	// target document. The two writes are not atomic with respect to each
	// other (see MoveLinks).
	MoveLink(ctx context.Context, sourceID, targetID uuid.UUID, linkID string) error
	MoveLinks(ctx context.Context, sourceID, targetID uuid.UUID, linkIDs []string) error
	RecordClick(ctx context.Context, containerID uuid.UUID, linkID string, day string) error
}

// SharingGateway manages the invitation lifecycle and permission grant
// storage.
type SharingGateway interface {
	SendInvitation(ctx context.Context, inv *models.ShareInvitation) error
	GetInvitationsForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareInvitation, error)
	GetInvitationsForEmail(ctx context.Context, email string) ([]models.ShareInvitation, error)
	// AcceptInvitation creates/updates the grant, unions the user into the
	// container's authorized set, then marks the invitation accepted. If the
	// access-granting steps fail the invitation stays pending.
	AcceptInvitation(ctx context.Context, invitationID uuid.UUID, userID uuid.UUID) error
	DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error
	// CancelInvitation is sender-initiated and implemented as a hard delete.
	CancelInvitation(ctx context.Context, invitationID uuid.UUID) error
	SetPermission(ctx context.Context, grant *models.PermissionGrant) error
	GetPermission(ctx context.Context, containerID, userID uuid.UUID) (*models.PermissionGrant, error)
	GetAllPermissions(ctx context.Context, containerID uuid.UUID) ([]models.PermissionGrant, error)
	// RemoveUser revokes the grant and removes the user from the container's
	// authorized set.
	RemoveUser(ctx context.Context, containerID, userID uuid.UUID) error
}

// ShareLinkGateway manages token-based share links.
type ShareLinkGateway interface {
	Create(ctx context.Context, containerID uuid.UUID, permission models.Permission, expiresAt *time.Time, maxUses *int) (*models.ShareLink, error)
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	// Use records one successful access, incrementing the use counter by
	// exactly 1. It fails with an expired error when the link is no longer
	// valid.
	Use(ctx context.Context, token string) (*models.ShareLink, error)
	ListForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareLink, error)
	Deactivate(ctx context.Context, containerID, id uuid.UUID) error
}

// UserDirectory resolves user identities for display. Lookups are best-effort;
// implementations degrade to a placeholder instead of propagating failures.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID uuid.UUID) string
}
