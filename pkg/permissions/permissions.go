// Package permissions maps (owner, authorized users, stored grants) to an
// effective permission level. Everything here is pure; nothing talks to a
// gateway. These checks are advisory UI-level rules, not a security boundary.
package permissions

import (
	"linkvault/pkg/models"

	"github.com/google/uuid"
)

// None is the zero permission: the viewer has no access.
const None = models.Permission("")

// Effective returns the viewer's permission on the container given their
// stored grant, if any. The owner always holds edit; no stored grant can
// reduce it. A viewer with no grant gets None, even though a container
// without a grant should not have been listed for them at all.
// A pending invitation is not a grant and confers nothing.
func Effective(container *models.Container, grant *models.PermissionGrant, viewerID uuid.UUID) models.Permission {
	if container == nil {
		return None
	}
	if container.OwnerID == viewerID {
		return models.PermissionEdit
	}
	if grant == nil || grant.ContainerID != container.ID || grant.UserID != viewerID {
		return None
	}
	if !grant.Permission.IsValid() {
		return None
	}
	return grant.Permission
}

// EffectiveFrom is Effective with the viewer's grant looked up from a list.
func EffectiveFrom(container *models.Container, grants []models.PermissionGrant, viewerID uuid.UUID) models.Permission {
	if container != nil && container.OwnerID == viewerID {
		return models.PermissionEdit
	}
	for i := range grants {
		if grants[i].UserID == viewerID {
			return Effective(container, &grants[i], viewerID)
		}
	}
	return None
}

// CanEdit reports whether the viewer may mutate the container and its links.
func CanEdit(container *models.Container, grant *models.PermissionGrant, viewerID uuid.UUID) bool {
	return Effective(container, grant, viewerID) == models.PermissionEdit
}

// CanComment reports whether the viewer may comment (edit implies comment).
func CanComment(container *models.Container, grant *models.PermissionGrant, viewerID uuid.UUID) bool {
	switch Effective(container, grant, viewerID) {
	case models.PermissionEdit, models.PermissionComment:
		return true
	}
	return false
}

// CanView reports whether the viewer may see the container at all.
func CanView(container *models.Container, grant *models.PermissionGrant, viewerID uuid.UUID) bool {
	return Effective(container, grant, viewerID) != None
}
