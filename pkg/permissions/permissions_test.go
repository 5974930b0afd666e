package permissions

import (
	"testing"

	"linkvault/pkg/models"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

func TestEffective(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	stranger := uuid.New()
	container := &models.Container{ID: uuid.New(), OwnerID: owner}
	grant := &models.PermissionGrant{
		ContainerID: container.ID,
		UserID:      viewer,
		Permission:  models.PermissionComment,
	}

	tests := []struct {
		name     string
		grant    *models.PermissionGrant
		viewerID uuid.UUID
		want     models.Permission
	}{
		{"owner always edits", nil, owner, models.PermissionEdit},
		{"owner ignores stored grant", &models.PermissionGrant{ContainerID: container.ID, UserID: owner, Permission: models.PermissionView}, owner, models.PermissionEdit},
		{"grant holder gets granted level", grant, viewer, models.PermissionComment},
		{"no grant means none", nil, stranger, None},
		{"someone else's grant confers nothing", grant, stranger, None},
		{"grant for another container confers nothing", &models.PermissionGrant{ContainerID: uuid.New(), UserID: viewer, Permission: models.PermissionEdit}, viewer, None},
		{"invalid stored level degrades to none", &models.PermissionGrant{ContainerID: container.ID, UserID: viewer, Permission: "admin"}, viewer, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Effective(container, tt.grant, tt.viewerID), tt.want)
		})
	}

	assert.Equal(t, Effective(nil, grant, viewer), None)
}

func TestEffectiveFrom(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	container := &models.Container{ID: uuid.New(), OwnerID: owner}
	grants := []models.PermissionGrant{
		{ContainerID: container.ID, UserID: uuid.New(), Permission: models.PermissionEdit},
		{ContainerID: container.ID, UserID: viewer, Permission: models.PermissionView},
	}

	assert.Equal(t, EffectiveFrom(container, grants, viewer), models.PermissionView)
	assert.Equal(t, EffectiveFrom(container, grants, owner), models.PermissionEdit)
	assert.Equal(t, EffectiveFrom(container, grants, uuid.New()), None)
}

func TestCapabilityLadder(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	container := &models.Container{ID: uuid.New(), OwnerID: owner}

	grantAt := func(p models.Permission) *models.PermissionGrant {
		return &models.PermissionGrant{ContainerID: container.ID, UserID: viewer, Permission: p}
	}

	// view: can view only
	g := grantAt(models.PermissionView)
	assert.Equal(t, CanView(container, g, viewer), true)
	assert.Equal(t, CanComment(container, g, viewer), false)
	assert.Equal(t, CanEdit(container, g, viewer), false)

	// comment: view + comment
	g = grantAt(models.PermissionComment)
	assert.Equal(t, CanView(container, g, viewer), true)
	assert.Equal(t, CanComment(container, g, viewer), true)
	assert.Equal(t, CanEdit(container, g, viewer), false)

	// edit: everything
	g = grantAt(models.PermissionEdit)
	assert.Equal(t, CanView(container, g, viewer), true)
	assert.Equal(t, CanComment(container, g, viewer), true)
	assert.Equal(t, CanEdit(container, g, viewer), true)

	// no grant: nothing
	assert.Equal(t, CanView(container, nil, viewer), false)
}
