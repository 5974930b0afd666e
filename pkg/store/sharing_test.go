package store

import (
	"context"
	"testing"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"
	"linkvault/pkg/permissions"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

// newSharingTestStore wires a store to fakes it also returns, so tests can
// drive both sides of the invitation flow.
func newSharingTestStore(t *testing.T, collections *fakeCollections) (*Store, *fakeSharing, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	sharing := newFakeSharing(collections)
	s := New(collections, sharing, newFakeShareLinks(), fakeDirectory{})
	if err := s.SetUser(context.Background(), userID); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	return s, sharing, userID
}

func TestShareContainerValidatesInput(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, _, _ := newSharingTestStore(t, collections)

	_, err := s.ShareContainer(context.Background(), c.ID, "not-an-email", models.PermissionView)
	if !gateway.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = s.ShareContainer(context.Background(), c.ID, "a@b.test", models.Permission("admin"))
	if !gateway.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestShareContainerNormalizesEmail(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, _, userID := newSharingTestStore(t, collections)

	inv, err := s.ShareContainer(context.Background(), c.ID, "  Friend@Example.TEST ", models.PermissionEdit)
	if err != nil {
		t.Fatalf("ShareContainer: %v", err)
	}
	assert.Equal(t, inv.Email, "friend@example.test")
	assert.Equal(t, inv.Status, models.InvitationPending)
	assert.Equal(t, inv.InvitedBy, userID)
	if !inv.ExpiresAt.After(time.Now()) {
		t.Fatal("expected a future expiry")
	}
}

func TestShareContainerReplacesPendingInvitation(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, sharing, _ := newSharingTestStore(t, collections)

	if _, err := s.ShareContainer(context.Background(), c.ID, "a@b.test", models.PermissionView); err != nil {
		t.Fatalf("ShareContainer: %v", err)
	}
	if _, err := s.ShareContainer(context.Background(), c.ID, "a@b.test", models.PermissionEdit); err != nil {
		t.Fatalf("ShareContainer: %v", err)
	}

	pending, err := s.PendingInvitations(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("PendingInvitations: %v", err)
	}
	assert.Equal(t, len(pending), 1)
	assert.Equal(t, pending[0].Permission, models.PermissionEdit)
	assert.Equal(t, len(sharing.invitations), 1)
}

func TestInviteAcceptGrantFlow(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, sharing, userID := newSharingTestStore(t, collections)

	now := time.Now().UTC()
	inv := &models.ShareInvitation{
		ID:          uuid.New(),
		ContainerID: c.ID,
		Email:       "me@example.test",
		Permission:  models.PermissionComment,
		InvitedBy:   owner,
		Status:      models.InvitationPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
	if err := sharing.SendInvitation(context.Background(), inv); err != nil {
		t.Fatalf("SendInvitation: %v", err)
	}

	if err := s.AcceptInvitation(context.Background(), inv.ID); err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}

	// The grant exists and yields the invited permission level.
	grant, err := sharing.GetPermission(context.Background(), c.ID, userID)
	if err != nil {
		t.Fatalf("GetPermission: %v", err)
	}
	got, ok := s.Container(c.ID)
	if !ok {
		t.Fatal("shared container missing from mirror after refresh")
	}
	assert.Equal(t, permissions.Effective(&got, grant, userID), models.PermissionComment)
	if !got.HasAuthorizedUser(userID) {
		t.Fatal("user missing from authorized set")
	}

	// Accepting a second time is rejected, the invitation is spent.
	if err := s.AcceptInvitation(context.Background(), inv.ID); err == nil {
		t.Fatal("expected error on double accept")
	}
	// The authorized set stayed a set.
	got, _ = s.Container(c.ID)
	count := 0
	for _, id := range got.AuthorizedUsers {
		if id == userID {
			count++
		}
	}
	assert.Equal(t, count, 1)
}

func TestAcceptExpiredInvitationFails(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, sharing, _ := newSharingTestStore(t, collections)

	now := time.Now().UTC()
	inv := &models.ShareInvitation{
		ID:          uuid.New(),
		ContainerID: c.ID,
		Email:       "me@example.test",
		Permission:  models.PermissionView,
		InvitedBy:   owner,
		Status:      models.InvitationPending,
		CreatedAt:   now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}
	if err := sharing.SendInvitation(context.Background(), inv); err != nil {
		t.Fatalf("SendInvitation: %v", err)
	}

	err := s.AcceptInvitation(context.Background(), inv.ID)
	if !gateway.IsExpired(err) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestInvitationsForMeFiltersExpired(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, sharing, _ := newSharingTestStore(t, collections)

	now := time.Now().UTC()
	live := &models.ShareInvitation{
		ID: uuid.New(), ContainerID: c.ID, Email: "me@example.test",
		Permission: models.PermissionView, Status: models.InvitationPending,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	stale := &models.ShareInvitation{
		ID: uuid.New(), ContainerID: c.ID, Email: "me@example.test",
		Permission: models.PermissionView, Status: models.InvitationPending,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	sharing.invitations[live.ID] = live
	sharing.invitations[stale.ID] = stale

	got, err := s.InvitationsForMe(context.Background(), "me@example.test")
	if err != nil {
		t.Fatalf("InvitationsForMe: %v", err)
	}
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].ID, live.ID)
}

func TestRemoveUserUpdatesMirror(t *testing.T) {
	owner := uuid.New()
	collaborator := uuid.New()
	c := testContainer(owner, "reading", 0)
	c.AuthorizedUsers = []uuid.UUID{collaborator}
	collections := newFakeCollections(c)
	s, sharing, _ := newSharingTestStore(t, collections)
	sharing.grants[c.ID] = map[uuid.UUID]models.PermissionGrant{
		collaborator: {ContainerID: c.ID, UserID: collaborator, Permission: models.PermissionEdit},
	}

	if err := s.RemoveUser(context.Background(), c.ID, collaborator); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	got, _ := s.Container(c.ID)
	if got.HasAuthorizedUser(collaborator) {
		t.Fatal("collaborator still in authorized set")
	}
	grant, _ := sharing.GetPermission(context.Background(), c.ID, collaborator)
	if grant != nil {
		t.Fatal("grant still stored")
	}
}

func TestShareLinkUseLimit(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, _, _ := newSharingTestStore(t, collections)

	maxUses := 2
	link, err := s.CreateShareLink(context.Background(), c.ID, models.PermissionView, nil, &maxUses)
	if err != nil {
		t.Fatalf("CreateShareLink: %v", err)
	}

	for i := 0; i < maxUses; i++ {
		if _, err := s.RedeemShareLink(context.Background(), link.Token); err != nil {
			t.Fatalf("use %d: %v", i+1, err)
		}
	}
	// Use N+1 is rejected, and the counter stays at exactly N.
	_, err = s.RedeemShareLink(context.Background(), link.Token)
	if !gateway.IsExpired(err) {
		t.Fatalf("expected expired error, got %v", err)
	}
	got, err := s.shareLinks.GetByToken(context.Background(), link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	assert.Equal(t, got.CurrentUses, maxUses)
}

func TestDeactivateShareLink(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, _, _ := newSharingTestStore(t, collections)

	link, err := s.CreateShareLink(context.Background(), c.ID, models.PermissionView, nil, nil)
	if err != nil {
		t.Fatalf("CreateShareLink: %v", err)
	}
	if err := s.DeactivateShareLink(context.Background(), c.ID, link.ID); err != nil {
		t.Fatalf("DeactivateShareLink: %v", err)
	}
	_, err = s.RedeemShareLink(context.Background(), link.Token)
	if !gateway.IsExpired(err) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestCollaboratorsResolvesDisplayNames(t *testing.T) {
	owner := uuid.New()
	collaborator := uuid.New()
	c := testContainer(owner, "reading", 0)
	collections := newFakeCollections(c)
	s, sharing, _ := newSharingTestStore(t, collections)
	sharing.grants[c.ID] = map[uuid.UUID]models.PermissionGrant{
		collaborator: {ContainerID: c.ID, UserID: collaborator, Permission: models.PermissionView},
	}

	got, err := s.Collaborators(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Collaborators: %v", err)
	}
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].DisplayName, "Test User")
	assert.Equal(t, got[0].Permission, models.PermissionView)
}
