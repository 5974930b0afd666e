package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

// fakeCollections is an in-memory RemoteCollectionGateway. Each method records
// its name in calls and can be made to fail once via fail[op].
type fakeCollections struct {
	mu         sync.Mutex
	containers []models.Container
	calls      []string
	fail       map[string]error
}

func newFakeCollections(containers ...models.Container) *fakeCollections {
	return &fakeCollections{
		containers: containers,
		fail:       make(map[string]error),
	}
}

func (f *fakeCollections) failNext(op string, err error) {
	f.mu.Lock()
	f.fail[op] = err
	f.mu.Unlock()
}

// record notes the call and consumes any one-shot failure armed for it.
func (f *fakeCollections) record(op string) error {
	f.calls = append(f.calls, op)
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return err
	}
	return nil
}

func (f *fakeCollections) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeCollections) find(id uuid.UUID) *models.Container {
	for i := range f.containers {
		if f.containers[i].ID == id {
			return &f.containers[i]
		}
	}
	return nil
}

func (f *fakeCollections) Create(ctx context.Context, container *models.Container) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Create"); err != nil {
		return uuid.Nil, err
	}
	c := *container
	c.ID = uuid.New()
	f.containers = append(f.containers, c)
	return c.ID, nil
}

func (f *fakeCollections) Get(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Get"); err != nil {
		return nil, err
	}
	c := f.find(id)
	if c == nil {
		return nil, gateway.NewNotFoundError("container " + id.String())
	}
	out := *c
	return &out, nil
}

func (f *fakeCollections) Update(ctx context.Context, id uuid.UUID, update models.ContainerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Update"); err != nil {
		return err
	}
	c := f.find(id)
	if c == nil {
		return gateway.NewNotFoundError("container " + id.String())
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Order != nil {
		c.Order = *update.Order
	}
	return nil
}

func (f *fakeCollections) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Delete"); err != nil {
		return err
	}
	for i := range f.containers {
		if f.containers[i].ID == id {
			f.containers = append(f.containers[:i], f.containers[i+1:]...)
			return nil
		}
	}
	return gateway.NewNotFoundError("container " + id.String())
}

func (f *fakeCollections) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListForUser"); err != nil {
		return nil, err
	}
	out := make([]models.Container, len(f.containers))
	for i, c := range f.containers {
		out[i] = c
		out[i].Links = append([]models.Link(nil), c.Links...)
	}
	return out, nil
}

func (f *fakeCollections) AddLink(ctx context.Context, containerID uuid.UUID, link models.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddLink"); err != nil {
		return err
	}
	c := f.find(containerID)
	if c == nil {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	c.Links = append(c.Links, link)
	return nil
}

func (f *fakeCollections) UpdateLink(ctx context.Context, containerID uuid.UUID, linkID string, update models.LinkUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateLink"); err != nil {
		return err
	}
	c := f.find(containerID)
	if c == nil {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	j := c.FindLink(linkID)
	if j < 0 {
		return gateway.NewNotFoundError("link " + linkID)
	}
	update.Apply(&c.Links[j])
	return nil
}

func (f *fakeCollections) DeleteLink(ctx context.Context, containerID uuid.UUID, linkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteLink"); err != nil {
		return err
	}
	c := f.find(containerID)
	if c == nil {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	j := c.FindLink(linkID)
	if j < 0 {
		return gateway.NewNotFoundError("link " + linkID)
	}
	c.Links = append(c.Links[:j], c.Links[j+1:]...)
	return nil
}

func (f *fakeCollections) DeleteLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteLinks"); err != nil {
		return err
	}
	c := f.find(containerID)
	if c == nil {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	drop := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		drop[id] = true
	}
	kept := c.Links[:0]
	for _, l := range c.Links {
		if !drop[l.ID] {
			kept = append(kept, l)
		}
	}
	c.Links = kept
	return nil
}

func (f *fakeCollections) ReorderLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ReorderLinks"); err != nil {
		return err
	}
	c := f.find(containerID)
	if c == nil {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	byID := make(map[string]models.Link, len(c.Links))
	for _, l := range c.Links {
		byID[l.ID] = l
	}
	reordered := make([]models.Link, 0, len(linkIDs))
	for _, id := range linkIDs {
		l, ok := byID[id]
		if !ok {
			return gateway.NewValidationError("unknown link %s", id)
		}
		reordered = append(reordered, l)
	}
	c.Links = reordered
	return nil
}

func (f *fakeCollections) MoveLink(ctx context.Context, sourceID, targetID uuid.UUID, linkID string) error {
	return f.MoveLinks(ctx, sourceID, targetID, []string{linkID})
}

func (f *fakeCollections) MoveLinks(ctx context.Context, sourceID, targetID uuid.UUID, linkIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("MoveLinks"); err != nil {
		return err
	}
	src := f.find(sourceID)
	dst := f.find(targetID)
	if src == nil || dst == nil {
		return gateway.NewNotFoundError("container")
	}
	want := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		want[id] = true
	}
	kept := src.Links[:0]
	for _, l := range src.Links {
		if want[l.ID] {
			dst.Links = append(dst.Links, l)
		} else {
			kept = append(kept, l)
		}
	}
	src.Links = kept
	return nil
}

func (f *fakeCollections) RecordClick(ctx context.Context, containerID uuid.UUID, linkID string, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RecordClick"); err != nil {
		return err
	}
	c := f.find(containerID)
	if c == nil {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	if j := c.FindLink(linkID); j >= 0 {
		c.Links[j].RecordClick(day)
	}
	return nil
}

// fakeSharing is an in-memory SharingGateway.
type fakeSharing struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]*models.ShareInvitation
	grants      map[uuid.UUID]map[uuid.UUID]models.PermissionGrant
	collections *fakeCollections
	fail        map[string]error
}

func newFakeSharing(collections *fakeCollections) *fakeSharing {
	return &fakeSharing{
		invitations: make(map[uuid.UUID]*models.ShareInvitation),
		grants:      make(map[uuid.UUID]map[uuid.UUID]models.PermissionGrant),
		collections: collections,
		fail:        make(map[string]error),
	}
}

func (f *fakeSharing) failNext(op string, err error) {
	f.mu.Lock()
	f.fail[op] = err
	f.mu.Unlock()
}

func (f *fakeSharing) record(op string) error {
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return err
	}
	return nil
}

func (f *fakeSharing) SendInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SendInvitation"); err != nil {
		return err
	}
	// Replace any pending invitation for the same (container, email).
	for id, existing := range f.invitations {
		if existing.ContainerID == inv.ContainerID && existing.Email == inv.Email &&
			existing.Status == models.InvitationPending {
			delete(f.invitations, id)
		}
	}
	stored := *inv
	f.invitations[inv.ID] = &stored
	return nil
}

func (f *fakeSharing) GetInvitationsForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ShareInvitation
	for _, inv := range f.invitations {
		if inv.ContainerID == containerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeSharing) GetInvitationsForEmail(ctx context.Context, email string) ([]models.ShareInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ShareInvitation
	for _, inv := range f.invitations {
		if inv.Email == email {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeSharing) AcceptInvitation(ctx context.Context, invitationID uuid.UUID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AcceptInvitation"); err != nil {
		return err
	}
	inv, ok := f.invitations[invitationID]
	if !ok {
		return gateway.NewNotFoundError("invitation " + invitationID.String())
	}
	if inv.Status != models.InvitationPending {
		return gateway.NewValidationError("invitation is not pending")
	}
	if inv.IsExpired() {
		return gateway.NewExpiredError("invitation has expired")
	}
	// Grant first, then union into the authorized set, then flip status.
	if f.grants[inv.ContainerID] == nil {
		f.grants[inv.ContainerID] = make(map[uuid.UUID]models.PermissionGrant)
	}
	f.grants[inv.ContainerID][userID] = models.PermissionGrant{
		ContainerID: inv.ContainerID,
		UserID:      userID,
		Permission:  inv.Permission,
		GrantedBy:   inv.InvitedBy,
		GrantedAt:   time.Now().UTC(),
	}
	f.collections.mu.Lock()
	if c := f.collections.find(inv.ContainerID); c != nil {
		c.AddAuthorizedUser(userID)
	}
	f.collections.mu.Unlock()
	inv.Status = models.InvitationAccepted
	return nil
}

func (f *fakeSharing) DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[invitationID]
	if !ok {
		return gateway.NewNotFoundError("invitation " + invitationID.String())
	}
	inv.Status = models.InvitationDeclined
	return nil
}

func (f *fakeSharing) CancelInvitation(ctx context.Context, invitationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.invitations[invitationID]; !ok {
		return gateway.NewNotFoundError("invitation " + invitationID.String())
	}
	delete(f.invitations, invitationID)
	return nil
}

func (f *fakeSharing) SetPermission(ctx context.Context, grant *models.PermissionGrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grants[grant.ContainerID] == nil {
		f.grants[grant.ContainerID] = make(map[uuid.UUID]models.PermissionGrant)
	}
	f.grants[grant.ContainerID][grant.UserID] = *grant
	return nil
}

func (f *fakeSharing) GetPermission(ctx context.Context, containerID, userID uuid.UUID) (*models.PermissionGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.grants[containerID][userID]; ok {
		out := g
		return &out, nil
	}
	return nil, nil
}

func (f *fakeSharing) GetAllPermissions(ctx context.Context, containerID uuid.UUID) ([]models.PermissionGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PermissionGrant
	for _, g := range f.grants[containerID] {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeSharing) RemoveUser(ctx context.Context, containerID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.grants[containerID], userID)
	f.collections.mu.Lock()
	if c := f.collections.find(containerID); c != nil {
		c.RemoveAuthorizedUser(userID)
	}
	f.collections.mu.Unlock()
	return nil
}

// fakeShareLinks is an in-memory ShareLinkGateway.
type fakeShareLinks struct {
	mu    sync.Mutex
	links map[uuid.UUID]*models.ShareLink
}

func newFakeShareLinks() *fakeShareLinks {
	return &fakeShareLinks{links: make(map[uuid.UUID]*models.ShareLink)}
}

func (f *fakeShareLinks) Create(ctx context.Context, containerID uuid.UUID, permission models.Permission, expiresAt *time.Time, maxUses *int) (*models.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link := &models.ShareLink{
		ID:          uuid.New(),
		ContainerID: containerID,
		Token:       fmt.Sprintf("token-%d", len(f.links)),
		Permission:  permission,
		ExpiresAt:   expiresAt,
		MaxUses:     maxUses,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	f.links[link.ID] = link
	out := *link
	return &out, nil
}

func (f *fakeShareLinks) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.Token == token {
			out := *l
			return &out, nil
		}
	}
	return nil, gateway.NewNotFoundError("share link")
}

func (f *fakeShareLinks) Use(ctx context.Context, token string) (*models.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.Token == token {
			if !l.IsValid() {
				return nil, gateway.NewExpiredError("share link is no longer valid")
			}
			l.CurrentUses++
			out := *l
			return &out, nil
		}
	}
	return nil, gateway.NewNotFoundError("share link")
}

func (f *fakeShareLinks) ListForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ShareLink
	for _, l := range f.links {
		if l.ContainerID == containerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeShareLinks) Deactivate(ctx context.Context, containerID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok || l.ContainerID != containerID {
		return gateway.NewNotFoundError("share link " + id.String())
	}
	l.IsActive = false
	return nil
}

// fakeDirectory resolves every user to the same name.
type fakeDirectory struct{}

func (fakeDirectory) DisplayName(ctx context.Context, userID uuid.UUID) string {
	return "Test User"
}

func testLink(id, title string) models.Link {
	now := time.Now().UTC()
	return models.Link{
		ID:        id,
		Title:     title,
		URL:       "https://example.com/" + id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testContainer(owner uuid.UUID, name string, order int, links ...models.Link) models.Container {
	now := time.Now().UTC()
	return models.Container{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   owner,
		Links:     links,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newTestStore builds a store over the fakes, seeded and refreshed.
func newTestStore(t *testing.T, collections *fakeCollections, opts ...Option) (*Store, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	s := New(collections, newFakeSharing(collections), newFakeShareLinks(), fakeDirectory{}, opts...)
	if err := s.SetUser(context.Background(), userID); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	return s, userID
}

func TestRefreshReplacesMirror(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0, testLink("l1", "one"))
	collections := newFakeCollections(c)
	s, _ := newTestStore(t, collections)

	got := s.Containers()
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].Name, "reading")
	assert.Equal(t, len(got[0].Links), 1)
}

func TestRefreshFailureKeepsMirrorAndRecordsError(t *testing.T) {
	c := testContainer(uuid.New(), "reading", 0)
	collections := newFakeCollections(c)
	s, _ := newTestStore(t, collections)

	collections.failNext("ListForUser", gateway.NewGatewayError("backend down", nil))
	err := s.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}
	// Mirror still holds the last good state.
	assert.Equal(t, len(s.Containers()), 1)
	if s.Err() == "" {
		t.Fatal("expected a recorded user-facing error")
	}

	s.ClearErr()
	assert.Equal(t, s.Err(), "")
}

func TestContainersOrderedByPosition(t *testing.T) {
	owner := uuid.New()
	a := testContainer(owner, "second", 1)
	b := testContainer(owner, "first", 0)
	collections := newFakeCollections(a, b)
	s, _ := newTestStore(t, collections)

	got := s.Containers()
	assert.Equal(t, got[0].Name, "first")
	assert.Equal(t, got[1].Name, "second")
}

func TestSubscribeFiresOnChange(t *testing.T) {
	collections := newFakeCollections(testContainer(uuid.New(), "reading", 0))
	s, _ := newTestStore(t, collections)

	fired := 0
	s.Subscribe(func() { fired++ })
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fired == 0 {
		t.Fatal("expected change notification")
	}
}
