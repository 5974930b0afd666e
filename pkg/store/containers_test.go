package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

func TestCreateContainerUsesGatewayIdentity(t *testing.T) {
	collections := newFakeCollections()
	s, userID := newTestStore(t, collections)

	created, err := s.CreateContainer(context.Background(), models.ContainerCreate{Name: "reading"})
	if err != nil {
		t.Fatalf("CreateContainer: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected gateway-allocated identity")
	}
	assert.Equal(t, created.OwnerID, userID)

	got, ok := s.Container(created.ID)
	if !ok {
		t.Fatal("container missing from mirror")
	}
	assert.Equal(t, got.Name, "reading")
}

func TestCreateContainerValidationFailsBeforeGateway(t *testing.T) {
	collections := newFakeCollections()
	s, _ := newTestStore(t, collections)

	cases := []models.ContainerCreate{
		{Name: ""},
		{Name: strings.Repeat("x", models.MaxContainerNameLen+1)},
		{Name: "ok", Description: strings.Repeat("x", models.MaxContainerDescriptionLen+1)},
	}
	for _, create := range cases {
		_, err := s.CreateContainer(context.Background(), create)
		if !gateway.IsValidation(err) {
			t.Fatalf("%+v: expected validation error, got %v", create, err)
		}
	}
	assert.Equal(t, collections.callCount("Create"), 0)
	assert.Equal(t, len(s.Containers()), 0)
}

func TestCreateContainerGatewayFailureLeavesMirrorUntouched(t *testing.T) {
	collections := newFakeCollections()
	s, _ := newTestStore(t, collections)

	collections.failNext("Create", gateway.NewGatewayError("backend down", nil))
	_, err := s.CreateContainer(context.Background(), models.ContainerCreate{Name: "reading"})
	if err == nil {
		t.Fatal("expected gateway error")
	}
	assert.Equal(t, len(s.Containers()), 0)
}

func TestUpdateContainerAppliesOnSuccess(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "old", 0)
	collections := newFakeCollections(c)
	s, _ := newTestStore(t, collections)

	name := "new"
	if err := s.UpdateContainer(context.Background(), c.ID, models.ContainerUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateContainer: %v", err)
	}
	got, _ := s.Container(c.ID)
	assert.Equal(t, got.Name, "new")
}

func TestDeleteContainerDropsPendingLinkDeletes(t *testing.T) {
	owner := uuid.New()
	c := testContainer(owner, "reading", 0, testLink("l1", "one"))
	collections := newFakeCollections(c)
	s, _ := newTestStore(t, collections, WithGraceWindow(50*time.Millisecond))

	if err := s.DeleteLink(context.Background(), c.ID, "l1"); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if err := s.DeleteContainer(context.Background(), c.ID); err != nil {
		t.Fatalf("DeleteContainer: %v", err)
	}
	if _, ok := s.Container(c.ID); ok {
		t.Fatal("container still in mirror")
	}
	// The cancelled soft delete never reaches the gateway.
	assert.Equal(t, collections.callCount("DeleteLink"), 0)
}

func TestReorderContainersAppliesOptimistically(t *testing.T) {
	owner := uuid.New()
	a := testContainer(owner, "a", 0)
	b := testContainer(owner, "b", 1)
	c := testContainer(owner, "c", 2)
	collections := newFakeCollections(a, b, c)
	s, _ := newTestStore(t, collections)

	if err := s.ReorderContainers(context.Background(), []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderContainers: %v", err)
	}
	got := s.Containers()
	assert.Equal(t, got[0].Name, "c")
	assert.Equal(t, got[1].Name, "a")
	assert.Equal(t, got[2].Name, "b")
	// One position write per container.
	assert.Equal(t, collections.callCount("Update"), 3)
}

func TestReorderContainersFailureResyncsWithoutError(t *testing.T) {
	owner := uuid.New()
	a := testContainer(owner, "a", 0)
	b := testContainer(owner, "b", 1)
	collections := newFakeCollections(a, b)
	s, _ := newTestStore(t, collections)

	collections.failNext("Update", gateway.NewGatewayError("backend down", nil))
	if err := s.ReorderContainers(context.Background(), []uuid.UUID{b.ID, a.ID}); err != nil {
		t.Fatalf("ReorderContainers: %v", err)
	}
	// The resync restored the server's ordering.
	got := s.Containers()
	assert.Equal(t, got[0].Name, "a")
	assert.Equal(t, got[1].Name, "b")
}

func TestReorderContainersRejectsPartialOrdering(t *testing.T) {
	owner := uuid.New()
	a := testContainer(owner, "a", 0)
	b := testContainer(owner, "b", 1)
	collections := newFakeCollections(a, b)
	s, _ := newTestStore(t, collections)

	err := s.ReorderContainers(context.Background(), []uuid.UUID{a.ID})
	if !gateway.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = s.ReorderContainers(context.Background(), []uuid.UUID{a.ID, uuid.New()})
	if !gateway.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
