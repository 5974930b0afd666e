package models

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

func TestContainerCreateValidate(t *testing.T) {
	tests := []struct {
		name    string
		create  ContainerCreate
		wantErr bool
	}{
		{"valid", ContainerCreate{Name: "reading"}, false},
		{"name at limit", ContainerCreate{Name: strings.Repeat("x", MaxContainerNameLen)}, false},
		{"name over limit", ContainerCreate{Name: strings.Repeat("x", MaxContainerNameLen+1)}, true},
		{"empty name", ContainerCreate{Name: ""}, true},
		{"description over limit", ContainerCreate{Name: "ok", Description: strings.Repeat("x", MaxContainerDescriptionLen+1)}, true},
		{"valid color", ContainerCreate{Name: "ok", Color: "#ff8800"}, false},
		{"bad color", ContainerCreate{Name: "ok", Color: "orange"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.create.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("got %v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestFindLink(t *testing.T) {
	c := Container{Links: []Link{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, c.FindLink("b"), 1)
	assert.Equal(t, c.FindLink("z"), -1)
}

func TestAddAuthorizedUserSetSemantics(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	c := Container{OwnerID: owner}

	c.AddAuthorizedUser(other)
	c.AddAuthorizedUser(other)
	assert.Equal(t, len(c.AuthorizedUsers), 1)

	// The owner is never stored in the authorized list.
	c.AddAuthorizedUser(owner)
	assert.Equal(t, len(c.AuthorizedUsers), 1)
}

func TestRemoveAuthorizedUser(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := Container{AuthorizedUsers: []uuid.UUID{a, b}}

	c.RemoveAuthorizedUser(a)
	assert.Equal(t, len(c.AuthorizedUsers), 1)
	assert.Equal(t, c.AuthorizedUsers[0], b)

	// Removing an absent user is a no-op.
	c.RemoveAuthorizedUser(a)
	assert.Equal(t, len(c.AuthorizedUsers), 1)
}

func TestIsShared(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	c := Container{OwnerID: owner}

	if c.IsShared(owner) {
		t.Fatal("owner's own container is not shared")
	}
	if !c.IsShared(viewer) {
		t.Fatal("someone else's container is shared")
	}
}
