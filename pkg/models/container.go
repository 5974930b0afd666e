package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Field length limits enforced before any gateway call.
const (
	MaxContainerNameLen        = 50
	MaxContainerDescriptionLen = 200
	MaxLinkNoteLen             = 100
)

var validate = validator.New()

// Container is a named, colored grouping of links. Links are embedded in the
// container document rather than stored as a separate collection, and their
// ordering is significant.
type Container struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name" validate:"required,max=50"`
	Description     string      `json:"description,omitempty" validate:"max=200"`
	Color           string      `json:"color,omitempty" validate:"omitempty,hexcolor"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	AuthorizedUsers []uuid.UUID `json:"authorized_users,omitempty"`
	Links           []Link      `json:"links"`
	Order           int         `json:"order"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IsShared reports whether the container belongs to someone other than the
// viewer (i.e. it appeared in the viewer's list through a grant).
func (c *Container) IsShared(viewerID uuid.UUID) bool {
	return c.OwnerID != viewerID
}

// FindLink returns the index of the link with the given id, or -1.
func (c *Container) FindLink(linkID string) int {
	for i := range c.Links {
		if c.Links[i].ID == linkID {
			return i
		}
	}
	return -1
}

// HasAuthorizedUser reports whether userID already holds access.
func (c *Container) HasAuthorizedUser(userID uuid.UUID) bool {
	for _, id := range c.AuthorizedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// AddAuthorizedUser adds userID with set semantics. The owner is never stored
// in the authorized list.
func (c *Container) AddAuthorizedUser(userID uuid.UUID) {
	if userID == c.OwnerID || c.HasAuthorizedUser(userID) {
		return
	}
	c.AuthorizedUsers = append(c.AuthorizedUsers, userID)
}

// RemoveAuthorizedUser drops userID from the authorized list if present.
func (c *Container) RemoveAuthorizedUser(userID uuid.UUID) {
	for i, id := range c.AuthorizedUsers {
		if id == userID {
			c.AuthorizedUsers = append(c.AuthorizedUsers[:i], c.AuthorizedUsers[i+1:]...)
			return
		}
	}
}

// ContainerCreate represents data for creating a new container
type ContainerCreate struct {
	Name        string `json:"name" binding:"required" validate:"required,max=50"`
	Description string `json:"description,omitempty" validate:"max=200"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// Validate checks the length and format constraints.
func (c *ContainerCreate) Validate() error {
	return validate.Struct(c)
}

// ContainerUpdate represents data for updating container metadata. Nil fields
// are left unchanged.
type ContainerUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Order       *int    `json:"order,omitempty"`
}

// Validate checks the length and format constraints.
func (c *ContainerUpdate) Validate() error {
	return validate.Struct(c)
}
