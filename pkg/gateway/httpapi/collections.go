package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"linkvault/pkg/models"

	"github.com/google/uuid"
)

// Collections implements gateway.RemoteCollectionGateway.
type Collections struct {
	c *Client
}

// Create persists a new container and returns its server-allocated identity.
func (g *Collections) Create(ctx context.Context, container *models.Container) (uuid.UUID, error) {
	create := models.ContainerCreate{
		Name:        container.Name,
		Description: container.Description,
		Color:       container.Color,
	}
	var created models.Container
	if err := g.c.doJSONRequest(ctx, http.MethodPost, "/api/v1/containers", create, &created); err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

// Get retrieves a single container by ID.
func (g *Collections) Get(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	var container models.Container
	path := fmt.Sprintf("/api/v1/containers/%s", id)
	if err := g.c.doGetRequest(ctx, path, &container); err != nil {
		return nil, err
	}
	return &container, nil
}

// Update applies a partial metadata change.
func (g *Collections) Update(ctx context.Context, id uuid.UUID, update models.ContainerUpdate) error {
	path := fmt.Sprintf("/api/v1/containers/%s", id)
	return g.c.doJSONRequest(ctx, http.MethodPut, path, update, nil)
}

// Delete removes a container.
func (g *Collections) Delete(ctx context.Context, id uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/containers/%s", id)
	return g.c.doDeleteRequest(ctx, path)
}

// ListForUser retrieves all containers visible to the authenticated user. The
// user identity travels in the API key, so userID only matters to other
// gateway implementations.
func (g *Collections) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Container, error) {
	var containers []models.Container
	if err := g.c.doGetRequest(ctx, "/api/v1/containers", &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// AddLink appends a link to the container document.
func (g *Collections) AddLink(ctx context.Context, containerID uuid.UUID, link models.Link) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links", containerID)
	return g.c.doJSONRequest(ctx, http.MethodPost, path, link, nil)
}

// UpdateLink applies a partial link update.
func (g *Collections) UpdateLink(ctx context.Context, containerID uuid.UUID, linkID string, update models.LinkUpdate) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links/%s", containerID, linkID)
	return g.c.doJSONRequest(ctx, http.MethodPut, path, update, nil)
}

// DeleteLink removes a single link.
func (g *Collections) DeleteLink(ctx context.Context, containerID uuid.UUID, linkID string) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links/%s", containerID, linkID)
	return g.c.doDeleteRequest(ctx, path)
}

// DeleteLinks bulk-deletes links as one container write.
func (g *Collections) DeleteLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links/bulk-delete", containerID)
	payload := map[string][]string{"link_ids": linkIDs}
	return g.c.doJSONRequest(ctx, http.MethodPost, path, payload, nil)
}

// ReorderLinks persists the full new ordering.
func (g *Collections) ReorderLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links/order", containerID)
	payload := map[string][]string{"link_ids": linkIDs}
	return g.c.doJSONRequest(ctx, http.MethodPut, path, payload, nil)
}

// MoveLink moves one link to another container.
func (g *Collections) MoveLink(ctx context.Context, sourceID, targetID uuid.UUID, linkID string) error {
	return g.MoveLinks(ctx, sourceID, targetID, []string{linkID})
}

// MoveLinks moves links to another container, preserving relative order.
func (g *Collections) MoveLinks(ctx context.Context, sourceID, targetID uuid.UUID, linkIDs []string) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links/move", sourceID)
	payload := struct {
		TargetID uuid.UUID `json:"target_id"`
		LinkIDs  []string  `json:"link_ids"`
	}{targetID, linkIDs}
	return g.c.doJSONRequest(ctx, http.MethodPost, path, payload, nil)
}

// RecordClick reports one click on a link.
func (g *Collections) RecordClick(ctx context.Context, containerID uuid.UUID, linkID string, day string) error {
	path := fmt.Sprintf("/api/v1/containers/%s/links/%s/click", containerID, linkID)
	payload := map[string]string{"day": day}
	return g.c.doJSONRequest(ctx, http.MethodPost, path, payload, nil)
}
