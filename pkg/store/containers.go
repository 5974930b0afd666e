package store

import (
	"context"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/logger"
	"linkvault/pkg/models"

	"github.com/google/uuid"
)

// CreateContainer validates the input, asks the gateway to persist the new
// container (the gateway allocates the identity), and inserts the
// authoritative result into the mirror.
func (s *Store) CreateContainer(ctx context.Context, create models.ContainerCreate) (*models.Container, error) {
	if err := create.Validate(); err != nil {
		return nil, s.fail(gateway.NewValidationError("invalid container: %v", err))
	}

	s.mu.Lock()
	now := time.Now().UTC()
	container := models.Container{
		Name:        create.Name,
		Description: create.Description,
		Color:       create.Color,
		OwnerID:     s.userID,
		Links:       []models.Link{},
		Order:       len(s.containers),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Unlock()

	id, err := s.collections.Create(ctx, &container)
	if err != nil {
		return nil, s.fail(err)
	}
	container.ID = id

	s.mu.Lock()
	s.bumpLocked()
	s.containers = append(s.containers, container)
	s.sortLocked()
	s.mu.Unlock()
	s.notify()
	return &container, nil
}

// UpdateContainer persists a metadata change and applies it to the mirror on
// success.
func (s *Store) UpdateContainer(ctx context.Context, id uuid.UUID, update models.ContainerUpdate) error {
	if err := update.Validate(); err != nil {
		return s.fail(gateway.NewValidationError("invalid container update: %v", err))
	}
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + id.String()))
	}
	s.mu.Unlock()

	if err := s.collections.Update(ctx, id, update); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.bumpLocked()
	if i := s.indexLocked(id); i >= 0 {
		c := &s.containers[i]
		if update.Name != nil {
			c.Name = *update.Name
		}
		if update.Description != nil {
			c.Description = *update.Description
		}
		if update.Color != nil {
			c.Color = *update.Color
		}
		if update.Order != nil {
			c.Order = *update.Order
		}
		c.UpdatedAt = time.Now().UTC()
		s.sortLocked()
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteContainer removes the container at the gateway, then drops it from
// the mirror along with any soft-delete timers for its links.
func (s *Store) DeleteContainer(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + id.String()))
	}
	s.mu.Unlock()

	if err := s.collections.Delete(ctx, id); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.bumpLocked()
	if i := s.indexLocked(id); i >= 0 {
		s.containers = append(s.containers[:i], s.containers[i+1:]...)
	}
	for linkID, pd := range s.pending {
		if pd.containerID == id {
			pd.timer.Stop()
			delete(s.pending, linkID)
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// ReorderContainers applies the caller-computed full ordering optimistically,
// then persists each container's new position. The caller hands over the
// complete merged list, already recombined from any personal/shared
// partitioning, so positions in one section never shuffle the other.
// Persistence failure resynchronizes via a full refetch.
func (s *Store) ReorderContainers(ctx context.Context, orderedIDs []uuid.UUID) error {
	s.mu.Lock()
	if len(orderedIDs) != len(s.containers) {
		s.mu.Unlock()
		return s.fail(gateway.NewValidationError("ordering must include all %d containers", len(s.containers)))
	}
	pos := make(map[uuid.UUID]int, len(orderedIDs))
	for i, id := range orderedIDs {
		pos[id] = i
	}
	for i := range s.containers {
		p, ok := pos[s.containers[i].ID]
		if !ok {
			s.mu.Unlock()
			return s.fail(gateway.NewValidationError("ordering references unknown container"))
		}
		s.containers[i].Order = p
	}
	s.bumpLocked()
	s.sortLocked()
	s.mu.Unlock()
	s.notify()

	for i, id := range orderedIDs {
		order := i
		if err := s.collections.Update(ctx, id, models.ContainerUpdate{Order: &order}); err != nil {
			logger.LogError(err, "persist container order for %s", id)
			s.resync(ctx)
			return nil
		}
	}
	return nil
}
