package store

import (
	"context"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/logger"
	"linkvault/pkg/models"
	"linkvault/pkg/utils"

	"github.com/google/uuid"
)

// AddLink validates and normalizes the input, persists the new link at the
// gateway, and appends it to the container's mirror entry. The link identity
// is client-generated because it must survive moves between containers.
// Favicon refinement runs afterwards in the background and patches the record
// if it succeeds; link creation never waits on it.
func (s *Store) AddLink(ctx context.Context, containerID uuid.UUID, create models.LinkCreate) (*models.Link, error) {
	if err := create.Validate(); err != nil {
		return nil, s.fail(gateway.NewValidationError("invalid link: %v", err))
	}
	normalized, err := utils.NormalizeURL(create.URL)
	if err != nil {
		return nil, s.fail(gateway.NewValidationError("%v", err))
	}

	s.mu.Lock()
	if s.indexLocked(containerID) < 0 {
		s.mu.Unlock()
		return nil, s.fail(gateway.NewNotFoundError("container " + containerID.String()))
	}
	userID := s.userID
	s.mu.Unlock()

	now := time.Now().UTC()
	link := models.Link{
		ID:          models.NewLinkID(),
		Title:       create.Title,
		URL:         normalized,
		Description: create.Description,
		Tags:        models.NormalizeTags(create.Tags),
		Note:        create.Note,
		Emoji:       create.Emoji,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.collections.AddLink(ctx, containerID, link); err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.bumpLocked()
	if i := s.indexLocked(containerID); i >= 0 {
		s.containers[i].Links = append(s.containers[i].Links, link)
		s.containers[i].UpdatedAt = now
	}
	s.mu.Unlock()
	s.notify()

	if s.resolver != nil {
		go s.refineFavicon(containerID, link.ID, normalized)
	}
	return &link, nil
}

// refineFavicon is the fire-and-forget enrichment pass. Any failure is
// logged and otherwise ignored.
func (s *Store) refineFavicon(containerID uuid.UUID, linkID, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	p, err := s.resolver.Resolve(ctx, url)
	if err != nil || p.Favicon == "" {
		return
	}

	favicon := p.Favicon
	update := models.LinkUpdate{Favicon: &favicon}
	if err := s.collections.UpdateLink(ctx, containerID, linkID, update); err != nil {
		logger.LogError(err, "patch favicon for link %s", linkID)
		return
	}

	s.mu.Lock()
	if i := s.indexLocked(containerID); i >= 0 {
		if j := s.containers[i].FindLink(linkID); j >= 0 {
			s.containers[i].Links[j].Favicon = favicon
		}
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateLink persists a link change and applies it to the mirror on success.
func (s *Store) UpdateLink(ctx context.Context, containerID uuid.UUID, linkID string, update models.LinkUpdate) error {
	if err := update.Validate(); err != nil {
		return s.fail(gateway.NewValidationError("invalid link update: %v", err))
	}
	if update.URL != nil {
		normalized, err := utils.NormalizeURL(*update.URL)
		if err != nil {
			return s.fail(gateway.NewValidationError("%v", err))
		}
		update.URL = &normalized
	}

	s.mu.Lock()
	i := s.indexLocked(containerID)
	if i < 0 || s.containers[i].FindLink(linkID) < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("link " + linkID))
	}
	s.mu.Unlock()

	if err := s.collections.UpdateLink(ctx, containerID, linkID, update); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.bumpLocked()
	if i := s.indexLocked(containerID); i >= 0 {
		if j := s.containers[i].FindLink(linkID); j >= 0 {
			update.Apply(&s.containers[i].Links[j])
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteLink soft-deletes a single link: it disappears from the mirror
// immediately, and the gateway delete fires only after the grace window
// passes without an undo. No network call is made up front.
func (s *Store) DeleteLink(ctx context.Context, containerID uuid.UUID, linkID string) error {
	s.mu.Lock()
	i := s.indexLocked(containerID)
	if i < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + containerID.String()))
	}
	j := s.containers[i].FindLink(linkID)
	if j < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("link " + linkID))
	}

	pd := &pendingDelete{
		containerID: containerID,
		link:        s.containers[i].Links[j],
		index:       j,
	}
	s.containers[i].Links = append(s.containers[i].Links[:j], s.containers[i].Links[j+1:]...)
	s.bumpLocked()
	pd.timer = time.AfterFunc(s.graceWindow, func() {
		s.finalizeDelete(linkID)
	})
	s.pending[linkID] = pd
	s.mu.Unlock()
	s.notify()
	return nil
}

// finalizeDelete runs when the grace window elapses without an undo.
func (s *Store) finalizeDelete(linkID string) {
	s.mu.Lock()
	pd, ok := s.pending[linkID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, linkID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.collections.DeleteLink(ctx, pd.containerID, pd.link.ID); err != nil {
		// The link is already hidden locally but still exists remotely;
		// resync so the mirror converges on the durable state.
		logger.LogError(err, "finalize delete of link %s", pd.link.ID)
		s.fail(err)
		s.resync(ctx)
		return
	}

	// A fetch that raced the pending-map cleanup above may have reinstalled
	// the link; drop it so the mirror matches the backend.
	s.mu.Lock()
	if i := s.indexLocked(pd.containerID); i >= 0 {
		if j := s.containers[i].FindLink(pd.link.ID); j >= 0 {
			s.containers[i].Links = append(s.containers[i].Links[:j], s.containers[i].Links[j+1:]...)
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	s.mu.Unlock()
}

// UndoDelete cancels a pending soft delete within the grace window and
// restores the link at its original position. It reports whether there was
// anything to undo.
func (s *Store) UndoDelete(linkID string) bool {
	s.mu.Lock()
	pd, ok := s.pending[linkID]
	if !ok || !pd.timer.Stop() {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, linkID)
	s.bumpLocked()
	if i := s.indexLocked(pd.containerID); i >= 0 {
		links := s.containers[i].Links
		at := pd.index
		if at > len(links) {
			at = len(links)
		}
		links = append(links, models.Link{})
		copy(links[at+1:], links[at:])
		links[at] = pd.link
		s.containers[i].Links = links
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// DeleteLinks bulk-deletes immediately, with no grace window. The gateway
// applies the batch as a single container write, so a failure means the whole
// batch failed.
func (s *Store) DeleteLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	if len(linkIDs) == 0 {
		return nil
	}
	s.mu.Lock()
	if s.indexLocked(containerID) < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + containerID.String()))
	}
	s.mu.Unlock()

	if err := s.collections.DeleteLinks(ctx, containerID, linkIDs); err != nil {
		return s.fail(err)
	}

	drop := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		drop[id] = true
	}
	s.mu.Lock()
	s.bumpLocked()
	if i := s.indexLocked(containerID); i >= 0 {
		kept := s.containers[i].Links[:0]
		for _, l := range s.containers[i].Links {
			if !drop[l.ID] {
				kept = append(kept, l)
			}
		}
		s.containers[i].Links = kept
		s.containers[i].UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// ReorderLinks applies the caller-computed permutation to the mirror first,
// then persists the entire new ordering. On gateway failure the optimistic
// change is discarded by a full refetch; no error reaches the caller.
func (s *Store) ReorderLinks(ctx context.Context, containerID uuid.UUID, orderedIDs []string) error {
	s.mu.Lock()
	i := s.indexLocked(containerID)
	if i < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + containerID.String()))
	}
	current := s.containers[i].Links
	if len(orderedIDs) != len(current) {
		s.mu.Unlock()
		return s.fail(gateway.NewValidationError("ordering must include all %d links", len(current)))
	}
	byID := make(map[string]models.Link, len(current))
	for _, l := range current {
		byID[l.ID] = l
	}
	reordered := make([]models.Link, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		l, ok := byID[id]
		if !ok {
			s.mu.Unlock()
			return s.fail(gateway.NewValidationError("ordering references unknown link %s", id))
		}
		delete(byID, id)
		reordered = append(reordered, l)
	}
	s.containers[i].Links = reordered
	s.bumpLocked()
	s.mu.Unlock()
	s.notify()

	if err := s.collections.ReorderLinks(ctx, containerID, orderedIDs); err != nil {
		logger.LogError(err, "persist link order in container %s", containerID)
		s.resync(ctx)
	}
	return nil
}

// MoveLink moves one link from source to target, appending it at the end of
// the target's sequence. The gateway performs a source write and a target
// write that are not atomic with each other; on failure the mirror keeps its
// pre-call state and the divergence, if any, is the gateway's to report.
func (s *Store) MoveLink(ctx context.Context, sourceID, targetID uuid.UUID, linkID string) error {
	return s.MoveLinks(ctx, sourceID, targetID, []string{linkID})
}

// MoveLinks bulk-moves links, preserving their original relative order in the
// target container.
func (s *Store) MoveLinks(ctx context.Context, sourceID, targetID uuid.UUID, linkIDs []string) error {
	if len(linkIDs) == 0 {
		return nil
	}
	if sourceID == targetID {
		return s.fail(gateway.NewValidationError("source and target container are the same"))
	}

	s.mu.Lock()
	si := s.indexLocked(sourceID)
	ti := s.indexLocked(targetID)
	if si < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + sourceID.String()))
	}
	if ti < 0 {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("container " + targetID.String()))
	}
	want := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		want[id] = true
	}
	found := 0
	for _, l := range s.containers[si].Links {
		if want[l.ID] {
			found++
		}
	}
	if found != len(want) {
		s.mu.Unlock()
		return s.fail(gateway.NewNotFoundError("one or more links not in source container"))
	}
	s.mu.Unlock()

	if err := s.collections.MoveLinks(ctx, sourceID, targetID, linkIDs); err != nil {
		return s.fail(err)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.bumpLocked()
	si = s.indexLocked(sourceID)
	ti = s.indexLocked(targetID)
	if si >= 0 && ti >= 0 {
		var moved []models.Link
		kept := s.containers[si].Links[:0]
		for _, l := range s.containers[si].Links {
			if want[l.ID] {
				l.UpdatedAt = now
				moved = append(moved, l)
			} else {
				kept = append(kept, l)
			}
		}
		s.containers[si].Links = kept
		s.containers[si].UpdatedAt = now
		s.containers[ti].Links = append(s.containers[ti].Links, moved...)
		s.containers[ti].UpdatedAt = now
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// TrackClick bumps the click counters in the mirror immediately and reports
// the click to the gateway in the background. Clicks are a best-effort
// metric: a failed report is logged and never rolled back.
func (s *Store) TrackClick(ctx context.Context, containerID uuid.UUID, linkID string) {
	day := today()
	s.mu.Lock()
	i := s.indexLocked(containerID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	j := s.containers[i].FindLink(linkID)
	if j < 0 {
		s.mu.Unlock()
		return
	}
	s.containers[i].Links[j].RecordClick(day)
	s.mu.Unlock()
	s.notify()

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.collections.RecordClick(ctx, containerID, linkID, day); err != nil {
			logger.LogError(err, "record click for link %s", linkID)
		}
	}()
}
