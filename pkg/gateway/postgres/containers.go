package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const containerColumns = `id, name, description, color, owner_id, authorized_users, links, ord, created_at, updated_at`

func scanContainer(row pgx.Row) (*models.Container, error) {
	var c models.Container
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Color,
		&c.OwnerID,
		&c.AuthorizedUsers,
		&c.Links,
		&c.Order,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Links == nil {
		c.Links = []models.Link{}
	}
	return &c, nil
}

// Create inserts the container and returns the database-allocated identity.
func (g *Gateway) Create(ctx context.Context, container *models.Container) (uuid.UUID, error) {
	var id uuid.UUID
	err := g.Pool.QueryRow(ctx,
		`INSERT INTO containers (name, description, color, owner_id, authorized_users, links, ord)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		container.Name, container.Description, container.Color,
		container.OwnerID, container.AuthorizedUsers, container.Links, container.Order,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, gateway.NewGatewayError("failed to create container", err)
	}
	return id, nil
}

func (g *Gateway) Get(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	c, err := scanContainer(g.Pool.QueryRow(ctx,
		`SELECT `+containerColumns+` FROM containers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.NewNotFoundError("container " + id.String())
	}
	if err != nil {
		return nil, gateway.NewGatewayError("failed to get container", err)
	}
	return c, nil
}

// Update applies a partial metadata change, building the SET clause from the
// provided fields.
func (g *Gateway) Update(ctx context.Context, id uuid.UUID, update models.ContainerUpdate) error {
	query := `UPDATE containers SET updated_at = now()`
	args := []interface{}{id}
	argPos := 2

	if update.Name != nil {
		query += fmt.Sprintf(", name = $%d", argPos)
		args = append(args, *update.Name)
		argPos++
	}
	if update.Description != nil {
		query += fmt.Sprintf(", description = $%d", argPos)
		args = append(args, *update.Description)
		argPos++
	}
	if update.Color != nil {
		query += fmt.Sprintf(", color = $%d", argPos)
		args = append(args, *update.Color)
		argPos++
	}
	if update.Order != nil {
		query += fmt.Sprintf(", ord = $%d", argPos)
		args = append(args, *update.Order)
		argPos++
	}
	query += ` WHERE id = $1`

	tag, err := g.Pool.Exec(ctx, query, args...)
	if err != nil {
		return gateway.NewGatewayError("failed to update container", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.NewNotFoundError("container " + id.String())
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := g.Pool.Exec(ctx, `DELETE FROM containers WHERE id = $1`, id)
	if err != nil {
		return gateway.NewGatewayError("failed to delete container", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.NewNotFoundError("container " + id.String())
	}
	_, err = g.Pool.Exec(ctx, `DELETE FROM permission_grants WHERE container_id = $1`, id)
	if err != nil {
		return gateway.NewGatewayError("failed to delete container grants", err)
	}
	return nil
}

// ListForUser returns owned and shared-with-user containers. One table holds
// both, so rows de-duplicate naturally and an owned row always wins.
func (g *Gateway) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Container, error) {
	rows, err := g.Pool.Query(ctx,
		`SELECT `+containerColumns+`
		 FROM containers
		 WHERE owner_id = $1 OR authorized_users @> ARRAY[$1]::uuid[]
		 ORDER BY ord, created_at`,
		userID,
	)
	if err != nil {
		return nil, gateway.NewGatewayError("failed to list containers", err)
	}
	defer rows.Close()

	var containers []models.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, gateway.NewGatewayError("failed to scan container", err)
		}
		containers = append(containers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, gateway.NewGatewayError("failed to list containers", err)
	}
	return containers, nil
}

// mutateLinks rewrites a container's links document inside a transaction,
// locking the row so concurrent sub-mutations serialize instead of clobbering
// each other.
func (g *Gateway) mutateLinks(ctx context.Context, containerID uuid.UUID, fn func(links []models.Link) ([]models.Link, error)) error {
	tx, err := g.Pool.Begin(ctx)
	if err != nil {
		return gateway.NewGatewayError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var links []models.Link
	err = tx.QueryRow(ctx,
		`SELECT links FROM containers WHERE id = $1 FOR UPDATE`, containerID,
	).Scan(&links)
	if errors.Is(err, pgx.ErrNoRows) {
		return gateway.NewNotFoundError("container " + containerID.String())
	}
	if err != nil {
		return gateway.NewGatewayError("failed to read links", err)
	}

	updated, err := fn(links)
	if err != nil {
		return err
	}
	if updated == nil {
		updated = []models.Link{}
	}

	_, err = tx.Exec(ctx,
		`UPDATE containers SET links = $2, updated_at = now() WHERE id = $1`,
		containerID, updated,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to write links", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return gateway.NewGatewayError("failed to commit links", err)
	}
	return nil
}

func (g *Gateway) AddLink(ctx context.Context, containerID uuid.UUID, link models.Link) error {
	return g.mutateLinks(ctx, containerID, func(links []models.Link) ([]models.Link, error) {
		for _, l := range links {
			if l.ID == link.ID {
				return nil, gateway.NewValidationError("link %s already exists in container", link.ID)
			}
		}
		return append(links, link), nil
	})
}

func (g *Gateway) UpdateLink(ctx context.Context, containerID uuid.UUID, linkID string, update models.LinkUpdate) error {
	return g.mutateLinks(ctx, containerID, func(links []models.Link) ([]models.Link, error) {
		for i := range links {
			if links[i].ID == linkID {
				update.Apply(&links[i])
				return links, nil
			}
		}
		return nil, gateway.NewNotFoundError("link " + linkID)
	})
}

func (g *Gateway) DeleteLink(ctx context.Context, containerID uuid.UUID, linkID string) error {
	return g.DeleteLinks(ctx, containerID, []string{linkID})
}

func (g *Gateway) DeleteLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	drop := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		drop[id] = true
	}
	return g.mutateLinks(ctx, containerID, func(links []models.Link) ([]models.Link, error) {
		kept := make([]models.Link, 0, len(links))
		for _, l := range links {
			if !drop[l.ID] {
				kept = append(kept, l)
			}
		}
		if len(links)-len(kept) != len(drop) {
			return nil, gateway.NewNotFoundError("one or more links not in container")
		}
		return kept, nil
	})
}

// ReorderLinks persists the full caller-computed ordering.
func (g *Gateway) ReorderLinks(ctx context.Context, containerID uuid.UUID, linkIDs []string) error {
	return g.mutateLinks(ctx, containerID, func(links []models.Link) ([]models.Link, error) {
		if len(linkIDs) != len(links) {
			return nil, gateway.NewValidationError("ordering must include all %d links", len(links))
		}
		byID := make(map[string]models.Link, len(links))
		for _, l := range links {
			byID[l.ID] = l
		}
		reordered := make([]models.Link, 0, len(linkIDs))
		for _, id := range linkIDs {
			l, ok := byID[id]
			if !ok {
				return nil, gateway.NewNotFoundError("link " + id)
			}
			delete(byID, id)
			reordered = append(reordered, l)
		}
		return reordered, nil
	})
}

func (g *Gateway) MoveLink(ctx context.Context, sourceID, targetID uuid.UUID, linkID string) error {
	return g.MoveLinks(ctx, sourceID, targetID, []string{linkID})
}

// MoveLinks rewrites both container documents in one transaction, locking the
// rows in a stable order. Moved links keep every field except UpdatedAt and
// land at the end of the target sequence in their original relative order.
func (g *Gateway) MoveLinks(ctx context.Context, sourceID, targetID uuid.UUID, linkIDs []string) error {
	if sourceID == targetID {
		return gateway.NewValidationError("source and target container are the same")
	}

	tx, err := g.Pool.Begin(ctx)
	if err != nil {
		return gateway.NewGatewayError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Lock rows in id order so two opposing moves cannot deadlock.
	first, second := sourceID, targetID
	if second.String() < first.String() {
		first, second = second, first
	}
	lockRow := func(id uuid.UUID) ([]models.Link, error) {
		var links []models.Link
		err := tx.QueryRow(ctx,
			`SELECT links FROM containers WHERE id = $1 FOR UPDATE`, id,
		).Scan(&links)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.NewNotFoundError("container " + id.String())
		}
		if err != nil {
			return nil, gateway.NewGatewayError("failed to read links", err)
		}
		return links, nil
	}
	firstLinks, err := lockRow(first)
	if err != nil {
		return err
	}
	secondLinks, err := lockRow(second)
	if err != nil {
		return err
	}
	sourceLinks, targetLinks := firstLinks, secondLinks
	if first != sourceID {
		sourceLinks, targetLinks = secondLinks, firstLinks
	}

	want := make(map[string]bool, len(linkIDs))
	for _, id := range linkIDs {
		want[id] = true
	}
	now := time.Now().UTC()
	var moved []models.Link
	kept := make([]models.Link, 0, len(sourceLinks))
	for _, l := range sourceLinks {
		if want[l.ID] {
			l.UpdatedAt = now
			moved = append(moved, l)
		} else {
			kept = append(kept, l)
		}
	}
	if len(moved) != len(want) {
		return gateway.NewNotFoundError("one or more links not in source container")
	}
	targetLinks = append(targetLinks, moved...)

	for _, w := range []struct {
		id    uuid.UUID
		links []models.Link
	}{{sourceID, kept}, {targetID, targetLinks}} {
		if _, err := tx.Exec(ctx,
			`UPDATE containers SET links = $2, updated_at = now() WHERE id = $1`,
			w.id, w.links,
		); err != nil {
			return gateway.NewGatewayError("failed to write links", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return gateway.NewGatewayError("failed to commit move", err)
	}
	return nil
}

func (g *Gateway) RecordClick(ctx context.Context, containerID uuid.UUID, linkID string, day string) error {
	return g.mutateLinks(ctx, containerID, func(links []models.Link) ([]models.Link, error) {
		for i := range links {
			if links[i].ID == linkID {
				links[i].RecordClick(day)
				return links, nil
			}
		}
		return nil, gateway.NewNotFoundError("link " + linkID)
	})
}
