package postgres

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ShareLinks implements gateway.ShareLinkGateway.
type ShareLinks struct {
	Pool *pgxpool.Pool
}

const shareLinkColumns = `id, container_id, token, permission, expires_at, max_uses, current_uses, is_active, created_at`

// generateSecureToken generates a cryptographically secure random token.
func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	// Use URL-safe base64 encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func scanShareLink(row pgx.Row) (*models.ShareLink, error) {
	var s models.ShareLink
	err := row.Scan(
		&s.ID,
		&s.ContainerID,
		&s.Token,
		&s.Permission,
		&s.ExpiresAt,
		&s.MaxUses,
		&s.CurrentUses,
		&s.IsActive,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *ShareLinks) Create(ctx context.Context, containerID uuid.UUID, permission models.Permission, expiresAt *time.Time, maxUses *int) (*models.ShareLink, error) {
	token, err := generateSecureToken()
	if err != nil {
		return nil, gateway.NewGatewayError("failed to mint token", err)
	}

	link, err := scanShareLink(g.Pool.QueryRow(ctx,
		`INSERT INTO share_links (container_id, token, permission, expires_at, max_uses)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+shareLinkColumns,
		containerID, token, permission, expiresAt, maxUses,
	))
	if err != nil {
		return nil, gateway.NewGatewayError("failed to create share link", err)
	}
	return link, nil
}

func (g *ShareLinks) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	link, err := scanShareLink(g.Pool.QueryRow(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gateway.NewNotFoundError("share link")
	}
	if err != nil {
		return nil, gateway.NewGatewayError("failed to get share link", err)
	}
	return link, nil
}

// UseShareLink records one access. The validity check and the increment share
// a single guarded UPDATE, so the counter moves by exactly 1 per successful
// use and never past the limit.
func (g *ShareLinks) Use(ctx context.Context, token string) (*models.ShareLink, error) {
	link, err := scanShareLink(g.Pool.QueryRow(ctx,
		`UPDATE share_links
		 SET current_uses = current_uses + 1
		 WHERE token = $1
		   AND is_active
		   AND (expires_at IS NULL OR expires_at > now())
		   AND (max_uses IS NULL OR current_uses < max_uses)
		 RETURNING `+shareLinkColumns,
		token,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a dead link from one that never existed.
		if _, getErr := g.GetByToken(ctx, token); getErr != nil {
			return nil, getErr
		}
		return nil, gateway.NewExpiredError("share link")
	}
	if err != nil {
		return nil, gateway.NewGatewayError("failed to use share link", err)
	}
	return link, nil
}

func (g *ShareLinks) ListForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareLink, error) {
	rows, err := g.Pool.Query(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links
		 WHERE container_id = $1 ORDER BY created_at`,
		containerID,
	)
	if err != nil {
		return nil, gateway.NewGatewayError("failed to query share links", err)
	}
	defer rows.Close()

	var links []models.ShareLink
	for rows.Next() {
		link, err := scanShareLink(rows)
		if err != nil {
			return nil, gateway.NewGatewayError("failed to scan share link", err)
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

func (g *ShareLinks) Deactivate(ctx context.Context, containerID, id uuid.UUID) error {
	tag, err := g.Pool.Exec(ctx,
		`UPDATE share_links SET is_active = false WHERE id = $1 AND container_id = $2`,
		id, containerID)
	if err != nil {
		return gateway.NewGatewayError("failed to deactivate share link", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.NewNotFoundError("share link " + id.String())
	}
	return nil
}
