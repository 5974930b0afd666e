package postgres

import (
	"context"
	"errors"

	"linkvault/pkg/gateway"
	"linkvault/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sharing implements gateway.SharingGateway.
type Sharing struct {
	Pool *pgxpool.Pool
}

const invitationColumns = `id, container_id, email, permission, invited_by, status, created_at, expires_at`

func scanInvitation(row pgx.Row) (*models.ShareInvitation, error) {
	var inv models.ShareInvitation
	err := row.Scan(
		&inv.ID,
		&inv.ContainerID,
		&inv.Email,
		&inv.Permission,
		&inv.InvitedBy,
		&inv.Status,
		&inv.CreatedAt,
		&inv.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SendInvitation stores a pending invitation, replacing any existing pending
// one for the same (container, email) pair.
func (g *Sharing) SendInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	tx, err := g.Pool.Begin(ctx)
	if err != nil {
		return gateway.NewGatewayError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM share_invitations
		 WHERE container_id = $1 AND email = $2 AND status = 'pending'`,
		inv.ContainerID, inv.Email,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to replace invitation", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO share_invitations (`+invitationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.ContainerID, inv.Email, inv.Permission,
		inv.InvitedBy, inv.Status, inv.CreatedAt, inv.ExpiresAt,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to store invitation", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return gateway.NewGatewayError("failed to commit invitation", err)
	}
	return nil
}

func (g *Sharing) GetInvitationsForContainer(ctx context.Context, containerID uuid.UUID) ([]models.ShareInvitation, error) {
	return g.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM share_invitations
		 WHERE container_id = $1 ORDER BY created_at`, containerID)
}

func (g *Sharing) GetInvitationsForEmail(ctx context.Context, email string) ([]models.ShareInvitation, error) {
	return g.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM share_invitations
		 WHERE email = $1 ORDER BY created_at`, email)
}

func (g *Sharing) queryInvitations(ctx context.Context, query string, arg interface{}) ([]models.ShareInvitation, error) {
	rows, err := g.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, gateway.NewGatewayError("failed to query invitations", err)
	}
	defer rows.Close()

	var invitations []models.ShareInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, gateway.NewGatewayError("failed to scan invitation", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// AcceptInvitation grants access and marks the invitation accepted in one
// transaction: grant upsert first, authorized-users union second, status flip
// last, so nothing is marked accepted unless access was actually granted.
func (g *Sharing) AcceptInvitation(ctx context.Context, invitationID uuid.UUID, userID uuid.UUID) error {
	tx, err := g.Pool.Begin(ctx)
	if err != nil {
		return gateway.NewGatewayError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	inv, err := scanInvitation(tx.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM share_invitations WHERE id = $1 FOR UPDATE`,
		invitationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return gateway.NewNotFoundError("invitation " + invitationID.String())
	}
	if err != nil {
		return gateway.NewGatewayError("failed to get invitation", err)
	}
	if inv.Status != models.InvitationPending {
		return gateway.NewValidationError("invitation already %s", inv.Status)
	}
	if inv.IsExpired() {
		return gateway.NewExpiredError("invitation " + invitationID.String())
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO permission_grants (container_id, user_id, permission, granted_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (container_id, user_id)
		 DO UPDATE SET permission = EXCLUDED.permission, granted_by = EXCLUDED.granted_by, granted_at = now()`,
		inv.ContainerID, userID, inv.Permission, inv.InvitedBy,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to store grant", err)
	}

	// Union-style append: never rewrites the whole array, so concurrent
	// acceptances by different invitees cannot clobber each other.
	_, err = tx.Exec(ctx,
		`UPDATE containers
		 SET authorized_users = array_append(authorized_users, $2), updated_at = now()
		 WHERE id = $1 AND owner_id <> $2 AND NOT (authorized_users @> ARRAY[$2]::uuid[])`,
		inv.ContainerID, userID,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to authorize user", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE share_invitations SET status = 'accepted' WHERE id = $1`,
		invitationID,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to mark invitation accepted", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return gateway.NewGatewayError("failed to commit acceptance", err)
	}
	return nil
}

func (g *Sharing) DeclineInvitation(ctx context.Context, invitationID uuid.UUID) error {
	tag, err := g.Pool.Exec(ctx,
		`UPDATE share_invitations SET status = 'declined' WHERE id = $1 AND status = 'pending'`,
		invitationID,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to decline invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.NewNotFoundError("pending invitation " + invitationID.String())
	}
	return nil
}

// CancelInvitation is a hard delete, not a stored terminal state.
func (g *Sharing) CancelInvitation(ctx context.Context, invitationID uuid.UUID) error {
	tag, err := g.Pool.Exec(ctx,
		`DELETE FROM share_invitations WHERE id = $1 AND status = 'pending'`,
		invitationID,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to cancel invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.NewNotFoundError("pending invitation " + invitationID.String())
	}
	return nil
}

func (g *Sharing) SetPermission(ctx context.Context, grant *models.PermissionGrant) error {
	_, err := g.Pool.Exec(ctx,
		`INSERT INTO permission_grants (container_id, user_id, permission, granted_by, granted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (container_id, user_id)
		 DO UPDATE SET permission = EXCLUDED.permission, granted_by = EXCLUDED.granted_by, granted_at = EXCLUDED.granted_at`,
		grant.ContainerID, grant.UserID, grant.Permission, grant.GrantedBy, grant.GrantedAt,
	)
	if err != nil {
		return gateway.NewGatewayError("failed to set permission", err)
	}
	return nil
}

func (g *Sharing) GetPermission(ctx context.Context, containerID, userID uuid.UUID) (*models.PermissionGrant, error) {
	var grant models.PermissionGrant
	err := g.Pool.QueryRow(ctx,
		`SELECT container_id, user_id, permission, granted_by, granted_at
		 FROM permission_grants WHERE container_id = $1 AND user_id = $2`,
		containerID, userID,
	).Scan(&grant.ContainerID, &grant.UserID, &grant.Permission, &grant.GrantedBy, &grant.GrantedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gateway.NewGatewayError("failed to get permission", err)
	}
	return &grant, nil
}

func (g *Sharing) GetAllPermissions(ctx context.Context, containerID uuid.UUID) ([]models.PermissionGrant, error) {
	rows, err := g.Pool.Query(ctx,
		`SELECT container_id, user_id, permission, granted_by, granted_at
		 FROM permission_grants WHERE container_id = $1 ORDER BY granted_at`,
		containerID,
	)
	if err != nil {
		return nil, gateway.NewGatewayError("failed to query permissions", err)
	}
	defer rows.Close()

	var grants []models.PermissionGrant
	for rows.Next() {
		var grant models.PermissionGrant
		if err := rows.Scan(&grant.ContainerID, &grant.UserID, &grant.Permission, &grant.GrantedBy, &grant.GrantedAt); err != nil {
			return nil, gateway.NewGatewayError("failed to scan permission", err)
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

// RemoveUser revokes the grant and drops the user from the container's
// authorized set in one transaction.
func (g *Sharing) RemoveUser(ctx context.Context, containerID, userID uuid.UUID) error {
	tx, err := g.Pool.Begin(ctx)
	if err != nil {
		return gateway.NewGatewayError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM permission_grants WHERE container_id = $1 AND user_id = $2`,
		containerID, userID,
	); err != nil {
		return gateway.NewGatewayError("failed to revoke grant", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE containers
		 SET authorized_users = array_remove(authorized_users, $2), updated_at = now()
		 WHERE id = $1`,
		containerID, userID,
	); err != nil {
		return gateway.NewGatewayError("failed to deauthorize user", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return gateway.NewGatewayError("failed to commit removal", err)
	}
	return nil
}
