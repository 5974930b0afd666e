// Package postgres implements the gateway interfaces on top of a Postgres
// document layout: each container row embeds its ordered links as a single
// jsonb document, so every link sub-mutation is one all-or-nothing container
// write.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Gateway struct {
	Pool *pgxpool.Pool
}

// New connects to the database and prepares the schema.
func New(ctx context.Context, databaseURL string) (*Gateway, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	g := &Gateway{Pool: pool}
	if err := g.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

func (g *Gateway) Close() {
	g.Pool.Close()
}

// Sharing returns the invitation/grant side of the store.
func (g *Gateway) Sharing() *Sharing {
	return &Sharing{Pool: g.Pool}
}

// ShareLinks returns the token-based share link side of the store.
func (g *Gateway) ShareLinks() *ShareLinks {
	return &ShareLinks{Pool: g.Pool}
}

// Users returns the user lookup side of the store.
func (g *Gateway) Users() *Users {
	return &Users{Pool: g.Pool}
}

func (g *Gateway) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			email text NOT NULL UNIQUE,
			display_name text NOT NULL DEFAULT '',
			api_key text NOT NULL UNIQUE,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS containers (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text NOT NULL,
			description text NOT NULL DEFAULT '',
			color text NOT NULL DEFAULT '',
			owner_id uuid NOT NULL,
			authorized_users uuid[] NOT NULL DEFAULT '{}',
			links jsonb NOT NULL DEFAULT '[]',
			ord integer NOT NULL DEFAULT 0,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS permission_grants (
			container_id uuid NOT NULL,
			user_id uuid NOT NULL,
			permission text NOT NULL,
			granted_by uuid NOT NULL,
			granted_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (container_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS share_invitations (
			id uuid PRIMARY KEY,
			container_id uuid NOT NULL,
			email text NOT NULL,
			permission text NOT NULL,
			invited_by uuid NOT NULL,
			status text NOT NULL DEFAULT 'pending',
			created_at timestamptz NOT NULL DEFAULT now(),
			expires_at timestamptz NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS share_invitations_one_pending
			ON share_invitations (container_id, email) WHERE status = 'pending'`,
		`CREATE TABLE IF NOT EXISTS share_links (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			container_id uuid NOT NULL,
			token text NOT NULL UNIQUE,
			permission text NOT NULL,
			expires_at timestamptz,
			max_uses integer,
			current_uses integer NOT NULL DEFAULT 0,
			is_active boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := g.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
