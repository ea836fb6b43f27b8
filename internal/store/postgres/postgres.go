package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teklip/marketplace/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Ping to fail fast.
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Schema is idempotent and applied by Migrate on startup.
const Schema = `
create extension if not exists pgcrypto;

create table if not exists public.users (
	id uuid primary key default gen_random_uuid(),
	name text not null default '',
	surname text not null default '',
	gender text null,
	dob timestamptz null,
	profile_image text null,
	profile_banner_image text null,
	company_name text null,
	phone_number text null unique,
	email text not null,
	password_hash text not null,
	is_active boolean not null default false,
	is_phone_number_verified boolean not null default false,
	is_email_address_verified boolean not null default false,
	is_company_profile boolean not null default false,
	rating double precision not null default 0 check (rating >= 0 and rating <= 5),
	last_login timestamptz null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);

create unique index if not exists users_email_lower_key on public.users (lower(email));

create table if not exists public.auth_codes (
	id uuid primary key default gen_random_uuid(),
	user_id uuid not null,
	code text not null,
	type text not null,
	expires_at timestamptz not null,
	created_at timestamptz not null default now()
);

create index if not exists idx_auth_codes_user_type on public.auth_codes (user_id, type);
create index if not exists idx_auth_codes_expires_at on public.auth_codes (expires_at);

create table if not exists public.posts (
	id uuid primary key default gen_random_uuid(),
	post_category text not null,
	title text not null,
	description text not null,
	is_featured boolean not null default false,
	owner_id uuid not null,
	location text not null,
	price double precision not null,
	status text not null default 'moderation',
	contact_type text not null,
	contact_phone text null,
	credit_eligible boolean not null default false,
	swap_eligible boolean not null default false,
	images jsonb not null default '[]'::jsonb,
	details jsonb not null default '{}'::jsonb,
	moderated_by text null,
	reject_reason text null,
	published_at timestamptz null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);

create index if not exists idx_posts_owner on public.posts (owner_id);
create index if not exists idx_posts_status_created on public.posts (status, created_at desc);
`

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", mapPgErr(err))
	}
	return nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return store.ErrConflict
		case "23503":
			return store.ErrNotFound
		case "22P02":
			// Malformed uuid: nothing can match it.
			return store.ErrNotFound
		default:
			return fmt.Errorf("db_error %s: %s", pgErr.Code, pgErr.Message)
		}
	}
	return err
}
