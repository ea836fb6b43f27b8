package postgres

import (
	"context"
	"errors"
	"time"

	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"

	"github.com/jackc/pgx/v5"
)

const authCodeColumns = `id::text, user_id::text, code, type, expires_at, created_at`

func scanAuthCode(row pgx.Row) (*model.AuthCode, error) {
	var ac model.AuthCode
	err := row.Scan(&ac.ID, &ac.UserID, &ac.Code, &ac.Type, &ac.ExpiresAt, &ac.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &ac, nil
}

func (s *Store) CreateAuthCode(ctx context.Context, c model.AuthCode) (model.AuthCode, error) {
	out, err := scanAuthCode(s.pool.QueryRow(ctx, `
		insert into public.auth_codes (user_id, code, type, expires_at)
		values ($1::uuid, $2, $3, $4)
		returning `+authCodeColumns,
		c.UserID, c.Code, string(c.Type), c.ExpiresAt,
	))
	if err != nil {
		return model.AuthCode{}, err
	}
	return *out, nil
}

func (s *Store) FindAuthCode(ctx context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error) {
	return scanAuthCode(s.pool.QueryRow(ctx, `
		select `+authCodeColumns+`
		from public.auth_codes
		where user_id = $1::uuid
		  and type = $2
		  and code = $3
		  and expires_at > $4
		limit 1
	`, userID, string(typ), code, now))
}

func (s *Store) ConsumeAuthCode(ctx context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error) {
	return scanAuthCode(s.pool.QueryRow(ctx, `
		delete from public.auth_codes
		where id = (
			select id
			from public.auth_codes
			where user_id = $1::uuid
			  and type = $2
			  and code = $3
			  and expires_at > $4
			limit 1
			for update skip locked
		)
		returning `+authCodeColumns,
		userID, string(typ), code, now,
	))
}

func (s *Store) DeleteAuthCodes(ctx context.Context, userID string, typ model.AuthCodeType) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		delete from public.auth_codes
		where user_id = $1::uuid and type = $2
	`, userID, string(typ))
	if err != nil {
		return 0, mapPgErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		with d as (
		  delete from public.auth_codes
		  where expires_at <= $1
		  returning 1
		)
		select count(*) from d
	`, before).Scan(&n)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return n, nil
}
