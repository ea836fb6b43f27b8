package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"

	"github.com/jackc/pgx/v5"
)

const postColumns = `
	id::text, post_category, title, description, is_featured, owner_id::text, location, price,
	status, contact_type, coalesce(contact_phone, ''), credit_eligible, swap_eligible,
	images, details, coalesce(moderated_by, ''), coalesce(reject_reason, ''),
	published_at, created_at, updated_at`

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		p           model.Post
		imagesJSON  []byte
		detailsJSON []byte
	)
	err := row.Scan(
		&p.ID,
		&p.PostCategory,
		&p.Title,
		&p.Description,
		&p.IsFeatured,
		&p.OwnerID,
		&p.Location,
		&p.Price,
		&p.Status,
		&p.ContactType,
		&p.ContactPhone,
		&p.CreditEligible,
		&p.SwapEligible,
		&imagesJSON,
		&detailsJSON,
		&p.ModeratedBy,
		&p.RejectReason,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if err := json.Unmarshal(detailsJSON, &p.Details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	return &p, nil
}

func encodePostJSON(p model.Post) (string, string, error) {
	images := p.Images
	if images == nil {
		images = []model.PostImage{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return "", "", fmt.Errorf("encode images: %w", err)
	}
	detailsJSON, err := json.Marshal(p.Details)
	if err != nil {
		return "", "", fmt.Errorf("encode details: %w", err)
	}
	return string(imagesJSON), string(detailsJSON), nil
}

func (s *Store) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	imagesJSON, detailsJSON, err := encodePostJSON(p)
	if err != nil {
		return model.Post{}, err
	}
	out, err := scanPost(s.pool.QueryRow(ctx, `
		insert into public.posts (
			post_category, title, description, is_featured, owner_id, location, price,
			status, contact_type, contact_phone, credit_eligible, swap_eligible, images, details
		)
		values ($1, $2, $3, $4, $5::uuid, $6, $7, $8, $9, nullif($10, ''), $11, $12, $13::jsonb, $14::jsonb)
		returning `+postColumns,
		string(p.PostCategory), p.Title, p.Description, p.IsFeatured, p.OwnerID, p.Location, p.Price,
		string(p.Status), string(p.ContactType), p.ContactPhone, p.CreditEligible, p.SwapEligible, imagesJSON, detailsJSON,
	))
	if err != nil {
		return model.Post{}, err
	}
	return *out, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return scanPost(s.pool.QueryRow(ctx, `
		select `+postColumns+`
		from public.posts
		where id = $1::uuid
	`, id))
}

func (s *Store) ListPosts(ctx context.Context, f store.PostFilter) ([]model.Post, error) {
	query := `select ` + postColumns + ` from public.posts`
	var where []string
	args := []any{}

	if strings.TrimSpace(f.OwnerID) != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d::uuid", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		where = append(where, fmt.Sprintf("post_category = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	args = append(args, store.NormalizeLimit(f.Limit))
	query += fmt.Sprintf(" order by created_at desc, id desc limit $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) UpdatePost(ctx context.Context, p model.Post) (model.Post, error) {
	imagesJSON, detailsJSON, err := encodePostJSON(p)
	if err != nil {
		return model.Post{}, err
	}
	out, err := scanPost(s.pool.QueryRow(ctx, `
		update public.posts
		set post_category = $2,
		    title = $3,
		    description = $4,
		    is_featured = $5,
		    location = $6,
		    price = $7,
		    status = $8,
		    contact_type = $9,
		    contact_phone = nullif($10, ''),
		    credit_eligible = $11,
		    swap_eligible = $12,
		    images = $13::jsonb,
		    details = $14::jsonb,
		    moderated_by = nullif($15, ''),
		    reject_reason = nullif($16, ''),
		    published_at = $17,
		    updated_at = now()
		where id = $1::uuid
		returning `+postColumns,
		p.ID, string(p.PostCategory), p.Title, p.Description, p.IsFeatured, p.Location, p.Price,
		string(p.Status), string(p.ContactType), p.ContactPhone, p.CreditEligible, p.SwapEligible,
		imagesJSON, detailsJSON, p.ModeratedBy, p.RejectReason, p.PublishedAt,
	))
	if err != nil {
		return model.Post{}, err
	}
	return *out, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `delete from public.posts where id = $1::uuid`, id)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
