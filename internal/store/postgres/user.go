package postgres

import (
	"context"
	"errors"

	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"

	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id::text, name, surname, coalesce(gender, ''), dob,
	coalesce(profile_image, ''), coalesce(profile_banner_image, ''), coalesce(company_name, ''),
	coalesce(phone_number, ''), email, password_hash,
	is_active, is_phone_number_verified, is_email_address_verified, is_company_profile,
	rating, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Surname,
		&u.Gender,
		&u.DOB,
		&u.ProfileImage,
		&u.ProfileBannerImage,
		&u.CompanyName,
		&u.PhoneNumber,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsPhoneNumberVerified,
		&u.IsEmailAddressVerified,
		&u.IsCompanyProfile,
		&u.Rating,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	out, err := scanUser(s.pool.QueryRow(ctx, `
		insert into public.users (
			name, surname, gender, dob, profile_image, profile_banner_image, company_name,
			phone_number, email, password_hash,
			is_active, is_phone_number_verified, is_email_address_verified, is_company_profile, rating
		)
		values ($1, $2, nullif($3, ''), $4, nullif($5, ''), nullif($6, ''), nullif($7, ''),
			nullif($8, ''), $9, $10, $11, $12, $13, $14, $15)
		returning `+userColumns,
		u.Name, u.Surname, string(u.Gender), u.DOB, u.ProfileImage, u.ProfileBannerImage, u.CompanyName,
		u.PhoneNumber, u.Email, u.PasswordHash,
		u.IsActive, u.IsPhoneNumberVerified, u.IsEmailAddressVerified, u.IsCompanyProfile, u.Rating,
	))
	if err != nil {
		return model.User{}, err
	}
	return *out, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		select `+userColumns+`
		from public.users
		where lower(email) = lower($1)
	`, email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		select `+userColumns+`
		from public.users
		where id = $1::uuid
	`, id))
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		select exists(select 1 from public.users where lower(email) = lower($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, mapPgErr(err)
	}
	return exists, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		update public.users
		set password_hash = coalesce($2, password_hash),
		    is_active = coalesce($3, is_active),
		    is_email_address_verified = coalesce($4, is_email_address_verified),
		    is_phone_number_verified = coalesce($5, is_phone_number_verified),
		    last_login = coalesce($6, last_login),
		    updated_at = now()
		where id = $1::uuid
		returning `+userColumns,
		id, upd.PasswordHash, upd.IsActive, upd.IsEmailAddressVerified, upd.IsPhoneNumberVerified, upd.LastLogin,
	))
}
