package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.User{Name: "Serdar", Email: "a@b.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotZero(t, u.CreatedAt)
	assert.False(t, u.IsActive)

	_, err = s.CreateUser(ctx, model.User{Email: "A@B.com"})
	assert.ErrorIs(t, err, store.ErrConflict)

	exists, err := s.EmailExists(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.EmailExists(ctx, "other@b.com")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := s.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUser_DuplicatePhone(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, model.User{Email: "a@b.com", PhoneNumber: "+905000000000"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, model.User{Email: "c@d.com", PhoneNumber: "+905000000000"})
	assert.ErrorIs(t, err, store.ErrConflict)

	// Empty phone numbers never collide.
	_, err = s.CreateUser(ctx, model.User{Email: "e@f.com"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, model.User{Email: "g@h.com"})
	require.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.User{Email: "a@b.com"})
	require.NoError(t, err)

	active := true
	updated, err := s.UpdateUser(ctx, u.ID, model.UserUpdate{IsActive: &active, IsEmailAddressVerified: &active})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.True(t, updated.IsEmailAddressVerified)
	assert.False(t, updated.IsPhoneNumberVerified)

	_, err = s.UpdateUser(ctx, "missing", model.UserUpdate{IsActive: &active})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthCodes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.CreateAuthCode(ctx, model.AuthCode{UserID: "u1", Code: "123456", Type: model.AuthCodeEmailVerification, ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	_, err = s.CreateAuthCode(ctx, model.AuthCode{UserID: "u1", Code: "654321", Type: model.AuthCodePasswordReset, ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	// Wrong purpose does not match.
	_, err = s.FindAuthCode(ctx, "u1", model.AuthCodePasswordReset, "123456", now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := s.FindAuthCode(ctx, "u1", model.AuthCodeEmailVerification, "123456", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)

	// Expired relative to now.
	_, err = s.FindAuthCode(ctx, "u1", model.AuthCodeEmailVerification, "123456", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, store.ErrNotFound)

	consumed, err := s.ConsumeAuthCode(ctx, "u1", model.AuthCodeEmailVerification, "123456", now)
	require.NoError(t, err)
	assert.Equal(t, found.ID, consumed.ID)

	_, err = s.ConsumeAuthCode(ctx, "u1", model.AuthCodeEmailVerification, "123456", now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.DeleteAuthCodes(ctx, "u1", model.AuthCodePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConsumeAuthCode_SingleWinner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.CreateAuthCode(ctx, model.AuthCode{UserID: "u1", Code: "111111", Type: model.AuthCodePasswordReset, ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeAuthCode(ctx, "u1", model.AuthCodePasswordReset, "111111", now); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestDeleteExpiredAuthCodes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for i, exp := range []time.Duration{-time.Hour, -time.Second, time.Hour} {
		_, err := s.CreateAuthCode(ctx, model.AuthCode{UserID: "u1", Code: string(rune('0' + i)), Type: model.AuthCodeEmailVerification, ExpiresAt: now.Add(exp)})
		require.NoError(t, err)
	}

	n, err := s.DeleteExpiredAuthCodes(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.FindAuthCode(ctx, "u1", model.AuthCodeEmailVerification, "2", now)
	assert.NoError(t, err)
}

func TestPosts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p1, err := s.CreatePost(ctx, model.Post{OwnerID: "o1", Title: "car", PostCategory: model.PostCategoryVehicle, Status: model.PostStatusModeration,
		Images: []model.PostImage{{URL: "https://x/1.jpg"}}})
	require.NoError(t, err)
	p2, err := s.CreatePost(ctx, model.Post{OwnerID: "o2", Title: "flat", PostCategory: model.PostCategoryProperty, Status: model.PostStatusPublished})
	require.NoError(t, err)

	// Returned copies must not alias stored state.
	p1.Images[0].URL = "mutated"
	got, err := s.GetPost(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x/1.jpg", got.Images[0].URL)

	list, err := s.ListPosts(ctx, store.PostFilter{Status: model.PostStatusPublished})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p2.ID, list[0].ID)

	list, err = s.ListPosts(ctx, store.PostFilter{OwnerID: "o1"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.ListPosts(ctx, store.PostFilter{Category: model.PostCategoryProperty, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)

	got.Status = model.PostStatusPublished
	got.OwnerID = "hijack"
	updated, err := s.UpdatePost(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPublished, updated.Status)
	assert.Equal(t, "o1", updated.OwnerID)

	require.NoError(t, s.DeletePost(ctx, p1.ID))
	assert.ErrorIs(t, s.DeletePost(ctx, p1.ID), store.ErrNotFound)
	_, err = s.UpdatePost(ctx, model.Post{ID: p1.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
