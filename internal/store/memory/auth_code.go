package memory

import (
	"context"
	"time"

	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"
)

func (s *Store) CreateAuthCode(_ context.Context, c model.AuthCode) (model.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = newID()
	c.CreatedAt = time.Now().UTC()
	s.authCodes[c.ID] = c
	return c, nil
}

func (s *Store) FindAuthCode(_ context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, ok := s.match(userID, typ, code, now)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ac, nil
}

func (s *Store) ConsumeAuthCode(_ context.Context, userID string, typ model.AuthCodeType, code string, now time.Time) (*model.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, ok := s.match(userID, typ, code, now)
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.authCodes, ac.ID)
	return &ac, nil
}

func (s *Store) DeleteAuthCodes(_ context.Context, userID string, typ model.AuthCodeType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, ac := range s.authCodes {
		if ac.UserID == userID && ac.Type == typ {
			delete(s.authCodes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteExpiredAuthCodes(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, ac := range s.authCodes {
		if !ac.ExpiresAt.After(before) {
			delete(s.authCodes, id)
			n++
		}
	}
	return n, nil
}

// match must be called with s.mu held.
func (s *Store) match(userID string, typ model.AuthCodeType, code string, now time.Time) (model.AuthCode, bool) {
	for _, ac := range s.authCodes {
		if ac.UserID == userID && ac.Type == typ && ac.Code == code && ac.ValidAt(now) {
			return ac, true
		}
	}
	return model.AuthCode{}, false
}
