package memory

import (
	"sync"

	"teklip/marketplace/internal/model"
)

// Store is a process-local implementation of store.Store.
type Store struct {
	mu sync.Mutex

	users     map[string]model.User
	authCodes map[string]model.AuthCode
	posts     map[string]model.Post
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]model.User),
		authCodes: make(map[string]model.AuthCode),
		posts:     make(map[string]model.Post),
	}
}
