package memory

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/junpakpark/productmanage/internal/models"
)

const (
	DefaultRetention = 14 * 24 * time.Hour
	DefaultMaxSize   = 50000
)

// RevocationStore keeps refresh tokens in process memory
// Entries are dropped after retention since the last write, or least recently used first when full
type RevocationStore struct {
	cache *expirable.LRU[string, models.Identity]
}

func NewRevocationStore(maxSize int, retention time.Duration) (*RevocationStore, error) {
	// expirable.LRU treats zero size as unbounded and zero ttl as no expiration
	if maxSize <= 0 {
		return nil, errors.New("revocation store size must be positive")
	}
	if retention <= 0 {
		return nil, errors.New("revocation store retention must be positive")
	}

	// The LRU runs a purge goroutine that lives as long as the process, build one store per process
	return &RevocationStore{
		cache: expirable.NewLRU[string, models.Identity](maxSize, nil, retention),
	}, nil
}

func (s *RevocationStore) Save(_ context.Context, refreshToken string, identity models.Identity) error {
	s.cache.Add(refreshToken, identity)
	return nil
}

func (s *RevocationStore) Remove(_ context.Context, refreshToken string) error {
	s.cache.Remove(refreshToken)
	return nil
}

func (s *RevocationStore) FindByToken(_ context.Context, refreshToken string) (models.Identity, bool, error) {
	identity, ok := s.cache.Get(refreshToken)
	return identity, ok, nil
}

// Len returns number of entries, including expired ones not yet purged
func (s *RevocationStore) Len() int {
	return s.cache.Len()
}
