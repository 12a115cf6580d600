// Package inmem provides in-memory dao.Store implementations, used for
// tests and local development without a database file, mirroring the
// teacher's dao/inmem package structure (one map-backed repository type
// per entity, guarded by a mutex).
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/boolpred/server/dao"
)

// Store is an in-memory dao.Store.
type Store struct {
	subs *SubscriptionRepository
	pubs *PublisherRepository
}

// NewStore builds an empty in-memory Store.
func NewStore() *Store {
	return &Store{
		subs: NewSubscriptionRepository(),
		pubs: NewPublisherRepository(),
	}
}

func (s *Store) Subscriptions() dao.SubscriptionRepository { return s.subs }
func (s *Store) Publishers() dao.PublisherRepository       { return s.pubs }
func (s *Store) Close() error                              { return nil }

// SubscriptionRepository is a map-backed dao.SubscriptionRepository.
type SubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]dao.Subscription
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{subs: make(map[uuid.UUID]dao.Subscription)}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub dao.Subscription) (dao.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub.ID = uuid.New()
	sub.Created = time.Now()
	r.subs[sub.ID] = sub
	return sub, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[id]
	if !ok {
		return dao.Subscription{}, dao.ErrNotFound
	}
	return sub, nil
}

func (r *SubscriptionRepository) GetAll(ctx context.Context) ([]dao.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]dao.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		all = append(all, sub)
	}
	return all, nil
}

func (r *SubscriptionRepository) GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]dao.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []dao.Subscription
	for _, sub := range r.subs {
		if sub.Owner == owner {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return dao.Subscription{}, dao.ErrNotFound
	}
	delete(r.subs, id)
	return sub, nil
}

func (r *SubscriptionRepository) Close() error { return nil }

// PublisherRepository is a map-backed dao.PublisherRepository.
type PublisherRepository struct {
	mu   sync.RWMutex
	pubs map[uuid.UUID]dao.Publisher
}

func NewPublisherRepository() *PublisherRepository {
	return &PublisherRepository{pubs: make(map[uuid.UUID]dao.Publisher)}
}

func (r *PublisherRepository) Create(ctx context.Context, pub dao.Publisher) (dao.Publisher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.pubs {
		if existing.Name == pub.Name {
			return dao.Publisher{}, dao.ErrConstraintViolation
		}
	}

	pub.ID = uuid.New()
	pub.Created = time.Now()
	r.pubs[pub.ID] = pub
	return pub, nil
}

func (r *PublisherRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pub, ok := r.pubs[id]
	if !ok {
		return dao.Publisher{}, dao.ErrNotFound
	}
	return pub, nil
}

func (r *PublisherRepository) GetByName(ctx context.Context, name string) (dao.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, pub := range r.pubs {
		if pub.Name == name {
			return pub, nil
		}
	}
	return dao.Publisher{}, dao.ErrNotFound
}

func (r *PublisherRepository) GetAll(ctx context.Context) ([]dao.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]dao.Publisher, 0, len(r.pubs))
	for _, pub := range r.pubs {
		all = append(all, pub)
	}
	return all, nil
}

func (r *PublisherRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Publisher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pub, ok := r.pubs[id]
	if !ok {
		return dao.Publisher{}, dao.ErrNotFound
	}
	delete(r.pubs, id)
	return pub, nil
}

func (r *PublisherRepository) Close() error { return nil }
