// Package dao provides data access objects for the predicate-subscription
// server: a Subscription repository (one predicate per row) and a
// Publisher repository (API-key-holding callers allowed to publish
// events), each with an inmem and a sqlite implementation.
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store holds all the repositories a running server needs.
type Store interface {
	Subscriptions() SubscriptionRepository
	Publishers() PublisherRepository
	Close() error
}

// Subscription is one registered predicate: its source text, the
// publisher account that owns it, and bookkeeping timestamps.
type Subscription struct {
	ID      uuid.UUID // PK, NOT NULL
	Owner   uuid.UUID // FK (Many-to-One Publisher.ID), NOT NULL
	Source  string    // NOT NULL, the predicate DSL source text
	Created time.Time // NOT NULL
}

// SubscriptionRepository persists Subscription rows.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub Subscription) (Subscription, error)
	GetByID(ctx context.Context, id uuid.UUID) (Subscription, error)
	GetAll(ctx context.Context) ([]Subscription, error)
	GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) (Subscription, error)
	Close() error
}

// Publisher is an account authorized to register subscriptions and post
// events, authenticated by a bcrypt-hashed API key.
type Publisher struct {
	ID         uuid.UUID // PK, NOT NULL
	Name       string    // UNIQUE, NOT NULL
	APIKeyHash string    // NOT NULL, bcrypt hash of the issued API key
	Created    time.Time // NOT NULL
}

// PublisherRepository persists Publisher rows.
type PublisherRepository interface {
	Create(ctx context.Context, pub Publisher) (Publisher, error)
	GetByID(ctx context.Context, id uuid.UUID) (Publisher, error)
	GetByName(ctx context.Context, name string) (Publisher, error)
	GetAll(ctx context.Context) ([]Publisher, error)
	Delete(ctx context.Context, id uuid.UUID) (Publisher, error)
	Close() error
}
