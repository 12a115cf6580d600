// Package sqlite provides a dao.Store backed by a modernc.org/sqlite
// (cgo-free) database file, mirroring the teacher's dao/sqlite package:
// one *sql.DB shared across repositories, schema created on open if
// missing, hand-written SQL rather than an ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/dekarrin/boolpred/server/dao"
)

// wrapDBError maps a raw driver error to a dao sentinel where one
// applies: a UNIQUE constraint violation (sqlite result code 19) to
// dao.ErrConstraintViolation, a missing row to dao.ErrNotFound. Any
// other error passes through with the sqlite result code's own message.
func wrapDBError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS publishers (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	api_key_hash TEXT NOT NULL,
	created TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL REFERENCES publishers(id),
	source TEXT NOT NULL,
	created TEXT NOT NULL
);
`

// Store is a sqlite-backed dao.Store.
type Store struct {
	db   *sql.DB
	subs *SubscriptionRepository
	pubs *PublisherRepository
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:   db,
		subs: &SubscriptionRepository{db: db},
		pubs: &PublisherRepository{db: db},
	}, nil
}

func (s *Store) Subscriptions() dao.SubscriptionRepository { return s.subs }
func (s *Store) Publishers() dao.PublisherRepository       { return s.pubs }
func (s *Store) Close() error                              { return s.db.Close() }

// SubscriptionRepository is a sqlite-backed dao.SubscriptionRepository.
type SubscriptionRepository struct {
	db *sql.DB
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub dao.Subscription) (dao.Subscription, error) {
	sub.ID = uuid.New()
	sub.Created = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, owner, source, created) VALUES (?, ?, ?, ?)`,
		sub.ID.String(), sub.Owner.String(), sub.Source, sub.Created.Format(time.RFC3339Nano))
	if err != nil {
		if wrapped := wrapDBError(err); wrapped == dao.ErrConstraintViolation {
			return dao.Subscription{}, wrapped
		}
		return dao.Subscription{}, fmt.Errorf("inserting subscription: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner, source, created FROM subscriptions WHERE id = ?`, id.String())
	return scanSubscription(row)
}

func (r *SubscriptionRepository) GetAll(ctx context.Context) ([]dao.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner, source, created FROM subscriptions`)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *SubscriptionRepository) GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]dao.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, source, created FROM subscriptions WHERE owner = ?`, owner.String())
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Subscription, error) {
	sub, err := r.GetByID(ctx, id)
	if err != nil {
		return dao.Subscription{}, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id.String()); err != nil {
		return dao.Subscription{}, fmt.Errorf("deleting subscription: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) Close() error { return nil }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (dao.Subscription, error) {
	var sub dao.Subscription
	var id, owner, created string

	err := row.Scan(&id, &owner, &sub.Source, &created)
	if err == sql.ErrNoRows {
		return dao.Subscription{}, dao.ErrNotFound
	}
	if err != nil {
		return dao.Subscription{}, fmt.Errorf("scanning subscription: %w", err)
	}

	if sub.ID, err = uuid.Parse(id); err != nil {
		return dao.Subscription{}, fmt.Errorf("%w: subscription id", dao.ErrDecodingFailure)
	}
	if sub.Owner, err = uuid.Parse(owner); err != nil {
		return dao.Subscription{}, fmt.Errorf("%w: subscription owner", dao.ErrDecodingFailure)
	}
	if sub.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return dao.Subscription{}, fmt.Errorf("%w: subscription created", dao.ErrDecodingFailure)
	}

	return sub, nil
}

func scanSubscriptions(rows *sql.Rows) ([]dao.Subscription, error) {
	var all []dao.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, sub)
	}
	return all, rows.Err()
}

// PublisherRepository is a sqlite-backed dao.PublisherRepository.
type PublisherRepository struct {
	db *sql.DB
}

func (r *PublisherRepository) Create(ctx context.Context, pub dao.Publisher) (dao.Publisher, error) {
	pub.ID = uuid.New()
	pub.Created = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO publishers (id, name, api_key_hash, created) VALUES (?, ?, ?, ?)`,
		pub.ID.String(), pub.Name, pub.APIKeyHash, pub.Created.Format(time.RFC3339Nano))
	if err != nil {
		if wrapped := wrapDBError(err); wrapped == dao.ErrConstraintViolation {
			return dao.Publisher{}, wrapped
		}
		return dao.Publisher{}, fmt.Errorf("inserting publisher: %w", err)
	}
	return pub, nil
}

func (r *PublisherRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Publisher, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, api_key_hash, created FROM publishers WHERE id = ?`, id.String())
	return scanPublisher(row)
}

func (r *PublisherRepository) GetByName(ctx context.Context, name string) (dao.Publisher, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, api_key_hash, created FROM publishers WHERE name = ?`, name)
	return scanPublisher(row)
}

func (r *PublisherRepository) GetAll(ctx context.Context) ([]dao.Publisher, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, api_key_hash, created FROM publishers`)
	if err != nil {
		return nil, fmt.Errorf("querying publishers: %w", err)
	}
	defer rows.Close()

	var all []dao.Publisher
	for rows.Next() {
		pub, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, pub)
	}
	return all, rows.Err()
}

func (r *PublisherRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Publisher, error) {
	pub, err := r.GetByID(ctx, id)
	if err != nil {
		return dao.Publisher{}, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM publishers WHERE id = ?`, id.String()); err != nil {
		return dao.Publisher{}, fmt.Errorf("deleting publisher: %w", err)
	}
	return pub, nil
}

func (r *PublisherRepository) Close() error { return nil }

func scanPublisher(row rowScanner) (dao.Publisher, error) {
	var pub dao.Publisher
	var id, created string

	err := row.Scan(&id, &pub.Name, &pub.APIKeyHash, &created)
	if err == sql.ErrNoRows {
		return dao.Publisher{}, dao.ErrNotFound
	}
	if err != nil {
		return dao.Publisher{}, fmt.Errorf("scanning publisher: %w", err)
	}

	if pub.ID, err = uuid.Parse(id); err != nil {
		return dao.Publisher{}, fmt.Errorf("%w: publisher id", dao.ErrDecodingFailure)
	}
	if pub.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return dao.Publisher{}, fmt.Errorf("%w: publisher created", dao.ErrDecodingFailure)
	}

	return pub, nil
}
