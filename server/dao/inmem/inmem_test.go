package inmem

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/server/dao"
)

func Test_SubscriptionRepository_CreateAssignsIDAndTimestamp(t *testing.T) {
	r := NewSubscriptionRepository()
	owner := uuid.New()

	created, err := r.Create(context.Background(), dao.Subscription{Owner: owner, Source: `a = 1`})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.Created.IsZero())

	got, err := r.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func Test_SubscriptionRepository_GetByID_missingReturnsNotFound(t *testing.T) {
	r := NewSubscriptionRepository()
	_, err := r.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_SubscriptionRepository_GetAllByOwner_filtersToOwner(t *testing.T) {
	r := NewSubscriptionRepository()
	a, b := uuid.New(), uuid.New()

	first, _ := r.Create(context.Background(), dao.Subscription{Owner: a, Source: `a = 1`})
	_, _ = r.Create(context.Background(), dao.Subscription{Owner: b, Source: `b = 2`})

	got, err := r.GetAllByOwner(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
}

func Test_SubscriptionRepository_Delete_removesAndReturnsRow(t *testing.T) {
	r := NewSubscriptionRepository()
	created, _ := r.Create(context.Background(), dao.Subscription{Owner: uuid.New(), Source: `a = 1`})

	deleted, err := r.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = r.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_PublisherRepository_Create_rejectsDuplicateName(t *testing.T) {
	r := NewPublisherRepository()
	_, err := r.Create(context.Background(), dao.Publisher{Name: "acme", APIKeyHash: "x"})
	require.NoError(t, err)

	_, err = r.Create(context.Background(), dao.Publisher{Name: "acme", APIKeyHash: "y"})
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_PublisherRepository_GetByName_found(t *testing.T) {
	r := NewPublisherRepository()
	created, _ := r.Create(context.Background(), dao.Publisher{Name: "acme", APIKeyHash: "x"})

	got, err := r.GetByName(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func Test_PublisherRepository_GetByName_missing(t *testing.T) {
	r := NewPublisherRepository()
	_, err := r.GetByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_Store_ProvidesIndependentRepositories(t *testing.T) {
	s := NewStore()
	assert.NotNil(t, s.Subscriptions())
	assert.NotNil(t, s.Publishers())
	assert.NoError(t, s.Close())
}
