package services

import (
	"context"
	"testing"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientListScopedToUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(repositories.NewClientRepository(db))

	owner := seedUser(t, db, "client-list@example.com")
	other := seedUser(t, db, "client-list-other@example.com")
	require.NoError(t, db.Create(&models.Client{UserID: owner.ID, Name: "Mine"}).Error)
	require.NoError(t, db.Create(&models.Client{UserID: other.ID, Name: "Theirs"}).Error)

	clients, total, err := svc.List(context.Background(), &repositories.ClientQuery{UserID: owner.ID}, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, clients, 1)
	assert.Equal(t, "Mine", clients[0].Name)
}

func TestClientListRejectsUnknownSortKey(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(repositories.NewClientRepository(db))
	user := seedUser(t, db, "client-sort@example.com")

	_, _, err := svc.List(context.Background(), &repositories.ClientQuery{
		UserID: user.ID,
		SortBy: "password",
	}, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientGetOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(repositories.NewClientRepository(db))
	owner := seedUser(t, db, "client-owner@example.com")
	other := seedUser(t, db, "client-other@example.com")

	created, err := svc.Create(context.Background(), owner.ID, &ClientInput{Name: "  Acme  "})
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)

	_, err = svc.Get(context.Background(), other.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(context.Background(), owner.ID, 99999)
	assert.ErrorIs(t, err, ErrClientNotFound)
}
