package services

import (
	"context"
	"testing"
	"time"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInvoiceService(t *testing.T) (*InvoiceService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewInvoiceService(
		repositories.NewInvoiceRepository(db),
		repositories.NewClientRepository(db),
	)
	return svc, db
}

func seedClient(t *testing.T, db *gorm.DB, userID uint) *models.Client {
	t.Helper()
	client := &models.Client{UserID: userID, Name: "Acme"}
	require.NoError(t, db.Create(client).Error)
	return client
}

func TestInvoiceCreateStartsDraft(t *testing.T) {
	svc, db := newInvoiceService(t)
	user := seedUser(t, db, "inv-create@example.com")
	client := seedClient(t, db, user.ID)

	invoice, err := svc.Create(context.Background(), user.ID, &InvoiceInput{
		ClientID:  client.ID,
		Amount:    500,
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	assert.Regexp(t, `^INV-[0-9A-F]{8}$`, invoice.InvoiceNumber)
}

func TestInvoiceCreateRejectsForeignClient(t *testing.T) {
	svc, db := newInvoiceService(t)
	owner := seedUser(t, db, "inv-owner@example.com")
	caller := seedUser(t, db, "inv-caller@example.com")
	client := seedClient(t, db, owner.ID)

	_, err := svc.Create(context.Background(), caller.ID, &InvoiceInput{
		ClientID:  client.ID,
		Amount:    500,
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInvoiceUpdateStatus(t *testing.T) {
	svc, db := newInvoiceService(t)
	user := seedUser(t, db, "inv-status@example.com")
	client := seedClient(t, db, user.ID)

	invoice, err := svc.Create(context.Background(), user.ID, &InvoiceInput{
		ClientID:  client.ID,
		Amount:    500,
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), user.ID, invoice.ID, models.InvoiceStatusSent)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), user.ID, invoice.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidInvoiceStatus)
}

func TestInvoiceGetOwnership(t *testing.T) {
	svc, db := newInvoiceService(t)
	owner := seedUser(t, db, "inv-get-owner@example.com")
	other := seedUser(t, db, "inv-get-other@example.com")
	client := seedClient(t, db, owner.ID)

	invoice, err := svc.Create(context.Background(), owner.ID, &InvoiceInput{
		ClientID:  client.ID,
		Amount:    100,
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other.ID, invoice.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(context.Background(), owner.ID, 99999)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceListRejectsBadStatus(t *testing.T) {
	svc, db := newInvoiceService(t)
	user := seedUser(t, db, "inv-list@example.com")

	_, _, err := svc.List(context.Background(), &repositories.InvoiceQuery{
		UserID: user.ID,
		Status: "cancelled",
	}, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
