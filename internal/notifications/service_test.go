package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  order_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      enums.NotificationOrderConfirmed,
		Title:     "Order confirmed",
		Message:   "Your order is on its way.",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestRecordAndList(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()
	require.NoError(t, svc.Record(ctx, db, userID, enums.NotificationOrderAssigned,
		"New order assigned", "Order PM-20260101120000-00001 is ready for fulfilment.", &orderID))

	result, err := svc.List(ctx, ListParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.NotEqual(t, uuid.Nil, result.Items[0].ID)
	assert.Equal(t, enums.NotificationOrderAssigned, result.Items[0].Kind)
	require.NotNil(t, result.Items[0].OrderID)
	assert.Equal(t, orderID, *result.Items[0].OrderID)
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	err = svc.Record(context.Background(), db, uuid.New(), enums.NotificationKind("carrier_pigeon"), "t", "m", nil)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListPaginatesAndFiltersUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	var read *models.Notification
	for i := 0; i < 3; i++ {
		n := seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute))
		if i == 0 {
			read = n
		}
	}
	require.NoError(t, svc.MarkRead(ctx, userID, read.ID))

	page, err := svc.List(ctx, ListParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.Cursor)

	rest, err := svc.List(ctx, ListParams{UserID: userID, Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Empty(t, rest.Cursor)

	unread, err := svc.List(ctx, ListParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread.Items, 2)
}

func TestMarkReadScopesToOwner(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	owner := uuid.New()
	n := seedNotification(t, db, owner, time.Now().UTC())

	err = svc.MarkRead(ctx, uuid.New(), n.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.MarkRead(ctx, owner, n.ID))

	// already read, still found
	require.NoError(t, svc.MarkRead(ctx, owner, n.ID))
}

func TestMarkAllReadAndCount(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		seedNotification(t, db, userID, time.Now().UTC().Add(time.Duration(i)*time.Second))
	}

	count, err := svc.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	updated, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	count, err = svc.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
