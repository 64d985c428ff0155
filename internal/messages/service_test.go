package messages

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

func setupMessagesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  reseller_id TEXT NOT NULL,
  sender TEXT NOT NULL,
  body TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS resellers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  region TEXT NOT NULL,
  wholesale_rate_bps INTEGER,
  points INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type testResellerLookup struct {
	db *gorm.DB
}

func (l *testResellerLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.Reseller, error) {
	var reseller models.Reseller
	if err := l.db.WithContext(ctx).First(&reseller, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reseller, nil
}

func newMessagesTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "messages-test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), &testResellerLookup{db: conn}, logg)
	require.NoError(t, err)
	return svc
}

func seedThreadReseller(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()

	reseller := &models.Reseller{
		ID:           uuid.New(),
		Name:         "Norte",
		Email:        fmt.Sprintf("%s@example.test", uuid.NewString()),
		PasswordHash: "unused",
		Region:       "north",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(reseller).Error)
	return reseller.ID
}

func TestSendAndReadThread(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := newMessagesTestService(t, conn)
	ctx := context.Background()
	resellerID := seedThreadReseller(t, conn)

	_, err := svc.Send(ctx, resellerID, enums.MessageSenderAdmin, "Nueva lista de precios disponible")
	require.NoError(t, err)
	_, err = svc.Send(ctx, resellerID, enums.MessageSenderReseller, "Recibida, gracias")
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, resellerID, enums.MessageSenderReseller)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	thread, err := svc.Thread(ctx, resellerID, enums.MessageSenderReseller)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	require.Equal(t, enums.MessageSenderAdmin, thread[0].Sender)

	// reading the thread clears the reseller's unread counter, not the admin's
	unread, err = svc.UnreadCount(ctx, resellerID, enums.MessageSenderReseller)
	require.NoError(t, err)
	require.Zero(t, unread)

	unread, err = svc.UnreadCount(ctx, resellerID, enums.MessageSenderAdmin)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestSendValidation(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := newMessagesTestService(t, conn)
	ctx := context.Background()
	resellerID := seedThreadReseller(t, conn)

	_, err := svc.Send(ctx, resellerID, enums.MessageSenderAdmin, "   ")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Send(ctx, resellerID, enums.MessageSender("bot"), "hola")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Send(ctx, resellerID, enums.MessageSenderAdmin, strings.Repeat("a", maxBodyLen+1))
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Send(ctx, uuid.New(), enums.MessageSenderAdmin, "hola")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestThreadIsolatedPerReseller(t *testing.T) {
	conn := setupMessagesTestDB(t)
	svc := newMessagesTestService(t, conn)
	ctx := context.Background()

	first := seedThreadReseller(t, conn)
	second := seedThreadReseller(t, conn)

	_, err := svc.Send(ctx, first, enums.MessageSenderAdmin, "solo para el primero")
	require.NoError(t, err)

	thread, err := svc.Thread(ctx, second, enums.MessageSenderReseller)
	require.NoError(t, err)
	require.Empty(t, thread)
}
