package messagestore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "9d2c7e2a-1b6f-4f6e-8c0a-5b1e2d3f4a5c"

var messageColumns = []string{"id", "user_id", "message", "response", "is_user", "created_at"}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(NewRepository(sqlx.NewDb(db, "postgres"))), mock
}

func TestStoreUserMessage(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(sqlmock.AnyArg(), userID, "2 eggs", true).
		WillReturnRows(sqlmock.NewRows(messageColumns).AddRow("m1", userID, "2 eggs", nil, true, now))

	msg, err := svc.StoreUserMessage(context.Background(), userID, "2 eggs")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.True(t, msg.IsUser)
	assert.Nil(t, msg.Response)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAssistantMessage(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(sqlmock.AnyArg(), userID, "Logged!", false).
		WillReturnRows(sqlmock.NewRows(messageColumns).AddRow("m2", userID, "Logged!", nil, false, time.Now()))

	msg, err := svc.StoreAssistantMessage(context.Background(), userID, "Logged!")
	require.NoError(t, err)
	assert.False(t, msg.IsUser)
	assert.Equal(t, "Logged!", msg.Message)
}

func TestSetResponse(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`UPDATE chat_messages SET response = \$3 WHERE id = \$1 AND user_id = \$2`).
		WithArgs("m1", userID, "Logged!").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.SetResponse(context.Background(), userID, "m1", "Logged!"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMessageHistoryOldestFirst(t *testing.T) {
	svc, mock := newMockService(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	reply := "Logged!"

	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$2 \) recent ORDER BY created_at ASC`).
		WithArgs(userID, 50).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m1", userID, "banana", reply, true, base).
			AddRow("m2", userID, reply, nil, false, base.Add(time.Second)))

	history, err := svc.GetMessageHistory(context.Background(), userID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "banana", history[0].Message)
	require.NotNil(t, history[0].Response)
	assert.Equal(t, reply, *history[0].Response)
	assert.False(t, history[1].IsUser)
}

func TestGetMessageHistoryEmpty(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`FROM chat_messages`).
		WithArgs(userID, 50).
		WillReturnRows(sqlmock.NewRows(messageColumns))

	history, err := svc.GetMessageHistory(context.Background(), userID, 50)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
