package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	store, err := Open(ctx, SQLite, SQLiteDSN(path))
	require.NoError(t, err)
	defer store.Close()

	t.Run("miss", func(t *testing.T) {
		_, err := store.Get(ctx, domain.ListingKey())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, domain.ListingKey(), []byte("one")))
		require.NoError(t, store.Set(ctx, domain.ListingKey(), []byte("two")))

		got, err := store.Get(ctx, domain.ListingKey())
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("setnx writes once", func(t *testing.T) {
		key := domain.DemoURLKey("42-0")

		wrote, err := store.SetNX(ctx, key, []byte("https://a"))
		require.NoError(t, err)
		assert.True(t, wrote)

		wrote, err = store.SetNX(ctx, key, []byte("https://b"))
		require.NoError(t, err)
		assert.False(t, wrote)

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "https://a", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, domain.ListingKey()))
		_, err := store.Get(ctx, domain.ListingKey())
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// Deleting a missing key is not an error
		assert.NoError(t, store.Delete(ctx, domain.ListingKey()))
	})

	t.Run("survives reopen", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "persisted", []byte("yes")))

		again, err := Open(ctx, SQLite, SQLiteDSN(path))
		require.NoError(t, err)
		defer again.Close()

		got, err := again.Get(ctx, "persisted")
		require.NoError(t, err)
		assert.Equal(t, "yes", string(got))
	})
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := New(db, MySQL)
	store.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return store, mock, db
}

func TestMySQLStore_Get(t *testing.T) {
	ctx := context.Background()
	store, mock, _ := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(MySQL.Get)).
		WithArgs("vibe-apps").
		WillReturnRows(sqlmock.NewRows([]string{"entry_value"}).AddRow([]byte("blob")))
	mock.ExpectQuery(regexp.QuoteMeta(MySQL.Get)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := store.Get(ctx, "vibe-apps")
	require.NoError(t, err)
	assert.Equal(t, "blob", string(got))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_SetNX(t *testing.T) {
	ctx := context.Background()
	store, mock, _ := newMockStore(t)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(MySQL.InsertNew)).
		WithArgs("v0-app-1", []byte("https://a"), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(MySQL.InsertNew)).
		WithArgs("v0-app-1", []byte("https://b"), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	wrote, err := store.SetNX(ctx, "v0-app-1", []byte("https://a"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = store.SetNX(ctx, "v0-app-1", []byte("https://b"))
	require.NoError(t, err)
	assert.False(t, wrote)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_SetAndDelete(t *testing.T) {
	ctx := context.Background()
	store, mock, _ := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(MySQL.Upsert)).
		WithArgs("vibe-apps", []byte("x"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(MySQL.Delete)).
		WithArgs("vibe-apps").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Set(ctx, "vibe-apps", []byte("x")))
	require.NoError(t, store.Delete(ctx, "vibe-apps"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_Migrate(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(MySQL.CreateTable)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
