package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockGateway returns a gateway whose opener hands out a sqlmock-backed
// handle and counts how many times it was invoked.
func newMockGateway(t *testing.T, driverName string) (*Gateway, sqlmock.Sqlmock, *int32) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	var opened int32
	gw, err := NewGateway(Config{URL: "http://127.0.0.1:8080"}, WithOpener(func(cfg Config) (*sqlx.DB, error) {
		atomic.AddInt32(&opened, 1)
		return sqlx.NewDb(mockDB, driverName), nil
	}))
	require.NoError(t, err)
	return gw, mock, &opened
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(Config{})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", gw.Dialect().Name())
	assert.Equal(t, "http://127.0.0.1:8080", gw.ConnectionString())

	gw, err = NewGateway(Config{URL: "postgres://u:p@localhost/app"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", gw.Dialect().Name())

	_, err = NewGateway(Config{URL: "redis://localhost"})
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestGatewayOpensConnectionOnce(t *testing.T) {
	gw, _, opened := newMockGateway(t, "sqlmock")

	first, err := gw.Connection()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		conn, err := gw.Connection()
		require.NoError(t, err)
		assert.Same(t, first, conn)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(opened))
}

func TestGatewayOpensConnectionOnceConcurrently(t *testing.T) {
	gw, _, opened := newMockGateway(t, "sqlmock")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gw.Connection()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(opened))
}

func TestGatewayRetriesFailedOpen(t *testing.T) {
	calls := 0
	gw, err := NewGateway(Config{}, WithOpener(func(cfg Config) (*sqlx.DB, error) {
		calls++
		return nil, errors.New("dial tcp: connection refused")
	}))
	require.NoError(t, err)

	_, err = gw.Execute(context.Background(), Statement{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = gw.Connection()
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestGatewayExecuteQuery(t *testing.T) {
	gw, mock, _ := newMockGateway(t, "sqlmock")

	mock.ExpectQuery("SELECT * FROM conversations WHERE session_id = ?").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "response"}).
			AddRow(int64(1), []byte("hi"), nil).
			AddRow(int64(2), "hello", "world"))

	res, err := gw.Execute(context.Background(), Statement{
		SQL:  "SELECT * FROM conversations WHERE session_id = ?",
		Args: []interface{}{"s1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "message", "response"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "hi", res.Rows[0]["message"])
	assert.Nil(t, res.Rows[0]["response"])
	assert.Equal(t, "world", res.Rows[1]["response"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayExecuteQueryNoRows(t *testing.T) {
	gw, mock, _ := newMockGateway(t, "sqlmock")

	mock.ExpectQuery("SELECT name FROM t").WillReturnRows(sqlmock.NewRows([]string{"name"}))

	res, err := gw.Execute(context.Background(), Statement{SQL: "SELECT name FROM t"})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestGatewayExecuteQueryAfterComment(t *testing.T) {
	for _, query := range []string{"-- latest\nSELECT 1 AS one", "/* x */ SELECT 1 AS one"} {
		t.Run(query, func(t *testing.T) {
			gw, mock, _ := newMockGateway(t, "sqlmock")

			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))

			res, err := gw.Execute(context.Background(), Statement{SQL: query})
			require.NoError(t, err)
			assert.Equal(t, []string{"one"}, res.Columns)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, int64(1), res.Rows[0]["one"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGatewayExecuteStatement(t *testing.T) {
	gw, mock, _ := newMockGateway(t, "sqlmock")

	mock.ExpectExec("INSERT INTO knowledge_base (topic, content, source, tags) VALUES (?, ?, ?, ?)").
		WithArgs("go", "channels", nil, nil).
		WillReturnResult(sqlmock.NewResult(12, 1))

	res, err := gw.Execute(context.Background(), Statement{
		SQL:  "INSERT INTO knowledge_base (topic, content, source, tags) VALUES (?, ?, ?, ?)",
		Args: []interface{}{"go", "channels", nil, nil},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.RowsAffected)
	require.NotNil(t, res.LastInsertID)
	assert.Equal(t, int64(12), *res.LastInsertID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayPassesDriverErrorThrough(t *testing.T) {
	gw, mock, _ := newMockGateway(t, "sqlmock")

	driverErr := errors.New("SQLITE_ERROR: no such table: missing")
	mock.ExpectQuery("SELECT * FROM missing").WillReturnError(driverErr)

	_, err := gw.Execute(context.Background(), Statement{SQL: "SELECT * FROM missing"})
	require.Error(t, err)
	assert.Equal(t, "SQLITE_ERROR: no such table: missing", err.Error())
}

func TestGatewayRebindsForPostgres(t *testing.T) {
	gw, mock, _ := newMockGateway(t, DriverPostgres)

	mock.ExpectQuery("SELECT * FROM tasks WHERE status = $1 LIMIT $2").
		WithArgs("pending", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	res, err := gw.Execute(context.Background(), Statement{
		SQL:  "SELECT * FROM tasks WHERE status = ? LIMIT ?",
		Args: []interface{}{"pending", int64(5)},
	})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayNamedArguments(t *testing.T) {
	gw, mock, _ := newMockGateway(t, "sqlmock")

	mock.ExpectQuery("SELECT * FROM t WHERE a = :a").
		WithArgs(sql.Named("a", "x")).
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("x"))

	_, err := gw.Execute(context.Background(), Statement{
		SQL:  "SELECT * FROM t WHERE a = :a",
		Args: []interface{}{sql.Named("a", "x")},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayClose(t *testing.T) {
	gw, mock, opened := newMockGateway(t, "sqlmock")

	assert.NoError(t, gw.Close())

	_, err := gw.Connection()
	require.NoError(t, err)
	mock.ExpectClose()
	assert.NoError(t, gw.Close())
	assert.Equal(t, int32(1), atomic.LoadInt32(opened))
}
