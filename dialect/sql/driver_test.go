package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlstmt/dialect"
)

func newMock(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(dialect.MySQL, db), mock
}

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		expected string
	}{
		{"MySQL", dialect.MySQL, dialect.MySQL},
		{"SQLite", dialect.SQLite, dialect.SQLite},
		{"Wrapped", dialect.MySQL + "-traced", dialect.MySQL},
		{"Unknown", "oracle", "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.expected, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestDriverQuery(t *testing.T) {
	drv, mock := newMock(t)

	t.Run("compiled_select", func(t *testing.T) {
		stmt, err := SelectStmt("users", []string{"id", "name"}, Conditions{GT("age", 30)}, "i", nil, Page{Limit: 2})
		require.NoError(t, err)
		args, err := stmt.Params.Bind()
		require.NoError(t, err)

		mock.ExpectQuery("SELECT `id`, `name` FROM `users` WHERE `age` > ? LIMIT 2").
			WithArgs(int64(30)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(int64(1), []byte("Alice")).
				AddRow(int64(2), nil))

		rows := &Rows{}
		require.NoError(t, drv.Query(context.Background(), stmt.SQL, args, rows))
		result, err := ScanMaps(rows)
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{
			{"id": int64(1), "name": "Alice"},
			{"id": int64(2), "name": nil},
		}, result)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query_error", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("database error"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT 1", []any{}, rows)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_args", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT 1", "nope", &Rows{})
		require.Error(t, err)
		err = drv.Query(context.Background(), "SELECT 1", []any{}, nil)
		require.Error(t, err)
	})
}

func TestDriverExec(t *testing.T) {
	drv, mock := newMock(t)

	t.Run("insert_result", func(t *testing.T) {
		stmt, err := InsertStmt("users", Assignments{Set("email", "a@example.com")}, "s", nil, "")
		require.NoError(t, err)
		args, err := stmt.Params.Bind()
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO `users` (`email`) VALUES (?) ON DUPLICATE KEY UPDATE `id` = `id`").
			WithArgs("a@example.com").
			WillReturnResult(sqlmock.NewResult(12, 1))

		var res sql.Result
		require.NoError(t, drv.Exec(context.Background(), stmt.SQL, args, &res))
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.Equal(t, int64(12), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil_result", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM `users` WHERE 1").WillReturnResult(sqlmock.NewResult(0, 3))
		require.NoError(t, drv.Exec(context.Background(), "DELETE FROM `users` WHERE 1", []any{}, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec_error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM `users` WHERE 1").WillReturnError(errors.New("lock wait timeout"))
		err := drv.Exec(context.Background(), "DELETE FROM `users` WHERE 1", []any{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock wait timeout")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_result_type", func(t *testing.T) {
		var n int
		err := drv.Exec(context.Background(), "DELETE FROM `users` WHERE 1", []any{}, &n)
		require.Error(t, err)
	})
}

func TestDriverPrepare(t *testing.T) {
	drv, mock := newMock(t)

	const query = "SELECT `name` FROM `users` WHERE `id` = ?"
	mock.ExpectPrepare(query).
		ExpectQuery().
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alice"))

	stmt, err := drv.Prepare(context.Background(), query)
	require.NoError(t, err)
	defer stmt.Close()

	var name string
	require.NoError(t, stmt.QueryRowContext(context.Background(), int64(7)).Scan(&name))
	assert.Equal(t, "Alice", name)

	mock.ExpectPrepare("SELECT broken").WillReturnError(errors.New("syntax error"))
	_, err = drv.Prepare(context.Background(), "SELECT broken")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTransaction(t *testing.T) {
	drv, mock := newMock(t)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `users` SET `name` = ? WHERE `id` = ?").
			WithArgs("bob", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		err = tx.Exec(context.Background(), "UPDATE `users` SET `name` = ? WHERE `id` = ?", []any{"bob", int64(1)}, nil)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `users` WHERE 1").WillReturnError(errors.New("error"))
		mock.ExpectRollback()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		err = tx.Exec(context.Background(), "DELETE FROM `users` WHERE 1", []any{}, nil)
		require.Error(t, err)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContextCancellation(t *testing.T) {
	drv, mock := newMock(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock.ExpectQuery("SELECT 1").WillReturnError(context.Canceled)
	err := drv.Query(ctx, "SELECT 1", []any{}, &Rows{})
	assert.Error(t, err)
}
