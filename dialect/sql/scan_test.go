package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMapsEmpty(t *testing.T) {
	drv, mock := newMock(t)
	mock.ExpectQuery("SELECT * FROM `users` WHERE 1").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT * FROM `users` WHERE 1", []any{}, rows))
	result, err := ScanMaps(rows)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanMapsRowError(t *testing.T) {
	drv, mock := newMock(t)
	mock.ExpectQuery("SELECT `id` FROM `users` WHERE 1").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).
			AddRow(int64(1)).
			AddRow(int64(2)).
			RowError(1, errors.New("connection reset")))

	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT `id` FROM `users` WHERE 1", []any{}, rows))
	result, err := ScanMaps(rows)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "connection reset")
}
