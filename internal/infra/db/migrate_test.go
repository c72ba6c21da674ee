package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMigrateMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestMigrateUp_AppliesSchemaInOneTransaction(t *testing.T) {
	db, mock := newMigrateMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)CREATE TABLE IF NOT EXISTS articles.*UNIQUE \(title, author\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`idx_articles_author ON articles\(author\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`idx_articles_published_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, MigrateUp(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_RollsBackOnFailure(t *testing.T) {
	db, mock := newMigrateMock(t)
	boom := errors.New("permission denied for schema public")

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`idx_articles_author`).WillReturnError(boom)
	mock.ExpectRollback()

	err := MigrateUp(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "author index")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_BeginFails(t *testing.T) {
	db, mock := newMigrateMock(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err := MigrateUp(context.Background(), db)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestMigrateUp_CommitFails(t *testing.T) {
	db, mock := newMigrateMock(t)

	mock.ExpectBegin()
	for range schema {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit().WillReturnError(sql.ErrTxDone)

	err := MigrateUp(context.Background(), db)
	assert.ErrorIs(t, err, sql.ErrTxDone)
}
