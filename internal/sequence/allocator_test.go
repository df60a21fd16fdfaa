package sequence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupAllocatorMock(t *testing.T) (Allocator, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	closer := func() { sqlDB.Close() }
	return NewAllocator(gdb), mock, closer
}

func TestAllocate_FreshCounterStartsAtOffset(t *testing.T) {
	alloc, mock, close := setupAllocatorMock(t)
	defer close()

	mock.ExpectBegin()
	// No row yet -> lazy insert at offset+1
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM counters WHERE name = ? FOR UPDATE")).
		WithArgs("referral_fallback").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO counters (name, value) VALUES (?, ?)")).
		WithArgs("referral_fallback", int64(41)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	code, err := alloc.Allocate(context.Background(), "referral_fallback")
	require.NoError(t, err)
	require.Equal(t, "REFONL#0041", code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocate_ExistingCounterIncrements(t *testing.T) {
	alloc, mock, close := setupAllocatorMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM counters WHERE name = ? FOR UPDATE")).
		WithArgs("referral_fallback").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(41))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE counters SET value = ? WHERE name = ?")).
		WithArgs(int64(42), "referral_fallback").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	code, err := alloc.Allocate(context.Background(), "referral_fallback")
	require.NoError(t, err)
	require.Equal(t, "REFONL#0042", code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocate_SequentialValuesIncrease(t *testing.T) {
	alloc, mock, close := setupAllocatorMock(t)
	defer close()

	for i := int64(100); i < 103; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM counters WHERE name = ? FOR UPDATE")).
			WithArgs("signup").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(i))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE counters SET value = ? WHERE name = ?")).
			WithArgs(i+1, "signup").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	prev := ""
	for i := 0; i < 3; i++ {
		code, err := alloc.Allocate(context.Background(), "signup")
		require.NoError(t, err)
		require.Greater(t, code, prev) // Zero-padded codes sort lexicographically
		prev = code
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocate_StoreFailurePropagates(t *testing.T) {
	alloc, mock, close := setupAllocatorMock(t)
	defer close()

	boom := errors.New("deadlock found")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM counters WHERE name = ? FOR UPDATE")).
		WithArgs("referral_fallback").
		WillReturnError(boom)
	mock.ExpectRollback()

	code, err := alloc.Allocate(context.Background(), "referral_fallback")
	// No placeholder code is ever substituted on failure
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.Empty(t, code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormat(t *testing.T) {
	require.Equal(t, "REFONL#0007", Format(7))
	require.Equal(t, "REFONL#0041", Format(41))
	require.Equal(t, "REFONL#12345", Format(12345)) // Width grows past four digits
}
