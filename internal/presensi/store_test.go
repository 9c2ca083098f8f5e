package presensi

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var presensiCols = []string{"id", "user_id", "check_in", "check_out", "latitude", "longitude", "bukti_foto"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(conn), mock
}

func TestStore_InsertDuplicateOpenSession(t *testing.T) {
	s, mock := newMockStore(t)
	p := &Presensi{ID: "01J0000000000000000000000A", UserID: 1, CheckIn: t0, Latitude: -7.797, Longitude: 110.37, BuktiFoto: "uploads/1-1.jpg"}

	mock.ExpectExec("INSERT INTO presensi").
		WithArgs(p.ID, p.UserID, t0, nil, p.Latitude, p.Longitude, p.BuktiFoto).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'uq_presensi_open_user'"})

	err := s.Insert(context.Background(), p)
	assert.ErrorIs(t, err, ErrOpenSessionExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindOpenNone(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.user_id = ? AND p.check_out IS NULL")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(presensiCols))

	p, err := s.FindOpen(context.Background(), 4)
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CloseOpen(t *testing.T) {
	s, mock := newMockStore(t)
	checkIn := t0
	at := t0.Add(9 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("p.check_out IS NULL LIMIT 1 FOR UPDATE")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(presensiCols).
			AddRow("A", uint64(1), checkIn, nil, -7.797, 110.37, "uploads/1-1.jpg"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE presensi SET check_out = ? WHERE id = ? AND check_out IS NULL")).
		WithArgs(at, "A").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := s.CloseOpen(context.Background(), 1, at)
	require.NoError(t, err)
	require.NotNil(t, p.CheckOut)
	assert.Equal(t, at, *p.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CloseOpenNeverBeforeCheckIn(t *testing.T) {
	s, mock := newMockStore(t)
	checkIn := t0
	skewed := t0.Add(-time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(presensiCols).
			AddRow("A", uint64(1), checkIn, nil, 0.0, 0.0, "uploads/1-1.jpg"))
	mock.ExpectExec("UPDATE presensi SET check_out").
		WithArgs(checkIn, "A").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := s.CloseOpen(context.Background(), 1, skewed)
	require.NoError(t, err)
	assert.Equal(t, checkIn, *p.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CloseOpenNone(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(presensiCols))
	mock.ExpectRollback()

	_, err := s.CloseOpen(context.Background(), 1, t0)
	assert.ErrorIs(t, err, ErrNoOpenSession)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateRejectedRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = ? FOR UPDATE")).
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows(presensiCols).
			AddRow("A", uint64(1), t0, nil, 0.0, 0.0, "uploads/1-1.jpg"))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), "A", func(p *Presensi) error {
		return ErrInvalid(MsgCheckOutBefore)
	})
	requireAPIError(t, err, CodeInvalidArgument, MsgCheckOutBefore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM presensi WHERE id = ?")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var reportCols = append(append([]string{}, presensiCols...), "nama", "email")

func TestStore_ReportNoFilter(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`LEFT JOIN users u ON u\.id = p\.user_id ORDER BY p\.check_in DESC, p\.id DESC`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(reportCols).
			AddRow("B", uint64(2), t0.Add(time.Hour), nil, 1.0, 2.0, "uploads/2-1.jpg", nil, nil).
			AddRow("A", uint64(1), t0, t0.Add(2*time.Hour), 1.0, 2.0, "uploads/1-1.jpg", "Budi", "budi@example.com"))

	rows, err := s.Report(context.Background(), ReportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Nama.Valid)
	assert.Nil(t, rows[0].toDTO().User)
	assert.Equal(t, "Budi", rows[1].toDTO().User.Nama)
	require.NotNil(t, rows[1].CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ReportFilters(t *testing.T) {
	s, mock := newMockStore(t)
	from := time.Date(2024, 5, 31, 17, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 2, 16, 59, 59, 999e6, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INNER JOIN users u ON u.id = p.user_id WHERE LOWER(u.nama) LIKE LOWER(?) AND p.check_in BETWEEN ? AND ? ORDER BY")).
		WithArgs(`%50\%\_off%`, from, to).
		WillReturnRows(sqlmock.NewRows(reportCols))

	rows, err := s.Report(context.Background(), ReportFilter{Nama: "50%_off", From: &from, To: &to})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
