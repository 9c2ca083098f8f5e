package presensi

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"presensi-backend/internal/platform/db"
)

const selectCols = `
	SELECT p.id, p.user_id, p.check_in, p.check_out, p.latitude, p.longitude, p.bukti_foto
	FROM presensi p`

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

var _ Repository = (*Store)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanPresensi(sc scanner) (Presensi, error) {
	var r presensiRow
	if err := sc.Scan(&r.ID, &r.UserID, &r.CheckIn, &r.CheckOut, &r.Latitude, &r.Longitude, &r.BuktiFoto); err != nil {
		return Presensi{}, err
	}
	return r.toModel(), nil
}

func (s *Store) FindOpen(ctx context.Context, userID uint64) (*Presensi, error) {
	p, err := scanPresensi(s.db.QueryRowContext(ctx,
		selectCols+` WHERE p.user_id = ? AND p.check_out IS NULL LIMIT 1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert: open_user_id の UNIQUE 制約で「未 Check-Out は1件まで」を保証する
func (s *Store) Insert(ctx context.Context, p *Presensi) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO presensi (id, user_id, check_in, check_out, latitude, longitude, bukti_foto)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.CheckIn.UTC(), timeOrNil(p.CheckOut), p.Latitude, p.Longitude, p.BuktiFoto,
	)
	if isDuplicateKey(err) {
		return ErrOpenSessionExists
	}
	return err
}

// CloseOpen: 行ロックしてから check_out を埋める。check_out は check_in より前にならない。
func (s *Store) CloseOpen(ctx context.Context, userID uint64, at time.Time) (*Presensi, error) {
	var out Presensi
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		p, err := scanPresensi(tx.QueryRowContext(ctx,
			selectCols+` WHERE p.user_id = ? AND p.check_out IS NULL LIMIT 1 FOR UPDATE`, userID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoOpenSession
		}
		if err != nil {
			return err
		}

		t := at.UTC()
		if t.Before(p.CheckIn) {
			t = p.CheckIn
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE presensi SET check_out = ? WHERE id = ? AND check_out IS NULL`, t, p.ID); err != nil {
			return err
		}
		p.CheckOut = &t
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Presensi, error) {
	p, err := scanPresensi(s.db.QueryRowContext(ctx, selectCols+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Update(ctx context.Context, id string, fn func(p *Presensi) error) (*Presensi, error) {
	var out Presensi
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		p, err := scanPresensi(tx.QueryRowContext(ctx, selectCols+` WHERE p.id = ? FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE presensi SET check_in = ?, check_out = ? WHERE id = ?`,
			p.CheckIn.UTC(), timeOrNil(p.CheckOut), p.ID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presensi WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Report: 名前フィルタがある時だけ INNER JOIN にする
func (s *Store) Report(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT p.id, p.user_id, p.check_in, p.check_out, p.latitude, p.longitude, p.bukti_foto, u.nama, u.email
	FROM presensi p`)
	if f.Nama != "" {
		buf.WriteString(" INNER JOIN users u ON u.id = p.user_id")
		wheres = append(wheres, "LOWER(u.nama) LIKE LOWER(?)")
		args = append(args, "%"+escapeLike(f.Nama)+"%")
	} else {
		buf.WriteString(" LEFT JOIN users u ON u.id = p.user_id")
	}
	if f.From != nil && f.To != nil {
		wheres = append(wheres, "p.check_in BETWEEN ? AND ?")
		args = append(args, f.From.UTC(), f.To.UTC())
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(" ORDER BY p.check_in DESC, p.id DESC")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ReportRow{}
	for rows.Next() {
		var r presensiRow
		var row ReportRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.CheckIn, &r.CheckOut, &r.Latitude, &r.Longitude, &r.BuktiFoto,
			&row.Nama, &row.Email); err != nil {
			return nil, err
		}
		row.Presensi = r.toModel()
		out = append(out, row)
	}
	return out, rows.Err()
}

// ===== helpers =====

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
