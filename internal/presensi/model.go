package presensi

import (
	"database/sql"
	"time"
)

// Presensi は presensi テーブルの1行を表す
type Presensi struct {
	ID        string
	UserID    uint64
	CheckIn   time.Time
	CheckOut  *time.Time
	Latitude  float64
	Longitude float64
	BuktiFoto string
}

// Open reports whether the session has not been checked out yet.
func (p *Presensi) Open() bool { return p.CheckOut == nil }

// レポート用（users を JOIN した行）
type ReportRow struct {
	Presensi
	Nama  sql.NullString
	Email sql.NullString
}

// ReportFilter is the normalized report query. From/To are UTC instants and
// are either both set or both nil.
type ReportFilter struct {
	Nama string
	From *time.Time
	To   *time.Time
}

// DB行に対応（スキャン用）
type presensiRow struct {
	ID        string
	UserID    uint64
	CheckIn   time.Time
	CheckOut  sql.NullTime
	Latitude  float64
	Longitude float64
	BuktiFoto string
}

func (r presensiRow) toModel() Presensi {
	p := Presensi{
		ID:        r.ID,
		UserID:    r.UserID,
		CheckIn:   r.CheckIn.UTC(),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		BuktiFoto: r.BuktiFoto,
	}
	if r.CheckOut.Valid {
		t := r.CheckOut.Time.UTC()
		p.CheckOut = &t
	}
	return p
}

func (p Presensi) toDTO() PresensiResponse {
	return PresensiResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		CheckIn:   p.CheckIn,
		CheckOut:  p.CheckOut,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		BuktiFoto: p.BuktiFoto,
	}
}

func (r ReportRow) toDTO() PresensiResponse {
	out := r.Presensi.toDTO()
	if r.Nama.Valid {
		out.User = &UserRef{Nama: r.Nama.String, Email: r.Email.String}
	}
	return out
}
