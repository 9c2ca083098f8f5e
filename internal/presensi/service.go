package presensi

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/oklog/ulid/v2"

	"presensi-backend/internal/platform/upload"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

// 同一ミリ秒内でも単調増加させるため entropy を共有する
type ulidGen struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newULIDGen() *ulidGen {
	return &ulidGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Repository is the persistence boundary. Store is the MySQL implementation.
type Repository interface {
	// FindOpen returns the user's open record, or nil when there is none.
	FindOpen(ctx context.Context, userID uint64) (*Presensi, error)
	// Insert fails with ErrOpenSessionExists when the user already has an open record.
	Insert(ctx context.Context, p *Presensi) error
	// CloseOpen sets check_out on the user's open record, or returns ErrNoOpenSession.
	CloseOpen(ctx context.Context, userID uint64, at time.Time) (*Presensi, error)
	// GetByID returns nil when the id does not exist.
	GetByID(ctx context.Context, id string) (*Presensi, error)
	// Update locks the row, applies fn and writes it back. ErrRecordNotFound if missing.
	Update(ctx context.Context, id string, fn func(p *Presensi) error) (*Presensi, error)
	Delete(ctx context.Context, id string) (int64, error)
	Report(ctx context.Context, f ReportFilter) ([]ReportRow, error)
}

// PhotoStore is satisfied by *upload.Storage.
type PhotoStore interface {
	Check(fh *multipart.FileHeader) error
	Save(ctx context.Context, userID uint64, fh *multipart.FileHeader) (string, error)
	Remove(rel string) error
}

// ===== Service本体 =====

type Service struct {
	repo   Repository
	photos PhotoStore
	clock  Clock
	id     IDGen
	loc    *time.Location
}

func NewService(db *sql.DB, photos PhotoStore, loc *time.Location) *Service {
	return NewServiceWith(NewStore(db), photos, realClock{}, newULIDGen(), loc)
}

// NewServiceWith wires explicit collaborators. nil clock/id/loc fall back to defaults.
func NewServiceWith(repo Repository, photos PhotoStore, clock Clock, id IDGen, loc *time.Location) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if id == nil {
		id = newULIDGen()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, photos: photos, clock: clock, id: id, loc: loc}
}

// LoadLocation resolves the report timezone, DefaultTZ when name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTZ
	}
	return time.LoadLocation(name)
}

func (s *Service) now() time.Time {
	// DATETIME(3) に合わせてミリ秒で切る
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

// POST /presensi/check-in
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (PresensiResponse, error) {
	// 1) ファイル種別とサイズ  2) 座標  3) 未 Check-Out の有無  4) 写真の有無
	if in.Photo != nil {
		if err := s.photos.Check(in.Photo); err != nil {
			return PresensiResponse{}, uploadError(err)
		}
	}
	lat, lng, err := parseCoords(in.Latitude, in.Longitude)
	if err != nil {
		return PresensiResponse{}, err
	}

	open, err := s.repo.FindOpen(ctx, in.UserID)
	if err != nil {
		return PresensiResponse{}, fmt.Errorf("find open presensi: %w", err)
	}
	if open != nil {
		return PresensiResponse{}, ErrConflict(MsgAlreadyCheckedIn)
	}
	if in.Photo == nil {
		return PresensiResponse{}, ErrInvalid(MsgPhotoRequired)
	}

	rel, err := s.photos.Save(ctx, in.UserID, in.Photo)
	if err != nil {
		return PresensiResponse{}, uploadError(err)
	}

	id, err := s.id.New()
	if err != nil {
		s.discardPhoto(rel)
		return PresensiResponse{}, err
	}
	p := &Presensi{
		ID:        id,
		UserID:    in.UserID,
		CheckIn:   s.now(),
		Latitude:  lat,
		Longitude: lng,
		BuktiFoto: rel,
	}

	// 事前チェックをすり抜けた同時リクエストは UNIQUE 制約で弾かれる
	if err := s.repo.Insert(ctx, p); err != nil {
		s.discardPhoto(rel)
		if errors.Is(err, ErrOpenSessionExists) {
			return PresensiResponse{}, ErrConflict(MsgAlreadyCheckedIn)
		}
		return PresensiResponse{}, fmt.Errorf("insert presensi: %w", err)
	}
	log.Printf("[INFO] check-in user=%d id=%s", p.UserID, p.ID)
	return p.toDTO(), nil
}

// POST /presensi/check-out
func (s *Service) CheckOut(ctx context.Context, userID uint64) (PresensiResponse, error) {
	p, err := s.repo.CloseOpen(ctx, userID, s.now())
	if err != nil {
		if errors.Is(err, ErrNoOpenSession) {
			return PresensiResponse{}, ErrNotFound(MsgNoOpenSession)
		}
		return PresensiResponse{}, fmt.Errorf("close presensi: %w", err)
	}
	log.Printf("[INFO] check-out user=%d id=%s", p.UserID, p.ID)
	return p.toDTO(), nil
}

// GET /presensi/:id
func (s *Service) Get(ctx context.Context, id string) (PresensiResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return PresensiResponse{}, fmt.Errorf("get presensi: %w", err)
	}
	if p == nil {
		return PresensiResponse{}, ErrNotFound(MsgRecordNotFound)
	}
	return p.toDTO(), nil
}

// PUT /presensi/:id
// 指定されたフィールドだけを書き換える。checkOut を null に戻すことはできない。
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (PresensiResponse, error) {
	if req.CheckIn == nil && req.CheckOut == nil {
		return PresensiResponse{}, ErrInvalid(MsgEmptyUpdate)
	}
	var checkIn, checkOut *time.Time
	if req.CheckIn != nil {
		t, err := parseAdminTime(*req.CheckIn, s.loc)
		if err != nil {
			return PresensiResponse{}, ErrInvalid(MsgInvalidTime)
		}
		checkIn = &t
	}
	if req.CheckOut != nil {
		t, err := parseAdminTime(*req.CheckOut, s.loc)
		if err != nil {
			return PresensiResponse{}, ErrInvalid(MsgInvalidTime)
		}
		checkOut = &t
	}

	p, err := s.repo.Update(ctx, id, func(p *Presensi) error {
		if checkIn != nil {
			p.CheckIn = *checkIn
		}
		if checkOut != nil {
			t := *checkOut
			p.CheckOut = &t
		}
		if !p.Open() && p.CheckOut.Before(p.CheckIn) {
			return ErrInvalid(MsgCheckOutBefore)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return PresensiResponse{}, ErrNotFound(MsgRecordNotFound)
		}
		var api *APIError
		if errors.As(err, &api) {
			return PresensiResponse{}, api
		}
		return PresensiResponse{}, fmt.Errorf("update presensi: %w", err)
	}
	return p.toDTO(), nil
}

// DELETE /presensi/:id
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete presensi: %w", err)
	}
	if n == 0 {
		return ErrNotFound(MsgRecordNotFound)
	}
	return nil
}

// GET /presensi/report
func (s *Service) Report(ctx context.Context, q ReportQuery) ([]PresensiResponse, error) {
	f, err := s.reportFilter(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Report(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("report presensi: %w", err)
	}
	out := make([]PresensiResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

// GET /presensi/report/daily
func (s *Service) DailyReport(ctx context.Context, q ReportQuery) (DailyReportResponse, error) {
	data, err := s.Report(ctx, q)
	if err != nil {
		return DailyReportResponse{}, err
	}
	return DailyReportResponse{
		ReportDate: s.clock.Now().In(s.loc).Format(DateLayout),
		Data:       data,
	}, nil
}

// reportFilter: 日付は両方そろった時だけ適用し、現地時間の 00:00:00.000〜23:59:59.999 に広げる
func (s *Service) reportFilter(q ReportQuery) (ReportFilter, error) {
	f := ReportFilter{Nama: strings.TrimSpace(q.Nama)}
	mulai := strings.TrimSpace(q.TanggalMulai)
	selesai := strings.TrimSpace(q.TanggalSelesai)
	if mulai == "" || selesai == "" {
		return f, nil
	}

	start, err := parseReportDate(mulai, s.loc)
	if err != nil {
		return ReportFilter{}, ErrInvalid(MsgInvalidDate)
	}
	end, err := parseReportDate(selesai, s.loc)
	if err != nil {
		return ReportFilter{}, ErrInvalid(MsgInvalidDate)
	}
	if end.Before(start) {
		return ReportFilter{}, ErrInvalid(MsgDateRange)
	}

	from := start.UTC()
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), s.loc).UTC()
	f.From, f.To = &from, &to
	return f, nil
}

func (s *Service) discardPhoto(rel string) {
	if err := s.photos.Remove(rel); err != nil {
		log.Printf("[WARN] discard photo %s: %v", rel, err)
	}
}

// ===== helpers =====

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return ErrInvalid(MsgFileTooLarge)
	case errors.Is(err, upload.ErrNotImage):
		return ErrInvalid(MsgNotImage)
	case errors.Is(err, upload.ErrNoFile):
		return ErrInvalid(MsgPhotoRequired)
	default:
		return fmt.Errorf("save photo: %w", err)
	}
}

func parseCoords(latStr, lngStr string) (float64, float64, error) {
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err1 != nil || err2 != nil ||
		math.IsNaN(lat) || math.IsNaN(lng) ||
		lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, ErrInvalid(MsgInvalidCoords)
	}
	return lat, lng, nil
}

// parseReportDate accepts YYYY-MM-DD, or an RFC3339 instant whose local date is used.
func parseReportDate(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// parseAdminTime: RFC3339 か、タイムゾーン無しの現地時刻
func parseAdminTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.UTC().Truncate(time.Millisecond), nil
	}
	localFormats := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, format := range localFormats {
		if parsed, err := time.ParseInLocation(format, value, loc); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", value)
}
