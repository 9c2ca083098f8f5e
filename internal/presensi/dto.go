package presensi

import (
	"mime/multipart"
	"time"
)

const (
	DateLayout = "2006-01-02"
	DefaultTZ  = "Asia/Jakarta"

	// リクエスト全体の上限。写真そのものの上限 (upload.MaxPhotoBytes, 5MB) より
	// 意図的に 1MB 緩くして multipart のオーバーヘッドを許す。これを超える
	// リクエストは image パートの有無にかかわらず「ファイルが大きすぎる」扱い。
	maxCheckInBodyBytes = 6 << 20
)

type PresensiResponse struct {
	ID        string     `json:"id"`
	UserID    uint64     `json:"userId"`
	CheckIn   time.Time  `json:"checkIn"`
	CheckOut  *time.Time `json:"checkOut"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	BuktiFoto string     `json:"buktiFoto"`
	User      *UserRef   `json:"user,omitempty"`
}

type UserRef struct {
	Nama  string `json:"nama"`
	Email string `json:"email"`
}

// CheckInInput: multipart から取り出した値（latitude/longitude は文字列のまま）
type CheckInInput struct {
	UserID    uint64
	Latitude  string
	Longitude string
	Photo     *multipart.FileHeader
}

// UpdateRequest: nil のフィールドは変更しない
type UpdateRequest struct {
	CheckIn  *string `json:"checkIn,omitempty"`
	CheckOut *string `json:"checkOut,omitempty"`
}

type ReportQuery struct {
	Nama           string
	TanggalMulai   string // YYYY-MM-DD
	TanggalSelesai string // YYYY-MM-DD
}

type DailyReportResponse struct {
	ReportDate string             `json:"reportDate"`
	Data       []PresensiResponse `json:"data"`
}

type MessageResponse struct {
	Message string           `json:"message"`
	Data    PresensiResponse `json:"data"`
}
