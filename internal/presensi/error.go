package presensi

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== Error model (auth/books と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

// クライアントはこの文言をそのまま表示する
const (
	MsgAlreadyCheckedIn = "Anda sudah Check-In dan belum Check-Out."
	MsgPhotoRequired    = "Gagal Check-In: Bukti foto wajib diunggah."
	MsgNotImage         = "Hanya file gambar yang diperbolehkan!"
	MsgFileTooLarge     = "Ukuran file terlalu besar. Maksimal 5MB."
	MsgInvalidCoords    = "Latitude dan longitude wajib diisi dengan angka yang valid."
	MsgNoOpenSession    = "Anda belum Check-In atau sudah Check-Out hari ini."
	MsgRecordNotFound   = "Catatan presensi tidak ditemukan."
	MsgEmptyUpdate      = "Request body tidak berisi data yang valid untuk diupdate."
	MsgInvalidTime      = "Format waktu tidak valid. Gunakan RFC3339 atau YYYY-MM-DD HH:MM."
	MsgCheckOutBefore   = "Waktu Check-Out tidak boleh lebih awal dari Check-In."
	MsgInvalidDate      = "Format tanggal tidak valid. Gunakan YYYY-MM-DD."
	MsgDateRange        = "Tanggal selesai tidak boleh sebelum tanggal mulai."
	MsgInvalidBody      = "Request body tidak valid."
	MsgInternal         = "Terjadi kesalahan pada server."
)

// Store 境界のセンチネル
var (
	ErrOpenSessionExists = errors.New("presensi: open session already exists")
	ErrNoOpenSession     = errors.New("presensi: no open session")
	ErrRecordNotFound    = errors.New("presensi: record not found")
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// 二重 Check-In は 409 ではなく 400 で返す（既存クライアント互換）
func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeConflict:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// errorFromErr hides anything that is not an APIError behind the generic message.
func errorFromErr(err error) *APIError {
	var api *APIError
	if errors.As(err, &api) && api.Code != CodeInternal {
		return api
	}
	return ErrInternal(MsgInternal)
}
