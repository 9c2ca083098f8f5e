package presensi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presensi-backend/internal/platform/auth"
	"presensi-backend/internal/platform/upload"
)

var testSecret = []byte("presensi-test-secret")

var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x02}, 2048)...)

type testEnv struct {
	r     *gin.Engine
	repo  *memRepo
	dir   string
	user  string
	admin string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	repo.users[1] = UserRef{Nama: "Budi Santoso", Email: "budi@example.com"}
	dir := t.TempDir()
	svc := NewServiceWith(repo, upload.NewStorage(dir), nil, &seqIDs{}, jakarta(t))

	r := gin.New()
	RegisterRoutes(r.Group("/api"), svc, testSecret)

	user, err := auth.NewToken(testSecret, time.Hour, &auth.User{ID: 1, Nama: "Budi Santoso", Role: auth.RoleMahasiswa})
	require.NoError(t, err)
	admin, err := auth.NewToken(testSecret, time.Hour, &auth.User{ID: 99, Nama: "Admin", Role: auth.RoleAdmin})
	require.NoError(t, err)

	return &testEnv{r: r, repo: repo, dir: dir, user: user, admin: admin}
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func (e *testEnv) checkIn(t *testing.T, token string, file *filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{"latitude": "-7.797", "longitude": "110.370"}, file)
	req := httptest.NewRequest(http.MethodPost, "/api/presensi/check-in", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func selfie() *filePart { return &filePart{name: "selfie.jpg", contentType: "image/jpeg", data: jpegBytes} }

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) (string, PresensiResponse) {
	t.Helper()
	var out MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out.Message, out.Data
}

func TestHandler_CheckInCheckOutFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.checkIn(t, e.user, selfie())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg, rec := decodeMessage(t, w)
	assert.Equal(t, "Check-In berhasil", msg)
	assert.Nil(t, rec.CheckOut)
	assert.Contains(t, w.Body.String(), `"checkOut":null`)
	assert.True(t, strings.HasPrefix(rec.BuktiFoto, "uploads/1-"), rec.BuktiFoto)
	assert.True(t, strings.HasSuffix(rec.BuktiFoto, ".jpg"), rec.BuktiFoto)

	w = e.checkIn(t, e.user, selfie())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"CONFLICT","message":"Anda sudah Check-In dan belum Check-Out."}`, w.Body.String())

	w = e.do(http.MethodPost, "/api/presensi/check-out", e.user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	msg, out := decodeMessage(t, w)
	assert.Equal(t, "Check-Out berhasil", msg)
	require.NotNil(t, out.CheckOut)
	assert.False(t, out.CheckOut.Before(out.CheckIn))

	w = e.do(http.MethodPost, "/api/presensi/check-out", e.user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), MsgNoOpenSession)
}

func TestHandler_CheckInUploadErrors(t *testing.T) {
	big := make([]byte, 6<<20)
	copy(big, jpegBytes)

	cases := []struct {
		name string
		file *filePart
		msg  string
	}{
		{"six megabytes", &filePart{name: "big.jpg", contentType: "image/jpeg", data: big}, MsgFileTooLarge},
		{"not an image", &filePart{name: "notes.txt", contentType: "text/plain", data: []byte("bukan foto")}, MsgNotImage},
		{"disguised", &filePart{name: "evil.jpg", contentType: "image/jpeg", data: []byte("#!/bin/sh\n")}, MsgNotImage},
		{"no photo", nil, MsgPhotoRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			w := e.checkIn(t, e.user, tc.file)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
			assert.Equal(t, tc.msg, body.Message)
			assert.Empty(t, e.repo.rows)
		})
	}
}

func TestHandler_CheckInOversizedBodyWithoutPhoto(t *testing.T) {
	e := newTestEnv(t)
	body, ct := multipartBody(t, map[string]string{
		"latitude":  "-7.797",
		"longitude": "110.370",
		"catatan":   strings.Repeat("x", maxCheckInBodyBytes),
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/presensi/check-in", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+e.user)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), MsgFileTooLarge)
	assert.Empty(t, e.repo.rows)
}

func TestHandler_CheckInStoresSniffedExtension(t *testing.T) {
	e := newTestEnv(t)
	w := e.checkIn(t, e.user, &filePart{name: "evil.html", contentType: "image/jpeg", data: jpegBytes})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, rec := decodeMessage(t, w)
	assert.True(t, strings.HasSuffix(rec.BuktiFoto, ".jpg"), rec.BuktiFoto)
}

func TestHandler_RequiresToken(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/api/presensi/check-out", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(http.MethodGet, "/api/presensi/report", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_AdminUpdateDelete(t *testing.T) {
	e := newTestEnv(t)
	w := e.checkIn(t, e.user, selfie())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, rec := decodeMessage(t, w)
	path := "/api/presensi/" + rec.ID

	w = e.do(http.MethodPut, path, e.user, gin.H{"checkOut": "2030-01-01T00:00:00Z"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodDelete, path, e.user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPut, path, e.admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), MsgEmptyUpdate)

	w = e.do(http.MethodPut, "/api/presensi/does-not-exist", e.admin, gin.H{"checkOut": "2030-01-01T00:00:00Z"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), MsgRecordNotFound)

	w = e.do(http.MethodPut, path, e.admin, gin.H{"checkOut": "2030-01-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	msg, upd := decodeMessage(t, w)
	assert.Equal(t, "Data presensi berhasil diperbarui.", msg)
	require.NotNil(t, upd.CheckOut)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), upd.CheckOut.UTC())

	w = e.do(http.MethodDelete, "/api/presensi/does-not-exist", e.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodDelete, path, e.admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = e.do(http.MethodGet, path, e.user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Report(t *testing.T) {
	e := newTestEnv(t)
	seedReport(e.repo)

	w := e.do(http.MethodGet, "/api/presensi/report?nama=budi", e.user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []PresensiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Equal(t, []string{"r3", "r1"}, ids(rows))
	require.NotNil(t, rows[0].User)
	assert.Equal(t, "budi@example.com", rows[0].User.Email)

	w = e.do(http.MethodGet, "/api/presensi/report/daily?tanggalMulai=2024-06-02&tanggalSelesai=2024-06-02", e.user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var daily DailyReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &daily))
	assert.NotEmpty(t, daily.ReportDate)
	assert.Equal(t, []string{"r3", "r2"}, ids(daily.Data))

	w = e.do(http.MethodGet, "/api/presensi/report?tanggalMulai=2024-06-05&tanggalSelesai=2024-06-01", e.user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 該当なしでも null ではなく []
	w = e.do(http.MethodGet, "/api/presensi/report?nama=tidak-ada", e.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
