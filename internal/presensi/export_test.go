package presensi

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	repo := newMemRepo()
	seedReport(repo)
	out := repo.rows["r1"].CheckIn.Add(8 * time.Hour)
	repo.rows["r1"].CheckOut = &out
	svc := newTestService(t, repo, &fakePhotos{}, nil)

	data, err := svc.ExportCSV(context.Background(), ReportQuery{Nama: "budi"})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	// r3: 2024-06-02 16:59:59.999 UTC -> 23:59:59 WIB, masih terbuka
	assert.Equal(t, []string{"r3", "Budi Santoso", "budi@example.com", "2024-06-02 23:59:59", belumCheckOut, "0", "0", ""}, records[1])
	assert.Equal(t, "2024-06-02 07:59:59", records[2][4])
}

func TestHandler_ExportCSV(t *testing.T) {
	e := newTestEnv(t)
	seedReport(e.repo)

	w := e.do(http.MethodGet, "/api/presensi/report/export?tanggalMulai=2024-06-02&tanggalSelesai=2024-06-02", e.user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "laporan-presensi.csv")
	assert.Contains(t, w.Body.String(), "r2")
	assert.NotContains(t, w.Body.String(), "r4")
}
