package presensi

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	exportTimeLayout = "2006-01-02 15:04:05"
	belumCheckOut    = "Belum Check-Out"
)

var exportHeader = []string{"id", "nama", "email", "check_in", "check_out", "latitude", "longitude", "bukti_foto"}

// ExportCSV renders the same rows as Report. Times are in the report timezone.
func (s *Service) ExportCSV(ctx context.Context, q ReportQuery) ([]byte, error) {
	rows, err := s.Report(ctx, q)
	if err != nil {
		return nil, err
	}
	return writeReportCSV(rows, s.loc)
}

// BOM 付き UTF-8 にしておくと Excel で文字化けしない
func writeReportCSV(rows []PresensiResponse, loc *time.Location) ([]byte, error) {
	var b bytes.Buffer
	tw := transform.NewWriter(&b, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(tw)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		var nama, email string
		if r.User != nil {
			nama, email = r.User.Nama, r.User.Email
		}
		checkOut := belumCheckOut
		if r.CheckOut != nil {
			checkOut = r.CheckOut.In(loc).Format(exportTimeLayout)
		}
		record := []string{
			r.ID,
			nama,
			email,
			r.CheckIn.In(loc).Format(exportTimeLayout),
			checkOut,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			r.BuktiFoto,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
