package presensi

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"presensi-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts /presensi/*. Every route needs a token; PUT/DELETE are admin only.
func RegisterRoutes(r *gin.RouterGroup, svc *Service, secret []byte) {
	h := &Handler{svc: svc}
	g := r.Group("/presensi", auth.RequireAuth(secret))

	g.POST("/check-in", h.CheckIn)
	g.POST("/check-out", h.CheckOut)
	g.GET("/report", h.Report)
	g.GET("/report/daily", h.DailyReport)
	g.GET("/report/export", h.ExportCSV)
	g.GET("/:id", h.Get)

	admin := g.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

// ---------- handlers ----------

// CheckIn godoc
// @Summary Check-In dengan lokasi dan foto selfie
// @Tags Presensi
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param latitude formData string true "latitude"
// @Param longitude formData string true "longitude"
// @Param image formData file true "bukti foto (image/*, max 5MB)"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} APIError
// @Failure 500 {object} APIError
// @Router /presensi/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token tidak valid"})
		return
	}

	if c.Request.ContentLength > maxCheckInBodyBytes {
		c.JSON(http.StatusBadRequest, ErrInvalid(MsgFileTooLarge))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCheckInBodyBytes)

	fh, err := formPhoto(c)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.JSON(http.StatusBadRequest, ErrInvalid(MsgFileTooLarge))
			return
		}
		c.JSON(http.StatusBadRequest, ErrInvalid(MsgInvalidBody))
		return
	}

	res, err := h.svc.CheckIn(c.Request.Context(), CheckInInput{
		UserID:    userID,
		Latitude:  c.PostForm("latitude"),
		Longitude: c.PostForm("longitude"),
		Photo:     fh,
	})
	if err != nil {
		h.fail(c, "check-in", err)
		return
	}
	c.JSON(http.StatusCreated, MessageResponse{Message: "Check-In berhasil", Data: res})
}

// CheckOut godoc
// @Summary Check-Out sesi yang masih terbuka
// @Tags Presensi
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 404 {object} APIError
// @Router /presensi/check-out [post]
func (h *Handler) CheckOut(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token tidak valid"})
		return
	}
	res, err := h.svc.CheckOut(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "check-out", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Check-Out berhasil", Data: res})
}

// Report godoc
// @Summary Laporan presensi
// @Tags Presensi
// @Produce json
// @Security BearerAuth
// @Param nama query string false "substring nama (case-insensitive)"
// @Param tanggalMulai query string false "YYYY-MM-DD"
// @Param tanggalSelesai query string false "YYYY-MM-DD"
// @Success 200 {array} PresensiResponse
// @Failure 400 {object} APIError
// @Router /presensi/report [get]
func (h *Handler) Report(c *gin.Context) {
	res, err := h.svc.Report(c.Request.Context(), reportQuery(c))
	if err != nil {
		h.fail(c, "report", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DailyReport godoc
// @Summary Laporan presensi dengan tanggal laporan
// @Tags Presensi
// @Produce json
// @Security BearerAuth
// @Param nama query string false "substring nama"
// @Param tanggalMulai query string false "YYYY-MM-DD"
// @Param tanggalSelesai query string false "YYYY-MM-DD"
// @Success 200 {object} DailyReportResponse
// @Router /presensi/report/daily [get]
func (h *Handler) DailyReport(c *gin.Context) {
	res, err := h.svc.DailyReport(c.Request.Context(), reportQuery(c))
	if err != nil {
		h.fail(c, "daily report", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportCSV godoc
// @Summary Unduh laporan presensi (CSV)
// @Tags Presensi
// @Produce text/csv
// @Security BearerAuth
// @Param nama query string false "substring nama"
// @Param tanggalMulai query string false "YYYY-MM-DD"
// @Param tanggalSelesai query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /presensi/report/export [get]
func (h *Handler) ExportCSV(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context(), reportQuery(c))
	if err != nil {
		h.fail(c, "export", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="laporan-presensi.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GET /presensi/:id
func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Update godoc
// @Summary Ubah waktu Check-In / Check-Out (admin)
// @Tags Presensi
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "presensi id"
// @Param body body UpdateRequest true "field yang diubah"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /presensi/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrInvalid(MsgEmptyUpdate))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Data presensi berhasil diperbarui.", Data: res})
}

// Delete godoc
// @Summary Hapus catatan presensi (admin)
// @Tags Presensi
// @Security BearerAuth
// @Param id path string true "presensi id"
// @Success 204
// @Failure 404 {object} APIError
// @Router /presensi/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := toHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] presensi %s: %v", op, err)
	}
	c.JSON(status, errorFromErr(err))
}

// formPhoto returns the "image" part, or nil when the request carries none.
func formPhoto(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		return fh, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, err
	}
}

func reportQuery(c *gin.Context) ReportQuery {
	return ReportQuery{
		Nama:           c.Query("nama"),
		TanggalMulai:   c.Query("tanggalMulai"),
		TanggalSelesai: c.Query("tanggalSelesai"),
	}
}
