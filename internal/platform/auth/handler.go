package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"presensi-backend/internal/platform/validate"
)

type AuthHandler struct{ svc AuthService }

// RegisterRoutes mounts /auth/* on r. secret is used for the protected routes.
func RegisterRoutes(r *gin.RouterGroup, svc AuthService, secret []byte) {
	h := &AuthHandler{svc: svc}
	g := r.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/register", h.Register)

	protected := g.Group("", RequireAuth(secret))
	protected.GET("/me", h.Me)
	protected.POST("/accounts", RequireRole(RoleAdmin), h.CreateAccount)
	protected.DELETE("/accounts/:id", RequireRole(RoleAdmin), h.DeleteAccount)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the public self-registration body. The role is always mahasiswa.
type RegisterRequest struct {
	Nama     string `json:"nama" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CreateAccountRequest: 管理者だけが role を指定できる
type CreateAccountRequest struct {
	Nama     string `json:"nama" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=mahasiswa admin"`
}

type UserResponse struct {
	ID        uint64    `json:"id"`
	Nama      string    `json:"nama"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Nama: u.Nama, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Login godoc
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} object{message=string,token=string,user=UserResponse}
// @Failure 401 {object} object{message=string}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email dan password wajib diisi."})
		return
	}

	token, u, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("[ERROR] login: %v", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email atau password salah."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login berhasil",
		"token":   token,
		"user":    toUserResponse(u),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request body tidak valid."})
		return
	}
	if errs := validate.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validate.Join(errs), "errors": errs})
		return
	}

	u, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email sudah terdaftar."})
			return
		}
		log.Printf("[ERROR] register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Terjadi kesalahan pada server."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registrasi berhasil", "user": toUserResponse(u)})
}

// CreateAccount godoc
// @Summary Buat akun dengan role (admin)
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateAccountRequest true "account"
// @Success 201 {object} object{message=string,user=UserResponse}
// @Failure 400 {object} object{message=string}
// @Failure 403 {object} object{message=string}
// @Failure 409 {object} object{message=string}
// @Router /auth/accounts [post]
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request body tidak valid."})
		return
	}
	if errs := validate.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validate.Join(errs), "errors": errs})
		return
	}

	u, err := h.svc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email sudah terdaftar."})
			return
		}
		log.Printf("[ERROR] create account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Terjadi kesalahan pada server."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Akun berhasil dibuat", "user": toUserResponse(u)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token tidak valid"})
		return
	}
	u, err := h.svc.Me(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User tidak ditemukan."})
			return
		}
		log.Printf("[ERROR] me: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Terjadi kesalahan pada server."})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ID user tidak valid."})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User tidak ditemukan."})
			return
		}
		if errors.Is(err, ErrInUse) {
			c.JSON(http.StatusConflict, gin.H{"message": "User masih memiliki data presensi dan tidak dapat dihapus."})
			return
		}
		log.Printf("[ERROR] delete account %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Terjadi kesalahan pada server."})
		return
	}

	c.Status(http.StatusNoContent)
}
