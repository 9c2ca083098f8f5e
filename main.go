package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "presensi-backend/docs"
	"presensi-backend/internal/books"
	"presensi-backend/internal/platform/auth"
	"presensi-backend/internal/platform/db"
	"presensi-backend/internal/platform/reqlog"
	"presensi-backend/internal/platform/upload"
	"presensi-backend/internal/presensi"
)

// @title Presensi API
// @version 1.0
// @description Check-In/Check-Out dengan lokasi dan foto selfie, laporan presensi, dan demo books.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig(db.ConfigPath())
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	log.Printf("[INFO] mode:%s", cfg.Mode)
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		log.Fatalf("[ERROR] mode must be dev or release, got %q", cfg.Mode)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[ERROR] auth.jwt_secret (or JWT_SECRET) is required")
	}
	secret := []byte(cfg.Auth.JWTSecret)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx, conn)
		cancel()
		if err != nil {
			log.Fatalf("[ERROR] migrate: %v", err)
		}
	}

	loc, err := presensi.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		log.Fatalf("[ERROR] report.timezone: %v", err)
	}
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("[ERROR] upload dir: %v", err)
	}

	bookSvc, err := newBooks(cfg, conn)
	if err != nil {
		log.Fatalf("[ERROR] books: %v", err)
	}

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(reqlog.RequestID(), reqlog.Logger(), gin.Recovery())
	// アップロード画像を HTML などとして解釈させない
	r.Use(func(c *gin.Context) { c.Header("X-Content-Type-Options", "nosniff") })
	_ = r.SetTrustedProxies(nil)
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", reqlog.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", reqlog.HeaderRequestID},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	// 保存済みの証拠写真 (buktiFoto は "uploads/..." の相対パス)
	r.Static("/uploads", cfg.Upload.Dir)

	authSvc := auth.NewService(conn, secret, cfg.Auth.TokenTTL)
	if err := ensureAdmin(authSvc, cfg.Auth.Admin); err != nil {
		log.Fatalf("[ERROR] admin bootstrap: %v", err)
	}

	api := r.Group("/api")
	auth.RegisterRoutes(api, authSvc, secret)
	presensi.RegisterRoutes(api, presensi.NewService(conn, upload.NewStorage(cfg.Upload.Dir), loc), secret)
	books.RegisterRoutes(api, bookSvc)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.UseTLS() {
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			log.Printf("[INFO] listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}

func newBooks(cfg *db.Config, conn *sql.DB) (*books.Service, error) {
	switch cfg.Books.Store {
	case "memory":
		log.Println("[INFO] books: in-memory store")
		return books.NewService(books.NewMemoryStore(books.Seed())), nil
	default:
		store := books.NewSQLStore(conn)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.SeedIfEmpty(ctx, books.Seed()); err != nil {
			return nil, err
		}
		return books.NewService(store), nil
	}
}

// ensureAdmin creates the configured admin account once. Self-registration
// never grants admin, so this is how the first admin gets in.
func ensureAdmin(svc *auth.Service, a db.AdminConfig) error {
	if a.Email == "" {
		return nil
	}
	if len(a.Password) < 8 {
		return fmt.Errorf("auth.admin.password must be at least 8 characters")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	u, created, err := svc.EnsureAdmin(ctx, a.Nama, a.Email, a.Password)
	if err != nil {
		return err
	}
	if created {
		log.Printf("[INFO] admin account created: %s", u.Email)
	} else if u.Role != auth.RoleAdmin {
		log.Printf("[WARN] auth.admin.email %s already exists with role %s", u.Email, u.Role)
	}
	return nil
}
