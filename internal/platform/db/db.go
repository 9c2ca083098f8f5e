package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	driverName     = "mysql"
	ConfigFilePath = "config/config.yaml"
	ConfigPathEnv  = "PRESENSI_CONFIG"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Migrate  bool   `yaml:"migrate"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Admin     AdminConfig   `yaml:"admin"`
}

// AdminConfig: 起動時に作る最初の管理者。email が空なら何もしない
type AdminConfig struct {
	Nama     string `yaml:"nama"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type UploadConfig struct {
	Dir string `yaml:"dir"`
}

type ReportConfig struct {
	Timezone string `yaml:"timezone"`
}

type BooksConfig struct {
	Store string `yaml:"store"` // mysql | memory
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Auth        AuthConfig     `yaml:"auth"`
	Upload      UploadConfig   `yaml:"upload"`
	Report      ReportConfig   `yaml:"report"`
	Books       BooksConfig    `yaml:"books"`
	CORS        CORSConfig     `yaml:"cors"`
}

// ConfigPath: PRESENSI_CONFIG があればそちらを優先
func ConfigPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	return ConfigFilePath
}

// LoadConfig reads the YAML file, then lets .env / process env override
// connection settings and secrets.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] .env not found, using process environment")
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Username, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.DBName, "DB_NAME")
	if v, ok := os.LookupEnv("DB_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.DB.Port = n
		} else {
			log.Printf("[WARN] ignoring DB_PORT=%q: %v", v, err)
		}
	}
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.Admin.Email, "ADMIN_EMAIL")
	setString(&c.Auth.Admin.Password, "ADMIN_PASSWORD")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Upload.Dir, "UPLOAD_DIR")
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.Admin.Nama == "" {
		c.Auth.Admin.Nama = "Administrator"
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "uploads"
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = "Asia/Jakarta"
	}
	if c.Books.Store == "" {
		c.Books.Store = "mysql"
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"http://localhost:3000"}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// UseTLS: 証明書が両方指定されているときだけ TLS で起動する
func (c *Config) UseTLS() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 接続プール
	db.SetMaxOpenConns(40)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
