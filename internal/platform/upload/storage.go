// Package upload stores check-in photos on local disk.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxPhotoBytes is the fixed size ceiling for a single photo.
	MaxPhotoBytes int64 = 5 << 20
	// PublicPrefix is the URL path the upload dir is served under.
	PublicPrefix = "uploads"
)

var (
	ErrNoFile   = errors.New("upload: no file")
	ErrTooLarge = errors.New("upload: file too large")
	ErrNotImage = errors.New("upload: not an image")
)

type Storage struct {
	dir string
	now func() time.Time
}

// NewStorage returns a Storage writing under dir. Stored paths are relative to
// PublicPrefix (e.g. "uploads/12-1717000000000.jpg") regardless of dir.
func NewStorage(dir string) *Storage {
	return &Storage{dir: filepath.Clean(dir), now: time.Now}
}

// Check validates the declared content type and size without touching disk.
func (s *Storage) Check(fh *multipart.FileHeader) error {
	if fh == nil {
		return ErrNoFile
	}
	if fh.Size > MaxPhotoBytes {
		return ErrTooLarge
	}
	if !strings.HasPrefix(strings.ToLower(fh.Header.Get("Content-Type")), "image/") {
		return ErrNotImage
	}
	return nil
}

// Save checks fh, sniffs the actual content, and writes it as
// <dir>/<userID>-<epochMillis><ext>, where ext follows the sniffed type.
// It returns the public relative path.
func (s *Storage) Save(ctx context.Context, userID uint64, fh *multipart.FileHeader) (string, error) {
	if err := s.Check(fh); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// 宣言された Content-Type だけでなく中身も確認する
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// 拡張子はクライアントのファイル名ではなく判定した中身から決める
	ext := mt.Extension()
	if ext == "" {
		ext = ".bin"
	}
	name, full, dst, err := s.create(userID, ext)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxPhotoBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxPhotoBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write photo file: %w", err)
	}

	return path.Join(PublicPrefix, name), nil
}

// create opens a fresh file; on a same-millisecond clash it moves to the next millisecond.
func (s *Storage) create(userID uint64, ext string) (string, string, *os.File, error) {
	ts := s.now().UnixMilli()
	var lastErr error
	for i := int64(0); i < 50; i++ {
		name := fmt.Sprintf("%d-%d%s", userID, ts+i, ext)
		full := filepath.Join(s.dir, name)
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return name, full, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", nil, err
		}
		lastErr = err
	}
	return "", "", nil, lastErr
}

// Remove deletes a file previously returned by Save. Missing files are not an error.
func (s *Storage) Remove(rel string) error {
	full := filepath.Join(s.dir, path.Base(strings.ReplaceAll(rel, `\`, "/")))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] remove photo %s: %v", full, err)
		return err
	}
	return nil
}
