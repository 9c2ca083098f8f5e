package books

import (
	"context"
	"errors"
	"strings"

	"presensi-backend/internal/platform/validate"
)

const (
	MsgRequired = "Title and author are required"
	MsgNotFound = "Book not found"
	MsgDeleted  = "Book deleted"
)

var ErrInvalid = errors.New("books: invalid input")

type BookRequest struct {
	Title  string `json:"title" validate:"notblank,max=255"`
	Author string `json:"author" validate:"notblank,max=255"`
}

type Service struct{ store Store }

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) List(ctx context.Context, q string) ([]Book, error) {
	return s.store.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (*Book, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req BookRequest) (*Book, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	b := &Book{Title: strings.TrimSpace(req.Title), Author: strings.TrimSpace(req.Author)}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update: 存在確認が先（無ければ 404、入力不備より優先）
func (s *Service) Update(ctx context.Context, id int64, req BookRequest) (*Book, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := check(req); err != nil {
		return nil, err
	}
	b := &Book{ID: id, Title: strings.TrimSpace(req.Title), Author: strings.TrimSpace(req.Author)}
	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*Book, error) {
	return s.store.Delete(ctx, id)
}

func check(req BookRequest) error {
	if errs := validate.Struct(req); errs != nil {
		return ErrInvalid
	}
	return nil
}
