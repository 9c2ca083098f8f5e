package books

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Store hides where books live. MemoryStore is for demos/tests, SQLStore for MySQL.
type Store interface {
	// List returns books ordered by id; q filters by title substring (case-insensitive).
	List(ctx context.Context, q string) ([]Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Create(ctx context.Context, b *Book) error
	// Update returns ErrNotFound when id does not exist.
	Update(ctx context.Context, b *Book) error
	// Delete returns the removed book, or ErrNotFound.
	Delete(ctx context.Context, id int64) (*Book, error)
}

// ===== memory =====

type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]Book
}

// NewMemoryStore copies seed; new ids continue after the largest seeded id.
func NewMemoryStore(seed []Book) *MemoryStore {
	m := &MemoryStore{books: make(map[int64]Book, len(seed))}
	for _, b := range seed {
		m.books[b.ID] = b
		if b.ID > m.nextID {
			m.nextID = b.ID
		}
	}
	return m
}

func (m *MemoryStore) List(_ context.Context, q string) ([]Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Caser は状態を持つので呼び出しごとに作る
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q))
	out := make([]Book, 0, len(m.books))
	for _, b := range m.books {
		if needle != "" && !strings.Contains(fold.String(b.Title), needle) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) Create(_ context.Context, b *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.books[b.ID] = *b
	return nil
}

func (m *MemoryStore) Update(_ context.Context, b *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return ErrNotFound
	}
	m.books[b.ID] = *b
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.books, id)
	return &b, nil
}

// ===== MySQL =====

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)

func (s *SQLStore) List(ctx context.Context, q string) ([]Book, error) {
	query := `SELECT id, title, author FROM books`
	var args []any
	if q = strings.TrimSpace(q); q != "" {
		query += ` WHERE LOWER(title) LIKE LOWER(?)`
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id int64) (*Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx, `SELECT id, title, author FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLStore) Create(ctx context.Context, b *Book) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO books (title, author) VALUES (?, ?)`, b.Title, b.Author)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (s *SQLStore) Update(ctx context.Context, b *Book) error {
	// 値が同じだと RowsAffected が 0 になるので存在確認は SELECT で行う
	if _, err := s.Get(ctx, b.ID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE books SET title = ?, author = ? WHERE id = ?`, b.Title, b.Author, b.ID)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, id int64) (*Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return b, nil
}

// SeedIfEmpty inserts seed when the books table has no rows.
func (s *SQLStore) SeedIfEmpty(ctx context.Context, seed []Book) error {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, b := range seed {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO books (id, title, author) VALUES (?, ?, ?)`, b.ID, b.Title, b.Author); err != nil {
			return err
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
