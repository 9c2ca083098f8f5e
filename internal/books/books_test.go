package books

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewService(store))
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CRUD(t *testing.T) {
	r := newRouter(NewMemoryStore(Seed()))

	w := do(r, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, Seed(), list)

	w = do(r, http.MethodPost, "/api/books", gin.H{"title": "Laskar Pelangi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Title and author are required"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/books", gin.H{"title": "Laskar Pelangi", "author": "Andrea Hirata"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":3,"title":"Laskar Pelangi","author":"Andrea Hirata"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/books/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, "/api/books/3", gin.H{"title": "Sang Pemimpi", "author": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/books/3", gin.H{"title": "Sang Pemimpi", "author": "Andrea Hirata"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"title":"Sang Pemimpi","author":"Andrea Hirata"}`, w.Body.String())

	w = do(r, http.MethodPut, "/api/books/42", gin.H{"title": "x", "author": "y"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Book not found"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/books/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Book deleted","deleted":[{"id":1,"title":"Amba Shotgun Malang","author":"Ambatakum"}]}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/books/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodGet, "/api/books/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMemoryStore_IDsNeverReused(t *testing.T) {
	s := NewMemoryStore(Seed())
	ctx := context.Background()

	_, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	b := &Book{Title: "Bumi Manusia", Author: "Pramoedya Ananta Toer"}
	require.NoError(t, s.Create(ctx, b))
	assert.Equal(t, int64(3), b.ID)
}

func TestMemoryStore_ListCaseInsensitive(t *testing.T) {
	s := NewMemoryStore(Seed())
	got, err := s.List(context.Background(), "ROESDI")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	// 状態はインスタンスごとに独立
	other := NewMemoryStore(nil)
	got, err = other.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLStore(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	s := NewSQLStore(conn)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, author FROM books WHERE LOWER(title) LIKE LOWER(?) ORDER BY id ASC")).
		WithArgs("%goyang%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author"}).AddRow(2, "Roesdi Goyang 58", "Ir. Roesdi Purwantoro"))
	list, err := s.List(ctx, "goyang")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO books (title, author) VALUES (?, ?)")).
		WithArgs("A", "B").
		WillReturnResult(sqlmock.NewResult(7, 1))
	b := &Book{Title: "A", Author: "B"}
	require.NoError(t, s.Create(ctx, b))
	assert.Equal(t, int64(7), b.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM books WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author"}))
	_, err = s.Delete(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SeedIfEmpty(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	for _, b := range Seed() {
		mock.ExpectExec("INSERT INTO books").WithArgs(b.ID, b.Title, b.Author).WillReturnResult(sqlmock.NewResult(b.ID, 1))
	}
	require.NoError(t, NewSQLStore(conn).SeedIfEmpty(context.Background(), Seed()))

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	require.NoError(t, NewSQLStore(conn).SeedIfEmpty(context.Background(), Seed()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
