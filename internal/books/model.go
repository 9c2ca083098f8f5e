package books

import "errors"

type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

var ErrNotFound = errors.New("books: not found")

// 初期データ（起動直後の一覧に出る2冊）
func Seed() []Book {
	return []Book{
		{ID: 1, Title: "Amba Shotgun Malang", Author: "Ambatakum"},
		{ID: 2, Title: "Roesdi Goyang 58", Author: "Ir. Roesdi Purwantoro"},
	}
}
