package capture

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DisplayTZ     = "Asia/Jakarta"
	NotCheckedOut = "Belum Check-Out"
)

var bulan = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

var displayLoc = mustLoad(DisplayTZ)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// FormatTime renders t in WIB as "02 Jun 2024, 07.59.59"; nil means still open.
func FormatTime(t *time.Time) string {
	if t == nil {
		return NotCheckedOut
	}
	w := t.In(displayLoc)
	return fmt.Sprintf("%02d %s %d, %02d.%02d.%02d",
		w.Day(), bulan[w.Month()-1], w.Year(), w.Hour(), w.Minute(), w.Second())
}

// PhotoURL joins a stored photo path (Windows separators allowed) onto base.
func PhotoURL(base, stored string) string {
	if stored == "" {
		return ""
	}
	p := strings.TrimLeft(strings.ReplaceAll(stored, `\`, "/"), "/")
	return strings.TrimRight(base, "/") + "/" + p
}
