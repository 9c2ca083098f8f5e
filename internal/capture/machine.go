// Package capture drives the check-in/check-out flow from the client side:
// location, selfie, submission, and what the user is shown afterwards.
package capture

import (
	"errors"
	"fmt"
)

type State int

const (
	Idle State = iota
	LocationPending
	AwaitingPhoto
	Ready
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LocationPending:
		return "location-pending"
	case AwaitingPhoto:
		return "awaiting-photo"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// 画面に出す文言（サーバーの文言とは別）
const (
	MsgNoLocation   = "Lokasi belum didapatkan. Mohon izinkan akses lokasi."
	MsgNoPhoto      = "Foto selfie wajib diambil sebelum Check-In."
	MsgNoConnection = "Gagal terhubung ke server. Cek koneksi Anda."
	MsgNotLoggedIn  = "Sesi tidak ditemukan. Silakan login terlebih dahulu."
)

var ErrInvalidTransition = errors.New("capture: invalid transition")

// ValidationError is raised locally, before any request is sent.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type Coords struct {
	Lat float64
	Lng float64
}

type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

type op int

const (
	opNone op = iota
	opCheckIn
	opCheckOut
)

// Machine holds the capture state. It is not safe for concurrent use; Flow serializes access.
type Machine struct {
	state   State
	coords  *Coords
	photo   *Photo
	pending op
	message string
	errMsg  string
}

func NewMachine() *Machine { return &Machine{state: Idle} }

func (m *Machine) State() State { return m.state }

func (m *Machine) Coords() (Coords, bool) {
	if m.coords == nil {
		return Coords{}, false
	}
	return *m.coords, true
}

func (m *Machine) Photo() (Photo, bool) {
	if m.photo == nil {
		return Photo{}, false
	}
	return *m.photo, true
}

// Message is the last success message, Err the last error shown to the user.
func (m *Machine) Message() string { return m.message }
func (m *Machine) Err() string     { return m.errMsg }

func (m *Machine) invalid(event string) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, event, m.state)
}

// settle derives the resting state from what has been collected so far.
func (m *Machine) settle() {
	switch {
	case m.coords == nil:
		m.state = Idle
	case m.photo == nil:
		m.state = AwaitingPhoto
	default:
		m.state = Ready
	}
}

func (m *Machine) RequestLocation() error {
	if m.state == Submitting || m.state == LocationPending {
		return m.invalid("request-location")
	}
	m.state = LocationPending
	return nil
}

func (m *Machine) LocationAcquired(c Coords) error {
	if m.state != LocationPending {
		return m.invalid("location-acquired")
	}
	m.coords = &c
	m.settle()
	return nil
}

// LocationFailed keeps any previously known position.
func (m *Machine) LocationFailed(reason string) error {
	if m.state != LocationPending {
		return m.invalid("location-failed")
	}
	m.errMsg = "Gagal mendapatkan lokasi: " + reason
	m.settle()
	return nil
}

func (m *Machine) PhotoCaptured(p Photo) error {
	if m.state == Submitting {
		return m.invalid("photo-captured")
	}
	if len(p.Data) == 0 {
		return &ValidationError{Message: MsgNoPhoto}
	}
	m.photo = &p
	if m.state != LocationPending {
		m.settle()
	}
	return nil
}

// DiscardPhoto is the "Foto Ulang" action.
func (m *Machine) DiscardPhoto() error {
	if m.state == Submitting {
		return m.invalid("discard-photo")
	}
	m.photo = nil
	if m.state != LocationPending {
		m.settle()
	}
	return nil
}

// BeginCheckIn moves to Submitting. Without location or photo it returns a
// ValidationError and the state is unchanged.
func (m *Machine) BeginCheckIn() (Coords, Photo, error) {
	switch m.state {
	case Submitting:
		return Coords{}, Photo{}, m.invalid("check-in")
	case Succeeded, Failed:
		m.settle()
	}
	if m.coords == nil {
		m.errMsg = MsgNoLocation
		return Coords{}, Photo{}, &ValidationError{Message: MsgNoLocation}
	}
	if m.photo == nil {
		m.errMsg = MsgNoPhoto
		return Coords{}, Photo{}, &ValidationError{Message: MsgNoPhoto}
	}
	if m.state != Ready {
		return Coords{}, Photo{}, m.invalid("check-in")
	}
	m.state = Submitting
	m.pending = opCheckIn
	m.message, m.errMsg = "", ""
	return *m.coords, *m.photo, nil
}

// BeginCheckOut only needs a session, so any resting state is accepted.
func (m *Machine) BeginCheckOut() error {
	if m.state == Submitting || m.state == LocationPending {
		return m.invalid("check-out")
	}
	m.state = Submitting
	m.pending = opCheckOut
	m.message, m.errMsg = "", ""
	return nil
}

func (m *Machine) Succeed(message string) error {
	if m.state != Submitting {
		return m.invalid("succeed")
	}
	if m.pending == opCheckIn {
		m.photo = nil
	}
	m.pending = opNone
	m.message = message
	m.state = Succeeded
	return nil
}

func (m *Machine) Fail(message string) error {
	if m.state != Submitting {
		return m.invalid("fail")
	}
	m.pending = opNone
	m.errMsg = message
	m.state = Failed
	return nil
}
