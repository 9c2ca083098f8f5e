package capture

import (
	"context"
	"sync"

	"presensi-backend/internal/presensi"
)

type Locator interface {
	Locate(ctx context.Context) (Coords, error)
}

type Camera interface {
	Capture(ctx context.Context) (Photo, error)
}

// API is the part of Client the flow needs.
type API interface {
	CheckIn(ctx context.Context, at Coords, p Photo) (presensi.MessageResponse, error)
	CheckOut(ctx context.Context) (presensi.MessageResponse, error)
}

// Outcome is what the user sees after a successful submission.
type Outcome struct {
	Message string
	Time    string // WIB
	Coords  *Coords
	Record  presensi.PresensiResponse
}

type Flow struct {
	mu     sync.Mutex
	m      *Machine
	api    API
	locate Locator
	camera Camera
}

func NewFlow(api API, locate Locator, camera Camera) *Flow {
	return &Flow{m: NewMachine(), api: api, locate: locate, camera: camera}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m.State()
}

// LastError is the message currently shown in the error box.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m.Err()
}

func (f *Flow) withMachine(fn func(m *Machine) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.m)
}

func (f *Flow) Locate(ctx context.Context) error {
	if err := f.withMachine((*Machine).RequestLocation); err != nil {
		return err
	}
	c, err := f.locate.Locate(ctx)
	return f.withMachine(func(m *Machine) error {
		if err != nil {
			_ = m.LocationFailed(err.Error())
			return err
		}
		return m.LocationAcquired(c)
	})
}

func (f *Flow) Capture(ctx context.Context) error {
	p, err := f.camera.Capture(ctx)
	if err != nil {
		return err
	}
	return f.withMachine(func(m *Machine) error { return m.PhotoCaptured(p) })
}

func (f *Flow) Retake() error {
	return f.withMachine((*Machine).DiscardPhoto)
}

// CheckIn submits only from Ready; otherwise the ValidationError is returned
// and nothing is sent.
func (f *Flow) CheckIn(ctx context.Context) (Outcome, error) {
	var (
		at    Coords
		photo Photo
	)
	err := f.withMachine(func(m *Machine) error {
		var err error
		at, photo, err = m.BeginCheckIn()
		return err
	})
	if err != nil {
		return Outcome{}, err
	}

	res, err := f.api.CheckIn(ctx, at, photo)
	if err != nil {
		return Outcome{}, f.fail(err)
	}
	if err := f.withMachine(func(m *Machine) error { return m.Succeed(res.Message) }); err != nil {
		return Outcome{}, err
	}
	checkIn := res.Data.CheckIn
	return Outcome{Message: res.Message, Time: FormatTime(&checkIn), Coords: &at, Record: res.Data}, nil
}

func (f *Flow) CheckOut(ctx context.Context) (Outcome, error) {
	var coords *Coords
	err := f.withMachine(func(m *Machine) error {
		if c, ok := m.Coords(); ok {
			coords = &c
		}
		return m.BeginCheckOut()
	})
	if err != nil {
		return Outcome{}, err
	}

	res, err := f.api.CheckOut(ctx)
	if err != nil {
		return Outcome{}, f.fail(err)
	}
	if err := f.withMachine(func(m *Machine) error { return m.Succeed(res.Message) }); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: res.Message, Time: FormatTime(res.Data.CheckOut), Coords: coords, Record: res.Data}, nil
}

func (f *Flow) fail(err error) error {
	msg := UserMessage(err)
	_ = f.withMachine(func(m *Machine) error { return m.Fail(msg) })
	return err
}
