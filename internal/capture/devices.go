package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// StaticLocator reports a fixed position (terminal clients pass it as flags).
type StaticLocator Coords

func (s StaticLocator) Locate(context.Context) (Coords, error) {
	c := Coords(s)
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return Coords{}, fmt.Errorf("koordinat di luar jangkauan (%g, %g)", c.Lat, c.Lng)
	}
	return c, nil
}

// FileCamera "captures" an existing image file.
type FileCamera struct{ Path string }

func (fc FileCamera) Capture(context.Context) (Photo, error) {
	data, err := os.ReadFile(fc.Path)
	if err != nil {
		return Photo{}, fmt.Errorf("baca foto: %w", err)
	}
	return Photo{
		Filename:    filepath.Base(fc.Path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}
