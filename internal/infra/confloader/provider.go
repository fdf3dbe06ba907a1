package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider is a koanf provider over a map of dotted keys.
type mapProvider struct {
	data map[string]any
}

func newMapProvider(data map[string]any) *mapProvider {
	return &mapProvider{data: data}
}

// ReadBytes is not supported; koanf uses Read for this provider.
func (m *mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the map with dotted keys expanded into nested maps.
func (m *mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m.data, "."), nil
}
