// Package fixture loads static record collections from JSON files.
package fixture

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// Well-known fixture files.
const (
	UsersFile    = "users.json"
	BookingsFile = "bookings.json"
	RoomsFile    = "rooms.json"
)

//go:embed data/*.json
var embedded embed.FS

// Embedded returns the fixtures compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Dir returns fixtures from dir, or the embedded set when dir is empty.
func Dir(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// Source reads a JSON array of records from FS on every Fetch.
type Source[T any] struct {
	FS   fs.FS
	Path string
}

// Fetch decodes the fixture file.
func (s Source[T]) Fetch(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.FS == nil {
		return nil, fmt.Errorf("fixture: no filesystem for %s", s.Path)
	}

	data, err := fs.ReadFile(s.FS, s.Path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", s.Path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("fixture: decode %s: %w", s.Path, err)
	}
	return records, nil
}
