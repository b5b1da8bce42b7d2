// Package domain defines the file aggregate and its business rules.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/neoskop/hostit/internal/errors"
)

// File-related domain errors.
var (
	// ErrFileNotFound indicates a file with the specified ID was not found.
	ErrFileNotFound = errors.Wrap(errors.ErrNotFound, "file not found")

	// ErrTypeMismatch indicates an update declared a content type different
	// from the stored one.
	ErrTypeMismatch = errors.Wrap(errors.ErrUnsupportedMediaType, "content type does not match stored type")
)

// File is a hosted blob with its metadata. Content is opaque to the service.
type File struct {
	ID        uuid.UUID
	Type      string
	Size      int64
	Content   []byte
	Info      json.RawMessage
	Tags      []string
	Creator   *string
	Editor    *string
	CreatedAt time.Time
	UpdatedAt *time.Time
	Updates   int
	Views     int
}

// Meta is the read-only metadata projection exposed at /:id/meta.
type Meta struct {
	Creator *string    `json:"creator"`
	Editor  *string    `json:"editor"`
	Created time.Time  `json:"created"`
	Updated *time.Time `json:"updated"`
	Updates int        `json:"updates"`
	Views   int        `json:"views"`
}

// Meta returns the metadata projection of the file.
func (f *File) Meta() Meta {
	return Meta{
		Creator: f.Creator,
		Editor:  f.Editor,
		Created: f.CreatedAt,
		Updated: f.UpdatedAt,
		Updates: f.Updates,
		Views:   f.Views,
	}
}
