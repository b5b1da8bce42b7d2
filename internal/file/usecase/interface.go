// Package usecase defines the interfaces and implementations for file hosting use cases.
// Use cases orchestrate operations between the repository and domain logic for storing,
// serving and annotating uploaded files.
package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/neoskop/hostit/internal/file/domain"
)

// FileRepository defines the interface for file persistence operations.
type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	// Get retrieves a file and increments its views counter.
	Get(ctx context.Context, id uuid.UUID) (*domain.File, error)
	// Find retrieves a file without side effects.
	Find(ctx context.Context, id uuid.UUID) (*domain.File, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content []byte, size int64, editor *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error
	ReplaceInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error
}

// FileUseCase defines the interface for file hosting business logic.
type FileUseCase interface {
	Create(ctx context.Context, contentType string, content []byte, tags []string) (*domain.File, error)
	// Get retrieves a file for serving; every call counts as a view.
	Get(ctx context.Context, id uuid.UUID) (*domain.File, error)
	// Update replaces the content of an existing file. The declared content
	// type must equal the stored one.
	Update(ctx context.Context, id uuid.UUID, contentType string, content []byte) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetTags(ctx context.Context, id uuid.UUID) ([]string, error)
	UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error
	GetInfo(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
	UpdateInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error
	GetMeta(ctx context.Context, id uuid.UUID) (*domain.Meta, error)
}
