package usecase

import (
	"context"
	"encoding/json"
	"mime"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/validation"

	"github.com/neoskop/hostit/internal/database"
	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/file/domain"
	"github.com/neoskop/hostit/internal/token"
	appvalidation "github.com/neoskop/hostit/internal/validation"
)

// fileUseCase implements the FileUseCase interface.
type fileUseCase struct {
	txManager database.TxManager
	fileRepo  FileRepository
}

// Create stores a new file and its tags. The creator is stamped from the
// capability attached to the context, when one is present.
func (f *fileUseCase) Create(
	ctx context.Context,
	contentType string,
	content []byte,
	tags []string,
) (*domain.File, error) {
	if err := validateTags(tags); err != nil {
		return nil, err
	}

	file := &domain.File{
		ID:        uuid.Must(uuid.NewV7()),
		Type:      contentType,
		Size:      int64(len(content)),
		Content:   content,
		Tags:      tags,
		Creator:   actorFrom(ctx),
		CreatedAt: time.Now().UTC(),
	}

	err := f.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return f.fileRepo.Create(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Get retrieves a file for serving. Every call counts as a view.
func (f *fileUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	return f.fileRepo.Get(ctx, id)
}

// Update replaces the content of an existing file. The declared content type
// must equal the stored one; changing the type requires a new upload.
func (f *fileUseCase) Update(ctx context.Context, id uuid.UUID, contentType string, content []byte) error {
	file, err := f.fileRepo.Find(ctx, id)
	if err != nil {
		return err
	}

	if !sameMediaType(file.Type, contentType) {
		return domain.ErrTypeMismatch
	}

	return f.fileRepo.UpdateContent(ctx, id, content, int64(len(content)), actorFrom(ctx))
}

// Delete removes a file and its tags.
func (f *fileUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return f.fileRepo.Delete(ctx, id)
}

// GetTags returns the tags of a file.
func (f *fileUseCase) GetTags(ctx context.Context, id uuid.UUID) ([]string, error) {
	file, err := f.fileRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return file.Tags, nil
}

// UpdateTags replaces the full tag set of a file.
func (f *fileUseCase) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	if err := validateTags(tags); err != nil {
		return err
	}

	if _, err := f.fileRepo.Find(ctx, id); err != nil {
		return err
	}

	return f.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return f.fileRepo.ReplaceTags(txCtx, id, tags)
	})
}

// GetInfo returns the info document of a file. Files without one yield an
// empty JSON object.
func (f *fileUseCase) GetInfo(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	file, err := f.fileRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(file.Info) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return file.Info, nil
}

// UpdateInfo replaces the info document of a file.
func (f *fileUseCase) UpdateInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error {
	if !json.Valid(info) {
		return apperrors.Wrap(apperrors.ErrBadRequest, "info must be a valid JSON document")
	}

	if _, err := f.fileRepo.Find(ctx, id); err != nil {
		return err
	}

	return f.fileRepo.ReplaceInfo(ctx, id, info)
}

// GetMeta returns the metadata projection of a file.
func (f *fileUseCase) GetMeta(ctx context.Context, id uuid.UUID) (*domain.Meta, error) {
	file, err := f.fileRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := file.Meta()
	return &meta, nil
}

// actorFrom derives the actor stamp from the capability attached to the
// context. Anonymous requests leave the stamp empty.
func actorFrom(ctx context.Context) *string {
	capability, ok := token.CapabilityFrom(ctx)
	if !ok || capability.Issuer == "" {
		return nil
	}
	issuer := capability.Issuer
	return &issuer
}

// sameMediaType compares two content types ignoring parameters like charset.
func sameMediaType(stored, declared string) bool {
	storedType, _, err := mime.ParseMediaType(stored)
	if err != nil {
		return stored == declared
	}
	declaredType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	return storedType == declaredType
}

// validateTags rejects blank tag values.
func validateTags(tags []string) error {
	for _, tag := range tags {
		if err := validation.Validate(tag, validation.Required, appvalidation.NotBlank); err != nil {
			return appvalidation.WrapValidationError(err)
		}
	}
	return nil
}

// NewFileUseCase creates a new file use case instance with the provided dependencies.
func NewFileUseCase(txManager database.TxManager, fileRepo FileRepository) FileUseCase {
	return &fileUseCase{
		txManager: txManager,
		fileRepo:  fileRepo,
	}
}
