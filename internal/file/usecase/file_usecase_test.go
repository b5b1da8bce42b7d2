package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/file/domain"
	"github.com/neoskop/hostit/internal/file/usecase/mocks"
	"github.com/neoskop/hostit/internal/token"
)

// passthroughTxManager runs the transactional function directly, without a
// database.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func capabilityContext(issuer string) context.Context {
	return token.WithCapability(context.Background(), &token.Capability{Issuer: issuer})
}

func TestFileUseCase_Create(t *testing.T) {
	t.Run("Success_StampsCreatorFromCapability", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)
		ctx := capabilityContext("urn:hostit")

		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.File")).
			Run(func(args mock.Arguments) {
				file := args.Get(1).(*domain.File)
				assert.Equal(t, "text/plain", file.Type)
				assert.Equal(t, int64(5), file.Size)
				assert.Equal(t, []byte("hello"), file.Content)
				assert.Equal(t, []string{"foo", "bar"}, file.Tags)
				require.NotNil(t, file.Creator)
				assert.Equal(t, "urn:hostit", *file.Creator)
			}).
			Return(nil).
			Once()

		file, err := uc.Create(ctx, "text/plain", []byte("hello"), []string{"foo", "bar"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, file.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Success_AnonymousUploadHasNoCreator", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.File")).
			Run(func(args mock.Arguments) {
				file := args.Get(1).(*domain.File)
				assert.Nil(t, file.Creator)
			}).
			Return(nil).
			Once()

		_, err := uc.Create(context.Background(), "text/plain", []byte("hello"), nil)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_BlankTag", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		_, err := uc.Create(context.Background(), "text/plain", []byte("hello"), []string{"ok", "  "})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestFileUseCase_Update(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	t.Run("Success_StampsEditor", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)
		ctx := capabilityContext("urn:hostit")

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id, Type: "text/plain"}, nil).
			Once()
		repo.On("UpdateContent", mock.Anything, id, []byte("world"), int64(5), mock.AnythingOfType("*string")).
			Run(func(args mock.Arguments) {
				editor := args.Get(4).(*string)
				require.NotNil(t, editor)
				assert.Equal(t, "urn:hostit", *editor)
			}).
			Return(nil).
			Once()

		err := uc.Update(ctx, id, "text/plain", []byte("world"))
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Success_IgnoresCharsetParameter", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id, Type: "text/plain"}, nil).
			Once()
		repo.On("UpdateContent", mock.Anything, id, []byte("world"), int64(5), mock.Anything).
			Return(nil).
			Once()

		err := uc.Update(context.Background(), id, "text/plain; charset=utf-8", []byte("world"))
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_TypeMismatch", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id, Type: "text/plain"}, nil).
			Once()

		err := uc.Update(context.Background(), id, "image/png", []byte("world"))
		assert.ErrorIs(t, err, domain.ErrTypeMismatch)
		repo.AssertNotCalled(t, "UpdateContent")
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(nil, domain.ErrFileNotFound).
			Once()

		err := uc.Update(context.Background(), id, "text/plain", []byte("world"))
		assert.ErrorIs(t, err, domain.ErrFileNotFound)
	})
}

func TestFileUseCase_Tags(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	t.Run("Success_GetTags", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id, Tags: []string{"bar", "foo"}}, nil).
			Once()

		tags, err := uc.GetTags(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []string{"bar", "foo"}, tags)
	})

	t.Run("Success_UpdateTags", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id}, nil).
			Once()
		repo.On("ReplaceTags", mock.Anything, id, []string{"baz"}).
			Return(nil).
			Once()

		err := uc.UpdateTags(context.Background(), id, []string{"baz"})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_UpdateTagsBlankValue", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		err := uc.UpdateTags(context.Background(), id, []string{""})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		repo.AssertNotCalled(t, "ReplaceTags")
	})

	t.Run("Error_UpdateTagsUnknownFile", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(nil, domain.ErrFileNotFound).
			Once()

		err := uc.UpdateTags(context.Background(), id, []string{"baz"})
		assert.ErrorIs(t, err, domain.ErrFileNotFound)
		repo.AssertNotCalled(t, "ReplaceTags")
	})
}

func TestFileUseCase_Info(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	t.Run("Success_GetInfoDefaultsToEmptyObject", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id}, nil).
			Once()

		info, err := uc.GetInfo(context.Background(), id)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(info))
	})

	t.Run("Success_UpdateInfo", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		repo.On("Find", mock.Anything, id).
			Return(&domain.File{ID: id}, nil).
			Once()
		repo.On("ReplaceInfo", mock.Anything, id, json.RawMessage(`{"a":1}`)).
			Return(nil).
			Once()

		err := uc.UpdateInfo(context.Background(), id, json.RawMessage(`{"a":1}`))
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_UpdateInfoInvalidJSON", func(t *testing.T) {
		repo := &mocks.MockFileRepository{}
		uc := NewFileUseCase(passthroughTxManager{}, repo)

		err := uc.UpdateInfo(context.Background(), id, json.RawMessage(`{"a":`))
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		repo.AssertNotCalled(t, "ReplaceInfo")
	})
}

func TestFileUseCase_GetMeta(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	createdAt := time.Now().UTC()
	creator := "urn:hostit"

	repo := &mocks.MockFileRepository{}
	uc := NewFileUseCase(passthroughTxManager{}, repo)

	repo.On("Find", mock.Anything, id).
		Return(&domain.File{
			ID:        id,
			Creator:   &creator,
			CreatedAt: createdAt,
			Updates:   2,
			Views:     7,
		}, nil).
		Once()

	meta, err := uc.GetMeta(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, &creator, meta.Creator)
	assert.Equal(t, createdAt, meta.Created)
	assert.Equal(t, 2, meta.Updates)
	assert.Equal(t, 7, meta.Views)
}
