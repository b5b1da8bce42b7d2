// Package mocks provides mock implementations for testing file use cases.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/neoskop/hostit/internal/file/domain"
)

// MockFileRepository is a mock implementation of FileRepository for testing.
type MockFileRepository struct {
	mock.Mock
}

// Create mocks the Create method of FileRepository.
func (m *MockFileRepository) Create(ctx context.Context, file *domain.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

// Get mocks the Get method of FileRepository.
func (m *MockFileRepository) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

// Find mocks the Find method of FileRepository.
func (m *MockFileRepository) Find(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

// UpdateContent mocks the UpdateContent method of FileRepository.
func (m *MockFileRepository) UpdateContent(
	ctx context.Context,
	id uuid.UUID,
	content []byte,
	size int64,
	editor *string,
) error {
	args := m.Called(ctx, id, content, size, editor)
	return args.Error(0)
}

// Delete mocks the Delete method of FileRepository.
func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ReplaceTags mocks the ReplaceTags method of FileRepository.
func (m *MockFileRepository) ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error {
	args := m.Called(ctx, id, tags)
	return args.Error(0)
}

// ReplaceInfo mocks the ReplaceInfo method of FileRepository.
func (m *MockFileRepository) ReplaceInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error {
	args := m.Called(ctx, id, info)
	return args.Error(0)
}
