// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/neoskop/hostit/internal/file/domain"
)

// MockFileUseCase is a mock implementation of FileUseCase for testing.
type MockFileUseCase struct {
	mock.Mock
}

// Create mocks the Create method of FileUseCase.
func (m *MockFileUseCase) Create(
	ctx context.Context,
	contentType string,
	content []byte,
	tags []string,
) (*domain.File, error) {
	args := m.Called(ctx, contentType, content, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

// Get mocks the Get method of FileUseCase.
func (m *MockFileUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

// Update mocks the Update method of FileUseCase.
func (m *MockFileUseCase) Update(ctx context.Context, id uuid.UUID, contentType string, content []byte) error {
	args := m.Called(ctx, id, contentType, content)
	return args.Error(0)
}

// Delete mocks the Delete method of FileUseCase.
func (m *MockFileUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GetTags mocks the GetTags method of FileUseCase.
func (m *MockFileUseCase) GetTags(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// UpdateTags mocks the UpdateTags method of FileUseCase.
func (m *MockFileUseCase) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	args := m.Called(ctx, id, tags)
	return args.Error(0)
}

// GetInfo mocks the GetInfo method of FileUseCase.
func (m *MockFileUseCase) GetInfo(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// UpdateInfo mocks the UpdateInfo method of FileUseCase.
func (m *MockFileUseCase) UpdateInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error {
	args := m.Called(ctx, id, info)
	return args.Error(0)
}

// GetMeta mocks the GetMeta method of FileUseCase.
func (m *MockFileUseCase) GetMeta(ctx context.Context, id uuid.UUID) (*domain.Meta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meta), args.Error(1)
}
