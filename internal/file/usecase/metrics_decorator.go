package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/neoskop/hostit/internal/file/domain"
	"github.com/neoskop/hostit/internal/metrics"
)

const metricsDomain = "files"

// fileUseCaseWithMetrics decorates FileUseCase with metrics instrumentation.
type fileUseCaseWithMetrics struct {
	next    FileUseCase
	metrics metrics.BusinessMetrics
}

// NewFileUseCaseWithMetrics wraps a FileUseCase with metrics recording.
func NewFileUseCaseWithMetrics(useCase FileUseCase, m metrics.BusinessMetrics) FileUseCase {
	return &fileUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the counter and duration for one operation.
func (f *fileUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	f.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Create records metrics for file creation.
func (f *fileUseCaseWithMetrics) Create(
	ctx context.Context,
	contentType string,
	content []byte,
	tags []string,
) (*domain.File, error) {
	start := time.Now()
	file, err := f.next.Create(ctx, contentType, content, tags)
	f.record(ctx, "file_create", start, err)
	return file, err
}

// Get records metrics for file retrieval.
func (f *fileUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	start := time.Now()
	file, err := f.next.Get(ctx, id)
	f.record(ctx, "file_get", start, err)
	return file, err
}

// Update records metrics for content replacement.
func (f *fileUseCaseWithMetrics) Update(ctx context.Context, id uuid.UUID, contentType string, content []byte) error {
	start := time.Now()
	err := f.next.Update(ctx, id, contentType, content)
	f.record(ctx, "file_update", start, err)
	return err
}

// Delete records metrics for file deletion.
func (f *fileUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := f.next.Delete(ctx, id)
	f.record(ctx, "file_delete", start, err)
	return err
}

// GetTags records metrics for tag retrieval.
func (f *fileUseCaseWithMetrics) GetTags(ctx context.Context, id uuid.UUID) ([]string, error) {
	start := time.Now()
	tags, err := f.next.GetTags(ctx, id)
	f.record(ctx, "tags_get", start, err)
	return tags, err
}

// UpdateTags records metrics for tag replacement.
func (f *fileUseCaseWithMetrics) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	start := time.Now()
	err := f.next.UpdateTags(ctx, id, tags)
	f.record(ctx, "tags_update", start, err)
	return err
}

// GetInfo records metrics for info retrieval.
func (f *fileUseCaseWithMetrics) GetInfo(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	start := time.Now()
	info, err := f.next.GetInfo(ctx, id)
	f.record(ctx, "info_get", start, err)
	return info, err
}

// UpdateInfo records metrics for info replacement.
func (f *fileUseCaseWithMetrics) UpdateInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error {
	start := time.Now()
	err := f.next.UpdateInfo(ctx, id, info)
	f.record(ctx, "info_update", start, err)
	return err
}

// GetMeta records metrics for metadata retrieval.
func (f *fileUseCaseWithMetrics) GetMeta(ctx context.Context, id uuid.UUID) (*domain.Meta, error) {
	start := time.Now()
	meta, err := f.next.GetMeta(ctx, id)
	f.record(ctx, "meta_get", start, err)
	return meta, err
}
