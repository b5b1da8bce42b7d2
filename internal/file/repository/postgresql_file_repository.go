// Package repository provides data persistence implementations for hosted files.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/neoskop/hostit/internal/database"
	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/file/domain"
)

// PostgreSQLFileRepository handles file persistence for PostgreSQL.
type PostgreSQLFileRepository struct {
	db *sql.DB
}

// NewPostgreSQLFileRepository creates a new PostgreSQLFileRepository.
func NewPostgreSQLFileRepository(db *sql.DB) *PostgreSQLFileRepository {
	return &PostgreSQLFileRepository{
		db: db,
	}
}

// Create inserts a new file together with its tags.
func (r *PostgreSQLFileRepository) Create(ctx context.Context, file *domain.File) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO files (id, type, size, content, info, creator, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(ctx, query,
		file.ID, file.Type, file.Size, file.Content, nullableJSON(file.Info), file.Creator,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create file")
	}

	for _, tag := range file.Tags {
		if err := insertTag(ctx, querier, `INSERT INTO file_tags (file_id, tag) VALUES ($1, $2)`, file.ID, tag); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a file by ID and increments its views counter.
func (r *PostgreSQLFileRepository) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE files SET views = views + 1 WHERE id = $1
			  RETURNING id, type, size, content, info, creator, editor, created_at, updated_at, updates, views`

	file, err := scanFile(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if file.Tags, err = r.loadTags(ctx, querier, id); err != nil {
		return nil, err
	}
	return file, nil
}

// Find retrieves a file by ID without side effects.
func (r *PostgreSQLFileRepository) Find(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, type, size, content, info, creator, editor, created_at, updated_at, updates, views
			  FROM files WHERE id = $1`

	file, err := scanFile(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if file.Tags, err = r.loadTags(ctx, querier, id); err != nil {
		return nil, err
	}
	return file, nil
}

// UpdateContent replaces the stored bytes, stamps the editor and bumps the
// updates counter.
func (r *PostgreSQLFileRepository) UpdateContent(
	ctx context.Context,
	id uuid.UUID,
	content []byte,
	size int64,
	editor *string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE files
			  SET content = $2, size = $3, editor = $4, updated_at = NOW(), updates = updates + 1
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, content, size, editor)
	if err != nil {
		return apperrors.Wrap(err, "failed to update file")
	}
	return requireRow(result)
}

// Delete removes a file; its tags are removed by the cascade.
func (r *PostgreSQLFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete file")
	}
	return requireRow(result)
}

// ReplaceTags replaces the file's tag set. Callers are expected to run this
// inside a transaction via database.TxManager.
func (r *PostgreSQLFileRepository) ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete file tags")
	}

	for _, tag := range tags {
		if err := insertTag(ctx, querier, `INSERT INTO file_tags (file_id, tag) VALUES ($1, $2)`, id, tag); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceInfo replaces the info document of an existing file.
func (r *PostgreSQLFileRepository) ReplaceInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `UPDATE files SET info = $2 WHERE id = $1`, id, nullableJSON(info)); err != nil {
		return apperrors.Wrap(err, "failed to update file info")
	}
	return nil
}

// loadTags loads the file's tags in deterministic order.
func (r *PostgreSQLFileRepository) loadTags(ctx context.Context, querier database.Querier, id uuid.UUID) ([]string, error) {
	rows, err := querier.QueryContext(ctx, `SELECT tag FROM file_tags WHERE file_id = $1 ORDER BY tag`, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load file tags")
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan file tag")
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate file tags")
	}
	return tags, nil
}

// scanFile scans a full file row, translating the nullable columns.
func scanFile(row *sql.Row) (*domain.File, error) {
	var file domain.File
	var info []byte
	var creator, editor sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&file.ID, &file.Type, &file.Size, &file.Content, &info,
		&creator, &editor, &file.CreatedAt, &updatedAt, &file.Updates, &file.Views,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan file")
	}

	if info != nil {
		file.Info = json.RawMessage(info)
	}
	if creator.Valid {
		file.Creator = &creator.String
	}
	if editor.Valid {
		file.Editor = &editor.String
	}
	if updatedAt.Valid {
		file.UpdatedAt = &updatedAt.Time
	}
	return &file, nil
}

// insertTag inserts a single tag row.
func insertTag(ctx context.Context, querier database.Querier, query string, id uuid.UUID, tag string) error {
	if _, err := querier.ExecContext(ctx, query, id, tag); err != nil {
		return apperrors.Wrap(err, "failed to insert file tag")
	}
	return nil
}

// requireRow converts a zero-rows-affected result into ErrFileNotFound.
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// nullableJSON maps an empty document to SQL NULL.
func nullableJSON(info json.RawMessage) any {
	if len(info) == 0 {
		return nil
	}
	return []byte(info)
}
