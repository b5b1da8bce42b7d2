package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/neoskop/hostit/internal/database"
	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/file/domain"
)

// MySQLFileRepository handles file persistence for MySQL.
type MySQLFileRepository struct {
	db *sql.DB
}

// NewMySQLFileRepository creates a new MySQLFileRepository.
func NewMySQLFileRepository(db *sql.DB) *MySQLFileRepository {
	return &MySQLFileRepository{
		db: db,
	}
}

// Create inserts a new file together with its tags.
func (r *MySQLFileRepository) Create(ctx context.Context, file *domain.File) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO files (id, type, size, content, info, creator, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW())`

	_, err := querier.ExecContext(ctx, query,
		file.ID, file.Type, file.Size, file.Content, nullableJSON(file.Info), file.Creator,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create file")
	}

	for _, tag := range file.Tags {
		if err := insertTag(ctx, querier, `INSERT INTO file_tags (file_id, tag) VALUES (?, ?)`, file.ID, tag); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a file by ID and increments its views counter. MySQL has no
// UPDATE ... RETURNING, so the increment and the read are separate statements.
func (r *MySQLFileRepository) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `UPDATE files SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to update file views")
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return r.Find(ctx, id)
}

// Find retrieves a file by ID without side effects.
func (r *MySQLFileRepository) Find(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, type, size, content, info, creator, editor, created_at, updated_at, updates, views
			  FROM files WHERE id = ?`

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
func (r *MySQLFileRepository) UpdateContent(
	ctx context.Context,
	id uuid.UUID,
	content []byte,
	size int64,
	editor *string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE files
			  SET content = ?, size = ?, editor = ?, updated_at = NOW(), updates = updates + 1
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, content, size, editor, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update file")
	}
	return requireRow(result)
}

// Delete removes a file; its tags are removed by the cascade.
func (r *MySQLFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete file")
	}
	return requireRow(result)
}

// ReplaceTags replaces the file's tag set. Callers are expected to run this
// inside a transaction via database.TxManager.
func (r *MySQLFileRepository) ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = ?`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete file tags")
	}

	for _, tag := range tags {
		if err := insertTag(ctx, querier, `INSERT INTO file_tags (file_id, tag) VALUES (?, ?)`, id, tag); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceInfo replaces the info document of an existing file.
func (r *MySQLFileRepository) ReplaceInfo(ctx context.Context, id uuid.UUID, info json.RawMessage) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `UPDATE files SET info = ? WHERE id = ?`, nullableJSON(info), id); err != nil {
		return apperrors.Wrap(err, "failed to update file info")
	}
	return nil
}

// loadTags loads the file's tags in deterministic order.
func (r *MySQLFileRepository) loadTags(ctx context.Context, querier database.Querier, id uuid.UUID) ([]string, error) {
	rows, err := querier.QueryContext(ctx, `SELECT tag FROM file_tags WHERE file_id = ? ORDER BY tag`, id)
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
