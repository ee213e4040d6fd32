package cvs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/dmitrijs2005/cvgenius/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, cv *models.CV) error {
	doc, err := json.Marshal(cv)
	if err != nil {
		return fmt.Errorf("failed to encode cv: %w", err)
	}

	query := `INSERT INTO cvs (id, document, last_modified, is_draft)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET document = excluded.document,
				last_modified = excluded.last_modified,
				is_draft = excluded.is_draft`
	if _, err := r.db.ExecContext(ctx, query, cv.ID, string(doc), cv.LastModified.UnixNano(), cv.IsDraft); err != nil {
		return fmt.Errorf("failed to upsert cv: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.CV, error) {
	row := r.db.QueryRowContext(ctx, `SELECT document, last_modified, is_draft FROM cvs WHERE id = ?`, id)

	cv, err := scanCV(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return cv, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.CV, error) {
	return r.list(ctx, `SELECT document, last_modified, is_draft FROM cvs ORDER BY last_modified DESC`)
}

func (r *SQLiteRepository) ListDrafts(ctx context.Context) ([]*models.CV, error) {
	return r.list(ctx, `SELECT document, last_modified, is_draft FROM cvs WHERE is_draft = 1 ORDER BY last_modified DESC`)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cvs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cv: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]*models.CV, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select cvs: %w", err)
	}
	defer rows.Close()

	var result []*models.CV
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanCV decodes the stored document; the indexed columns are authoritative
// for lastModified and isDraft.
func scanCV(s scanner) (*models.CV, error) {
	var (
		doc          string
		lastModified int64
		isDraft      bool
	)
	if err := s.Scan(&doc, &lastModified, &isDraft); err != nil {
		return nil, err
	}

	cv := &models.CV{}
	if err := json.Unmarshal([]byte(doc), cv); err != nil {
		return nil, fmt.Errorf("failed to decode cv: %w", err)
	}
	cv.LastModified = time.Unix(0, lastModified).UTC()
	cv.IsDraft = isDraft
	return cv, nil
}
