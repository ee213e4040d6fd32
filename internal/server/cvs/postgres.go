package cvs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/dbx"
	"github.com/dmitrijs2005/cvgenius/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec CVRecord) error {
	query := `
		INSERT INTO cv_documents (id, document, last_modified, synced_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document,
		    last_modified = EXCLUDED.last_modified,
		    synced_at = EXCLUDED.synced_at
	`
	if _, err := r.db.ExecContext(ctx, query, rec.ID, []byte(rec.Document), rec.LastModified, rec.SyncedAt); err != nil {
		return fmt.Errorf("upsert cv %s: %w", rec.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*CVRecord, error) {
	query := `
		SELECT id, document, last_modified, synced_at
		FROM cv_documents
		WHERE id = $1
	`
	rec := &CVRecord{}
	var doc []byte
	var lastModified sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &doc, &lastModified, &rec.SyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.Document = doc
	if lastModified.Valid {
		t := lastModified.Time
		rec.LastModified = &t
	}
	return rec, nil
}

// OpenPostgres opens a pgx-backed *sql.DB and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
