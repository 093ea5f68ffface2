package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	extracted_text TEXT NOT NULL DEFAULT '',
	contains_images BOOLEAN NOT NULL DEFAULT FALSE,
	image_count INTEGER NOT NULL DEFAULT 0,
	content_category TEXT NOT NULL DEFAULT 'UNKNOWN',
	analyzed BOOLEAN NOT NULL DEFAULT FALSE,
	document_type TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	entities_json TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	viewed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, file_name, content_type, storage_path, size_bytes,
	extracted_text, contains_images, image_count, content_category,
	analyzed, document_type, summary, entities_json,
	status, viewed, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, file_name, content_type, storage_path, size_bytes,
	extracted_text, contains_images, image_count, content_category,
	analyzed, document_type, summary, entities_json,
	status, viewed, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`,
		doc.ID, doc.FileName, doc.ContentType, doc.StoragePath, doc.SizeBytes,
		doc.ExtractedText, doc.ContainsImages, doc.ImageCount, string(doc.ContentCategory),
		doc.Analyzed, doc.DocumentType, doc.Summary, doc.EntitiesJSON,
		string(doc.Status), doc.Viewed, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// BeginProcessing is the compare-and-set that guards concurrent analyze
// triggers: only one caller observes a row transition out of PENDING or
// FAILED.
func (r *DocumentRepository) BeginProcessing(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1 AND status IN ($4, $5)
`, id, string(domain.StatusProcessing), time.Now().UTC(),
		string(domain.StatusPending), string(domain.StatusFailed))
	if err != nil {
		return false, fmt.Errorf("begin processing: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("begin processing rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *DocumentRepository) SaveAnalysis(ctx context.Context, id string, res domain.AnalysisResult, entitiesJSON string) error {
	analyzed := strings.TrimSpace(res.Summary) != ""
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, analyzed = $3, document_type = $4, summary = $5, entities_json = $6, updated_at = $7
WHERE id = $1
`, id, string(domain.StatusCompleted), analyzed, res.DocumentType, res.Summary, entitiesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (r *DocumentRepository) MarkAnalysisFailed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, analyzed = FALSE, document_type = '', summary = '', entities_json = '', updated_at = $3
WHERE id = $1
`, id, string(domain.StatusFailed), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark analysis failed: %w", err)
	}
	return nil
}

// MarkViewed flips the one-shot viewed flag. The WHERE clause makes the flip
// first-reader-wins under concurrent GETs.
func (r *DocumentRepository) MarkViewed(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET viewed = TRUE, updated_at = $2
WHERE id = $1 AND viewed = FALSE
`, id, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark viewed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark viewed rows affected: %w", err)
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var category, status string

	err := row.Scan(
		&doc.ID, &doc.FileName, &doc.ContentType, &doc.StoragePath, &doc.SizeBytes,
		&doc.ExtractedText, &doc.ContainsImages, &doc.ImageCount, &category,
		&doc.Analyzed, &doc.DocumentType, &doc.Summary, &doc.EntitiesJSON,
		&status, &doc.Viewed, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ContentCategory = domain.ContentCategory(category)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}
