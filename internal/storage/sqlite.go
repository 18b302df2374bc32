package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// ErrNotFound reports a run or document ID that is not in the store.
var ErrNotFound = errors.New("not found")

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		strategy TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		text_failures INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		run_id TEXT NOT NULL,
		doc_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		start_page INTEGER NOT NULL,
		end_page INTEGER NOT NULL,
		metadata TEXT,
		pdf BLOB,
		PRIMARY KEY (run_id, doc_index),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// StoreRun stores a completed run and returns its unique run ID.
func (s *SQLiteStore) StoreRun(ctx context.Context, result *models.RunResult) (string, error) {
	runID, err := newRunID()
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, kind, strategy, page_count, text_failures)
		VALUES (?, ?, ?, ?, ?)
	`, runID, result.Kind, result.Strategy, result.PageCount, result.TextFailures)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for i, doc := range result.Documents {
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata for document %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (run_id, doc_index, name, start_page, end_page, metadata, pdf)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, i, doc.Name, doc.Segment.Start, doc.Segment.End, string(metadataJSON), []byte(doc.Data))
		if err != nil {
			return "", fmt.Errorf("failed to insert document %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves the stored summary of a run.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*models.RunInfo, error) {
	var info models.RunInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.kind, r.strategy, r.page_count, r.text_failures, r.created_at,
		       (SELECT COUNT(*) FROM documents d WHERE d.run_id = r.id)
		FROM runs r WHERE r.id = ?
	`, runID).Scan(&info.RunID, &info.Kind, &info.Strategy, &info.PageCount,
		&info.TextFailures, &info.CreatedAt, &info.DocumentCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return &info, nil
}

// GetDocuments retrieves all documents of a run with PDF bytes.
func (s *SQLiteStore) GetDocuments(ctx context.Context, runID string) ([]models.NamedDocument, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, start_page, end_page, metadata, pdf
		FROM documents WHERE run_id = ? ORDER BY doc_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.NamedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// GetDocument retrieves one document of a run by 0-based index.
func (s *SQLiteStore) GetDocument(ctx context.Context, runID string, index int) (*models.NamedDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, start_page, end_page, metadata, pdf
		FROM documents WHERE run_id = ? AND doc_index = ?
	`, runID, index)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s document %d: %w", runID, index, ErrNotFound)
	}
	return doc, err
}

// ListRuns returns summaries of all stored runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]models.RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.kind, r.strategy, r.page_count, r.text_failures, r.created_at,
		       (SELECT COUNT(*) FROM documents d WHERE d.run_id = r.id)
		FROM runs r ORDER BY r.created_at DESC, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var infos []models.RunInfo
	for rows.Next() {
		var info models.RunInfo
		if err := rows.Scan(&info.RunID, &info.Kind, &info.Strategy, &info.PageCount,
			&info.TextFailures, &info.CreatedAt, &info.DocumentCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteRun removes a run and its documents.
func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.NamedDocument, error) {
	var doc models.NamedDocument
	var metadataJSON string
	var pdfBytes []byte
	if err := row.Scan(&doc.Name, &doc.Segment.Start, &doc.Segment.End, &metadataJSON, &pdfBytes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document metadata: %w", err)
	}
	doc.Data = pdfBytes
	return &doc, nil
}

func newRunID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
