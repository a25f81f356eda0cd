package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsRanker/internal/domain"
	"NewsRanker/internal/ports"
)

const corpusTable = "corpus_articles"

const createCorpusSQL = `
CREATE TABLE IF NOT EXISTS corpus_articles (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	content TEXT NOT NULL,
	url TEXT NOT NULL,
	source TEXT NOT NULL,
	published_at TEXT NOT NULL,
	seen_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_corpus_articles_seen_at ON corpus_articles (seen_at);
`

// SQLiteRepository keeps recently seen articles for history-scoped novelty.
type SQLiteRepository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var _ ports.CorpusRepository = (*SQLiteRepository)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus database: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY under fan-out.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createCorpusSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create corpus schema: %w", err)
	}

	return NewSQLiteRepository(db), nil
}

// NewSQLiteRepository wires an already opened sql.DB.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now: time.Now,
	}
}

// Close releases the underlying database.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Recent returns articles first seen at or after since, newest first. A
// non-positive limit returns everything in the window.
func (r *SQLiteRepository) Recent(ctx context.Context, since time.Time, limit int) ([]domain.Article, error) {
	if r.db == nil {
		return nil, nil
	}

	query := r.sb.
		Select("id", "title", "description", "content", "url", "source", "published_at").
		From(corpusTable).
		Where(sq.GtOrEq{"seen_at": since.Unix()}).
		OrderBy("seen_at DESC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}

	var result []domain.Article
	for rows.Next() {
		var (
			a         domain.Article
			published string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.URL, &a.Source, &published); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		if published != "" {
			if t, err := time.Parse(time.RFC3339Nano, published); err == nil {
				a.PublishedAt = t
			}
		}
		result = append(result, a)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Remember stores articles; an article already in the corpus keeps its first-seen time.
func (r *SQLiteRepository) Remember(ctx context.Context, articles []domain.Article) error {
	if r.db == nil || len(articles) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus tx: %w", err)
	}

	seenAt := r.now().Unix()
	for _, a := range articles {
		_, err := r.sb.
			Insert(corpusTable).
			Columns("id", "title", "description", "content", "url", "source", "published_at", "seen_at").
			Values(a.ID, a.Title, a.Description, a.Content, a.URL, a.Source, formatTime(a.PublishedAt), seenAt).
			Suffix("ON CONFLICT(id) DO NOTHING").
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert corpus article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus tx: %w", err)
	}
	return nil
}

// Prune deletes articles first seen before the cutoff and reports how many were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	res, err := r.sb.
		Delete(corpusTable).
		Where(sq.Lt{"seen_at": before.Unix()}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune corpus: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune corpus rows affected: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
