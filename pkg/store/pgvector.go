package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/sitekb/internal/models"
)

type PGVectorConfig struct {
	ConnString string
	TableName  string
}

// PGVector mirrors the embedding artifact into a Postgres table with the
// pgvector extension.
type PGVector struct {
	config PGVectorConfig
	pool   *pgxpool.Pool
}

func NewPGVector(ctx context.Context, config PGVectorConfig) (*PGVector, error) {
	if config.TableName == "" {
		config.TableName = "site_chunks"
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PGVector{config: config, pool: pool}, nil
}

func (vs *PGVector) table() string {
	return pgx.Identifier{vs.config.TableName}.Sanitize()
}

// Publish replaces the table contents with records in one transaction.
func (vs *PGVector) Publish(ctx context.Context, records []models.EmbeddingRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("nothing to publish")
	}
	dim := len(records[0].Embedding)

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	// The dimension may change between builds, so the table is recreated.
	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", vs.table())); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	createTable := fmt.Sprintf(`
		CREATE TABLE %s (
			id UUID PRIMARY KEY,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, vs.table(), dim)
	if _, err := tx.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, position, url, content, embedding)
		VALUES ($1, $2, $3, $4, $5)`, vs.table())

	batch := &pgx.Batch{}
	for i, r := range records {
		batch.Queue(stmt,
			recordID(r.URL, i),
			i,
			sanitizeUTF8(r.URL),
			sanitizeUTF8(r.Content),
			pgvector.NewVector(r.Embedding),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadAll reads the mirrored records back in their original order.
func (vs *PGVector) LoadAll(ctx context.Context) ([]models.EmbeddingRecord, error) {
	query := fmt.Sprintf("SELECT url, content, embedding FROM %s ORDER BY position", vs.table())
	rows, err := vs.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.EmbeddingRecord
	for rows.Next() {
		var r models.EmbeddingRecord
		var vec pgvector.Vector
		if err := rows.Scan(&r.URL, &r.Content, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Embedding = vec.Slice()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

func (vs *PGVector) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

// recordID is stable across rebuilds of the same site.
func recordID(url string, position int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", url, position)))
}

// sanitizeUTF8 drops invalid byte sequences, which Postgres rejects in TEXT columns.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
