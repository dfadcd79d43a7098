// Package pgvector provides a PostgreSQL-backed vector store using the
// pgvector extension.
package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/vectorstore"
)

var _ vectorstore.VectorStore = (*VectorStore)(nil)

// SQL templates for better maintainability and safety.
const (
	sqlCreateTable = `
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT,
			embedding vector(%d),
			metadata JSONB,
			created_at BIGINT,
			updated_at BIGINT
		)`

	sqlCreateIndex = `
		CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops) WITH (m = 32, ef_construction = 400)`

	sqlCreateMetadataIndex = `
		CREATE INDEX IF NOT EXISTS %s_metadata_idx ON %s USING gin (metadata jsonb_path_ops)`

	sqlUpsertChunk = `
		INSERT INTO %s (id, content, embedding, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`

	sqlDeleteByFilter = `DELETE FROM %s WHERE metadata @> $1`

	sqlCountAll      = `SELECT COUNT(*) FROM %s`
	sqlCountByFilter = `SELECT COUNT(*) FROM %s WHERE metadata @> $1`
)

// VectorStore is the vector store for pgvector.
type VectorStore struct {
	pool   *pgxpool.Pool
	option options
}

// New creates a new pgvector vector store, creating the table and indexes
// if they do not exist.
func New(ctx context.Context, opts ...Option) (*VectorStore, error) {
	option := defaultOptions
	for _, opt := range opts {
		opt(&option)
	}

	if option.user == "" {
		return nil, errors.New("pgvector user is required")
	}
	if option.password == "" {
		return nil, errors.New("pgvector password is required")
	}

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		option.host, option.port, option.user, option.password, option.database, option.sslMode)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("pgvector create connection pool: %w", err)
	}

	vs := &VectorStore{
		pool:   pool,
		option: option,
	}
	if err := vs.initDB(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return vs, nil
}

func (vs *VectorStore) initDB(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("pgvector enable extension: %w", err)
	}

	createTableSQL := fmt.Sprintf(sqlCreateTable, vs.option.table, vs.option.indexDimension)
	if _, err := vs.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("pgvector create table: %w", err)
	}

	// HNSW index with cosine distance for similarity search.
	indexSQL := fmt.Sprintf(sqlCreateIndex, vs.option.table, vs.option.table)
	if _, err := vs.pool.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("pgvector create vector index: %w", err)
	}

	// GIN index so metadata containment filters stay cheap.
	metaIndexSQL := fmt.Sprintf(sqlCreateMetadataIndex, vs.option.table, vs.option.table)
	if _, err := vs.pool.Exec(ctx, metaIndexSQL); err != nil {
		return fmt.Errorf("pgvector create metadata index: %w", err)
	}
	return nil
}

// Upsert implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Upsert(ctx context.Context, chunks []*document.Chunk) error {
	upsertSQL := fmt.Sprintf(sqlUpsertChunk, vs.option.table)
	now := time.Now().Unix()

	for _, chunk := range chunks {
		if chunk == nil {
			return fmt.Errorf("pgvector chunk cannot be nil")
		}
		if chunk.ID == "" {
			return fmt.Errorf("pgvector chunk ID is required")
		}
		if len(chunk.Embedding) != vs.option.indexDimension {
			return fmt.Errorf("pgvector embedding dimension mismatch: expected %d, got %d, table: %s",
				vs.option.indexDimension, len(chunk.Embedding), vs.option.table)
		}

		vector := pgv.NewVector(convertToFloat32Vector(chunk.Embedding))
		_, err := vs.pool.Exec(ctx, upsertSQL,
			chunk.ID, chunk.Text, vector, mapToJSON(chunk.Metadata), now, now)
		if err != nil {
			return fmt.Errorf("pgvector upsert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// Query implements the vectorstore.VectorStore interface. Results are
// scored by cosine similarity (1 - cosine distance).
func (vs *VectorStore) Query(ctx context.Context, query *vectorstore.SearchQuery) (*vectorstore.SearchResult, error) {
	if query == nil {
		return nil, fmt.Errorf("pgvector query is required")
	}
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("pgvector query vector cannot be empty")
	}
	if len(query.Vector) != vs.option.indexDimension {
		return nil, fmt.Errorf("pgvector vector dimension mismatch: expected %d, got %d",
			vs.option.indexDimension, len(query.Vector))
	}

	limit := query.Limit
	if limit <= 0 {
		limit = vs.option.maxResults
	}

	vector := pgv.NewVector(convertToFloat32Vector(query.Vector))
	args := []any{vector}
	sql := fmt.Sprintf(
		`SELECT id, content, embedding, metadata, created_at, updated_at, 1 - (embedding <=> $1) AS score FROM %s`,
		vs.option.table)

	where := ""
	if len(query.Filter) > 0 {
		args = append(args, mapToJSON(query.Filter))
		where = fmt.Sprintf(" WHERE metadata @> $%d", len(args))
	}
	if query.MinScore > 0 {
		args = append(args, query.MinScore)
		cond := fmt.Sprintf("1 - (embedding <=> $1) >= $%d", len(args))
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	args = append(args, limit)
	sql += where + fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := vs.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pgvector search chunks: %w", err)
	}
	defer rows.Close()

	result := &vectorstore.SearchResult{
		Results: make([]*vectorstore.ScoredChunk, 0),
	}
	for rows.Next() {
		var id, content, metadataJSON string
		var embedding pgv.Vector
		var createdAt, updatedAt int64
		var score float64

		if err := rows.Scan(&id, &content, &embedding, &metadataJSON, &createdAt, &updatedAt, &score); err != nil {
			return nil, fmt.Errorf("pgvector scan chunk: %w", err)
		}
		metadata, err := jsonToMap(metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("pgvector parse metadata: %w", err)
		}

		chunk := &document.Chunk{
			ID:        id,
			Text:      content,
			Metadata:  metadata,
			CreatedAt: time.Unix(createdAt, 0),
			UpdatedAt: time.Unix(updatedAt, 0),
		}
		if query.IncludeEmbeddings {
			chunk.Embedding = convertToFloat64Vector(embedding.Slice())
		}
		result.Results = append(result.Results, &vectorstore.ScoredChunk{
			Chunk: chunk,
			Score: score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector iterate rows: %w", err)
	}
	return result, nil
}

// DeleteByFilter implements the vectorstore.VectorStore interface using
// JSONB containment on the metadata column.
func (vs *VectorStore) DeleteByFilter(ctx context.Context, filter map[string]any) error {
	if len(filter) == 0 {
		return fmt.Errorf("pgvector delete by filter: no filter conditions specified")
	}

	deleteSQL := fmt.Sprintf(sqlDeleteByFilter, vs.option.table)
	if _, err := vs.pool.Exec(ctx, deleteSQL, mapToJSON(filter)); err != nil {
		return fmt.Errorf("pgvector delete chunks: %w", err)
	}
	return nil
}

// Get implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Get(ctx context.Context, opts ...vectorstore.GetOption) ([]*document.Chunk, error) {
	config := vectorstore.ApplyGetOptions(opts...)

	var args []any
	sql := fmt.Sprintf(`SELECT id, content, embedding, metadata, created_at, updated_at FROM %s`, vs.option.table)

	var conds []string
	if len(config.IDs) > 0 {
		args = append(args, config.IDs)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if len(config.Filter) > 0 {
		args = append(args, mapToJSON(config.Filter))
		conds = append(conds, fmt.Sprintf("metadata @> $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			sql += " WHERE " + cond
		} else {
			sql += " AND " + cond
		}
	}
	sql += " ORDER BY id"
	if config.Limit > 0 {
		args = append(args, config.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := vs.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pgvector get chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*document.Chunk
	for rows.Next() {
		var id, content, metadataJSON string
		var embedding pgv.Vector
		var createdAt, updatedAt int64

		if err := rows.Scan(&id, &content, &embedding, &metadataJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("pgvector scan chunk: %w", err)
		}
		metadata, err := jsonToMap(metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("pgvector parse metadata: %w", err)
		}

		chunk := &document.Chunk{
			ID:        id,
			Text:      content,
			Metadata:  metadata,
			CreatedAt: time.Unix(createdAt, 0),
			UpdatedAt: time.Unix(updatedAt, 0),
		}
		if config.IncludeEmbeddings {
			chunk.Embedding = convertToFloat64Vector(embedding.Slice())
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector iterate rows: %w", err)
	}
	return chunks, nil
}

// Count implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Count(ctx context.Context, filter map[string]any) (int, error) {
	var count int
	if len(filter) == 0 {
		countSQL := fmt.Sprintf(sqlCountAll, vs.option.table)
		if err := vs.pool.QueryRow(ctx, countSQL).Scan(&count); err != nil {
			return 0, fmt.Errorf("pgvector count chunks: %w", err)
		}
		return count, nil
	}
	countSQL := fmt.Sprintf(sqlCountByFilter, vs.option.table)
	if err := vs.pool.QueryRow(ctx, countSQL, mapToJSON(filter)).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgvector count chunks: %w", err)
	}
	return count, nil
}

// Close closes the vector store connection.
func (vs *VectorStore) Close() error {
	vs.pool.Close()
	return nil
}

func convertToFloat32Vector(embedding []float64) []float32 {
	vector32 := make([]float32, len(embedding))
	for i, v := range embedding {
		vector32[i] = float32(v)
	}
	return vector32
}

func convertToFloat64Vector(embedding []float32) []float64 {
	vector64 := make([]float64, len(embedding))
	for i, v := range embedding {
		vector64[i] = float64(v)
	}
	return vector64
}

func mapToJSON(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func jsonToMap(jsonStr string) (map[string]any, error) {
	result := make(map[string]any)
	if jsonStr == "" || jsonStr == "{}" {
		return result, nil
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
