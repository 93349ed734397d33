package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/tailscale/squibble"

	"github.com/Vovarama1992/pdf_vision/internal/ports"
)

const sqliteSchema = `CREATE TABLE requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL UNIQUE,
	source TEXT NOT NULL,
	file_name TEXT NOT NULL,
	prompt TEXT NOT NULL,
	images INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	response TEXT NOT NULL,
	model TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX requests_created_at ON requests (created_at);
`

var schema = &squibble.Schema{Current: sqliteSchema}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS requests (
	id BIGSERIAL PRIMARY KEY,
	request_id UUID NOT NULL UNIQUE,
	source TEXT NOT NULL,
	file_name TEXT NOT NULL,
	prompt TEXT NOT NULL,
	images INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	response TEXT NOT NULL,
	model TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS requests_created_at ON requests (created_at);
`

type recordRepo struct {
	db *DB
}

func NewRecordRepo(db *DB) ports.RecordRepo {
	return &recordRepo{db: db}
}

func (r *recordRepo) EnsureSchema(ctx context.Context) error {
	if r.db.Dialect == SQLite {
		return schema.Apply(ctx, r.db.DB)
	}
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *recordRepo) Create(ctx context.Context, rec ports.Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var id int64
	err := r.db.QueryRowContext(ctx, r.db.Dialect.rebind(`
		INSERT INTO requests (request_id, source, file_name, prompt, images, skipped, response, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), rec.RequestID, rec.Source, rec.FileName, rec.Prompt, rec.Images, rec.Skipped, rec.Response, rec.Model, rec.CreatedAt.UTC()).Scan(&id)
	return id, err
}

func (r *recordRepo) List(ctx context.Context, limit int) ([]ports.Record, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Dialect.rebind(`
		SELECT id, request_id, source, file_name, prompt, images, skipped, response, model, created_at
		FROM requests
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []ports.Record{}
	for rows.Next() {
		var rec ports.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.Source,
			&rec.FileName,
			&rec.Prompt,
			&rec.Images,
			&rec.Skipped,
			&rec.Response,
			&rec.Model,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
