package ports

import (
	"context"
	"time"
)

// Record is one processed describe request.
type Record struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	Source    string    `json:"source"` // http, telegram
	FileName  string    `json:"file_name"`
	Prompt    string    `json:"prompt"`
	Images    int       `json:"images"`
	Skipped   int       `json:"skipped"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

type RecordRepo interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, rec Record) (int64, error)
	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]Record, error)
}
