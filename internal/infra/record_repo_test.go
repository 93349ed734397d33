package infra

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/pdf_vision/internal/ports"
)

func newTestRepo(t *testing.T) ports.RecordRepo {
	t.Helper()
	db, err := OpenDB(t.Context(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRecordRepo(db)
	require.NoError(t, repo.EnsureSchema(t.Context()))
	return repo
}

func TestRecordRepoCreateAndList(t *testing.T) {
	repo := newTestRepo(t)

	created := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	for i := range 3 {
		id, err := repo.Create(t.Context(), ports.Record{
			RequestID: fmt.Sprintf("req-%d", i),
			Source:    "http",
			FileName:  "scan.pdf",
			Prompt:    "Describe",
			Images:    i + 1,
			Skipped:   i,
			Response:  fmt.Sprintf("answer %d", i),
			Model:     "openai",
			CreatedAt: created.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	recs, err := repo.List(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "req-2", recs[0].RequestID)
	assert.Equal(t, "req-1", recs[1].RequestID)
	assert.Equal(t, 3, recs[0].Images)
	assert.Equal(t, 2, recs[0].Skipped)
	assert.Equal(t, "answer 2", recs[0].Response)
	assert.True(t, created.Add(2*time.Minute).Equal(recs[0].CreatedAt), "got %v", recs[0].CreatedAt)
}

func TestRecordRepoEmptyList(t *testing.T) {
	repo := newTestRepo(t)

	recs, err := repo.List(t.Context(), 10)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecordRepoEnsureSchemaTwice(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.EnsureSchema(t.Context()))
}

func TestRecordRepoDuplicateRequestID(t *testing.T) {
	repo := newTestRepo(t)

	rec := ports.Record{RequestID: "same", Source: "http", Model: "llama"}
	_, err := repo.Create(t.Context(), rec)
	require.NoError(t, err)
	_, err = repo.Create(t.Context(), rec)
	assert.Error(t, err)
}

func TestOpenDBRejectsUnknownScheme(t *testing.T) {
	_, err := OpenDB(t.Context(), "mysql://localhost/db")
	assert.ErrorContains(t, err, "unsupported")
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?"
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3", Postgres.rebind(q))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_time_format=sqlite", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x.db?mode=rwc&_time_format=sqlite", sqliteDSN("file:x.db?mode=rwc"))
}
