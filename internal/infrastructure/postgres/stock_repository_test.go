package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQuerier guarda las sentencias en orden; QueryRow responde sin filas.
type recordingQuerier struct {
	stmts []string
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.stmts = append(q.stmts, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.stmts = append(q.stmts, sql)
	return nil, pgx.ErrNoRows
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.stmts = append(q.stmts, sql)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

func TestStockGetForUpdate_EnsuresRowBeforeLocking(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewStockRepository(q)

	level, err := repo.GetForUpdate(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.True(t, level.Quantity.IsZero())

	require.Len(t, q.stmts, 2)
	assert.Contains(t, q.stmts[0], "INSERT INTO product_stock")
	assert.Contains(t, q.stmts[0], "ON CONFLICT (product_id, bodega_id) DO NOTHING")
	assert.Contains(t, q.stmts[1], "FOR UPDATE")
}
