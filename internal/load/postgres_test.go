package load

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records the statements sent inside a transaction. Methods not
// overridden panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	execs      []string
	copied     [][]any
	copyTable  pgx.Identifier
	batches    []int
	committed  bool
	rolledBack bool

	execErr   error
	copyErr   error
	batchErr  error
	commitErr error
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tx.execs = append(tx.execs, sql)
	return pgconn.NewCommandTag("TRUNCATE TABLE"), tx.execErr
}

func (tx *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	if tx.copyErr != nil {
		return 0, tx.copyErr
	}
	tx.copyTable = table
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		tx.copied = append(tx.copied, vals)
	}
	return int64(len(tx.copied)), nil
}

func (tx *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	tx.batches = append(tx.batches, b.Len())
	return &fakeBatchResults{n: b.Len(), err: tx.batchErr}
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeBatchResults struct {
	pgx.BatchResults
	n   int
	err error
}

func (br *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	if br.err != nil {
		return pgconn.CommandTag{}, br.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (br *fakeBatchResults) Close() error { return nil }

type fakeDB struct {
	tx       *fakeTx
	beginErr error
	execs    []string
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func (db *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, sql)
	return pgconn.NewCommandTag("TRUNCATE TABLE"), nil
}

var (
	testColumns = []string{"cid", "cntry"}
	testRows    = [][]any{{"AW00011000", "Australia"}, {"AW00011001", "Germany"}, {"AW00011002", "n/a"}}
)

func TestPostgresLoader_ReplaceCopy(t *testing.T) {
	tx := &fakeTx{}
	l := NewPostgresLoader(&fakeDB{tx: tx}, "silver")

	n, err := l.Replace(context.Background(), "erp_loc_a101", testColumns, testRows)
	require.NoError(t, err)

	assert.Equal(t, int64(3), n)
	assert.Equal(t, []string{`TRUNCATE TABLE "silver"."erp_loc_a101"`}, tx.execs)
	assert.Equal(t, pgx.Identifier{"silver", "erp_loc_a101"}, tx.copyTable)
	assert.Equal(t, testRows, tx.copied)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestPostgresLoader_ReplaceBatched(t *testing.T) {
	tx := &fakeTx{}
	l := NewPostgresLoader(&fakeDB{tx: tx}, "silver", WithCopy(false), WithBatchSize(2))

	n, err := l.Replace(context.Background(), "erp_loc_a101", testColumns, testRows)
	require.NoError(t, err)

	assert.Equal(t, int64(3), n)
	assert.Equal(t, []int{2, 1}, tx.batches)
	assert.Nil(t, tx.copied)
	assert.True(t, tx.committed)
}

func TestPostgresLoader_ReplaceFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		db      *fakeDB
		opts    []PostgresOption
		wantErr string
	}{
		{"begin fails", &fakeDB{beginErr: boom}, nil, "begin transaction"},
		{"truncate fails", &fakeDB{tx: &fakeTx{execErr: boom}}, nil, "truncate silver.t"},
		{"copy fails", &fakeDB{tx: &fakeTx{copyErr: boom}}, nil, "copy into silver.t"},
		{"batch fails", &fakeDB{tx: &fakeTx{batchErr: boom}}, []PostgresOption{WithCopy(false)}, "insert into silver.t"},
		{"commit fails", &fakeDB{tx: &fakeTx{commitErr: boom}}, nil, "commit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewPostgresLoader(tt.db, "silver", tt.opts...)
			_, err := l.Replace(context.Background(), "t", testColumns, testRows)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.wantErr)

			if tt.db.tx != nil {
				assert.False(t, tt.db.tx.committed, "transaction must not commit")
				assert.True(t, tt.db.tx.rolledBack, "transaction must roll back")
			}
		})
	}
}

func TestPostgresLoader_ColumnMismatch(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	l := NewPostgresLoader(db, "silver")

	_, err := l.Replace(context.Background(), "t", testColumns, [][]any{{"only one"}})
	assert.ErrorIs(t, err, ErrColumnMismatch)
	assert.Empty(t, db.tx.execs, "nothing is sent when rows are malformed")
}

func TestPostgresLoader_Truncate(t *testing.T) {
	db := &fakeDB{}
	l := NewPostgresLoader(db, "bronze")

	require.NoError(t, l.Truncate(context.Background(), "crm_cust_info"))
	assert.Equal(t, []string{`TRUNCATE TABLE "bronze"."crm_cust_info"`}, db.execs)
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL(`"silver"."t"`, []string{"a", "b"}, func(i int) string { return "$" + strings.Repeat("x", i) })
	assert.Equal(t, `INSERT INTO "silver"."t" ("a", "b") VALUES ($x, $xx)`, got)
}
