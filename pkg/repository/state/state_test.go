package state

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"tgpay/internal/structs"
	"tgpay/pkg/logger"
)

type row struct {
	data []byte
	err  error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.data
	return nil
}

type fakeDB struct {
	row     row
	execErr error
	execs   []string
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) { return nil, errors.New("not supported") }

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("DELETE 1"), f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row { return f.row }

func (f *fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

// errorLog keeps the messages of Error lines.
type errorLog struct {
	logger.Logger
	errors []string
}

func (l *errorLog) Error(_ context.Context, msg string, _ ...zapcore.Field) {
	l.errors = append(l.errors, msg)
}

func TestGet(t *testing.T) {
	db := &fakeDB{row: row{data: []byte(`{"user_id":7,"chat_id":7,"kind":"address"}`)}}
	s := New(Params{Logger: logger.NewNop(), DB: db})

	conv, err := s.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), conv.UserID)

	db.row = row{err: pgx.ErrNoRows}
	_, err = s.Get(context.Background(), 7)
	assert.ErrorIs(t, err, structs.ErrNotFound)
}

func TestGetDropsBrokenRecord(t *testing.T) {
	db := &fakeDB{row: row{data: []byte(`{"user_id":`)}}
	log := &errorLog{Logger: logger.NewNop()}
	s := New(Params{Logger: log, DB: db})

	_, err := s.Get(context.Background(), 7)
	assert.ErrorIs(t, err, structs.ErrNotFound)
	require.Len(t, db.execs, 1)
	assert.True(t, strings.HasPrefix(db.execs[0], "DELETE FROM conversations"))
	assert.Equal(t, []string{"broken conversation record, dropping"}, log.errors)

	db.execErr = errors.New("connection reset")
	log.errors = nil
	_, err = s.Get(context.Background(), 7)
	assert.ErrorIs(t, err, structs.ErrNotFound)
	assert.Equal(t, []string{"broken conversation record, dropping", "->s.Delete"}, log.errors)
}

