package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("request_id", "req-1")

	log.Info("user updated by admin")
	log.Error("request failed", "error", "boom")

	assert.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errs.Bytes(), []byte("\n")))
	assert.Contains(t, errs.String(), `"request_id":"req-1"`)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestMultiHandler_KeepsGoingAfterFailure(t *testing.T) {
	var out bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewJSONHandler(&out, nil))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0))
	assert.EqualError(t, err, "sink down")
	assert.Contains(t, out.String(), "hello")
}

func TestRecordToLog_LiftsRequestAttributes(t *testing.T) {
	rec := slog.NewRecord(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), slog.LevelError, "request failed", 0)
	rec.AddAttrs(
		slog.String("method", "PATCH"),
		slog.String("path", "/api/admin/users/1"),
		slog.String("error", "db down"),
		slog.Int("status", 500),
	)

	entry := recordToLog(rec, []slog.Attr{slog.String("request_id", "req-1"), slog.String("user_id", "u-1")})

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "req-1", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "PATCH", entry.Method)
	assert.Equal(t, "/api/admin/users/1", entry.Path)
	assert.Equal(t, "db down", entry.Error)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, float64(500), extra["status"])
}

func TestPGHandler_BuffersErrorsOnly(t *testing.T) {
	h := &PGHandler{state: &pgState{}}
	log := slog.New(h).With("request_id", "req-9")

	log.Info("ignored")
	log.Error("kept")

	require.Len(t, h.state.buffer, 1)
	assert.Equal(t, "kept", h.state.buffer[0].Message)
	assert.Equal(t, "req-9", h.state.buffer[0].RequestID)
}

func TestCleanup_DeletesOlderThanCutoff(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM "system_logs" WHERE timestamp < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := Cleanup(context.Background(), db, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewJSONHandler_Level(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, NewJSONHandler(&out, "development").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewJSONHandler(&out, "production").Enabled(context.Background(), slog.LevelDebug))
}
