package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const batchSize = 50

// PGHandler buffers ERROR+ records and writes them to system_logs in
// batches, every flush interval or when the buffer fills up.
type PGHandler struct {
	state *pgState
	attrs []slog.Attr
}

// pgState is shared by every handler derived through WithAttrs.
type pgState struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewPGHandler(db *gorm.DB, interval time.Duration) *PGHandler {
	st := &pgState{
		db:     db,
		buffer: make([]models.SystemLog, 0, batchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	st.wg.Add(1)
	go st.flushLoop()
	return &PGHandler{state: st}
}

func (st *pgState) flushLoop() {
	defer st.wg.Done()
	for {
		select {
		case <-st.ticker.C:
			st.flush()
		case <-st.done:
			st.flush()
			return
		}
	}
}

func (st *pgState) flush() {
	st.mu.Lock()
	if len(st.buffer) == 0 {
		st.mu.Unlock()
		return
	}
	batch := st.buffer
	st.buffer = make([]models.SystemLog, 0, batchSize)
	st.mu.Unlock()

	if err := st.db.CreateInBatches(batch, batchSize).Error; err != nil {
		// Warn, not Error: an ERROR record would be routed back here.
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and waits for the writer to exit.
func (h *PGHandler) Stop() {
	h.state.ticker.Stop()
	close(h.state.done)
	h.state.wg.Wait()
}

func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := recordToLog(record, h.attrs)

	st := h.state
	st.mu.Lock()
	st.buffer = append(st.buffer, entry)
	full := len(st.buffer) >= batchSize
	st.mu.Unlock()

	if full {
		go st.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{state: h.state, attrs: merged}
}

// WithGroup is ignored; system_logs has no nesting.
func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}

// recordToLog lifts the well-known request attributes into columns and
// keeps everything else in Extra.
func recordToLog(record slog.Record, preset []slog.Attr) models.SystemLog {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "method":
			entry.Method = a.Value.String()
		case "path":
			entry.Path = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		default:
			extra[a.Key] = a.Value.Resolve().Any()
		}
		return true
	}
	for _, a := range preset {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	return entry
}
