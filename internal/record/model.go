package record

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/journal"
	"github.com/roach88/hashrec/internal/kv"
)

// Model binds a Descriptor to a storage backend. It is the entry point for
// Create and Find and holds the collaborators shared by all records of the
// type: the kv store, an optional audit journal, a clock, and a logger.
//
// Safe for concurrent use; all mutable state lives in the store.
type Model struct {
	desc    *Descriptor
	store   kv.Store
	journal *journal.Journal
	clock   kv.Clock
	logger  *slog.Logger
}

// ModelOption configures a Model during construction.
type ModelOption func(*Model)

// WithJournal wires an audit journal. Lifecycle operations append entries;
// journal failures are logged and never fail the operation itself.
func WithJournal(j *journal.Journal) ModelOption {
	return func(m *Model) {
		m.journal = j
	}
}

// WithLogger substitutes the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// WithModelClock substitutes the clock used for creation timestamps.
// Tests pass a manual clock.
func WithModelClock(c kv.Clock) ModelOption {
	return func(m *Model) {
		m.clock = c
	}
}

// realClock reads the wall clock.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewModel binds desc to store. A nil store is a fatal configuration
// error: the model type was never wired to a storage binding.
func NewModel(desc *Descriptor, store kv.Store, opts ...ModelOption) (*Model, error) {
	if desc == nil {
		return nil, fmt.Errorf("model: descriptor must not be nil")
	}
	if store == nil {
		return nil, NewMisconfigured(desc.Name(), "no storage binding")
	}

	m := &Model{
		desc:   desc,
		store:  store,
		clock:  realClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Descriptor returns the model-type definition.
func (m *Model) Descriptor() *Descriptor {
	return m.desc
}

// nextID atomically increments the model's counter and returns the new
// identifier. Strictly increasing, never reused; safety under concurrent
// callers is delegated to the store's atomic increment.
func (m *Model) nextID(ctx context.Context) (int64, error) {
	id, err := m.store.Incr(ctx, counterKey(m.desc.namespace))
	if err != nil {
		return 0, fmt.Errorf("allocate id for %s: %w", m.desc.name, err)
	}
	return id, nil
}

// newRecord constructs an in-memory record shell with the given id.
// No storage side effect.
func (m *Model) newRecord(id int64) *Record {
	return &Record{
		model: m,
		id:    id,
		attrs: attr.NewSet(m.desc.schema),
	}
}

// journalAppend records a lifecycle operation in the audit journal, when
// one is wired. Best-effort: failures are logged, never returned.
func (m *Model) journalAppend(ctx context.Context, op string, id int64, fields []string) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Append(ctx, m.desc.name, id, op, fields); err != nil {
		m.logger.Warn("journal append failed",
			"model", m.desc.name, "id", id, "op", op, "error", err)
	}
}
