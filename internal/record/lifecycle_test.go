package record

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hashrec/internal/attr"
	"github.com/roach88/hashrec/internal/journal"
	"github.com/roach88/hashrec/internal/kv"
	"github.com/roach88/hashrec/internal/testutil"
)

// taskFixture wires the concrete scenario model: Task with name,
// description, status (machine created -> processed|failed) and a 2s TTL,
// all against an in-memory store on a manual clock.
type taskFixture struct {
	model *Model
	store *kv.Mem
	clock *testutil.ManualClock
}

func newTaskFixture(t *testing.T, opts ...ModelOption) *taskFixture {
	t.Helper()

	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := kv.NewMem(kv.WithClock(clock))

	desc, err := NewDescriptor("myapp.Task", taskSchema(t),
		WithMachine(statusMachine()),
		WithExpiresIn(2*time.Second),
	)
	require.NoError(t, err)

	opts = append([]ModelOption{WithModelClock(clock)}, opts...)
	model, err := NewModel(desc, store, opts...)
	require.NoError(t, err)

	return &taskFixture{model: model, store: store, clock: clock}
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r1, err := f.model.Create(ctx, map[string]any{"name": "first"})
	require.NoError(t, err)
	r2, err := f.model.Create(ctx, map[string]any{"name": "second"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), r1.ID())
	assert.Equal(t, int64(2), r2.ID())
}

func TestCreate_FindRoundTrip(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.model.Create(ctx, map[string]any{
		"name":        "My name",
		"description": "details",
		"priority":    3,
	})
	require.NoError(t, err)

	found, err := f.model.Find(ctx, created.ID())
	require.NoError(t, err)

	assert.Equal(t, created.ID(), found.ID())
	assert.Equal(t, created.Attributes(), found.Attributes(),
		"declared attributes should round-trip")

	v, ok := found.Get("name")
	require.True(t, ok)
	assert.Equal(t, attr.String("My name"), v)

	p, ok := found.Get("priority")
	require.True(t, ok)
	assert.Equal(t, attr.Int(3), p, "hydration should restore the declared type")
}

func TestCreate_EmptyAttributesNeverWritten(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.model.Create(ctx, map[string]any{
		"name":   "My name",
		"status": nil,
	})
	require.NoError(t, err)

	raw, err := f.store.HGetAll(ctx, "tasks:1")
	require.NoError(t, err)
	_, hasStatus := raw["status"]
	assert.False(t, hasStatus, "empty attribute must not be written, not even as empty string")

	found, err := f.model.Find(ctx, created.ID())
	require.NoError(t, err)
	_, ok := found.Get("status")
	assert.False(t, ok, "empty field reads back as empty")
}

func TestCreate_WritesCreationMarker(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	_, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	raw, err := f.store.HGetAll(ctx, "tasks:1")
	require.NoError(t, err)
	assert.Equal(t, "1748779200", raw[CreatedAtField], "creation marker holds the clock's unix time")
}

func TestCreate_MetadataNeverHydrated(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	// plant an unknown field alongside the metadata
	require.NoError(t, f.store.HSet(ctx, "tasks:1", map[string]string{"rogue": "x"}))

	found, err := f.model.Find(ctx, created.ID())
	require.NoError(t, err)
	attrs := found.Attributes()
	assert.NotContains(t, attrs, CreatedAtField)
	assert.NotContains(t, attrs, "rogue")
	assert.Contains(t, attrs, "name")
}

func TestCreate_InvalidGovernedValueYieldsNoRecord(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	_, err := f.model.Create(ctx, map[string]any{"name": "a", "status": "bogus"})
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err))

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "status", re.Attribute)
	assert.Equal(t, "bogus", re.Value)
	assert.Equal(t, []string{"created", "processed", "failed"}, re.Legal)
}

func TestCreate_ConcurrentIDsAreUnique(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	const creators = 50

	ids := make(chan int64, creators)
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := f.model.Create(ctx, map[string]any{"name": "x"})
			assert.NoError(t, err)
			ids <- r.ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, creators)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, creators)
}

func TestFind_NeverCreated(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.model.Find(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "myapp.Task")
}

func TestFind_AfterExpiry(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	f.clock.Advance(2100 * time.Millisecond)

	_, err = f.model.Find(ctx, created.ID())
	assert.True(t, IsNotFound(err), "an expired record reads like one that never existed")
}

func TestUpdate_SingleAttributeReturnsValue(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "My name"})
	require.NoError(t, err)

	got, err := r.Update(ctx, map[string]any{"name": "New name"})
	require.NoError(t, err)
	assert.Equal(t, attr.String("New name"), got,
		"single-field update returns the new value, not the record")
}

func TestUpdate_MultipleAttributesReturnsRecord(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	got, err := r.Update(ctx, map[string]any{"name": "b", "description": "c"})
	require.NoError(t, err)
	require.IsType(t, &Record{}, got)
	assert.Same(t, r, got)

	found, err := f.model.Find(ctx, r.ID())
	require.NoError(t, err)
	name, _ := found.Get("name")
	desc, _ := found.Get("description")
	assert.Equal(t, attr.String("b"), name)
	assert.Equal(t, attr.String("c"), desc)
}

func TestUpdate_ZeroAttributesReturnsRecord(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	got, err := r.Update(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestUpdate_IdentifierIsImmutable(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	_, err = r.Update(ctx, map[string]any{"id": int64(99)})
	require.ErrorContains(t, err, "immutable")
	assert.Equal(t, int64(1), r.ID())
}

func TestUpdate_AfterExpiry(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "My name"})
	require.NoError(t, err)

	got, err := r.Update(ctx, map[string]any{"name": "New name"})
	require.NoError(t, err)
	assert.Equal(t, attr.String("New name"), got)

	f.clock.Advance(2100 * time.Millisecond)

	_, err = r.Update(ctx, map[string]any{"name": "X"})
	require.Error(t, err)
	assert.True(t, IsStorageExpired(err))
	assert.Contains(t, err.Error(), "1", "the error names the id the caller holds")

	name, _ := r.Get("name")
	assert.Equal(t, attr.String("New name"), name,
		"refused update leaves in-memory state unchanged")
}

func TestUpdate_RefreshesTTL(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	// keep touching the record just inside the TTL window
	for i := 0; i < 3; i++ {
		f.clock.Advance(1500 * time.Millisecond)
		_, err = r.Update(ctx, map[string]any{"name": "b"})
		require.NoError(t, err, "activity inside the window keeps the record alive")
	}

	f.clock.Advance(2100 * time.Millisecond)
	_, err = r.Update(ctx, map[string]any{"name": "c"})
	assert.True(t, IsStorageExpired(err))
}

func TestUpdate_GovernedAttribute(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a", "status": "created"})
	require.NoError(t, err)

	got, err := r.Update(ctx, map[string]any{"status": "processed"})
	require.NoError(t, err)
	assert.Equal(t, attr.String("processed"), got)

	_, err = r.Update(ctx, map[string]any{"status": "exploded"})
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err))

	status, _ := r.Get("status")
	assert.Equal(t, attr.String("processed"), status)
}

func TestUpdate_ClearingGovernedAttributeNeverRaises(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a", "status": "created"})
	require.NoError(t, err)

	got, err := r.Update(ctx, map[string]any{"status": ""})
	require.NoError(t, err, "assigning an empty value never raises")
	assert.Nil(t, got, "a cleared single-field update returns nil")

	_, ok := r.Get("status")
	assert.False(t, ok)
}

func TestUpdate_ClearedFieldStaysInStorage(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a", "status": "created"})
	require.NoError(t, err)

	_, err = r.Update(ctx, map[string]any{"status": nil})
	require.NoError(t, err)

	// clearing stops rewriting the field; the stale string remains until
	// the key expires
	raw, err := f.store.HGetAll(ctx, "tasks:1")
	require.NoError(t, err)
	assert.Equal(t, "created", raw["status"])

	_, ok := r.Get("status")
	assert.False(t, ok, "in-memory state is cleared")
}

func TestSave_PersistsWithoutPrecheck(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	f.clock.Advance(2100 * time.Millisecond)

	// Update refuses, Save does not
	_, err = r.Update(ctx, map[string]any{"name": "b"})
	require.True(t, IsStorageExpired(err))

	require.NoError(t, r.Save(ctx))

	found, err := f.model.Find(ctx, r.ID())
	require.NoError(t, err)
	name, _ := found.Get("name")
	assert.Equal(t, attr.String("a"), name, "save resurrects the record from in-memory state")
}

func TestSave_PrePersistValidation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a"})
	require.NoError(t, err)

	// mutate the container directly, bypassing assign
	require.NoError(t, r.attrs.Set("status", attr.String("sideways")))

	err = r.Save(ctx)
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err), "pre-persist check catches direct mutation")
}

func TestNewModel_NilStoreIsMisconfigured(t *testing.T) {
	desc, err := NewDescriptor("myapp.Task", taskSchema(t))
	require.NoError(t, err)

	_, err = NewModel(desc, nil)
	require.Error(t, err)
	assert.True(t, IsMisconfigured(err))
}

func TestRecord_KeyBindingIsMemoized(t *testing.T) {
	f := newTaskFixture(t)

	r, err := f.model.Create(context.Background(), map[string]any{"name": "a"})
	require.NoError(t, err)

	k1, err := r.Key()
	require.NoError(t, err)
	k2, err := r.Key()
	require.NoError(t, err)
	assert.Equal(t, "tasks:1", k1)
	assert.Equal(t, k1, k2)
}

func TestNoTTL_RecordNeverExpires(t *testing.T) {
	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := kv.NewMem(kv.WithClock(clock))

	desc, err := NewDescriptor("myapp.Note", taskSchema(t))
	require.NoError(t, err)
	model, err := NewModel(desc, store, WithModelClock(clock))
	require.NoError(t, err)

	ctx := context.Background()
	r, err := model.Create(ctx, map[string]any{"name": "keep"})
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)

	found, err := model.Find(ctx, r.ID())
	require.NoError(t, err, "a model without TTL never expires")
	name, _ := found.Get("name")
	assert.Equal(t, attr.String("keep"), name)
}

func TestLifecycle_JournalIntegration(t *testing.T) {
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	f := newTaskFixture(t, WithJournal(j))
	ctx := context.Background()

	r, err := f.model.Create(ctx, map[string]any{"name": "a", "status": "created"})
	require.NoError(t, err)
	_, err = r.Update(ctx, map[string]any{"name": "b"})
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx))

	entries, err := j.History(ctx, "myapp.Task", r.ID(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, journal.OpCreate, entries[0].Op)
	assert.Equal(t, []string{"name", "status"}, entries[0].Fields)
	assert.Equal(t, journal.OpUpdate, entries[1].Op)
	assert.Equal(t, []string{"name"}, entries[1].Fields)
	assert.Equal(t, journal.OpSave, entries[2].Op)
}

func TestAssign_UnsupportedType(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.model.Create(context.Background(), map[string]any{"name": 3.14})
	assert.ErrorContains(t, err, "unsupported value type")
}

func TestAssign_UndeclaredAttribute(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.model.Create(context.Background(), map[string]any{"bogus": "x"})
	assert.ErrorContains(t, err, "not declared")
}
