package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/hashrec/internal/journal"
	"github.com/roach88/hashrec/internal/kv"
	"github.com/roach88/hashrec/internal/record"
	"github.com/roach88/hashrec/internal/schema"
)

// runtime bundles the collaborators a record command needs: the live
// store connection, the compiled declarations, and the optional journal.
type runtime struct {
	store   kv.Store
	result  *schema.LoadResult
	journal *journal.Journal
	logger  *slog.Logger
}

// newRuntime connects to the store and loads declarations per opts.
// Caller must call close when done.
func newRuntime(opts *RootOptions) (*runtime, error) {
	result, errs := schema.Load(opts.ModelsDir, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, WrapExitError(ExitCommandError, "loading model declarations", errs[0])
	}

	rt := &runtime{
		store:  kv.NewRedis(opts.Addr),
		result: result,
		logger: newLogger(opts.Verbose),
	}

	if opts.JournalPath != "" {
		j, err := journal.Open(opts.JournalPath)
		if err != nil {
			rt.store.Close()
			return nil, WrapExitError(ExitCommandError, "opening journal", err)
		}
		rt.journal = j
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.journal != nil {
		rt.journal.Close()
	}
	rt.store.Close()
}

// modelFor resolves a model by short name and binds it to the store.
func (rt *runtime) modelFor(name string) (*record.Model, error) {
	desc, ok := rt.result.FindByShortName(name)
	if !ok {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown model %q", name))
	}

	modelOpts := []record.ModelOption{record.WithLogger(rt.logger)}
	if rt.journal != nil {
		modelOpts = append(modelOpts, record.WithJournal(rt.journal))
	}
	m, err := record.NewModel(desc, rt.store, modelOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "binding model", err)
	}
	return m, nil
}

// newLogger builds the command logger. Quiet by default, debug with -v.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// operationExitError maps a record operation failure to an exit error.
// Domain failures (not found, expired, invalid value) exit 1; anything
// else, such as an unreachable store, exits 2.
func operationExitError(err error) error {
	switch {
	case record.IsNotFound(err), record.IsStorageExpired(err), record.IsInvalidValue(err):
		return WrapExitError(ExitFailure, "operation failed", err)
	default:
		return WrapExitError(ExitCommandError, "operation failed", err)
	}
}
