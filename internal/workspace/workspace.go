// Package workspace owns the active database on behalf of a host
// application. The engine performs no locking and assumes mutations on
// a database are applied one at a time; the workspace provides that
// single-writer discipline with a mutex per open database, recomputes
// the ViewData snapshot exactly once per mutation and publishes it
// through an atomic pointer swap, so concurrent readers never observe a
// half-updated projection.
package workspace

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gridbase/gridbase/internal/store"
	"github.com/gridbase/gridbase/pkg/engine"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/logger"
	"github.com/gridbase/gridbase/pkg/metrics"
	"github.com/gridbase/gridbase/pkg/model"
)

// Workspace is one open database plus its session state: the active
// view, the current search query and the latest ViewData snapshot.
type Workspace struct {
	mu           sync.Mutex
	store        *store.Store
	db           *model.Database
	activeViewID string
	searchQuery  string
	identity     string
	clock        func() time.Time
	log          *zap.Logger
	collector    *metrics.Collector

	viewData atomic.Pointer[model.ViewData]
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithIdentity sets the identity recorded in CreatedBy/LastEditedBy
// columns.
func WithIdentity(identity string) Option {
	return func(w *Workspace) { w.identity = identity }
}

// WithClock overrides the reference time used by relative date filters.
func WithClock(clock func() time.Time) Option {
	return func(w *Workspace) { w.clock = clock }
}

// WithLogger overrides the workspace logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Workspace) { w.log = log }
}

// Open loads a database from the store, validates it and computes the
// initial ViewData for its default view.
func Open(st *store.Store, databaseID string, opts ...Option) (*Workspace, error) {
	db, err := st.Load(databaseID)
	if err != nil {
		return nil, err
	}
	return open(st, db, opts...)
}

// Create builds a fresh database with the given title, persists it and
// opens a workspace over it.
func Create(st *store.Store, title string, opts ...Option) (*Workspace, error) {
	w := &Workspace{clock: time.Now, log: logger.Get()}
	for _, opt := range opts {
		opt(w)
	}

	db := engine.NewDatabase(title, w.identity)
	if err := st.Save(db); err != nil {
		return nil, err
	}
	return open(st, db, opts...)
}

func open(st *store.Store, db *model.Database, opts ...Option) (*Workspace, error) {
	if result := model.Validate(db); !result.Valid {
		return nil, errors.Newf(errors.ErrorTypeValidation,
			"database %q is structurally invalid: %s", db.ID, strings.Join(result.Errors, "; ")).
			WithDetail("errors", result.Errors)
	}

	w := &Workspace{
		store: st,
		db:    db,
		clock: time.Now,
		log:   logger.Get(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("database_id", db.ID))
	w.collector = metrics.NewCollector(db.ID)
	w.activeViewID = db.DefaultView().ID
	w.refreshLocked()

	w.log.Info("workspace opened",
		zap.String("title", db.Title),
		zap.Int("rows", len(db.Rows)),
		zap.Int("views", len(db.Views)))
	return w, nil
}

// DatabaseID returns the open database's ID.
func (w *Workspace) DatabaseID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.db.ID
}

// Database returns a deep copy of the open database, safe for the
// caller to inspect or serialize without racing mutations.
func (w *Workspace) Database() *model.Database {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneDatabase(w.db)
}

// ActiveView returns a copy of the active view.
func (w *Workspace) ActiveView() model.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.db.ViewByID(w.activeViewID)
}

// ViewData returns the latest snapshot. The snapshot is immutable;
// callers may hold it as long as they like.
func (w *Workspace) ViewData() *model.ViewData {
	return w.viewData.Load()
}

// SetActiveView switches the active view and recomputes the snapshot.
func (w *Workspace) SetActiveView(viewID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db.ViewByID(viewID) == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}
	w.activeViewID = viewID
	w.refreshLocked()
	return nil
}

// SetSearchQuery updates the session search query and recomputes the
// snapshot. An empty query clears the search.
func (w *Workspace) SetSearchQuery(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.searchQuery = query
	w.refreshLocked()
}

// Validate re-checks the open database's structural invariants.
func (w *Workspace) Validate() model.ValidationResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.Validate(w.db)
}

// refreshLocked recomputes the ViewData snapshot for the active view
// and swaps it in atomically. If the active view has disappeared the
// workspace falls back to the default view. Callers hold w.mu.
func (w *Workspace) refreshLocked() {
	view := w.db.ViewByID(w.activeViewID)
	if view == nil {
		view = w.db.DefaultView()
		w.activeViewID = view.ID
	}

	start := time.Now()
	snapshot := engine.ProcessView(w.db, view, w.searchQuery, w.clock())
	w.viewData.Store(snapshot)

	if w.collector != nil {
		w.collector.RecordPipeline(time.Since(start))
		w.collector.RecordRowCount(len(w.db.Rows))
	}
}

// finishLocked completes a mutation: it records metrics, recomputes the
// snapshot exactly once and persists the database. Callers hold w.mu.
func (w *Workspace) finishLocked(operation string, err error) error {
	if w.collector != nil {
		w.collector.RecordMutation(operation, err)
	}
	if err != nil {
		w.log.Warn("mutation rejected", zap.String("operation", operation), zap.Error(err))
		return err
	}

	w.refreshLocked()
	if saveErr := w.store.Save(w.db); saveErr != nil {
		w.log.Error("failed to persist mutation",
			zap.String("operation", operation), zap.Error(saveErr))
		return saveErr
	}

	w.log.Debug("mutation applied", zap.String("operation", operation))
	return nil
}

func cloneDatabase(db *model.Database) *model.Database {
	out := *db

	out.Columns = make([]model.Column, len(db.Columns))
	copy(out.Columns, db.Columns)

	out.Views = make([]model.View, len(db.Views))
	copy(out.Views, db.Views)

	out.Relations = make([]model.Relation, len(db.Relations))
	copy(out.Relations, db.Relations)

	out.Rows = make([]model.Row, len(db.Rows))
	for i, row := range db.Rows {
		out.Rows[i] = row
		out.Rows[i].Data = row.CloneData()
	}

	out.Settings = make(map[string]interface{}, len(db.Settings))
	for k, v := range db.Settings {
		out.Settings[k] = v
	}
	return &out
}
