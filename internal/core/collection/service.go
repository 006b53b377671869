package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/core/validation"
	"github.com/eventstock/eventstock/internal/core/view"
	"github.com/eventstock/eventstock/internal/metrics"
	"github.com/eventstock/eventstock/internal/storage"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrDuplicateID   = errors.New("duplicate record id")
	ErrImmutableID   = errors.New("record id cannot change")
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// workspace is the loaded copy of one collection. Record maps are never
// modified in place, so snapshots handed out stay valid after mutations.
type workspace struct {
	mu      sync.RWMutex
	loaded  bool
	records []query.Record
}

type Service struct {
	store     storage.Store
	views     *view.Registry
	validator *validation.Validator
	logger    *zap.Logger

	mu         sync.Mutex
	workspaces map[string]*workspace
}

func NewService(store storage.Store, views *view.Registry, validator *validation.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		views:      views,
		validator:  validator,
		logger:     logger,
		workspaces: make(map[string]*workspace),
	}
}

func (s *Service) Views() *view.Registry {
	return s.views
}

func (s *Service) workspace(name string) (*workspace, *view.Definition, error) {
	def, err := s.views.Get(name)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[name]
	if !ok {
		ws = &workspace{}
		s.workspaces[name] = ws
	}
	return ws, def, nil
}

// load fills ws on first use. A collection that cannot be loaded is served
// empty. Callers hold ws.mu for writing.
func (s *Service) load(ctx context.Context, name string, ws *workspace) {
	if ws.loaded {
		return
	}
	ws.records = s.fetch(ctx, name)
	ws.loaded = true
}

func (s *Service) fetch(ctx context.Context, name string) []query.Record {
	records, err := s.store.Load(ctx, name)
	switch {
	case err == nil:
		s.logger.Debug("collection loaded", zap.String("collection", name), zap.Int("records", len(records)))
		return records
	case errors.Is(err, storage.ErrCollectionNotFound):
		s.logger.Info("collection not stored yet, starting empty", zap.String("collection", name))
	default:
		metrics.StoreLoadFailures.WithLabelValues(name).Inc()
		s.logger.Warn("failed to load collection, serving empty", zap.String("collection", name), zap.Error(err))
	}
	return []query.Record{}
}

// save writes the collection back. Failures are logged and reported through
// the returned flag; memory is never rolled back.
func (s *Service) save(ctx context.Context, name string, records []query.Record) bool {
	if err := s.store.Save(ctx, name, records); err != nil {
		metrics.StoreSaveFailures.WithLabelValues(name).Inc()
		s.logger.Error("failed to save collection", zap.String("collection", name), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) snapshot(ctx context.Context, name string) ([]query.Record, *view.Definition, error) {
	ws, def, err := s.workspace(name)
	if err != nil {
		return nil, nil, err
	}

	ws.mu.RLock()
	if ws.loaded {
		records := ws.records
		ws.mu.RUnlock()
		return records, def, nil
	}
	ws.mu.RUnlock()

	ws.mu.Lock()
	defer ws.mu.Unlock()
	s.load(ctx, name, ws)
	return ws.records, def, nil
}

// All returns every record of a collection in stored order.
func (s *Service) All(ctx context.Context, name string) ([]query.Record, error) {
	records, _, err := s.snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(records), nil
}

func (s *Service) List(ctx context.Context, name string, q query.Query, limit, offset int) (*ListResponse, error) {
	records, _, err := s.snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	engine, err := s.views.Engine(name)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page := query.Paginate(engine.Apply(records, q), limit, offset)
	return &ListResponse{
		Collection: name,
		Records:    page.Records,
		Total:      page.Total,
		Limit:      page.Limit,
		Offset:     page.Offset,
		Query:      q,
	}, nil
}

func (s *Service) Get(ctx context.Context, name, id string) (query.Record, error) {
	records, _, err := s.snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	return records[i].Clone(), nil
}

// Create appends a record. Without an id it gets the next free numeric id.
func (s *Service) Create(ctx context.Context, name string, record query.Record) (*Result, error) {
	return s.CreateWith(ctx, name, func([]query.Record) (query.Record, error) {
		return record, nil
	})
}

// CreateWith appends the record built by fn. fn sees the current records and
// runs under the collection lock.
func (s *Service) CreateWith(ctx context.Context, name string, fn Builder) (*Result, error) {
	ws, def, err := s.workspace(name)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	s.load(ctx, name, ws)

	built, err := fn(ws.records)
	if err != nil {
		return nil, err
	}
	rec := built.Clone()
	if rec.ID() == "" {
		rec["id"] = nextID(ws.records)
	} else if indexOf(ws.records, rec.ID()) >= 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrAlreadyExists, name, rec.ID())
	}

	if err := s.check(def, rec); err != nil {
		return nil, err
	}

	ws.records = append(slices.Clone(ws.records), rec)
	persisted := s.save(ctx, name, ws.records)
	return &Result{Record: rec.Clone(), Persisted: persisted}, nil
}

// Update merges patch into the record. The id cannot be changed. The patch
// is validated on its own first so errors name only the fields sent.
func (s *Service) Update(ctx context.Context, name, id string, patch query.Record) (*Result, error) {
	def, err := s.views.Get(name)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePartial(patch, def.Schema); err != nil {
		return nil, err
	}
	return s.Modify(ctx, name, id, func(current query.Record) (query.Record, error) {
		merged := current.Clone()
		for k, v := range patch {
			merged[k] = v
		}
		merged["id"] = current["id"]
		return merged, nil
	})
}

// Modify replaces one record with the output of fn, validating the result,
// all under the collection lock.
func (s *Service) Modify(ctx context.Context, name, id string, fn Modifier) (*Result, error) {
	ws, def, err := s.workspace(name)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	s.load(ctx, name, ws)

	i := indexOf(ws.records, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}

	next, err := fn(ws.records[i].Clone())
	if err != nil {
		return nil, err
	}
	if next.ID() != ws.records[i].ID() {
		return nil, fmt.Errorf("%w: %s/%s", ErrImmutableID, name, id)
	}
	if err := s.check(def, next); err != nil {
		return nil, err
	}

	records := slices.Clone(ws.records)
	records[i] = next
	ws.records = records
	persisted := s.save(ctx, name, ws.records)
	return &Result{Record: next.Clone(), Persisted: persisted}, nil
}

func (s *Service) Delete(ctx context.Context, name, id string) (*Result, error) {
	ws, _, err := s.workspace(name)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	s.load(ctx, name, ws)

	i := indexOf(ws.records, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}

	removed := ws.records[i]
	ws.records = slices.Delete(slices.Clone(ws.records), i, i+1)
	persisted := s.save(ctx, name, ws.records)
	return &Result{Record: removed.Clone(), Persisted: persisted}, nil
}

// Replace swaps the whole collection, the way the admin panel writes back
// a collection document. Ids must be unique; missing ids are assigned.
func (s *Service) Replace(ctx context.Context, name string, records []query.Record) (*Result, error) {
	ws, def, err := s.workspace(name)
	if err != nil {
		return nil, err
	}

	next := make([]query.Record, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		rec := r.Clone()
		if id := rec.ID(); id != "" {
			if seen[id] {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
			}
			seen[id] = true
		}
		next = append(next, rec)
	}
	for _, rec := range next {
		if rec.ID() == "" {
			rec["id"] = nextID(next)
		}
	}

	if err := s.validator.ValidateAll(next, def.Schema); err != nil {
		return nil, err
	}
	if def.Check != nil {
		for i, rec := range next {
			if err := def.Check(rec); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.records = next
	ws.loaded = true
	persisted := s.save(ctx, name, ws.records)
	return &Result{Records: slices.Clone(next), Persisted: persisted}, nil
}

// Reload drops the in-memory copy and reads the collection from the store.
func (s *Service) Reload(ctx context.Context, name string) (int, error) {
	ws, _, err := s.workspace(name)
	if err != nil {
		return 0, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.loaded = false
	s.load(ctx, name, ws)
	return len(ws.records), nil
}

// check runs the schema and then the collection's own record check.
func (s *Service) check(def *view.Definition, rec query.Record) error {
	if err := s.validator.Validate(rec, def.Schema); err != nil {
		return err
	}
	if def.Check != nil {
		return def.Check(rec)
	}
	return nil
}

func indexOf(records []query.Record, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(records, func(r query.Record) bool {
		return r.ID() == id
	})
}

// nextID is one past the highest numeric id. Ids stored as numeric text
// count too, since ids compare as text.
func nextID(records []query.Record) float64 {
	var highest float64
	for _, r := range records {
		n, ok := query.Number(r["id"])
		if s, isText := r["id"].(string); isText {
			f, err := cast.ToFloat64E(strings.TrimSpace(s))
			n, ok = f, err == nil
		}
		if ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}
