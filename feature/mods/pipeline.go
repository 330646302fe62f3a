package mods

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"mod-loader/core/archive"
	"mod-loader/core/patch"
	"mod-loader/core/resolver"
	"mod-loader/core/resource"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoStore is returned when a pipeline is run without a resource store.
var ErrNoStore = errors.New("no resource store")

// Failure is a non-fatal problem recorded during a load cycle.
type Failure struct {
	ModID   string `json:"mod_id,omitempty"`
	Archive string `json:"archive,omitempty"`
	File    string `json:"file,omitempty"`
	Patch   string `json:"patch,omitempty"`
	Error   string `json:"error"`
}

// PatchSummary counts the outcome of one content file's batch.
type PatchSummary struct {
	ModID      string `json:"mod_id"`
	File       string `json:"file"`
	Applied    int    `json:"applied"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	RolledBack bool   `json:"rolled_back"`
}

// CycleReport describes one load cycle.
type CycleReport struct {
	ID        string             `json:"id"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
	Order     []string           `json:"order"`
	Enabled   []string           `json:"enabled"`
	Legacy    []string           `json:"legacy"`
	Warnings  []resolver.Warning `json:"warnings"`
	Failures  []Failure          `json:"failures"`
	Patches   []PatchSummary     `json:"patches,omitempty"`
}

func (r *CycleReport) fail(f Failure) {
	r.Failures = append(r.Failures, f)
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithHistory records every completed cycle.
func WithHistory(h *History) PipelineOption {
	return func(p *Pipeline) {
		p.history = h
	}
}

// Pipeline discovers archives, orders mods and loads them into the store.
type Pipeline struct {
	cfg      Config
	store    *resource.Store
	registry *Registry
	history  *History
	logger   *zap.Logger
	now      func() time.Time

	// mu serialises load cycles.
	mu       sync.Mutex
	archives []*archive.Archive
}

// NewPipeline creates a pipeline loading into store. Habitats, locations and entities are
// recorded in registry, which also answers patch conditions.
func NewPipeline(cfg Config, store *resource.Store, registry *Registry, logger *zap.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	p := &Pipeline{
		cfg:      cfg,
		store:    store,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the side tables filled by the last cycle.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// stage is the store and registry a cycle loads into before they replace the live ones.
type stage struct {
	store    *resource.Store
	registry *Registry
	engine   *patch.Engine
}

func (p *Pipeline) newStage(logger *zap.Logger) *stage {
	st := &stage{store: p.store.Sibling(), registry: NewRegistry()}
	st.engine = patch.New(st.store, st.registry, logger)
	return st
}

type discovered struct {
	arc  *archive.Archive
	meta *Meta
}

type plan struct {
	legacy   []*archive.Archive
	mods     []discovered
	claims   map[string][]discovered
	hint     OrderFile
	disabled map[string]bool
	result   resolver.Result
}

// Resolve discovers archives and computes the load order without loading anything or
// rewriting the order file.
func (p *Pipeline) Resolve(ctx context.Context, sources ...Source) (*CycleReport, error) {
	report := &CycleReport{ID: uuid.NewString(), StartedAt: p.now()}
	pl, err := p.plan(ctx, report, sources)
	if err != nil {
		return nil, err
	}
	defer closeAll(pl.allArchives(), p.logger)

	p.fillOrder(report, pl)
	report.Duration = p.now().Sub(report.StartedAt)
	return report, nil
}

// RunLoadCycle loads the archives found in sources into a fresh stage and then swaps it in
// for the store and registry contents of the previous cycle, so readers never observe a
// half-loaded namespace. Resources installed with RegisterPinned outside of a mod survive the
// swap. A cancelled context discards the stage and leaves the previous cycle in place.
// Only an unreadable order file, a missing store or cancellation fail the cycle; everything
// else is recorded in the report.
func (p *Pipeline) RunLoadCycle(ctx context.Context, sources ...Source) (*CycleReport, error) {
	if p.store == nil {
		return nil, ErrNoStore
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	report := &CycleReport{ID: uuid.NewString(), StartedAt: p.now()}
	logger := p.logger.With(zap.String("cycle", report.ID))

	pl, err := p.plan(ctx, report, sources)
	if err != nil {
		return nil, err
	}

	// The cycle loads into a stage so readers keep the previous namespace until the swap.
	st := p.newStage(logger)
	for _, arc := range pl.legacy {
		if pl.disabled[strings.ToLower(arc.Name())] {
			logger.Info("Skipping disabled archive", zap.String("archive", arc.Name()))
			continue
		}
		p.registerEntries(st, arc, "")
		st.registry.MarkLoaded(arc.Name())
		report.Legacy = append(report.Legacy, arc.Name())
	}

	p.fillOrder(report, pl)

	if !slices.Equal(report.Order, pl.hint.Order) {
		next := OrderFile{Order: report.Order, Disabled: pl.hint.Disabled}
		if err := WriteOrderFile(p.cfg.OrderFile, next); err != nil {
			logger.Error("Failed to persist load order", zap.String("path", p.cfg.OrderFile), zap.Error(err))
			report.fail(Failure{File: p.cfg.OrderFile, Error: err.Error()})
		} else {
			logger.Info("Load order updated", zap.Strings("order", report.Order))
		}
	}

	for _, id := range report.Enabled {
		if err := ctx.Err(); err != nil {
			st.store.Reset()
			closeAll(pl.allArchives(), logger)
			return report, err
		}
		for _, d := range pl.claims[id] {
			p.loadMod(st, logger, report, id, d)
		}
	}

	// Lazy records keep references into the open archives, so the previous set is only
	// closed once the store no longer points at it.
	p.store.Replace(st.store)
	p.registry.Replace(st.registry)
	closeAll(p.archives, logger)
	p.archives = pl.allArchives()

	report.Duration = p.now().Sub(report.StartedAt)
	logger.Info("Load cycle finished",
		zap.Int("mods", len(report.Enabled)),
		zap.Int("legacy", len(report.Legacy)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("duration", report.Duration))

	if p.history != nil {
		if err := p.history.Record(ctx, report); err != nil {
			logger.Warn("Failed to record load cycle", zap.Error(err))
		}
	}
	return report, nil
}

// plan opens every archive, reads the order file and resolves the mod order.
func (p *Pipeline) plan(ctx context.Context, report *CycleReport, sources []Source) (*plan, error) {
	hint, err := ReadOrderFile(p.cfg.OrderFile)
	if err != nil {
		return nil, err
	}

	archives, err := p.discover(ctx, report, sources)
	if err != nil {
		return nil, err
	}

	pl := &plan{
		claims:   make(map[string][]discovered),
		hint:     hint,
		disabled: hint.DisabledSet(),
	}
	descriptors := make(map[string]resolver.Descriptor)
	var names []string
	for _, arc := range archives {
		names = append(names, arc.Name())
		if !arc.Has(MetaFile) {
			pl.legacy = append(pl.legacy, arc)
			continue
		}
		meta, err := p.readMeta(arc)
		if err != nil {
			p.logger.Warn("Skipping mod with invalid metadata", zap.String("archive", arc.Name()), zap.Error(err))
			report.fail(Failure{Archive: arc.Name(), File: MetaFile, Error: err.Error()})
			closeAll([]*archive.Archive{arc}, p.logger)
			continue
		}
		d := discovered{arc: arc, meta: meta}
		pl.mods = append(pl.mods, d)
		pl.claims[meta.Mod.ID] = append(pl.claims[meta.Mod.ID], d)
		if _, ok := descriptors[meta.Mod.ID]; !ok {
			descriptors[meta.Mod.ID] = meta.Descriptor(arc.Name())
		}
	}

	// A mod disabled through its archive name is disabled under its id too.
	for id, claims := range pl.claims {
		if pl.disabled[strings.ToLower(claims[0].arc.Name())] {
			pl.disabled[id] = true
		}
	}

	pl.result = resolver.Resolve(descriptors, hint.Order, pl.disabled, resolver.WithArchives(names...))
	for _, w := range pl.result.Warnings {
		p.logger.Warn("Dependency resolution", zap.String("kind", string(w.Kind)), zap.String("detail", w.String()))
	}
	return pl, nil
}

func (pl *plan) allArchives() []*archive.Archive {
	out := append([]*archive.Archive{}, pl.legacy...)
	for _, d := range pl.mods {
		out = append(out, d.arc)
	}
	return out
}

// fillOrder copies the resolution into the report and filters out disabled mods.
func (p *Pipeline) fillOrder(report *CycleReport, pl *plan) {
	report.Order = pl.result.Order
	report.Warnings = pl.result.Warnings
	report.Enabled = make([]string, 0, len(report.Order))
	for _, id := range report.Order {
		if pl.disabled[id] {
			continue
		}
		report.Enabled = append(report.Enabled, id)
	}
}

// discover opens the archives of every source concurrently and returns them sorted by name.
// Archives that cannot be listed or opened are recorded as failures.
func (p *Pipeline) discover(ctx context.Context, report *CycleReport, sources []Source) ([]*archive.Archive, error) {
	type located struct {
		src      Source
		location string
	}
	var locations []located
	for _, src := range sources {
		list, err := src.List(ctx)
		if err != nil {
			p.logger.Warn("Failed to list archives", zap.String("source", src.Name()), zap.Error(err))
			report.fail(Failure{Archive: src.Name(), Error: err.Error()})
			continue
		}
		for _, loc := range list {
			locations = append(locations, located{src: src, location: loc})
		}
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		archives []*archive.Archive
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, l := range locations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			arc, err := l.src.Open(gctx, l.location)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Warn("Failed to open archive", zap.String("archive", l.location), zap.Error(err))
				report.fail(Failure{Archive: path.Base(l.location), Error: err.Error()})
				return nil
			}
			archives = append(archives, arc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeAll(archives, p.logger)
		return nil, fmt.Errorf("discover archives: %w", err)
	}

	sort.SliceStable(archives, func(i, j int) bool {
		return strings.ToLower(archives[i].Name()) < strings.ToLower(archives[j].Name())
	})
	sort.SliceStable(report.Failures, func(i, j int) bool {
		return report.Failures[i].Archive < report.Failures[j].Archive
	})

	unique := archives[:0]
	for i, arc := range archives {
		if i > 0 && strings.EqualFold(arc.Name(), archives[i-1].Name()) {
			p.logger.Warn("Ignoring duplicate archive", zap.String("archive", arc.Name()))
			report.fail(Failure{Archive: arc.Name(), Error: "duplicate archive name"})
			closeAll([]*archive.Archive{arc}, p.logger)
			continue
		}
		unique = append(unique, arc)
	}
	return unique, nil
}

func (p *Pipeline) readMeta(arc *archive.Archive) (*Meta, error) {
	data, err := arc.ReadFile(MetaFile)
	if err != nil {
		return nil, err
	}
	return ParseMeta(data)
}

// registerEntries declares every resource of arc lazily. Mod archives keep their metadata
// and content definitions out of the namespace.
func (p *Pipeline) registerEntries(st *stage, arc *archive.Archive, modID string) []string {
	var defs []string
	for _, name := range arc.Entries() {
		if modID != "" {
			if strings.EqualFold(name, MetaFile) {
				continue
			}
			if IsDefsFile(name) {
				defs = append(defs, name)
				continue
			}
		}
		entry, err := arc.Entry(name)
		if err != nil {
			continue
		}
		key := resource.Canonical(name)
		st.store.RegisterLazy(key, archive.Source{Entry: entry})
		if strings.EqualFold(path.Ext(name), ".ai") {
			st.registry.RegisterEntity(key.String())
		}
	}
	return defs
}

// loadMod registers one mod archive and applies its content files in category order.
func (p *Pipeline) loadMod(st *stage, logger *zap.Logger, report *CycleReport, id string, d discovered) {
	logger = logger.With(zap.String("mod", id), zap.String("archive", d.arc.Name()))

	if err := st.registry.RegisterMod(id, d.arc.Name()); err != nil {
		logger.Warn("Skipping mod", zap.Error(err))
		report.fail(Failure{ModID: id, Archive: d.arc.Name(), Error: err.Error()})
		return
	}

	var files []*ContentFile
	for _, name := range p.registerEntries(st, d.arc, id) {
		data, err := d.arc.ReadFile(name)
		if err == nil {
			var f *ContentFile
			if f, err = ParseContentFile(name, data); err == nil {
				files = append(files, f)
				continue
			}
		}
		logger.Warn("Skipping content file", zap.String("file", name), zap.Error(err))
		report.fail(Failure{ModID: id, Archive: d.arc.Name(), File: name, Error: err.Error()})
	}
	SortContentFiles(files)

	for _, f := range files {
		p.declare(st, logger, report, id, f)
		if len(f.Batch.Patches) == 0 {
			continue
		}

		res, err := st.engine.ApplyBatch(f.Batch, id)
		report.Patches = append(report.Patches, PatchSummary{
			ModID:      id,
			File:       f.Name,
			Applied:    len(res.Applied),
			Skipped:    len(res.Skipped),
			Failed:     len(res.Failures),
			RolledBack: res.RolledBack,
		})
		for _, pe := range res.Failures {
			report.fail(Failure{ModID: id, Archive: d.arc.Name(), File: f.Name, Patch: pe.Patch, Error: pe.Error()})
		}
		if err != nil {
			if len(res.Failures) == 0 {
				report.fail(Failure{ModID: id, Archive: d.arc.Name(), File: f.Name, Error: err.Error()})
			}
			logger.Warn("Patch batch failed", zap.String("file", f.Name), zap.Bool("rolled_back", res.RolledBack), zap.Error(err))
		}
	}

	st.registry.MarkLoaded(d.arc.Name())
	logger.Debug("Mod loaded", zap.Int("content_files", len(files)))
}

// declare registers the habitats and locations of a content file.
func (p *Pipeline) declare(st *stage, logger *zap.Logger, report *CycleReport, id string, f *ContentFile) {
	for _, name := range f.HabitatNames() {
		if _, err := st.registry.RegisterHabitat(id, name, f.Habitats[name]); err != nil {
			logger.Warn("Skipping habitat", zap.String("habitat", name), zap.Error(err))
			report.fail(Failure{ModID: id, File: f.Name, Error: err.Error()})
			continue
		}
		st.registry.RegisterEntity("habitat." + name)
	}
	for _, name := range f.LocationNames() {
		if _, err := st.registry.RegisterLocation(id, name, f.Locations[name]); err != nil {
			logger.Warn("Skipping location", zap.String("location", name), zap.Error(err))
			report.fail(Failure{ModID: id, File: f.Name, Error: err.Error()})
			continue
		}
		st.registry.RegisterEntity("location." + name)
	}
}

// Close releases the archives of the last cycle and empties the store.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		p.store.Reset()
	}
	closeAll(p.archives, p.logger)
	p.archives = nil
}

func closeAll(archives []*archive.Archive, logger *zap.Logger) {
	for _, arc := range archives {
		if err := arc.Close(); err != nil {
			logger.Debug("Failed to close archive", zap.String("archive", arc.Name()), zap.Error(err))
		}
	}
}
