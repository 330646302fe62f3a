package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"mod-loader/core/config"
	"mod-loader/core/database"
	"mod-loader/core/logger"
	"mod-loader/core/resource"
	"mod-loader/core/storage"
	"mod-loader/feature/mods"

	"go.uber.org/zap"
)

// runtime is the set of components shared by the commands.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *resource.Store
	client   storage.Client
	history  *mods.History
	pipeline *mods.Pipeline
	sources  []mods.Source
}

// bootstrap loads configuration and wires the store, pipeline and optional collaborators.
// The storage client and the history database are optional: failures are logged and the
// feature is left out.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, log: logg}

	if cfg.Loading.Remote {
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Remote archives disabled", zap.Error(err))
		} else {
			rt.client = client
		}
	}

	if cfg.Loading.History {
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			h := mods.NewHistory(db)
			if err := h.Migrate(ctx); err != nil {
				logg.Warn("Load history disabled", zap.Error(err))
			} else {
				rt.history = h
			}
		}
	}

	rt.store = resource.New(cfg.Cache, logger.Component(logg, "resource"))

	var opts []mods.PipelineOption
	if rt.history != nil {
		opts = append(opts, mods.WithHistory(rt.history))
	}
	rt.pipeline = mods.NewPipeline(cfg.Loading, rt.store, mods.NewRegistry(), logger.Component(logg, "mods"), opts...)
	rt.sources = mods.Sources(cfg.Loading, rt.client, cfg.Storage.Bucket)
	return rt, nil
}

func (rt *runtime) close() {
	rt.pipeline.Close()
	_ = rt.log.Sync()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, report *mods.CycleReport) {
	fmt.Fprintf(w, "Cycle %s (%s)\n", report.ID, report.Duration)
	if len(report.Legacy) > 0 {
		fmt.Fprintf(w, "Archives: %d legacy\n", len(report.Legacy))
	}
	fmt.Fprintln(w, "Load order:")
	enabled := make(map[string]bool, len(report.Enabled))
	for _, id := range report.Enabled {
		enabled[id] = true
	}
	for i, id := range report.Order {
		state := ""
		if !enabled[id] {
			state = " (disabled)"
		}
		fmt.Fprintf(w, "  %2d. %s%s\n", i+1, id, state)
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  - [%s] %s\n", warn.Kind, warn.String())
		}
	}
	if len(report.Failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, f := range report.Failures {
			where := f.Archive
			if f.ModID != "" {
				where = f.ModID
			}
			if f.File != "" {
				where += ":" + f.File
			}
			if f.Patch != "" {
				where += "#" + f.Patch
			}
			fmt.Fprintf(w, "  - %s: %s\n", where, f.Error)
		}
	}
}
