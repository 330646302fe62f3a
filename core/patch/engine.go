package patch

import (
	"fmt"

	"go.uber.org/zap"
)

// Engine applies patch batches to a store.
type Engine struct {
	store  Store
	env    Environment
	logger *zap.Logger
}

// New creates an engine. A nil env answers every condition with false and leaves values as
// written.
func New(store Store, env Environment, logger *zap.Logger) *Engine {
	if env == nil {
		env = emptyEnvironment{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, env: env, logger: logger}
}

// ApplyBatch applies batch on behalf of modID. Under Abort the returned error is the first
// failure and the store is unchanged; under Continue failures are only reported in the Result.
func (e *Engine) ApplyBatch(batch Batch, modID string) (*Result, error) {
	res := &Result{ModID: modID}
	mode := batch.Meta.OnError
	if mode == "" {
		mode = Continue
	}
	if mode != Continue && mode != Abort {
		return res, fmt.Errorf("%w: unknown on_error %q", ErrInvalidPatch, mode)
	}

	var (
		v  view = direct{store: e.store}
		ov *overlay
	)
	if mode == Abort {
		ov = newOverlay(e.store)
		v = ov
	}
	a := &applier{view: v, env: e.env, modID: modID}

	if batch.Meta.Condition != nil {
		ok, err := a.holds(batch.Meta.Condition)
		if err != nil {
			res.Failures = append(res.Failures, &Error{Patch: "meta", Target: modID, Err: err})
			e.logger.Warn("Batch condition failed", zap.String("mod", modID), zap.Error(err))
			if mode == Abort {
				res.RolledBack = true
				return res, res.Err()
			}
			return res, nil
		}
		if !ok {
			for _, np := range batch.Patches {
				res.Skipped = append(res.Skipped, np.Name)
			}
			e.logger.Debug("Batch condition not met", zap.String("mod", modID))
			return res, nil
		}
	}

	for _, np := range batch.Patches {
		outcome, err := a.apply(np.Patch)
		switch outcome {
		case Applied:
			res.Applied = append(res.Applied, np.Name)
		case Skipped:
			res.Skipped = append(res.Skipped, np.Name)
		case Failed:
			perr := &Error{Patch: np.Name, Op: np.Patch.Op, Target: np.Patch.Target, Err: err}
			res.Failures = append(res.Failures, perr)
			e.logger.Warn("Patch failed",
				zap.String("mod", modID),
				zap.String("patch", np.Name),
				zap.String("op", string(np.Patch.Op)),
				zap.String("target", np.Patch.Target),
				zap.Error(err))
			if mode == Abort {
				res.RolledBack = true
				e.logger.Warn("Batch rolled back", zap.String("mod", modID), zap.Int("discarded", len(ov.writes)+len(ov.deletes)))
				return res, perr
			}
		}
	}

	if ov != nil {
		ov.commit()
	}
	e.logger.Debug("Batch applied",
		zap.String("mod", modID),
		zap.Int("applied", len(res.Applied)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", len(res.Failures)))
	return res, nil
}
