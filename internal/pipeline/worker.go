package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoralo/bc3tree/internal/bc3"
	"github.com/jmoralo/bc3tree/internal/config"
	"github.com/jmoralo/bc3tree/internal/store"
	"github.com/jmoralo/bc3tree/internal/tree"
)

// Worker processes a single import job.
type Worker struct {
	store   *store.Store
	log     *slog.Logger
	cfg     config.Config
	treeCfg tree.Config
}

func NewWorker(st *store.Store, log *slog.Logger, cfg config.Config, treeCfg tree.Config) *Worker {
	return &Worker{
		store:   st,
		log:     log,
		cfg:     cfg,
		treeCfg: treeCfg,
	}
}

// Process runs the full import pipeline for a job: parse the file,
// resolve parent links, build the tree, validate it, propagate amounts
// and persist the result. Validation errors do not abort the import
// unless FAIL_ON_CYCLE is set; the budget is stored with its report so
// callers can inspect what is wrong.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "budget_id", job.BudgetID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p := &bc3.Parser{Encoding: w.cfg.Encoding}
	file, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if len(file.Concepts) == 0 {
		log.Error("no concepts in file")
		job.AddError("no concept records found")
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if file.Malformed > 0 {
		job.AddWarning(fmt.Sprintf("%d malformed records skipped", file.Malformed))
	}
	job.SetConcepts(len(file.Concepts))
	log.Info("parsed file", "concepts", len(file.Concepts),
		"decompositions", len(file.Decompositions), "measurements", len(file.Measurements))

	// Phase 2: Resolve parent links.
	job.SetStatus(StatusResolving, "resolving")
	res := tree.Resolve(file.Concepts, file.Decompositions, w.treeCfg)
	for _, issue := range res.Warnings {
		job.AddWarning(issue.String())
	}

	// Phase 3: Build the tree.
	job.SetStatus(StatusBuilding, "building")
	bt, issues, err := tree.Build(job.Filename, file.Concepts, res, file.Measurements, w.treeCfg)
	if err != nil {
		log.Error("build failed", "error", err)
		job.AddError(fmt.Sprintf("build: %s", err))
		job.SetStatus(StatusFailed, "building")
		return
	}
	for _, issue := range issues {
		job.AddWarning(issue.String())
	}

	// Phase 4: Validate.
	job.SetStatus(StatusValidating, "validating")
	rep := tree.Validate(bt)
	for _, issue := range rep.Warnings {
		job.AddWarning(issue.String())
	}
	if !rep.Valid {
		for _, issue := range rep.Errors {
			log.Warn("validation error", "issue", issue.String())
			job.AddError(issue.String())
		}
		if w.cfg.FailOnCycle {
			job.SetStatus(StatusFailed, "validating")
			return
		}
	}

	// Phase 5: Propagate amounts. Skipped when cycles remain: the
	// aggregates would not terminate, so the tree keeps zero amounts.
	if rep.Stats.Cycles == 0 {
		job.SetStatus(StatusPropagating, "propagating")
		if err := tree.Propagate(bt, rep); err != nil {
			log.Error("propagation failed", "error", err)
			job.AddError(fmt.Sprintf("propagate: %s", err))
			job.SetStatus(StatusFailed, "propagating")
			return
		}
	} else {
		log.Warn("skipping propagation", "cycles", rep.Stats.Cycles)
	}

	// Phase 6: Store.
	job.SetStatus(StatusStoring, "storing")
	export := bt.Export()
	if err := w.store.Save(ctx, job.BudgetID, export, rep, file.Meta.Version, file.Meta.Generator); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	job.SetOutcome(export.NodeCount, export.RootCount, export.MaxDepth, rep.Valid, export.Total.String())
	log.Info("import complete", "nodes", export.NodeCount, "roots", export.RootCount,
		"total", export.Total.String(), "valid", rep.Valid)

	if rep.Valid {
		job.SetStatus(StatusCompleted, "done")
	} else {
		job.SetStatus(StatusInvalid, "done")
	}
}
