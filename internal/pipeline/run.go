// Package pipeline wires the extraction stages into one run: load, tokenize,
// match, resolve, locate, dedup, classify, order, hash, emit, verify, audit.
// Only the matcher fan-out is concurrent; every other stage runs
// single-threaded over an ordered view of the candidate set.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"normscan/internal/audit"
	"normscan/internal/config"
	"normscan/internal/corpus"
	"normscan/internal/dedup"
	"normscan/internal/emit"
	"normscan/internal/locate"
	"normscan/internal/matcher"
	"normscan/internal/resolver"
	"normscan/internal/rule"
	"normscan/internal/storage"
	"normscan/internal/token"
	"normscan/internal/verify"
)

// Options configures one run.
type Options struct {
	CorpusDir string
	Cfg       *config.Config
	Log       *zap.Logger
	Registry  *matcher.Registry
	// Store is optional; without it the baseline comparison is skipped and
	// nothing is persisted.
	Store storage.Store
}

// Outcome carries everything a run produced. The report is present even
// when Err is set, unless the corpus itself was unreadable.
type Outcome struct {
	Report      *audit.Report
	Artifacts   []emit.Artifact
	Set         *rule.Set
	Fingerprint audit.Fingerprint
	Evidence    []rule.Evidence
}

// Run executes the full pipeline. Recoverable issues accumulate on the
// report; fatal errors (unreadable corpus, emit failure, consistency
// mismatch) abort and are returned.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	cfg := opts.Cfg
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = matcher.Default()
	}

	runID := uuid.NewString()
	report := audit.NewReport(runID, cfg.Matchers.Mode)
	out := &Outcome{Report: report}

	// Load. A corpus we cannot read is a true I/O fatal: no report.
	start := time.Now()
	loader := corpus.NewLoader(cfg.Corpus.Includes, cfg.Corpus.Ignores)
	docs, err := loader.Load(opts.CorpusDir)
	if err != nil {
		return nil, err
	}
	report.AddStage("load", "ok", time.Since(start), map[string]float64{"documents": float64(len(docs))}, nil)
	log.Info("corpus loaded", zap.Int("documents", len(docs)), zap.String("run", runID))

	// Tokenize.
	start = time.Now()
	contexts := make([]matcher.Context, 0, len(docs))
	indexes := make(map[string]*locate.Index, len(docs))
	tokenCount := 0
	for _, doc := range docs {
		res := token.Tokenize(doc.ID, doc.Content)
		for _, w := range res.Warnings {
			report.AddWarning(w.Kind, w.Doc, w.Line, w.Message)
		}
		contexts = append(contexts, matcher.Context{Doc: doc.ID, FormatHint: doc.FormatHint, Tokens: res.Tokens})
		indexes[doc.ID] = locate.BuildIndex(doc.ID, res.Tokens)
		tokenCount += len(res.Tokens)
	}
	report.AddStage("tokenize", "ok", time.Since(start), map[string]float64{"tokens": float64(tokenCount)}, nil)

	// Match: the only parallel stage. Output is re-sorted before anything
	// downstream sees it.
	start = time.Now()
	matchers := reg.ForMode(cfg.Matchers.Mode)
	candidates, timeouts := matcher.RunBank(ctx, log, matchers, contexts, cfg.Matchers.Workers, cfg.Matchers.Timeout)
	for _, t := range timeouts {
		report.AddWarning("matcher_timeout", t.Doc, 0, t.String())
	}
	report.AddStage("match", "ok", time.Since(start), map[string]float64{
		"matchers":   float64(len(matchers)),
		"candidates": float64(len(candidates)),
	}, nil)

	// Resolve aliases and placeholders.
	start = time.Now()
	res := resolver.New(cfg.Variables)
	stats, unresolved := res.Resolve(candidates)
	for _, w := range unresolved {
		report.AddWarning("unresolved_placeholder", w.Doc, w.Line, fmt.Sprintf("placeholder ${%s} has no binding", w.Placeholder))
	}
	report.AddStage("resolve", "ok", time.Since(start), map[string]float64{
		"aliased":    float64(stats.Aliased),
		"unresolved": float64(stats.Unresolved),
	}, nil)

	// Locate.
	start = time.Now()
	locate.Assign(candidates, indexes)
	report.AddStage("locate", "ok", time.Since(start), nil, nil)

	// Dedup and conflict detection.
	start = time.Now()
	groups := dedup.New(cfg.Dedup.SimilarityThreshold, cfg.Dedup.ConflictPolicy).Merge(candidates)
	report.AddStage("dedup", "ok", time.Since(start), map[string]float64{
		"groups": float64(len(groups)),
		"merged": float64(len(candidates) - len(groups)),
	}, nil)

	// Classify, order, hash.
	start = time.Now()
	set, conflicts, evidence := BuildRules(groups)
	out.Set = set
	out.Evidence = evidence
	report.Conflicts = conflicts
	out.Fingerprint = audit.NewFingerprint(set)
	report.SetRules(set, out.Fingerprint)
	report.AddStage("build", "ok", time.Since(start), map[string]float64{"rules": float64(len(set.Rules))}, nil)

	// Emit the five artifacts into memory.
	start = time.Now()
	for _, e := range emit.All() {
		a, err := e.Emit(set)
		if err != nil {
			report.AddStage("emit", "error", time.Since(start), nil, err)
			report.ConsistencyCheck = "fail"
			return out, fmt.Errorf("emit %s: %w", e.Name(), err)
		}
		out.Artifacts = append(out.Artifacts, a)
	}
	report.AddStage("emit", "ok", time.Since(start), map[string]float64{"artifacts": float64(len(out.Artifacts))}, nil)

	// Verify: all five artifacts must agree with the rule set exactly.
	start = time.Now()
	check := verify.Check(out.Artifacts, set.IDs())
	if check.Passed {
		report.ConsistencyCheck = "pass"
		report.AddStage("verify", "ok", time.Since(start), map[string]float64{"rules": float64(check.RuleCount)}, nil)
	} else {
		report.ConsistencyCheck = "fail"
		err := check.Err()
		report.AddStage("verify", "error", time.Since(start), nil, err)
		log.Error("consistency check failed", zap.Error(err))
		return out, err
	}

	// Audit against the promoted baseline and persist the run.
	start = time.Now()
	if opts.Store != nil {
		if base, ok, err := opts.Store.Baseline(ctx); err != nil {
			report.AddWarning("baseline_unavailable", "", 0, err.Error())
		} else if ok {
			report.BaselineDiff = audit.CompareToBaseline(base.Fingerprint, base.Rules, set)
		}

		reportJSON, err := report.Marshal()
		if err != nil {
			return out, err
		}
		rec := storage.RunRecord{
			RunID:       runID,
			Fingerprint: out.Fingerprint.AggregateHash,
			RuleCount:   out.Fingerprint.RuleCount,
			CreatedAt:   out.Fingerprint.GeneratedAt,
			ReportJSON:  reportJSON,
		}
		if err := opts.Store.SaveRun(ctx, rec, audit.SnapshotRules(set), evidence); err != nil {
			return out, fmt.Errorf("persist run: %w", err)
		}
	}
	report.AddStage("audit", "ok", time.Since(start), nil, nil)

	return out, nil
}
