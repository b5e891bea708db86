package matcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"normscan/internal/rule"
)

// Timeout records a matcher that did not finish within the per-document
// budget. Recoverable: the run continues with the remaining matchers.
type Timeout struct {
	MatcherID string
	Doc       string
}

func (t Timeout) String() string {
	return fmt.Sprintf("matcher %s timed out on %s", t.MatcherID, t.Doc)
}

// RunBank fans the matcher bank out over the documents with a bounded worker
// pool. Matchers are pure, so parallelism is safe; the collected candidates
// are re-sorted afterwards so ordering never depends on scheduling.
func RunBank(ctx context.Context, log *zap.Logger, matchers []Matcher, docs []Context, workers int, timeout time.Duration) ([]rule.Candidate, []Timeout) {
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	var candidates []rule.Candidate
	var timeouts []Timeout

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			for _, m := range matchers {
				cands, ok := runWithTimeout(ctx, m, doc, timeout)
				mu.Lock()
				if !ok {
					timeouts = append(timeouts, Timeout{MatcherID: m.ID(), Doc: doc.Doc})
					log.Warn("matcher timed out",
						zap.String("matcher", m.ID()),
						zap.String("doc", doc.Doc),
						zap.Duration("timeout", timeout))
				} else {
					candidates = append(candidates, cands...)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	rule.SortCandidates(candidates)
	return candidates, timeouts
}

// runWithTimeout executes one matcher against one document. A matcher that
// overruns the budget is abandoned; its partial output is discarded so the
// result never depends on how far it got.
func runWithTimeout(ctx context.Context, m Matcher, doc Context, timeout time.Duration) ([]rule.Candidate, bool) {
	if timeout <= 0 {
		return m.Match(doc), true
	}

	done := make(chan []rule.Candidate, 1)
	go func() {
		done <- m.Match(doc)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case cands := <-done:
		return cands, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}
