// Package reconcile runs the full grouping pipeline: normalize every
// record, block candidate pairs through the signature index, score and
// judge each pair, and fold accepted merges into groups with union-find.
package reconcile

import (
	"fmt"
	"sync"
	"time"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/debug"
	"github.com/customer-recon/internal/model"
	"github.com/customer-recon/internal/normalize"
	"github.com/customer-recon/internal/rules"
	"github.com/customer-recon/internal/score"
	"github.com/customer-recon/internal/signature"
)

// Engine reconciles customer names according to one configuration. An
// Engine is stateless between calls and safe to reuse.
type Engine struct {
	cfg     *config.Config
	cascade *rules.Cascade
}

// NewEngine validates the configuration and builds the rule cascade.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Engine{cfg: cfg, cascade: rules.NewCascade(cfg)}, nil
}

// Merge is one accepted pair decision, kept for auditing. Within-source
// merges collapse duplicates inside one system, cross-source merges
// link names across systems.
type Merge struct {
	Rule            string       `json:"rule"`
	SourceA         model.Source `json:"source_a"`
	NameA           string       `json:"name_a"`
	SourceB         model.Source `json:"source_b"`
	NameB           string       `json:"name_b"`
	TokenSimilarity float64      `json:"token_similarity"`
	MatchRatio      float64      `json:"match_ratio"`
	CrossSource     bool         `json:"cross_source"`
}

// Stats summarizes one reconciliation run.
type Stats struct {
	TotalRecords   int
	TotalGroups    int
	BySource       map[model.Source]int
	InThreeSources int
	InTwoSources   int
	InOneSource    int
	LowConfidence  int
	CandidatePairs int
	WithinMerges   int
	CrossMerges    int
	Elapsed        time.Duration
}

// Result is the full output of a run.
type Result struct {
	Groups []model.ReconciledGroup
	Merges []Merge
	Stats  Stats
}

// Reconcile groups the given records. Records may come from any mix of
// sources; per-source input order must be preserved by the caller since
// Seq values feed into representative tie-breaking and output ordering.
func (e *Engine) Reconcile(localDebug bool, records []model.RawRecord) (*Result, error) {
	start := time.Now()
	debug.Header(localDebug)
	defer debug.Footer(localDebug)

	for _, r := range records {
		if !r.Source.Valid() {
			return nil, fmt.Errorf("unrecognized source tag %q on record %q", r.Source, r.Text)
		}
	}

	debug.Output(localDebug, "=== Step 1: Normalization ===")
	names := e.normalizeAll(records)
	debug.Output(localDebug, "Normalized %d records", len(names))

	debug.Output(localDebug, "=== Step 2: Signature Index ===")
	ix := signature.BuildIndex(names)
	debug.Output(localDebug, "Indexed %d names into %d buckets", len(names), ix.BucketCount())

	uf := NewUnionFind(len(names))
	var merges []Merge

	debug.Output(localDebug, "=== Step 3: Within-Source Pass ===")
	within := ix.Pairs(true)
	withinMerges := e.unionPass(names, within, uf)
	merges = append(merges, withinMerges...)
	debug.Output(localDebug, "Evaluated %d candidate pairs, %d merges", len(within), len(withinMerges))

	debug.Output(localDebug, "=== Step 4: Cross-Source Pass ===")
	cross := ix.Pairs(false)
	crossMerges := e.unionPass(names, cross, uf)
	merges = append(merges, crossMerges...)
	debug.Output(localDebug, "Evaluated %d candidate pairs, %d merges", len(cross), len(crossMerges))

	debug.Output(localDebug, "=== Step 5: Group Assembly ===")
	groups, stats := e.buildGroups(names, uf)
	stats.TotalRecords = len(records)
	stats.CandidatePairs = len(within) + len(cross)
	stats.WithinMerges = len(withinMerges)
	stats.CrossMerges = len(crossMerges)
	stats.Elapsed = time.Since(start)
	debug.Output(localDebug, "Assembled %d groups in %v", stats.TotalGroups, stats.Elapsed)

	return &Result{Groups: groups, Merges: merges, Stats: stats}, nil
}

// normalizeAll derives every normalized form in parallel. Workers write
// to disjoint slice indices, so no locking is needed and the output is
// identical to a serial pass.
func (e *Engine) normalizeAll(records []model.RawRecord) []model.NormalizedName {
	names := make([]model.NormalizedName, len(records))
	workers := e.workerCount(len(records))

	jobs := make(chan int, len(records))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				names[i] = normalize.Derive(records[i], e.cfg)
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return names
}

type verdict struct {
	decision rules.Decision
	rule     string
	score    score.Result
}

// unionPass scores and judges candidate pairs in parallel, then applies
// the accepted merges serially in pair order. Union-find produces the
// same partition whatever the merge order, and the serial pass keeps
// the recorded merge list deterministic.
func (e *Engine) unionPass(names []model.NormalizedName, pairs [][2]int, uf *UnionFind) []Merge {
	if len(pairs) == 0 {
		return nil
	}

	verdicts := make([]verdict, len(pairs))
	workers := e.workerCount(len(pairs))

	jobs := make(chan int, len(pairs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				p := rules.NewPair(names[pairs[k][0]], names[pairs[k][1]], e.cfg)
				d, rule := e.cascade.Decide(p)
				verdicts[k] = verdict{decision: d, rule: rule, score: p.Score}
			}
		}()
	}
	for k := range pairs {
		jobs <- k
	}
	close(jobs)
	wg.Wait()

	var merges []Merge
	for k, pair := range pairs {
		if verdicts[k].decision != rules.Accept {
			continue
		}
		uf.Union(pair[0], pair[1])
		a, b := names[pair[0]].Record, names[pair[1]].Record
		merges = append(merges, Merge{
			Rule:            verdicts[k].rule,
			SourceA:         a.Source,
			NameA:           a.Text,
			SourceB:         b.Source,
			NameB:           b.Text,
			TokenSimilarity: verdicts[k].score.TokenSimilarity,
			MatchRatio:      verdicts[k].score.MatchRatio,
			CrossSource:     a.Source != b.Source,
		})
	}
	return merges
}

// buildGroups walks names in input order so groups come out in the
// order their first member appeared, then picks each group's
// representative and standardized name.
func (e *Engine) buildGroups(names []model.NormalizedName, uf *UnionFind) ([]model.ReconciledGroup, Stats) {
	memberSets := make(map[int][]int)
	var rootOrder []int
	for i := range names {
		root := uf.Find(i)
		if _, ok := memberSets[root]; !ok {
			rootOrder = append(rootOrder, root)
		}
		memberSets[root] = append(memberSets[root], i)
	}

	stats := Stats{BySource: make(map[model.Source]int)}
	groups := make([]model.ReconciledGroup, 0, len(rootOrder))
	for _, root := range rootOrder {
		members := memberSets[root]
		rep := pickRepresentative(names, members, e.cfg)

		g := model.ReconciledGroup{
			StandardizedName: Standardize(names[rep].Record.Text),
			Members:          make(map[model.Source][]string, len(model.Sources())),
		}
		for _, s := range model.Sources() {
			g.Members[s] = []string{}
		}
		for _, i := range members {
			src := names[i].Record.Source
			g.Members[src] = append(g.Members[src], names[i].Record.Text)
			stats.BySource[src]++
		}
		if len(members) == 1 && names[members[0]].Normalized == "" {
			g.LowConfidence = true
			stats.LowConfidence++
		}

		switch g.SourceCount() {
		case 3:
			stats.InThreeSources++
		case 2:
			stats.InTwoSources++
		default:
			stats.InOneSource++
		}
		groups = append(groups, g)
	}
	stats.TotalGroups = len(groups)
	return groups, stats
}

func (e *Engine) workerCount(jobs int) int {
	workers := e.cfg.Workers
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
