package signature

import (
	"github.com/customer-recon/internal/model"
)

// Index holds every name bucketed by its signatures. Bucket keys are
// tracked in first-seen order so candidate pair enumeration is
// deterministic run to run.
type Index struct {
	Names   []model.NormalizedName
	sigs    [][]string
	buckets map[string][]int
	order   []string
}

// BuildIndex computes signatures for every name and groups them into
// buckets. Every name lands in at least one bucket; names with no
// tokens share the reserved empty bucket.
func BuildIndex(names []model.NormalizedName) *Index {
	ix := &Index{
		Names:   names,
		sigs:    make([][]string, len(names)),
		buckets: make(map[string][]int),
	}
	for i, name := range names {
		sigs := Strategies(name.Tokens)
		ix.sigs[i] = sigs
		for _, sig := range sigs {
			if _, ok := ix.buckets[sig]; !ok {
				ix.order = append(ix.order, sig)
			}
			ix.buckets[sig] = append(ix.buckets[sig], i)
		}
	}
	return ix
}

// Signatures returns the signatures computed for name i.
func (ix *Index) Signatures(i int) []string {
	return ix.sigs[i]
}

// Shared returns the signatures names i and j have in common.
func (ix *Index) Shared(i, j int) []string {
	other := make(map[string]bool, len(ix.sigs[j]))
	for _, sig := range ix.sigs[j] {
		other[sig] = true
	}
	var shared []string
	for _, sig := range ix.sigs[i] {
		if other[sig] {
			shared = append(shared, sig)
		}
	}
	return shared
}

// BucketCount returns the number of distinct signature buckets.
func (ix *Index) BucketCount() int {
	return len(ix.buckets)
}

// Pairs enumerates unique candidate pairs (a, b) with a < b drawn from
// shared buckets. With sameSource true only pairs within one source are
// returned, otherwise only pairs spanning two different sources. Each
// pair appears once no matter how many buckets it shares.
func (ix *Index) Pairs(sameSource bool) [][2]int {
	seen := make(map[uint64]bool)
	var pairs [][2]int
	for _, sig := range ix.order {
		members := ix.buckets[sig]
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				a, b := members[x], members[y]
				if a > b {
					a, b = b, a
				}
				same := ix.Names[a].Record.Source == ix.Names[b].Record.Source
				if same != sameSource {
					continue
				}
				key := uint64(a)<<32 | uint64(b)
				if seen[key] {
					continue
				}
				seen[key] = true
				pairs = append(pairs, [2]int{a, b})
			}
		}
	}
	return pairs
}
