package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/customer-recon/internal/store"
)

// SearchHandler ranks stored groups against a free-text query
type SearchHandler struct {
	Store *store.Store
}

// GroupSearchResult represents one ranked search hit
type GroupSearchResult struct {
	RunID            string `json:"run_id"`
	Position         int    `json:"position"`
	StandardizedName string `json:"standardized_name"`
	MemberCount      int    `json:"member_count"`
	Distance         int    `json:"distance"`
}

// SearchGroups searches group names within one run, substring hits
// first, then by edit distance to the query. The run parameter defaults
// to the most recent run.
func (h *SearchHandler) SearchGroups(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	searchTerm := query.Get("q")
	if searchTerm == "" {
		http.Error(w, "Search term required", http.StatusBadRequest)
		return
	}

	limit := parseIntParam(query.Get("limit"), 20)
	if limit > 100 {
		limit = 100 // Maximum limit
	}

	runID := query.Get("run")
	if runID == "" {
		runs, err := h.Store.ListRuns()
		if err != nil {
			http.Error(w, "Store error", http.StatusInternalServerError)
			return
		}
		if len(runs) == 0 {
			http.Error(w, "No runs stored", http.StatusNotFound)
			return
		}
		runID = runs[0].ID
	}

	groups, err := h.Store.GroupsForRun(runID)
	if err != nil {
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	type scoredResult struct {
		GroupSearchResult
		substring bool
	}

	needle := strings.ToUpper(searchTerm)
	scored := make([]scoredResult, 0, len(groups))
	for _, g := range groups {
		name := strings.ToUpper(g.StandardizedName)
		scored = append(scored, scoredResult{
			GroupSearchResult: GroupSearchResult{
				RunID:            runID,
				Position:         g.Position,
				StandardizedName: g.StandardizedName,
				MemberCount:      g.MemberCount,
				Distance:         levenshtein.ComputeDistance(needle, name),
			},
			substring: strings.Contains(name, needle),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].substring != scored[j].substring {
			return scored[i].substring
		}
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].StandardizedName < scored[j].StandardizedName
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]GroupSearchResult, len(scored))
	for i, s := range scored {
		results[i] = s.GroupSearchResult
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
