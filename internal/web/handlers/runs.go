// Package handlers implements the review API endpoints over the run
// store.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/customer-recon/internal/store"
)

// RunsHandler serves stored reconciliation runs
type RunsHandler struct {
	Store *store.Store
}

// Health reports service liveness
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListRuns returns stored run summaries, newest first
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns()
	if err != nil {
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun returns one stored run with its configuration snapshot
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.Store.GetRun(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetGroups returns the groups of a run in output order, with limit and
// offset query parameters for paging
func (h *RunsHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.Store.GetRun(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	groups, err := h.Store.GroupsForRun(id)
	if err != nil {
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	offset := parseIntParam(query.Get("offset"), 0)
	limit := parseIntParam(query.Get("limit"), 100)
	if limit > 1000 {
		limit = 1000 // Maximum limit
	}

	if offset > len(groups) {
		offset = len(groups)
	}
	end := offset + limit
	if end > len(groups) {
		end = len(groups)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groups[offset:end])
}

// GetMerges returns the accepted pair decisions of a run in applied
// order, with limit and offset query parameters for paging
func (h *RunsHandler) GetMerges(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.Store.GetRun(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	merges, err := h.Store.MergesForRun(id)
	if err != nil {
		http.Error(w, "Store error", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	offset := parseIntParam(query.Get("offset"), 0)
	limit := parseIntParam(query.Get("limit"), 100)
	if limit > 1000 {
		limit = 1000 // Maximum limit
	}

	if offset > len(merges) {
		offset = len(merges)
	}
	end := offset + limit
	if end > len(merges) {
		end = len(merges)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(merges[offset:end])
}

// parseIntParam parses a string as int with a default value
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}
