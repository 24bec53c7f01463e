package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"recpick/internal/store"
)

type listRecordsResponse struct {
	Results []store.Record `json:"results"`
	Total   int            `json:"total"`
}

func (a *recordAPI) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	limit, err := intParam(values.Get("limit"), 0)
	if err != nil || limit < 0 {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	if limit == 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	offset, err := intParam(values.Get("offset"), 0)
	if err != nil || offset < 0 {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}

	page, err := a.records.Search(r.Context(), store.Query{
		Term:   values.Get("q"),
		Kind:   values.Get("kind"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("search records: %v", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	results := page.Records
	if results == nil {
		results = []store.Record{}
	}
	writeJSON(w, http.StatusOK, listRecordsResponse{Results: results, Total: page.Total})
}

func (a *recordAPI) recordByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := a.records.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("get record %s: %v", id, err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
