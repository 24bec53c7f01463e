// Package server exposes the record store over HTTP as the JSON search
// service the picker's remote collection talks to.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"recpick/internal/store"
)

// MaxLimit caps the page size a client may ask for
const MaxLimit = 100

// Records is the storage the handlers read from
type Records interface {
	Search(ctx context.Context, q store.Query) (store.Page, error)
	Get(ctx context.Context, id string) (store.Record, error)
}

type recordAPI struct {
	records Records
}

// NewRouter builds the service routes
func NewRouter(records Records) http.Handler {
	api := &recordAPI{records: records}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthzHandler)
	r.Route("/api/records", func(r chi.Router) {
		r.Get("/", api.listRecordsHandler)
		r.Get("/{id}", api.recordByIDHandler)
	})
	return r
}
