// Package api exposes the HTTP surface consumed by the UI: medicine and
// dose management, live statuses, the active alert, and acknowledgement.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/engine"
	"github.com/dosewatch/dosewatch/pkg/store"
)

// Options wires the router's collaborators
type Options struct {
	Store  store.Store
	Engine *engine.Engine
	Log    *zap.Logger
}

// NewRouter builds the HTTP handler for the daemon
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	h := &handlers{store: opts.Store, engine: opts.Engine, log: opts.Log}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/medicines", func(mr chi.Router) {
			mr.Post("/", h.createMedicine)
			mr.Get("/", h.listMedicines)
			mr.Get("/{medicineID}", h.getMedicine)
			mr.Delete("/{medicineID}", h.deleteMedicine)
		})

		api.Route("/doses", func(dr chi.Router) {
			dr.Post("/", h.createDose)
			dr.Get("/", h.listDoses)
			dr.Get("/{doseID}", h.getDose)
			dr.Put("/{doseID}", h.updateDose)
			dr.Delete("/{doseID}", h.deleteDose)
			dr.Post("/{doseID}/ack", h.acknowledgeDose)
		})

		api.Get("/summary", h.summary)
		api.Get("/history", h.history)
		api.Get("/alert", h.activeAlert)
	})

	return r
}
