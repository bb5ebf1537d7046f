package monitor

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{monitorID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/details", h.Details)
		r.Patch("/state", h.SetState)
		r.Put("/pagerduty-key", h.SetPagerdutyKey)
		r.Delete("/pagerduty-key", h.DeletePagerdutyKey)
		r.Get("/events/uptime", h.ListUptimeEvents)
		r.Get("/events/ssl", h.ListSSLEvents)
	})

	return r
}
