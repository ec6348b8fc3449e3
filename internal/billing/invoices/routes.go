package invoices

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/pdf", h.DownloadPDF)
	r.Post("/{id}/send", h.Send)
	r.Post("/{id}/paid", h.MarkPaid)
}
