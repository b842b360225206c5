// Package api exposes the rendered views over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geodata-explorer/internal/repository"
	"github.com/mohammed-shakir/geodata-explorer/internal/views"
)

// Renderer produces serialized view payloads. *views.Service satisfies it.
type Renderer interface {
	Render(ctx context.Context, kind views.Kind, table string) ([]byte, error)
	Tables() []string
}

type Handler struct {
	views Renderer
}

func New(r Renderer) *Handler { return &Handler{views: r} }

// Routes mounts the view endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/views", h.listViews)
	r.Route("/{table}", func(r chi.Router) {
		r.Get("/map", h.serve(views.KindMap))
		r.Get("/gallery", h.serve(views.KindGallery))
		r.Get("/alerts", h.serve(views.KindAlerts))
		r.Get("/export.csv", h.serve(views.KindCSV))
	})
}

func (h *Handler) listViews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tables": h.views.Tables()})
}

func (h *Handler) serve(kind views.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := chi.URLParam(r, "table")
		b, err := h.views.Render(r.Context(), kind, table)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		if kind == views.KindCSV {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="`+safeFilename(table)+`.csv"`)
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, views.ErrUnknownView), errors.Is(err, repository.ErrTableNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "request timed out"})
	default:
		slog.ErrorContext(ctx, "render view failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func safeFilename(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			b[i] = '_'
		}
	}
	if len(b) == 0 {
		return "export"
	}
	return string(b)
}
