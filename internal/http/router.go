// Package httpapi exposes the conversations over HTTP. Every request is one
// action of the caller identified by the reverse proxy; the response body is
// the reply to render.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/export"
	"github.com/hperssn/buildcalc/internal/logging"
	"github.com/hperssn/buildcalc/internal/runner"
)

// maxUpload bounds configuration files and text messages.
const maxUpload = 1 << 20

func NewRouter(manager *runner.Manager, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(withLogger(log))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(Identity)

		r.Get("/estimate", act(manager, kind(domain.ActionPrompt)))
		r.Post("/estimate/start", act(manager, kind(domain.ActionStart)))
		r.Post("/estimate/back", act(manager, kind(domain.ActionBack)))
		r.Post("/estimate/done", act(manager, kind(domain.ActionDone)))
		r.Post("/estimate/restart", act(manager, kind(domain.ActionRestart)))
		r.Post("/estimate/info", act(manager, kind(domain.ActionInfo)))
		r.Post("/estimate/contact", act(manager, kind(domain.ActionContact)))
		r.Post("/estimate/pick/{section}/{id}", act(manager, func(r *http.Request) domain.Action {
			return domain.Action{
				Kind:    domain.ActionPick,
				Section: catalog.Section(chi.URLParam(r, "section")),
				ItemID:  chi.URLParam(r, "id"),
			}
		}))
		r.Post("/estimate/extras/{id}/toggle", act(manager, func(r *http.Request) domain.Action {
			return domain.Action{Kind: domain.ActionToggle, ItemID: chi.URLParam(r, "id")}
		}))
		r.Get("/estimate/export.csv", exportCSV(manager))
		r.Get("/estimate/export.xlsx", exportXLSX(manager))

		r.Post("/messages", postMessage(manager))
		r.Post("/files", postFile(manager))
		r.Get("/events", StreamReplies(manager))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/", act(manager, kind(domain.ActionAdminEnter)))
			r.Post("/home", act(manager, kind(domain.ActionAdminHome)))
			r.Post("/sections", act(manager, kind(domain.ActionAdminSections)))
			r.Post("/sections/{section}", act(manager, func(r *http.Request) domain.Action {
				return domain.Action{Kind: domain.ActionAdminSection, Section: section(r)}
			}))
			r.Post("/sections/{section}/items/{id}", act(manager, func(r *http.Request) domain.Action {
				return domain.Action{Kind: domain.ActionAdminItem, Section: section(r), ItemID: chi.URLParam(r, "id")}
			}))
			r.Post("/sections/{section}/items/{id}/toggle", act(manager, func(r *http.Request) domain.Action {
				return domain.Action{Kind: domain.ActionAdminToggle, Section: section(r), ItemID: chi.URLParam(r, "id")}
			}))
			r.Post("/sections/{section}/items/{id}/fields/{field}", act(manager, func(r *http.Request) domain.Action {
				return domain.Action{
					Kind:    domain.ActionAdminField,
					Section: section(r),
					ItemID:  chi.URLParam(r, "id"),
					Field:   domain.Field(chi.URLParam(r, "field")),
				}
			}))
			r.Post("/coefficients", act(manager, kind(domain.ActionAdminCoefficients)))
			r.Post("/coefficients/{key}", act(manager, func(r *http.Request) domain.Action {
				return domain.Action{Kind: domain.ActionAdminCoefficient, Key: domain.CoefficientKey(chi.URLParam(r, "key"))}
			}))
			r.Post("/import", act(manager, kind(domain.ActionAdminImport)))
			r.Get("/export", download(manager))
		})
	})

	return r
}

func section(r *http.Request) catalog.Section {
	return catalog.Section(chi.URLParam(r, "section"))
}

func kind(k domain.ActionKind) func(*http.Request) domain.Action {
	return func(*http.Request) domain.Action { return domain.Action{Kind: k} }
}

// act dispatches the action built from the request and writes the reply.
func act(m *runner.Manager, build func(*http.Request) domain.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, err := m.Dispatch(r.Context(), IdentityFrom(r), build(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, r, reply, http.StatusOK)
	}
}

func postMessage(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUpload)).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		act(m, func(*http.Request) domain.Action {
			return domain.Action{Kind: domain.ActionText, Text: req.Text}
		})(w, r)
	}
}

func postFile(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
		if err != nil {
			respondError(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}

		act(m, func(*http.Request) domain.Action {
			return domain.Action{Kind: domain.ActionFile, Payload: payload}
		})(w, r)
	}
}

func exportCSV(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := m.Export(IdentityFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="estimate.csv"`)
		if err := export.WriteCSV(w, res); err != nil {
			logging.FromContext(r.Context()).Error("write csv", "error", err)
		}
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportXLSX renders the whole workbook before any header is sent.
func exportXLSX(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := m.Export(IdentityFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, res); err != nil {
			writeError(w, r, fmt.Errorf("render workbook: %w", err))
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="estimate.xlsx"`)
		if _, err := buf.WriteTo(w); err != nil {
			logging.FromContext(r.Context()).Error("write xlsx", "error", err)
		}
	}
}

// download dispatches the admin export and serves its attachment as a file.
func download(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, err := m.Dispatch(r.Context(), IdentityFrom(r), domain.Action{Kind: domain.ActionAdminExport})
		if err != nil {
			writeError(w, r, err)
			return
		}
		if reply.Attachment == nil {
			respondJSON(w, r, reply, http.StatusOK)
			return
		}

		w.Header().Set("Content-Type", reply.Attachment.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+reply.Attachment.Filename+`"`)
		if _, err := w.Write(reply.Attachment.Data); err != nil {
			logging.FromContext(r.Context()).Error("write attachment", "error", err)
		}
	}
}

// writeError maps flow errors to status codes. A refused admin action looks
// exactly like an unknown route.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, err.Error(), http.StatusConflict)
	default:
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		respondError(w, "service unavailable", http.StatusServiceUnavailable)
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
